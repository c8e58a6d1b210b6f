// Package pl0ast defines the syntax tree shared by the parser, the optimizer
// and every back end.
package pl0ast

import "fmt"

type IdentityID int

type IdentityKind uint8

const (
	IdentityConstant IdentityKind = iota + 1
	IdentityVariable
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityConstant:
		return "const"
	case IdentityVariable:
		return "var"
	}
	return fmt.Sprintf("IdentityKind(%d)", k)
}

// Identity is the record for one declared constant or variable.
// Counters are owned by the optimizer.
type Identity struct {
	ID    IdentityID
	Name  string
	Kind  IdentityKind
	Value int32

	ReferenceCount int
	Assignments    []*Assignment
	ReadCount      int
}

func (i *Identity) IsConstant() bool {
	return i.Kind == IdentityConstant
}

// AddAssignment records an assignment once.
func (i *Identity) AddAssignment(a *Assignment) {
	for _, existing := range i.Assignments {
		if existing == a {
			return
		}
	}
	i.Assignments = append(i.Assignments, a)
}

func (i *Identity) RemoveAssignment(a *Assignment) {
	for idx, existing := range i.Assignments {
		if existing == a {
			i.Assignments = append(i.Assignments[:idx], i.Assignments[idx+1:]...)
			return
		}
	}
}

type Program struct {
	Identities []*Identity
	Block      *Block
	UsesRand   bool
}

func NewProgram() *Program {
	return &Program{
		Block: new(Block),
	}
}

// Declare allocates a new identity in the arena.
func (p *Program) Declare(name string, kind IdentityKind, value int32) *Identity {
	identity := &Identity{
		ID:    IdentityID(len(p.Identities)),
		Name:  name,
		Kind:  kind,
		Value: value,
	}
	p.Identities = append(p.Identities, identity)
	return identity
}

func (p *Program) Identity(id IdentityID) *Identity {
	if id < 0 || int(id) >= len(p.Identities) {
		panic(fmt.Errorf("identity %d out of range", id))
	}
	return p.Identities[id]
}

func (p *Program) Name(id IdentityID) string {
	return p.Identity(id).Name
}

func (p *Program) Procedure(name string) *Procedure {
	for _, proc := range p.Block.Procedures {
		if proc.Name == name {
			return proc
		}
	}
	return nil
}

type Block struct {
	Constants  []IdentityID
	Variables  []IdentityID
	Procedures []*Procedure
	Statement  Statement
}

func (b *Block) HasVariable(id IdentityID) bool {
	for _, v := range b.Variables {
		if v == id {
			return true
		}
	}
	return false
}

func (b *Block) RemoveVariable(id IdentityID) {
	for i, v := range b.Variables {
		if v == id {
			b.Variables = append(b.Variables[:i], b.Variables[i+1:]...)
			return
		}
	}
}

func (b *Block) RemoveProcedure(proc *Procedure) {
	for i, p := range b.Procedures {
		if p == proc {
			b.Procedures = append(b.Procedures[:i], b.Procedures[i+1:]...)
			return
		}
	}
}

type Procedure struct {
	Name      string
	Block     *Block
	CallCount int
	Locals    []IdentityID
}

func (p *Procedure) IsLocal(id IdentityID) bool {
	for _, local := range p.Locals {
		if local == id {
			return true
		}
	}
	return false
}

// IsLeaf reports whether calls to the procedure can be replaced by its body.
func (p *Procedure) IsLeaf() bool {
	return len(p.Block.Constants) == 0 &&
		len(p.Block.Variables) == 0 &&
		p.Block.Statement != nil &&
		!p.Block.Statement.CallsProcedure()
}
