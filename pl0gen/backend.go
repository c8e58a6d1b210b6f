package pl0gen

import (
	"fmt"
	"iter"

	"github.com/reusee/plzero/pl0ast"
)

// Backend turns a program into an instruction stream.
type Backend interface {
	Instructions(program *pl0ast.Program) iter.Seq[Instruction]
}

type Options struct {
	ClassName string
	MaxStack  int32
}

const (
	DefaultClassName = "plc"
	DefaultMaxStack  = 32
)

// StackBackend emits instructions for a CLI-like evaluation stack machine.
// An instance serves one program: its stream may be iterated only once.
type StackBackend struct {
	options Options
	started bool
	labels  map[string]int

	program   *pl0ast.Program
	procedure *pl0ast.Procedure
	yield     func(Instruction) bool
	stopped   bool
}

var _ Backend = new(StackBackend)

func NewStackBackend(options Options) *StackBackend {
	if options.ClassName == "" {
		options.ClassName = DefaultClassName
	}
	if options.MaxStack <= 0 {
		options.MaxStack = DefaultMaxStack
	}
	return &StackBackend{
		options: options,
		labels:  make(map[string]int),
	}
}

func (b *StackBackend) Options() Options {
	return b.options
}

// Instructions returns the stream for program in the order globals, each
// procedure, Main, the constructor. Each instruction is handed to the
// consumer as soon as it is generated. After the consumer stops, the rest
// of the current unit is walked without emitting and no further unit runs.
func (b *StackBackend) Instructions(program *pl0ast.Program) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		if b.started {
			panic(pl0ast.Invariantf("instruction stream consumed twice"))
		}
		b.started = true
		b.program = program

		units := []func(){
			b.header,
		}
		for _, proc := range program.Block.Procedures {
			units = append(units, func() {
				b.method(proc)
			})
		}
		units = append(units, b.main, b.footer)

		b.yield = yield
		for _, unit := range units {
			unit()
			if b.stopped {
				return
			}
		}
	}
}

func (b *StackBackend) emit(inst Instruction) {
	if b.stopped {
		return
	}
	if !b.yield(inst) {
		b.stopped = true
	}
}

func (b *StackBackend) label(prefix string) string {
	b.labels[prefix]++
	return fmt.Sprintf("%s%d", prefix, b.labels[prefix])
}

func (b *StackBackend) header() {
	services := []string{"System.Console"}
	if b.program.UsesRand {
		services = append(services, "System.Random")
	}
	b.emit(Instruction{
		Op:    OpClass,
		Name:  b.options.ClassName,
		Names: services,
	})
	for _, id := range b.program.Block.Variables {
		b.emit(Instruction{
			Op:   OpField,
			Name: MangleName(b.program.Name(id)),
		})
	}
}

func (b *StackBackend) method(proc *pl0ast.Procedure) {
	b.procedure = proc
	defer func() {
		b.procedure = nil
	}()

	proc.Locals = proc.Locals[:0]
	proc.Locals = append(proc.Locals, proc.Block.Variables...)

	b.emit(Instruction{
		Op:    OpMethod,
		Name:  MangleName(proc.Name),
		Value: b.options.MaxStack,
	})
	if len(proc.Locals) > 0 {
		names := make([]string, 0, len(proc.Locals))
		for _, id := range proc.Locals {
			names = append(names, MangleName(b.program.Name(id)))
		}
		b.emit(Instruction{
			Op:    OpLocals,
			Names: names,
		})
	}
	b.statement(proc.Block.Statement)
	b.emit(Instruction{Op: OpReturn})
	b.emit(Instruction{Op: OpEndMethod})
}

func (b *StackBackend) main() {
	b.emit(Instruction{
		Op:    OpMethod,
		Name:  "Main",
		Entry: true,
		Value: b.options.MaxStack,
	})
	b.statement(b.program.Block.Statement)
	b.emit(Instruction{Op: OpReturn})
	b.emit(Instruction{Op: OpEndMethod})
}

func (b *StackBackend) footer() {
	b.emit(Instruction{Op: OpConstructor})
	b.emit(Instruction{Op: OpEndClass})
}

func (b *StackBackend) statement(stmt pl0ast.Statement) {
	if stmt == nil || stmt.Skipped() {
		return
	}
	switch s := stmt.(type) {

	case *pl0ast.Empty:

	case *pl0ast.Assignment:
		b.expression(s.Expr)
		b.emit(b.variable(s.Target, OpStoreLocal, OpStoreGlobal))

	case *pl0ast.Call:
		b.emit(Instruction{
			Op:   OpCall,
			Name: MangleName(s.Name),
		})

	case *pl0ast.Read:
		if s.Prompt != "" {
			b.emit(Instruction{
				Op:   OpLoadString,
				Text: s.Prompt,
			})
			b.emit(Instruction{Op: OpWritePrompt})
		}
		b.emit(Instruction{Op: OpReadLine})
		b.emit(b.variable(s.Target, OpLoadLocalAddr, OpLoadGlobalAddr))
		b.emit(Instruction{Op: OpTryParse})
		b.emit(Instruction{Op: OpPop})

	case *pl0ast.Write:
		if s.HasMessage {
			b.emit(Instruction{
				Op:   OpLoadString,
				Text: s.Message,
			})
			b.emit(Instruction{Op: OpWriteString})
			return
		}
		b.expression(s.Expr)
		b.emit(Instruction{Op: OpWriteInt})

	case *pl0ast.Compound:
		for _, stmt := range s.Statements {
			b.statement(stmt)
		}

	case *pl0ast.If:
		end := b.label("endif")
		b.branchWhenFalse(s.Cond, end)
		b.statement(s.Body)
		b.emit(Instruction{Op: OpLabel, Label: end})

	case *pl0ast.While:
		start := b.label("startloop")
		end := b.label("endloop")
		b.emit(Instruction{Op: OpLabel, Label: start})
		b.branchWhenFalse(s.Cond, end)
		b.statement(s.Body)
		b.emit(Instruction{Op: OpBranch, Label: start})
		b.emit(Instruction{Op: OpLabel, Label: end})

	case *pl0ast.DoWhile:
		start := b.label("startloop")
		b.emit(Instruction{Op: OpLabel, Label: start})
		b.statement(s.Body)
		b.branchWhenTrue(s.Cond, start)

	default:
		panic(pl0ast.Invariantf("unknown statement type: %T", stmt))
	}
}

// variable selects the local or global form of an access.
func (b *StackBackend) variable(id pl0ast.IdentityID, local, global Op) Instruction {
	name := MangleName(b.program.Name(id))
	if b.procedure != nil {
		for slot, l := range b.procedure.Locals {
			if l == id {
				return Instruction{
					Op:    local,
					Name:  name,
					Value: int32(slot),
				}
			}
		}
	}
	return Instruction{
		Op:   global,
		Name: name,
	}
}

var branchWhenTrueOps = map[pl0ast.CompareOp]Op{
	pl0ast.Equal:          OpBeq,
	pl0ast.NotEqual:       OpBne,
	pl0ast.GreaterThan:    OpBgt,
	pl0ast.LessThan:       OpBlt,
	pl0ast.GreaterOrEqual: OpBge,
	pl0ast.LessOrEqual:    OpBle,
}

var branchWhenFalseOps = map[pl0ast.CompareOp]Op{
	pl0ast.Equal:          OpBne,
	pl0ast.NotEqual:       OpBeq,
	pl0ast.GreaterThan:    OpBle,
	pl0ast.LessThan:       OpBge,
	pl0ast.GreaterOrEqual: OpBlt,
	pl0ast.LessOrEqual:    OpBgt,
}

func (b *StackBackend) branchWhenTrue(cond pl0ast.Condition, label string) {
	switch c := cond.(type) {
	case pl0ast.True:
		b.emit(Instruction{Op: OpBranch, Label: label})
	case pl0ast.False:
	case *pl0ast.Odd:
		b.odd(c)
		b.emit(Instruction{Op: OpBranchTrue, Label: label})
	case *pl0ast.Compare:
		b.compare(c, branchWhenTrueOps, label)
	default:
		panic(pl0ast.Invariantf("unknown condition type: %T", cond))
	}
}

func (b *StackBackend) branchWhenFalse(cond pl0ast.Condition, label string) {
	switch c := cond.(type) {
	case pl0ast.True:
	case pl0ast.False:
		b.emit(Instruction{Op: OpBranch, Label: label})
	case *pl0ast.Odd:
		b.odd(c)
		b.emit(Instruction{Op: OpBranchFalse, Label: label})
	case *pl0ast.Compare:
		b.compare(c, branchWhenFalseOps, label)
	default:
		panic(pl0ast.Invariantf("unknown condition type: %T", cond))
	}
}

func (b *StackBackend) odd(c *pl0ast.Odd) {
	b.expression(c.Expr)
	b.loadConstant(1)
	b.emit(Instruction{Op: OpAnd})
}

func (b *StackBackend) compare(c *pl0ast.Compare, ops map[pl0ast.CompareOp]Op, label string) {
	op, ok := ops[c.Op]
	if !ok {
		panic(pl0ast.Invariantf("unhandled comparison kind: %v", c.Op))
	}
	b.expression(c.Left)
	b.expression(c.Right)
	b.emit(Instruction{Op: op, Label: label})
}

func (b *StackBackend) expression(expr pl0ast.Expression) {
	switch e := expr.(type) {

	case *pl0ast.Rand:
		b.emit(Instruction{Op: OpNewRandom})
		b.expression(e.Low)
		b.expression(e.High)
		b.emit(Instruction{Op: OpRandNext})

	case *pl0ast.Sum:
		if len(e.Terms) == 0 {
			panic(pl0ast.Invariantf("empty expression"))
		}
		for i, st := range e.Terms {
			if i == 0 {
				if v, ok := st.Term.ConstantValue(); ok && v == 1 && st.Negative {
					b.emit(Instruction{
						Op:       OpLoadConst,
						Value:    -1,
						Encoding: EncodingMinusOne,
					})
					continue
				}
				b.term(st.Term)
				if st.Negative {
					b.emit(Instruction{Op: OpNeg})
				}
				continue
			}
			b.term(st.Term)
			if st.Negative {
				b.emit(Instruction{Op: OpSub})
			} else {
				b.emit(Instruction{Op: OpAdd})
			}
		}

	default:
		panic(pl0ast.Invariantf("unknown expression type: %T", expr))
	}
}

func (b *StackBackend) term(t *pl0ast.Term) {
	if len(t.Factors) == 0 {
		panic(pl0ast.Invariantf("empty term"))
	}
	for i, tf := range t.Factors {
		b.factor(tf.Factor)
		if i == 0 {
			continue
		}
		if tf.Divide {
			b.emit(Instruction{Op: OpDiv})
		} else {
			b.emit(Instruction{Op: OpMul})
		}
	}
}

func (b *StackBackend) factor(factor pl0ast.Factor) {
	switch f := factor.(type) {
	case *pl0ast.Literal:
		b.loadConstant(f.Value)
	case *pl0ast.Ref:
		identity := b.program.Identity(f.ID)
		if identity.IsConstant() {
			b.loadConstant(identity.Value)
			return
		}
		b.emit(b.variable(f.ID, OpLoadLocal, OpLoadGlobal))
	case *pl0ast.Paren:
		b.expression(f.Expr)
	default:
		panic(pl0ast.Invariantf("unknown factor type: %T", factor))
	}
}

func (b *StackBackend) loadConstant(value int32) {
	b.emit(Instruction{
		Op:       OpLoadConst,
		Value:    value,
		Encoding: EncodingFor(value),
	})
}

var reservedNames = map[string]bool{
	"ret":  true,
	"add":  true,
	"sub":  true,
	"mul":  true,
	"div":  true,
	"rem":  true,
	"Main": true,
}

// MangleName prefixes identifiers that collide with assembler mnemonics or
// the generated entry point.
func MangleName(name string) string {
	if reservedNames[name] {
		return "__" + name
	}
	return name
}
