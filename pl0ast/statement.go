package pl0ast

type Statement interface {
	// CallsProcedure reports whether the statement transitively contains a CALL.
	CallsProcedure() bool
	Skipped() bool
	Tombstone()
	statementNode()
}

// skip is the tombstone shared by every statement kind.
type skip struct {
	skipped bool
}

func (s *skip) Skipped() bool {
	return s.skipped
}

func (s *skip) Tombstone() {
	s.skipped = true
}

type Empty struct {
	skip
}

var _ Statement = new(Empty)

func (*Empty) statementNode()       {}
func (*Empty) CallsProcedure() bool { return false }

//	x := 1 + y
type Assignment struct {
	skip
	Target IdentityID
	Expr   Expression
}

var _ Statement = new(Assignment)

func (*Assignment) statementNode()       {}
func (*Assignment) CallsProcedure() bool { return false }

//	CALL p
type Call struct {
	skip
	Name string
	Line int
}

var _ Statement = new(Call)

func (*Call) statementNode()       {}
func (*Call) CallsProcedure() bool { return true }

//	READ "prompt" x
type Read struct {
	skip
	Prompt string
	Target IdentityID
}

var _ Statement = new(Read)

func (*Read) statementNode()       {}
func (*Read) CallsProcedure() bool { return false }

// Write prints either Message (when HasMessage) or the value of Expr.
type Write struct {
	skip
	Message    string
	HasMessage bool
	Expr       Expression
}

var _ Statement = new(Write)

func (*Write) statementNode()       {}
func (*Write) CallsProcedure() bool { return false }

//	BEGIN s1; s2 END
type Compound struct {
	skip
	Statements []Statement
}

var _ Statement = new(Compound)

func (*Compound) statementNode() {}

func (c *Compound) CallsProcedure() bool {
	for _, s := range c.Statements {
		if s.CallsProcedure() {
			return true
		}
	}
	return false
}

type If struct {
	skip
	Cond Condition
	Body Statement
}

var _ Statement = new(If)

func (*If) statementNode() {}

func (i *If) CallsProcedure() bool {
	return i.Body.CallsProcedure()
}

type While struct {
	skip
	Cond Condition
	Body Statement
}

var _ Statement = new(While)

func (*While) statementNode() {}

func (w *While) CallsProcedure() bool {
	return w.Body.CallsProcedure()
}

// DoWhile runs Body at least once and repeats while Cond holds.
type DoWhile struct {
	skip
	Body Statement
	Cond Condition
}

var _ Statement = new(DoWhile)

func (*DoWhile) statementNode() {}

func (d *DoWhile) CallsProcedure() bool {
	return d.Body.CallsProcedure()
}
