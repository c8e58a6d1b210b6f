package pl0ast

import "fmt"

type Condition interface {
	conditionNode()
}

type True struct{}

func (True) conditionNode() {}

type False struct{}

func (False) conditionNode() {}

//	ODD x
type Odd struct {
	Expr Expression
}

func (*Odd) conditionNode() {}

type CompareOp uint8

const (
	Equal CompareOp = iota + 1
	NotEqual
	LessThan
	LessOrEqual
	GreaterThan
	GreaterOrEqual
)

var compareOpText = map[CompareOp]string{
	Equal:          "=",
	NotEqual:       "#",
	LessThan:       "<",
	LessOrEqual:    "<=",
	GreaterThan:    ">",
	GreaterOrEqual: ">=",
}

func (c CompareOp) String() string {
	if s, ok := compareOpText[c]; ok {
		return s
	}
	return fmt.Sprintf("CompareOp(%d)", c)
}

// CompareOpFromText maps source operator text to a comparison kind.
func CompareOpFromText(text string) (CompareOp, bool) {
	for op, s := range compareOpText {
		if s == text {
			return op, true
		}
	}
	return 0, false
}

// Eval applies the comparison to two integers.
func (c CompareOp) Eval(a, b int32) bool {
	switch c {
	case Equal:
		return a == b
	case NotEqual:
		return a != b
	case LessThan:
		return a < b
	case LessOrEqual:
		return a <= b
	case GreaterThan:
		return a > b
	case GreaterOrEqual:
		return a >= b
	}
	panic(fmt.Errorf("unhandled comparison kind: %v", c))
}

type Compare struct {
	Left  Expression
	Op    CompareOp
	Right Expression
}

func (*Compare) conditionNode() {}

func BoolCondition(b bool) Condition {
	if b {
		return True{}
	}
	return False{}
}
