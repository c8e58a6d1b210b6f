package pl0ast

type Expression interface {
	expressionNode()
}

// Sum is a non-empty list of signed terms evaluated left to right.
//
//	-a * 2 + b / c
//	^^^^^^   ^^^^^  two SignedTerms
type Sum struct {
	Terms []*SignedTerm
}

func (*Sum) expressionNode() {}

type SignedTerm struct {
	Negative bool
	Term     *Term
}

//	RAND low high
type Rand struct {
	Low  Expression
	High Expression
}

func (*Rand) expressionNode() {}

// Term is a non-empty list of factors; the first factor is always multiplied.
type Term struct {
	Factors []*TermFactor
}

type TermFactor struct {
	Divide bool
	Factor Factor
}

type Factor interface {
	factorNode()
}

type Literal struct {
	Value int32
}

func (*Literal) factorNode() {}

// Ref reads a named constant or variable.
type Ref struct {
	ID IdentityID
}

func (*Ref) factorNode() {}

//	( expr )
type Paren struct {
	Expr Expression
}

func (*Paren) factorNode() {}

// NewFactorExpression wraps a single factor into a one-term sum.
func NewFactorExpression(factor Factor, negative bool) *Sum {
	return &Sum{
		Terms: []*SignedTerm{
			{
				Negative: negative,
				Term:     NewFactorTerm(factor),
			},
		},
	}
}

func NewFactorTerm(factor Factor) *Term {
	return &Term{
		Factors: []*TermFactor{
			{Factor: factor},
		},
	}
}

// NewConstantExpression builds the canonical single-literal form of value.
func NewConstantExpression(value int32) *Sum {
	if value < 0 {
		return NewFactorExpression(&Literal{Value: -value}, true)
	}
	return NewFactorExpression(&Literal{Value: value}, false)
}

func NewRefExpression(id IdentityID) *Sum {
	return NewFactorExpression(&Ref{ID: id}, false)
}

// SingleFactor returns the only factor of a single-factor term.
func (t *Term) SingleFactor() (Factor, bool) {
	if len(t.Factors) != 1 {
		return nil, false
	}
	return t.Factors[0].Factor, true
}

// ConstantValue reports whether the term is a single literal.
func (t *Term) ConstantValue() (int32, bool) {
	factor, ok := t.SingleFactor()
	if !ok {
		return 0, false
	}
	lit, ok := factor.(*Literal)
	if !ok {
		return 0, false
	}
	return lit.Value, true
}

// ConstantValue reports whether expr is a single term reducing to a single
// literal, returning the signed value.
func ConstantValue(expr Expression) (int32, bool) {
	sum, ok := expr.(*Sum)
	if !ok || len(sum.Terms) != 1 {
		return 0, false
	}
	v, ok := sum.Terms[0].Term.ConstantValue()
	if !ok {
		return 0, false
	}
	if sum.Terms[0].Negative {
		return -v, true
	}
	return v, true
}

// SingleRef reports whether expr is one bare, positive identifier reference.
func SingleRef(expr Expression) (IdentityID, bool) {
	sum, ok := expr.(*Sum)
	if !ok || len(sum.Terms) != 1 || sum.Terms[0].Negative {
		return 0, false
	}
	factor, ok := sum.Terms[0].Term.SingleFactor()
	if !ok {
		return 0, false
	}
	ref, ok := factor.(*Ref)
	if !ok {
		return 0, false
	}
	return ref.ID, true
}

// IsSingleTerm reports whether the expression never needs surrounding
// parentheses when rendered.
func IsSingleTerm(expr Expression) bool {
	sum, ok := expr.(*Sum)
	return ok && len(sum.Terms) == 1
}
