package pl0opt

import (
	"github.com/reusee/plzero/pl0ast"
)

func (o *Optimizer) condition(cond pl0ast.Condition) pl0ast.Condition {
	switch c := cond.(type) {

	case pl0ast.True, pl0ast.False:
		return c

	case *pl0ast.Odd:
		c.Expr = o.expression(c.Expr)
		if v, ok := pl0ast.ConstantValue(c.Expr); ok {
			return pl0ast.BoolCondition(v&1 != 0)
		}
		return c

	case *pl0ast.Compare:
		c.Left = o.expression(c.Left)
		c.Right = o.expression(c.Right)
		left, ok := pl0ast.ConstantValue(c.Left)
		if !ok {
			return c
		}
		right, ok := pl0ast.ConstantValue(c.Right)
		if !ok {
			return c
		}
		return pl0ast.BoolCondition(c.Op.Eval(left, right))

	}
	panic(pl0ast.Invariantf("unknown condition type: %T", cond))
}

func (o *Optimizer) expression(expr pl0ast.Expression) pl0ast.Expression {
	switch e := expr.(type) {

	case *pl0ast.Rand:
		e.Low = o.expression(e.Low)
		e.High = o.expression(e.High)
		return e

	case *pl0ast.Sum:
		if len(e.Terms) == 0 {
			panic(pl0ast.Invariantf("empty expression"))
		}
		if v, ok := pl0ast.ConstantValue(e); ok {
			return pl0ast.NewConstantExpression(v)
		}

		terms := make([]*pl0ast.SignedTerm, 0, len(e.Terms))
		var total int32
		for _, st := range e.Terms {
			st.Term = o.term(st.Term)
			flipDoubleNegative(st)
			if v, ok := st.Term.ConstantValue(); ok {
				if st.Negative {
					total -= v
				} else {
					total += v
				}
				continue
			}
			terms = append(terms, st)
		}

		if total != 0 {
			terms = append(terms, pl0ast.NewConstantExpression(total).Terms[0])
		}
		if len(terms) == 0 {
			return pl0ast.NewConstantExpression(0)
		}
		if len(terms) == 1 && !terms[0].Negative {
			// (expr) as a whole expression
			if factor, ok := terms[0].Term.SingleFactor(); ok {
				if paren, ok := factor.(*pl0ast.Paren); ok {
					return paren.Expr
				}
			}
		}
		e.Terms = terms
		return e

	}
	panic(pl0ast.Invariantf("unknown expression type: %T", expr))
}

// flipDoubleNegative rewrites -(-x) to x and +(-x) to -x.
func flipDoubleNegative(st *pl0ast.SignedTerm) {
	factor, ok := st.Term.SingleFactor()
	if !ok {
		return
	}
	paren, ok := factor.(*pl0ast.Paren)
	if !ok {
		return
	}
	inner, ok := paren.Expr.(*pl0ast.Sum)
	if !ok || len(inner.Terms) != 1 || !inner.Terms[0].Negative {
		return
	}
	inner.Terms[0].Negative = false
	st.Negative = !st.Negative
	st.Term.Factors[0].Factor = simplifyParen(paren)
}

func (o *Optimizer) term(t *pl0ast.Term) *pl0ast.Term {
	if len(t.Factors) == 0 {
		panic(pl0ast.Invariantf("empty term"))
	}
	for _, tf := range t.Factors {
		tf.Factor = o.factor(tf.Factor)
	}
	if len(t.Factors) == 1 {
		return t
	}

	// all literals: evaluate in source order
	if v, ok := evalLiteralTerm(t); ok {
		return pl0ast.NewFactorTerm(&pl0ast.Literal{Value: v})
	}

	mult := int32(1)
	div := int32(1)
	kept := make([]*pl0ast.TermFactor, 0, len(t.Factors))
	for _, tf := range t.Factors {
		lit, ok := tf.Factor.(*pl0ast.Literal)
		if !ok {
			kept = append(kept, tf)
			continue
		}
		if tf.Divide {
			div *= lit.Value
		} else {
			mult *= lit.Value
		}
	}
	if len(kept) == len(t.Factors) {
		return t
	}
	if div == 0 {
		// never fold a constant zero divisor
		return t
	}

	leadingDivide := kept[0].Divide
	var constants []*pl0ast.TermFactor
	if mult%div == 0 {
		if v := mult / div; v != 1 || leadingDivide {
			constants = append(constants, &pl0ast.TermFactor{
				Factor: &pl0ast.Literal{Value: v},
			})
		}
	} else {
		if mult != 1 || leadingDivide {
			constants = append(constants, &pl0ast.TermFactor{
				Factor: &pl0ast.Literal{Value: mult},
			})
		}
		if div != 1 {
			constants = append(constants, &pl0ast.TermFactor{
				Divide: true,
				Factor: &pl0ast.Literal{Value: div},
			})
		}
	}

	if leadingDivide {
		// the first factor of a term is always multiplied
		t.Factors = append(constants[:1:1], append(kept, constants[1:]...)...)
	} else {
		t.Factors = append(kept, constants...)
	}
	return t
}

// evalLiteralTerm evaluates a term made only of literals left to right.
func evalLiteralTerm(t *pl0ast.Term) (int32, bool) {
	var acc int32
	for i, tf := range t.Factors {
		lit, ok := tf.Factor.(*pl0ast.Literal)
		if !ok {
			return 0, false
		}
		switch {
		case i == 0:
			acc = lit.Value
		case tf.Divide:
			if lit.Value == 0 {
				return 0, false
			}
			acc /= lit.Value
		default:
			acc *= lit.Value
		}
	}
	return acc, true
}

func (o *Optimizer) factor(factor pl0ast.Factor) pl0ast.Factor {
	switch f := factor.(type) {

	case *pl0ast.Literal:
		return f

	case *pl0ast.Ref:
		identity := o.program.Identity(f.ID)
		if identity.IsConstant() {
			return &pl0ast.Literal{
				Value: identity.Value,
			}
		}
		identity.ReferenceCount++
		return f

	case *pl0ast.Paren:
		f.Expr = o.expression(f.Expr)
		return simplifyParen(f)

	}
	panic(pl0ast.Invariantf("unknown factor type: %T", factor))
}

// simplifyParen drops parentheses around a constant or a single positive
// factor.
func simplifyParen(paren *pl0ast.Paren) pl0ast.Factor {
	if v, ok := pl0ast.ConstantValue(paren.Expr); ok {
		return &pl0ast.Literal{
			Value: v,
		}
	}
	sum, ok := paren.Expr.(*pl0ast.Sum)
	if !ok || len(sum.Terms) != 1 || sum.Terms[0].Negative {
		return paren
	}
	if factor, ok := sum.Terms[0].Term.SingleFactor(); ok {
		return factor
	}
	return paren
}

func containsRand(expr pl0ast.Expression) (found bool) {
	var walk func(pl0ast.Expression)
	walk = func(expr pl0ast.Expression) {
		switch e := expr.(type) {
		case *pl0ast.Rand:
			found = true
		case *pl0ast.Sum:
			for _, st := range e.Terms {
				for _, tf := range st.Term.Factors {
					if paren, ok := tf.Factor.(*pl0ast.Paren); ok {
						walk(paren.Expr)
					}
				}
			}
		}
	}
	walk(expr)
	return
}

func conditionHasRand(cond pl0ast.Condition) bool {
	switch c := cond.(type) {
	case *pl0ast.Odd:
		return containsRand(c.Expr)
	case *pl0ast.Compare:
		return containsRand(c.Left) || containsRand(c.Right)
	}
	return false
}
