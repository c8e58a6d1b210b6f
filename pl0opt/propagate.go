package pl0opt

import (
	"slices"

	"github.com/reusee/plzero/pl0ast"
)

// facts maps variables to the constant they are known to hold.
type facts map[pl0ast.IdentityID]int32

// propagate carries constant facts forward through one statement list,
// substituting them into WRITE expressions and IF conditions. Facts do not
// survive any statement that may change a variable other than its own
// target, so calls and loops clear them.
func (o *Optimizer) propagate(stmts []pl0ast.Statement, seed bool) []pl0ast.Statement {
	known := make(facts)
	if seed {
		for _, id := range o.program.Block.Variables {
			known[id] = 0
		}
	}

	ret := make([]pl0ast.Statement, 0, len(stmts))
	for i := 0; i < len(stmts); i++ {
		switch s := stmts[i].(type) {

		case *pl0ast.Empty:

		case *pl0ast.Assignment:
			if v, ok := pl0ast.ConstantValue(s.Expr); ok {
				known[s.Target] = v
			} else {
				delete(known, s.Target)
			}
			ret = append(ret, s)

		case *pl0ast.Read:
			delete(known, s.Target)
			ret = append(ret, s)

		case *pl0ast.Write:
			if !s.HasMessage {
				s.Expr = o.substituteExpression(s.Expr, known)
			}
			ret = append(ret, s)

		case *pl0ast.If:
			s.Cond = o.substituteCondition(s.Cond, known)
			switch s.Cond.(type) {
			case pl0ast.True:
				// continue with the body in place of the IF
				var body []pl0ast.Statement
				if compound, ok := s.Body.(*pl0ast.Compound); ok {
					body = compound.Statements
				} else {
					body = []pl0ast.Statement{s.Body}
				}
				stmts = slices.Concat(stmts[:i], body, stmts[i+1:])
				i--
				continue
			case pl0ast.False:
				o.uncountStatement(s.Body)
				continue
			}
			ret = append(ret, s)
			clear(known)

		default:
			ret = append(ret, s)
			clear(known)

		}
	}
	return ret
}

func (o *Optimizer) hasFact(expr pl0ast.Expression, known facts) bool {
	if len(known) == 0 {
		return false
	}
	for id := range pl0ast.ExpressionRefs(expr) {
		if _, ok := known[id]; ok {
			return true
		}
	}
	return false
}

// substituteExpression replaces references to known variables with their
// values and folds the result. Replaced references are uncounted.
func (o *Optimizer) substituteExpression(expr pl0ast.Expression, known facts) pl0ast.Expression {
	if !o.hasFact(expr, known) {
		return expr
	}
	o.uncountExpression(expr)
	replaceRefs(expr, known)
	return o.expression(expr)
}

func (o *Optimizer) substituteCondition(cond pl0ast.Condition, known facts) pl0ast.Condition {
	switch c := cond.(type) {
	case *pl0ast.Odd:
		if !o.hasFact(c.Expr, known) {
			return c
		}
	case *pl0ast.Compare:
		if !o.hasFact(c.Left, known) && !o.hasFact(c.Right, known) {
			return c
		}
	default:
		return cond
	}
	o.uncountCondition(cond)
	switch c := cond.(type) {
	case *pl0ast.Odd:
		replaceRefs(c.Expr, known)
	case *pl0ast.Compare:
		replaceRefs(c.Left, known)
		replaceRefs(c.Right, known)
	}
	return o.condition(cond)
}

// replaceRefs swaps known references for literals without touching counters.
func replaceRefs(expr pl0ast.Expression, known facts) {
	switch e := expr.(type) {
	case *pl0ast.Rand:
		replaceRefs(e.Low, known)
		replaceRefs(e.High, known)
	case *pl0ast.Sum:
		for _, st := range e.Terms {
			for _, tf := range st.Term.Factors {
				switch f := tf.Factor.(type) {
				case *pl0ast.Ref:
					if v, ok := known[f.ID]; ok {
						tf.Factor = &pl0ast.Literal{
							Value: v,
						}
					}
				case *pl0ast.Paren:
					replaceRefs(f.Expr, known)
				}
			}
		}
	}
}
