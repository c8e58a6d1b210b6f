package pl0ast

import "fmt"

// CloneStatement deep-copies a statement. Tombstones are preserved.
func CloneStatement(stmt Statement) Statement {
	var ret Statement
	switch s := stmt.(type) {
	case *Empty:
		ret = &Empty{}
	case *Assignment:
		ret = &Assignment{
			Target: s.Target,
			Expr:   CloneExpression(s.Expr),
		}
	case *Call:
		ret = &Call{
			Name: s.Name,
			Line: s.Line,
		}
	case *Read:
		ret = &Read{
			Prompt: s.Prompt,
			Target: s.Target,
		}
	case *Write:
		w := &Write{
			Message:    s.Message,
			HasMessage: s.HasMessage,
		}
		if s.Expr != nil {
			w.Expr = CloneExpression(s.Expr)
		}
		ret = w
	case *Compound:
		c := &Compound{
			Statements: make([]Statement, 0, len(s.Statements)),
		}
		for _, child := range s.Statements {
			c.Statements = append(c.Statements, CloneStatement(child))
		}
		ret = c
	case *If:
		ret = &If{
			Cond: CloneCondition(s.Cond),
			Body: CloneStatement(s.Body),
		}
	case *While:
		ret = &While{
			Cond: CloneCondition(s.Cond),
			Body: CloneStatement(s.Body),
		}
	case *DoWhile:
		ret = &DoWhile{
			Body: CloneStatement(s.Body),
			Cond: CloneCondition(s.Cond),
		}
	default:
		panic(fmt.Errorf("unknown statement type: %T", stmt))
	}
	if stmt.Skipped() {
		ret.Tombstone()
	}
	return ret
}

func CloneCondition(cond Condition) Condition {
	switch c := cond.(type) {
	case True, False:
		return c
	case *Odd:
		return &Odd{
			Expr: CloneExpression(c.Expr),
		}
	case *Compare:
		return &Compare{
			Left:  CloneExpression(c.Left),
			Op:    c.Op,
			Right: CloneExpression(c.Right),
		}
	}
	panic(fmt.Errorf("unknown condition type: %T", cond))
}

func CloneExpression(expr Expression) Expression {
	switch e := expr.(type) {
	case *Sum:
		sum := &Sum{
			Terms: make([]*SignedTerm, 0, len(e.Terms)),
		}
		for _, t := range e.Terms {
			sum.Terms = append(sum.Terms, &SignedTerm{
				Negative: t.Negative,
				Term:     CloneTerm(t.Term),
			})
		}
		return sum
	case *Rand:
		return &Rand{
			Low:  CloneExpression(e.Low),
			High: CloneExpression(e.High),
		}
	}
	panic(fmt.Errorf("unknown expression type: %T", expr))
}

func CloneTerm(term *Term) *Term {
	ret := &Term{
		Factors: make([]*TermFactor, 0, len(term.Factors)),
	}
	for _, f := range term.Factors {
		ret.Factors = append(ret.Factors, &TermFactor{
			Divide: f.Divide,
			Factor: CloneFactor(f.Factor),
		})
	}
	return ret
}

func CloneFactor(factor Factor) Factor {
	switch f := factor.(type) {
	case *Literal:
		return &Literal{Value: f.Value}
	case *Ref:
		return &Ref{ID: f.ID}
	case *Paren:
		return &Paren{Expr: CloneExpression(f.Expr)}
	}
	panic(fmt.Errorf("unknown factor type: %T", factor))
}
