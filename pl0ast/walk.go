package pl0ast

import "fmt"

// Visitor receives nodes during a walk. Nil fields are skipped.
type Visitor struct {
	Statement func(Statement)
	Ref       func(*Ref)
}

// WalkStatement visits stmt and everything beneath it. Tombstoned
// statements and their children are not visited.
func WalkStatement(stmt Statement, v Visitor) {
	if stmt == nil || stmt.Skipped() {
		return
	}
	if v.Statement != nil {
		v.Statement(stmt)
	}
	switch s := stmt.(type) {
	case *Empty, *Call, *Read:
	case *Assignment:
		WalkExpression(s.Expr, v)
	case *Write:
		if !s.HasMessage {
			WalkExpression(s.Expr, v)
		}
	case *Compound:
		for _, child := range s.Statements {
			WalkStatement(child, v)
		}
	case *If:
		WalkCondition(s.Cond, v)
		WalkStatement(s.Body, v)
	case *While:
		WalkCondition(s.Cond, v)
		WalkStatement(s.Body, v)
	case *DoWhile:
		WalkStatement(s.Body, v)
		WalkCondition(s.Cond, v)
	default:
		panic(fmt.Errorf("unknown statement type: %T", stmt))
	}
}

func WalkCondition(cond Condition, v Visitor) {
	switch c := cond.(type) {
	case True, False:
	case *Odd:
		WalkExpression(c.Expr, v)
	case *Compare:
		WalkExpression(c.Left, v)
		WalkExpression(c.Right, v)
	default:
		panic(fmt.Errorf("unknown condition type: %T", cond))
	}
}

func WalkExpression(expr Expression, v Visitor) {
	switch e := expr.(type) {
	case *Sum:
		for _, t := range e.Terms {
			for _, f := range t.Term.Factors {
				walkFactor(f.Factor, v)
			}
		}
	case *Rand:
		WalkExpression(e.Low, v)
		WalkExpression(e.High, v)
	default:
		panic(fmt.Errorf("unknown expression type: %T", expr))
	}
}

func walkFactor(factor Factor, v Visitor) {
	switch f := factor.(type) {
	case *Literal:
	case *Ref:
		if v.Ref != nil {
			v.Ref(f)
		}
	case *Paren:
		WalkExpression(f.Expr, v)
	default:
		panic(fmt.Errorf("unknown factor type: %T", factor))
	}
}

// CountRefs returns the number of reachable references per identity.
func CountRefs(p *Program) map[IdentityID]int {
	counts := make(map[IdentityID]int)
	visitor := Visitor{
		Ref: func(r *Ref) {
			counts[r.ID]++
		},
	}
	for _, proc := range p.Block.Procedures {
		WalkStatement(proc.Block.Statement, visitor)
	}
	WalkStatement(p.Block.Statement, visitor)
	return counts
}

// References reports whether any reachable part of stmt reads id.
func References(stmt Statement, id IdentityID) (found bool) {
	WalkStatement(stmt, Visitor{
		Ref: func(r *Ref) {
			if r.ID == id {
				found = true
			}
		},
	})
	return
}

// ExpressionRefs returns the set of identities read by expr.
func ExpressionRefs(expr Expression) map[IdentityID]bool {
	ret := make(map[IdentityID]bool)
	WalkExpression(expr, Visitor{
		Ref: func(r *Ref) {
			ret[r.ID] = true
		},
	})
	return ret
}
