package pl0opt

import (
	"github.com/reusee/plzero/pl0ast"
)

// statement returns the optimized replacement of stmt, recording the
// references, assignments, reads and calls that survive.
func (o *Optimizer) statement(stmt pl0ast.Statement) pl0ast.Statement {
	if stmt.Skipped() {
		return &pl0ast.Empty{}
	}

	switch s := stmt.(type) {

	case *pl0ast.Empty:
		return s

	case *pl0ast.Assignment:
		s.Expr = o.expression(s.Expr)
		o.program.Identity(s.Target).AddAssignment(s)
		return s

	case *pl0ast.Read:
		o.program.Identity(s.Target).ReadCount++
		return s

	case *pl0ast.Write:
		if !s.HasMessage {
			s.Expr = o.expression(s.Expr)
		}
		return s

	case *pl0ast.Call:
		return o.call(s)

	case *pl0ast.Compound:
		return o.compound(s, false)

	case *pl0ast.If:
		s.Cond = o.condition(s.Cond)
		switch s.Cond.(type) {
		case pl0ast.True:
			return o.statement(s.Body)
		case pl0ast.False:
			return &pl0ast.Empty{}
		}
		s.Body = o.statement(s.Body)
		if _, ok := s.Body.(*pl0ast.Empty); ok && !conditionHasRand(s.Cond) {
			o.uncountCondition(s.Cond)
			return s.Body
		}
		return s

	case *pl0ast.While:
		s.Cond = o.condition(s.Cond)
		if _, ok := s.Cond.(pl0ast.False); ok {
			return &pl0ast.Empty{}
		}
		loop := &pl0ast.DoWhile{
			Body: o.statement(s.Body),
			Cond: s.Cond,
		}
		if _, ok := s.Cond.(pl0ast.True); ok {
			return loop
		}
		// the guard and the loop test are separate nodes
		loop.Cond = o.condition(pl0ast.CloneCondition(s.Cond))
		return &pl0ast.If{
			Cond: s.Cond,
			Body: loop,
		}

	case *pl0ast.DoWhile:
		s.Body = o.statement(s.Body)
		s.Cond = o.condition(s.Cond)
		if _, ok := s.Cond.(pl0ast.False); ok {
			return s.Body
		}
		return s

	}

	panic(pl0ast.Invariantf("unknown statement type: %T", stmt))
}

func (o *Optimizer) call(call *pl0ast.Call) pl0ast.Statement {
	proc := o.program.Procedure(call.Name)
	if proc == nil {
		panic(pl0ast.Invariantf("call to unknown procedure %s", call.Name))
	}
	if proc != o.procedure && proc.IsLeaf() {
		return o.statement(pl0ast.CloneStatement(proc.Block.Statement))
	}
	proc.CallCount++
	if proc == o.procedure {
		o.selfCalls[proc]++
	}
	return call
}

func (o *Optimizer) compound(c *pl0ast.Compound, seed bool) pl0ast.Statement {
	stmts := flatten(c.Statements)
	for i, stmt := range stmts {
		stmts[i] = o.statement(stmt)
	}
	stmts = flatten(stmts)
	stmts = o.propagate(stmts, seed)
	stmts = flatten(stmts)

	switch len(stmts) {
	case 0:
		return &pl0ast.Empty{}
	case 1:
		return stmts[0]
	}
	c.Statements = stmts
	return c
}

// flatten splices nested compounds into one list, dropping empty and
// tombstoned statements.
func flatten(stmts []pl0ast.Statement) []pl0ast.Statement {
	ret := make([]pl0ast.Statement, 0, len(stmts))
	for _, stmt := range stmts {
		if stmt.Skipped() {
			continue
		}
		switch s := stmt.(type) {
		case *pl0ast.Empty:
		case *pl0ast.Compound:
			ret = append(ret, flatten(s.Statements)...)
		default:
			ret = append(ret, stmt)
		}
	}
	return ret
}

// tailCall turns
//
//	IF c THEN BEGIN s; CALL self END
//
// into
//
//	IF c THEN DO BEGIN s; <locals> := 0 END WHILE c
//
// Locals are reset because every recursive activation started with fresh ones.
func (o *Optimizer) tailCall(proc *pl0ast.Procedure) {
	guard, ok := proc.Block.Statement.(*pl0ast.If)
	if !ok {
		return
	}
	body, ok := guard.Body.(*pl0ast.Compound)
	if !ok || len(body.Statements) == 0 {
		return
	}
	last, ok := body.Statements[len(body.Statements)-1].(*pl0ast.Call)
	if !ok || last.Name != proc.Name {
		return
	}

	body.Statements = body.Statements[:len(body.Statements)-1]
	proc.CallCount--
	o.selfCalls[proc]--
	for _, id := range proc.Block.Variables {
		body.Statements = append(body.Statements, o.statement(&pl0ast.Assignment{
			Target: id,
			Expr:   pl0ast.NewConstantExpression(0),
		}))
	}

	guard.Body = &pl0ast.DoWhile{
		Body: body,
		Cond: o.condition(pl0ast.CloneCondition(guard.Cond)),
	}
	o.logger.Debug("tail call", "procedure", proc.Name)
}
