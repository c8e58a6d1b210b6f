package pl0opt

import (
	"slices"

	"github.com/reusee/plzero/pl0ast"
)

// owner pairs a block with the procedure it belongs to, nil for main.
type owner struct {
	block     *pl0ast.Block
	procedure *pl0ast.Procedure
}

func (o *Optimizer) owners() []owner {
	ret := []owner{
		{block: o.program.Block},
	}
	for _, proc := range o.program.Block.Procedures {
		ret = append(ret, owner{
			block:     proc.Block,
			procedure: proc,
		})
	}
	return ret
}

// inlineSingleUse substitutes the expression of a variable's only
// assignment into its only read, when the read sits in a later statement of
// the same list and nothing between them can change the operands.
func (o *Optimizer) inlineSingleUse() (changed bool) {
	visitor := pl0ast.Visitor{
		Statement: func(stmt pl0ast.Statement) {
			if c, ok := stmt.(*pl0ast.Compound); ok {
				if o.inlineInList(c.Statements) {
					changed = true
				}
			}
		},
	}
	for _, owner := range o.owners() {
		pl0ast.WalkStatement(owner.block.Statement, visitor)
	}
	return
}

func (o *Optimizer) inlineInList(stmts []pl0ast.Statement) (changed bool) {
	for i, stmt := range stmts {
		assignment, ok := stmt.(*pl0ast.Assignment)
		if !ok || assignment.Skipped() {
			continue
		}
		identity := o.program.Identity(assignment.Target)
		if identity.ReferenceCount != 1 ||
			identity.ReadCount != 0 ||
			len(identity.Assignments) != 1 ||
			identity.Assignments[0] != assignment ||
			containsRand(assignment.Expr) {
			continue
		}
		operands := pl0ast.ExpressionRefs(assignment.Expr)

		for _, next := range stmts[i+1:] {
			if next.Skipped() {
				continue
			}
			if replaceImmediateRef(next, assignment.Target, assignment.Expr) {
				o.logger.Debug("inlined", "variable", identity.Name)
				identity.ReferenceCount--
				identity.RemoveAssignment(assignment)
				assignment.Expr = pl0ast.NewConstantExpression(0)
				assignment.Tombstone()
				changed = true
				break
			}
			if pl0ast.References(next, assignment.Target) ||
				next.CallsProcedure() ||
				writesAny(next, operands) {
				break
			}
		}
	}
	return
}

// replaceImmediateRef replaces a reference to id evaluated directly by stmt,
// not by any nested statement.
func replaceImmediateRef(stmt pl0ast.Statement, id pl0ast.IdentityID, expr pl0ast.Expression) bool {
	switch s := stmt.(type) {
	case *pl0ast.Assignment:
		return replaceRef(s.Expr, id, expr)
	case *pl0ast.Write:
		return !s.HasMessage && replaceRef(s.Expr, id, expr)
	case *pl0ast.If:
		switch c := s.Cond.(type) {
		case *pl0ast.Odd:
			return replaceRef(c.Expr, id, expr)
		case *pl0ast.Compare:
			return replaceRef(c.Left, id, expr) || replaceRef(c.Right, id, expr)
		}
	}
	return false
}

func replaceRef(in pl0ast.Expression, id pl0ast.IdentityID, expr pl0ast.Expression) bool {
	switch e := in.(type) {
	case *pl0ast.Rand:
		return replaceRef(e.Low, id, expr) || replaceRef(e.High, id, expr)
	case *pl0ast.Sum:
		for _, st := range e.Terms {
			for _, tf := range st.Term.Factors {
				switch f := tf.Factor.(type) {
				case *pl0ast.Ref:
					if f.ID == id {
						tf.Factor = &pl0ast.Paren{
							Expr: expr,
						}
						return true
					}
				case *pl0ast.Paren:
					if replaceRef(f.Expr, id, expr) {
						return true
					}
				}
			}
		}
	}
	return false
}

func writesAny(stmt pl0ast.Statement, ids map[pl0ast.IdentityID]bool) (found bool) {
	pl0ast.WalkStatement(stmt, pl0ast.Visitor{
		Statement: func(stmt pl0ast.Statement) {
			switch s := stmt.(type) {
			case *pl0ast.Assignment:
				if ids[s.Target] {
					found = true
				}
			case *pl0ast.Read:
				if ids[s.Target] {
					found = true
				}
			}
		},
	})
	return
}

// reduceVariables promotes variables with a single known value to
// constants and drops variables nothing reads, until neither applies.
func (o *Optimizer) reduceVariables() (changed bool) {
	for {
		progress := false
		for _, owner := range o.owners() {
			for _, id := range slices.Clone(owner.block.Variables) {
				identity := o.program.Identity(id)

				if value, ok := o.promotable(identity, owner.block); ok {
					for _, assignment := range slices.Clone(identity.Assignments) {
						o.uncountStatement(assignment)
						assignment.Tombstone()
					}
					identity.Kind = pl0ast.IdentityConstant
					identity.Value = value
					owner.block.RemoveVariable(id)
					owner.block.Constants = append(owner.block.Constants, id)
					o.logger.Debug("promoted",
						"variable", identity.Name,
						"value", value,
					)
					progress = true
					continue
				}

				if identity.ReferenceCount == 0 && identity.ReadCount == 0 {
					for _, assignment := range slices.Clone(identity.Assignments) {
						o.uncountStatement(assignment)
						assignment.Tombstone()
					}
					owner.block.RemoveVariable(id)
					o.logger.Debug("removed variable", "variable", identity.Name)
					progress = true
				}
			}
		}
		if !progress {
			return
		}
		changed = true
	}
}

// promotable reports the value a variable provably holds at every read.
func (o *Optimizer) promotable(identity *pl0ast.Identity, block *pl0ast.Block) (int32, bool) {
	if identity.ReadCount != 0 {
		return 0, false
	}

	switch len(identity.Assignments) {

	case 0:
		// never written, always holds its initial zero
		return 0, identity.ReferenceCount > 0

	case 1:
		assignment := identity.Assignments[0]
		value, ok := pl0ast.ConstantValue(assignment.Expr)
		if !ok {
			return 0, false
		}
		for _, stmt := range topLevel(block.Statement) {
			if stmt == pl0ast.Statement(assignment) {
				return value, true
			}
			if stmt.Skipped() {
				continue
			}
			if stmt.CallsProcedure() || pl0ast.References(stmt, identity.ID) {
				return 0, false
			}
		}

	}
	return 0, false
}

func topLevel(stmt pl0ast.Statement) []pl0ast.Statement {
	if c, ok := stmt.(*pl0ast.Compound); ok {
		return c.Statements
	}
	return []pl0ast.Statement{stmt}
}
