// Package pl0opt rewrites a parsed program in place: constant folding and
// propagation, dead code and dead procedure removal, loop inversion,
// tail recursion to loops, leaf procedure inlining, single-use variable
// inlining and constant promotion.
package pl0opt

import (
	"log/slog"

	"github.com/reusee/plzero/logs"
	"github.com/reusee/plzero/pl0ast"
)

// Optimizer holds the state of one optimization run. It is not safe for
// concurrent use and must not be shared between programs.
type Optimizer struct {
	program *pl0ast.Program
	logger  logs.Logger

	// procedure being swept, nil for the main block
	procedure *pl0ast.Procedure
	selfCalls map[*pl0ast.Procedure]int
}

func New(program *pl0ast.Program, logger logs.Logger) *Optimizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Optimizer{
		program:   program,
		logger:    logger,
		selfCalls: make(map[*pl0ast.Procedure]int),
	}
}

// Optimize runs all passes until a round leaves the program unchanged.
// Afterwards every identity and procedure counter matches the tree.
func (o *Optimizer) Optimize() {
	o.resetCounts()
	o.sweep()
	o.removeDeadProcedures()
	rendered := pl0ast.Format(o.program)

	for round := 1; ; round++ {
		o.resetCounts()
		o.sweep()
		o.logger.Debug("sweep",
			"round", round,
			"procedures", len(o.program.Block.Procedures),
		)

		changed := false
		if o.removeDeadProcedures() {
			changed = true
		}
		if o.inlineSingleUse() {
			changed = true
		}
		if o.reduceVariables() {
			changed = true
		}
		if current := pl0ast.Format(o.program); current != rendered {
			rendered = current
			changed = true
		}
		if !changed {
			break
		}
	}
}

func (o *Optimizer) sweep() {
	clear(o.selfCalls)

	for _, proc := range o.program.Block.Procedures {
		o.procedure = proc
		proc.Block.Statement = o.statement(proc.Block.Statement)
		o.tailCall(proc)
	}
	o.procedure = nil

	// the main statement list is seeded with zero facts for globals
	o.program.Block.Statement = o.compound(&pl0ast.Compound{
		Statements: []pl0ast.Statement{
			o.program.Block.Statement,
		},
	}, true)
}

func (o *Optimizer) resetCounts() {
	for _, identity := range o.program.Identities {
		identity.ReferenceCount = 0
		identity.Assignments = nil
		identity.ReadCount = 0
	}
	for _, proc := range o.program.Block.Procedures {
		proc.CallCount = 0
	}
}

func (o *Optimizer) isDead(proc *pl0ast.Procedure) bool {
	return proc.CallCount-o.selfCalls[proc] <= 0
}

// removeDeadProcedures drops procedures that are only called by themselves
// or not at all, repeating while removals make callers dead.
func (o *Optimizer) removeDeadProcedures() (changed bool) {
	for {
		var dead []*pl0ast.Procedure
		for _, proc := range o.program.Block.Procedures {
			if o.isDead(proc) {
				dead = append(dead, proc)
			}
		}
		if len(dead) == 0 {
			return
		}
		for _, proc := range dead {
			o.program.Block.RemoveProcedure(proc)
			o.uncountStatement(proc.Block.Statement)
			o.logger.Debug("removed procedures", "name", proc.Name)
		}
		changed = true
	}
}

// uncountStatement reverts the counters contributed by a statement that is
// being dropped from the tree.
func (o *Optimizer) uncountStatement(stmt pl0ast.Statement) {
	pl0ast.WalkStatement(stmt, o.uncountVisitor())
}

func (o *Optimizer) uncountCondition(cond pl0ast.Condition) {
	pl0ast.WalkCondition(cond, o.uncountVisitor())
}

func (o *Optimizer) uncountExpression(expr pl0ast.Expression) {
	pl0ast.WalkExpression(expr, o.uncountVisitor())
}

func (o *Optimizer) uncountVisitor() pl0ast.Visitor {
	return pl0ast.Visitor{
		Statement: func(stmt pl0ast.Statement) {
			switch stmt := stmt.(type) {
			case *pl0ast.Assignment:
				o.program.Identity(stmt.Target).RemoveAssignment(stmt)
			case *pl0ast.Read:
				o.program.Identity(stmt.Target).ReadCount--
			case *pl0ast.Call:
				if proc := o.program.Procedure(stmt.Name); proc != nil {
					proc.CallCount--
					if proc == o.procedure {
						o.selfCalls[proc]--
					}
				}
			}
		},
		Ref: func(ref *pl0ast.Ref) {
			identity := o.program.Identity(ref.ID)
			if !identity.IsConstant() {
				identity.ReferenceCount--
			}
		},
	}
}
