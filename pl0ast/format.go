package pl0ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders the program as PL/0 source. Tombstoned statements are
// omitted, so the output of an optimized program is itself compilable.
func Format(p *Program) string {
	f := &formatter{
		program: p,
	}
	f.block(p.Block)
	f.sb.WriteString(".\n")
	return f.sb.String()
}

// FormatStatement renders a single statement on one line.
func FormatStatement(p *Program, stmt Statement) string {
	f := &formatter{
		program: p,
		inline:  true,
	}
	f.statement(stmt)
	return f.sb.String()
}

func FormatExpression(p *Program, expr Expression) string {
	f := &formatter{
		program: p,
	}
	f.expression(expr)
	return f.sb.String()
}

func FormatCondition(p *Program, cond Condition) string {
	f := &formatter{
		program: p,
	}
	f.condition(cond)
	return f.sb.String()
}

type formatter struct {
	program *Program
	sb      strings.Builder
	depth   int
	inline  bool
}

func (f *formatter) newline() {
	if f.inline {
		f.sb.WriteString(" ")
		return
	}
	f.sb.WriteString("\n")
	f.sb.WriteString(strings.Repeat("  ", f.depth))
}

func (f *formatter) block(b *Block) {
	if len(b.Constants) > 0 {
		f.sb.WriteString("CONST ")
		for i, id := range b.Constants {
			if i > 0 {
				f.sb.WriteString(", ")
			}
			identity := f.program.Identity(id)
			fmt.Fprintf(&f.sb, "%s = %d", identity.Name, identity.Value)
		}
		f.sb.WriteString(";")
		f.newline()
	}
	if len(b.Variables) > 0 {
		f.sb.WriteString("VAR ")
		for i, id := range b.Variables {
			if i > 0 {
				f.sb.WriteString(", ")
			}
			f.sb.WriteString(f.program.Name(id))
		}
		f.sb.WriteString(";")
		f.newline()
	}
	for _, proc := range b.Procedures {
		f.sb.WriteString("PROCEDURE ")
		f.sb.WriteString(proc.Name)
		f.sb.WriteString(";")
		f.depth++
		f.newline()
		f.block(proc.Block)
		f.depth--
		f.sb.WriteString(";")
		f.newline()
	}
	f.statement(b.Statement)
}

func liveStatements(stmts []Statement) []Statement {
	var ret []Statement
	for _, s := range stmts {
		if s.Skipped() {
			continue
		}
		if _, ok := s.(*Empty); ok {
			continue
		}
		ret = append(ret, s)
	}
	return ret
}

func (f *formatter) statement(stmt Statement) {
	if stmt == nil || stmt.Skipped() {
		f.sb.WriteString("BEGIN END")
		return
	}
	switch s := stmt.(type) {

	case *Empty:
		f.sb.WriteString("BEGIN END")

	case *Assignment:
		f.sb.WriteString(f.program.Name(s.Target))
		f.sb.WriteString(" := ")
		f.expression(s.Expr)

	case *Call:
		f.sb.WriteString("CALL ")
		f.sb.WriteString(s.Name)

	case *Read:
		f.sb.WriteString("READ ")
		if s.Prompt != "" {
			f.sb.WriteString(quote(s.Prompt))
			f.sb.WriteString(" ")
		}
		f.sb.WriteString(f.program.Name(s.Target))

	case *Write:
		f.sb.WriteString("WRITE ")
		if s.HasMessage {
			f.sb.WriteString(quote(s.Message))
		} else {
			f.expression(s.Expr)
		}

	case *Compound:
		stmts := liveStatements(s.Statements)
		f.sb.WriteString("BEGIN")
		f.depth++
		for i, child := range stmts {
			f.newline()
			f.statement(child)
			if i < len(stmts)-1 {
				f.sb.WriteString(";")
			}
		}
		f.depth--
		f.newline()
		f.sb.WriteString("END")

	case *If:
		f.sb.WriteString("IF ")
		f.condition(s.Cond)
		f.sb.WriteString(" THEN ")
		f.statement(s.Body)

	case *While:
		f.sb.WriteString("WHILE ")
		f.condition(s.Cond)
		f.sb.WriteString(" DO ")
		f.statement(s.Body)

	case *DoWhile:
		f.sb.WriteString("DO ")
		f.statement(s.Body)
		f.sb.WriteString(" WHILE ")
		f.condition(s.Cond)

	default:
		panic(fmt.Errorf("unknown statement type: %T", stmt))
	}
}

func (f *formatter) condition(cond Condition) {
	switch c := cond.(type) {
	case True:
		f.sb.WriteString("0 = 0")
	case False:
		f.sb.WriteString("0 # 0")
	case *Odd:
		f.sb.WriteString("ODD ")
		f.expression(c.Expr)
	case *Compare:
		f.expression(c.Left)
		f.sb.WriteString(" ")
		f.sb.WriteString(c.Op.String())
		f.sb.WriteString(" ")
		f.expression(c.Right)
	default:
		panic(fmt.Errorf("unknown condition type: %T", cond))
	}
}

func (f *formatter) expression(expr Expression) {
	switch e := expr.(type) {
	case *Sum:
		for i, t := range e.Terms {
			switch {
			case i == 0 && t.Negative:
				f.sb.WriteString("-")
			case i > 0 && t.Negative:
				f.sb.WriteString(" - ")
			case i > 0:
				f.sb.WriteString(" + ")
			}
			f.term(t.Term)
		}
	case *Rand:
		f.sb.WriteString("RAND ")
		f.randBound(e.Low)
		f.sb.WriteString(" ")
		f.randBound(e.High)
	default:
		panic(fmt.Errorf("unknown expression type: %T", expr))
	}
}

func (f *formatter) randBound(expr Expression) {
	if sum, ok := expr.(*Sum); ok && len(sum.Terms) == 1 && !sum.Terms[0].Negative {
		f.expression(expr)
		return
	}
	f.sb.WriteString("(")
	f.expression(expr)
	f.sb.WriteString(")")
}

func (f *formatter) term(t *Term) {
	for i, tf := range t.Factors {
		if i > 0 {
			if tf.Divide {
				f.sb.WriteString(" / ")
			} else {
				f.sb.WriteString(" * ")
			}
		}
		f.factor(tf.Factor)
	}
}

func (f *formatter) factor(factor Factor) {
	switch fa := factor.(type) {
	case *Literal:
		if fa.Value < 0 {
			f.sb.WriteString("(-")
			f.sb.WriteString(strconv.FormatInt(-int64(fa.Value), 10))
			f.sb.WriteString(")")
			return
		}
		f.sb.WriteString(strconv.FormatInt(int64(fa.Value), 10))
	case *Ref:
		f.sb.WriteString(f.program.Name(fa.ID))
	case *Paren:
		f.sb.WriteString("(")
		f.expression(fa.Expr)
		f.sb.WriteString(")")
	default:
		panic(fmt.Errorf("unknown factor type: %T", factor))
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
