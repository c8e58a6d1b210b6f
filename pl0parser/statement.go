package pl0parser

import (
	"github.com/reusee/plzero/pl0ast"
	"github.com/reusee/plzero/pl0lexer"
)

func (p *parser) parseStatement() (pl0ast.Statement, error) {
	if p.current.Kind == pl0lexer.TokenTerminator ||
		p.current.Kind == pl0lexer.TokenEndProgram ||
		p.is("END") {
		return &pl0ast.Empty{}, nil
	}

	if p.current.Kind == pl0lexer.TokenIdentifier {
		return p.parseAssignment()
	}

	switch p.current.Text {

	case "CALL":
		p.advance()
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		call := &pl0ast.Call{
			Name: name.Text,
			Line: name.Pos.Line,
		}
		p.calls = append(p.calls, call)
		return call, nil

	case "WRITE":
		p.advance()
		if p.current.Kind == pl0lexer.TokenString {
			msg := p.current.Text
			p.advance()
			return &pl0ast.Write{
				Message:    msg,
				HasMessage: true,
			}, nil
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &pl0ast.Write{
			Expr: expr,
		}, nil

	case "READ":
		p.advance()
		read := new(pl0ast.Read)
		if p.current.Kind == pl0lexer.TokenString {
			read.Prompt = p.current.Text
			p.advance()
		}
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		read.Target, err = p.lookupVariable(name)
		if err != nil {
			return nil, err
		}
		return read, nil

	case "BEGIN":
		p.advance()
		compound := new(pl0ast.Compound)
		for !p.is("END") {
			if p.current.Kind == pl0lexer.TokenEndProgram {
				return nil, p.errorf("expected 'END'")
			}
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			compound.Statements = append(compound.Statements, stmt)
			if !p.is("END") {
				if err := p.expectTerminator(); err != nil {
					return nil, err
				}
			}
		}
		p.advance()
		return compound, nil

	case "IF":
		p.advance()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if err := p.expect("THEN"); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &pl0ast.If{
			Cond: cond,
			Body: body,
		}, nil

	case "DO":
		p.advance()
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		var cond pl0ast.Condition = pl0ast.True{}
		if p.is("WHILE") {
			p.advance()
			cond, err = p.parseCondition()
			if err != nil {
				return nil, err
			}
		}
		return &pl0ast.DoWhile{
			Body: body,
			Cond: cond,
		}, nil

	case "WHILE":
		p.advance()
		if p.current.Kind == pl0lexer.TokenIdentifier && p.next.Text == ":=" {
			return p.parseFor()
		}
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if err := p.expect("DO"); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &pl0ast.While{
			Cond: cond,
			Body: body,
		}, nil

	}

	return nil, p.errorf("expected statement")
}

func (p *parser) parseAssignment() (pl0ast.Statement, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	target, err := p.lookupVariable(name)
	if err != nil {
		return nil, err
	}
	if err := p.expect(":="); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &pl0ast.Assignment{
		Target: target,
		Expr:   expr,
	}, nil
}

// parseFor desugars
//
//	WHILE i := start TO end [STEP step] DO body
//
// into
//
//	BEGIN i := start; WHILE i <= end DO BEGIN body; i := step + i END END
func (p *parser) parseFor() (pl0ast.Statement, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	target, err := p.lookupVariable(name)
	if err != nil {
		return nil, err
	}
	if err := p.expect(":="); err != nil {
		return nil, err
	}
	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect("TO"); err != nil {
		return nil, err
	}
	end, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	var step *pl0ast.Sum
	if p.is("STEP") {
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		switch expr := expr.(type) {
		case *pl0ast.Sum:
			step = expr
		default:
			step = pl0ast.NewFactorExpression(&pl0ast.Paren{Expr: expr}, false)
		}
	} else {
		step = pl0ast.NewConstantExpression(1)
	}
	step.Terms = append(step.Terms, &pl0ast.SignedTerm{
		Term: pl0ast.NewFactorTerm(&pl0ast.Ref{ID: target}),
	})

	if err := p.expect("DO"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	increment := &pl0ast.Assignment{
		Target: target,
		Expr:   step,
	}
	loopBody, ok := body.(*pl0ast.Compound)
	if ok {
		loopBody.Statements = append(loopBody.Statements, increment)
	} else {
		loopBody = &pl0ast.Compound{
			Statements: []pl0ast.Statement{body, increment},
		}
	}

	return &pl0ast.Compound{
		Statements: []pl0ast.Statement{
			&pl0ast.Assignment{
				Target: target,
				Expr:   start,
			},
			&pl0ast.While{
				Cond: &pl0ast.Compare{
					Left:  pl0ast.NewRefExpression(target),
					Op:    pl0ast.LessOrEqual,
					Right: end,
				},
				Body: loopBody,
			},
		},
	}, nil
}
