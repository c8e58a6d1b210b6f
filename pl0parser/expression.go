package pl0parser

import (
	"github.com/reusee/plzero/pl0ast"
	"github.com/reusee/plzero/pl0lexer"
)

func (p *parser) parseCondition() (pl0ast.Condition, error) {
	if p.is("ODD") {
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &pl0ast.Odd{
			Expr: expr,
		}, nil
	}

	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.current.Kind != pl0lexer.TokenOperator {
		return nil, p.errorf("expected comparison")
	}
	op, ok := pl0ast.CompareOpFromText(p.current.Text)
	if !ok {
		return nil, p.errorf("expected comparison")
	}
	p.advance()
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &pl0ast.Compare{
		Left:  left,
		Op:    op,
		Right: right,
	}, nil
}

func (p *parser) parseExpression() (pl0ast.Expression, error) {
	if p.is("RAND") {
		p.advance()
		p.program.UsesRand = true
		low, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		high, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &pl0ast.Rand{
			Low:  low,
			High: high,
		}, nil
	}

	sum := new(pl0ast.Sum)
	negative := false
	if p.is("-") {
		negative = true
		p.advance()
	} else if p.is("+") {
		p.advance()
	}
	for {
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		sum.Terms = append(sum.Terms, &pl0ast.SignedTerm{
			Negative: negative,
			Term:     term,
		})
		if p.is("+") {
			negative = false
		} else if p.is("-") {
			negative = true
		} else {
			break
		}
		p.advance()
	}
	return sum, nil
}

func (p *parser) parseTerm() (*pl0ast.Term, error) {
	term := new(pl0ast.Term)
	divide := false
	for {
		factor, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		term.Factors = append(term.Factors, &pl0ast.TermFactor{
			Divide: divide,
			Factor: factor,
		})
		if p.is("*") {
			divide = false
		} else if p.is("/") {
			divide = true
		} else {
			break
		}
		p.advance()
	}
	return term, nil
}

func (p *parser) parseFactor() (pl0ast.Factor, error) {
	switch p.current.Kind {

	case pl0lexer.TokenInteger:
		value, err := p.parseInteger(false)
		if err != nil {
			return nil, err
		}
		return &pl0ast.Literal{
			Value: value,
		}, nil

	case pl0lexer.TokenIdentifier:
		identity, err := p.lookup(p.current)
		if err != nil {
			return nil, err
		}
		p.advance()
		return &pl0ast.Ref{
			ID: identity.ID,
		}, nil

	case pl0lexer.TokenParen:
		if err := p.expect("("); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return &pl0ast.Paren{
			Expr: expr,
		}, nil

	}

	return nil, p.errorf("expected factor")
}
