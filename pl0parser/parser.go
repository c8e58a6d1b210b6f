// Package pl0parser builds a pl0ast.Program from a token stream.
package pl0parser

import (
	"strconv"

	"github.com/reusee/plzero/pl0ast"
	"github.com/reusee/plzero/pl0lexer"
)

type parser struct {
	source  pl0lexer.TokenSource
	end     *pl0lexer.Token
	err     error
	current pl0lexer.Token
	next    pl0lexer.Token

	program *pl0ast.Program
	scopes  []scope
	calls   []*pl0ast.Call
	depth   int
}

// scope maps the names declared by one block.
type scope map[string]pl0ast.IdentityID

// Parse parses a complete, already scanned program.
func Parse(tokens []pl0lexer.Token) (*pl0ast.Program, error) {
	return ParseSource(pl0lexer.NewSliceSource(tokens))
}

// ParseSource parses a complete program, pulling tokens from source as the
// two-token lookahead needs them. Comment tokens are ignored. A token source
// error wins over any syntax error it caused.
func ParseSource(source pl0lexer.TokenSource) (*pl0ast.Program, error) {
	p := &parser{
		source:  source,
		program: pl0ast.NewProgram(),
	}
	// current and next
	p.advance()
	p.advance()

	block, err := p.parseBlock()
	if p.err != nil {
		return nil, p.err
	}
	if err != nil {
		return nil, err
	}
	p.program.Block = block

	if p.current.Kind != pl0lexer.TokenEndProgram || p.current.Text != "." {
		return nil, p.errorf("expected '.'")
	}

	for _, call := range p.calls {
		if p.program.Procedure(call.Name) == nil {
			return nil, &UndeclaredIdentifierError{
				Name: call.Name,
				Line: call.Line,
			}
		}
	}

	return p.program, nil
}

func (p *parser) read() pl0lexer.Token {
	// the end token repeats once reached
	if p.end != nil {
		return *p.end
	}
	for {
		token, err := p.source.Next()
		if err != nil {
			p.err = err
			token = pl0lexer.Token{
				Kind: pl0lexer.TokenEndProgram,
				Pos:  p.next.Pos,
			}
		}
		if token.Kind == pl0lexer.TokenComment {
			continue
		}
		if token.Kind == pl0lexer.TokenEndProgram {
			p.end = &token
		}
		return token
	}
}

func (p *parser) advance() {
	p.current = p.next
	p.next = p.read()
}

func (p *parser) errorf(msg string) error {
	return &SyntaxError{
		Token:   p.current,
		Line:    p.current.Pos.Line,
		Message: msg,
	}
}

func (p *parser) is(text string) bool {
	switch p.current.Kind {
	case pl0lexer.TokenString, pl0lexer.TokenIdentifier, pl0lexer.TokenEndProgram:
		return false
	}
	return p.current.Text == text
}

func (p *parser) expect(text string) error {
	if !p.is(text) {
		return p.errorf("expected '" + text + "'")
	}
	p.advance()
	return nil
}

func (p *parser) expectTerminator() error {
	if p.current.Kind != pl0lexer.TokenTerminator {
		return p.errorf("expected ';'")
	}
	p.advance()
	return nil
}

func (p *parser) parseIdentifier() (pl0lexer.Token, error) {
	token := p.current
	if token.Kind != pl0lexer.TokenIdentifier {
		return token, p.errorf("expected identifier")
	}
	p.advance()
	return token, nil
}

// parseInteger parses an unsigned literal that fits in int32, or its
// negation when negative is set.
func (p *parser) parseInteger(negative bool) (int32, error) {
	if p.current.Kind != pl0lexer.TokenInteger {
		return 0, p.errorf("expected integer")
	}
	n, err := strconv.ParseInt(p.current.Text, 10, 64)
	if err != nil || n > 1<<31 || (n == 1<<31 && !negative) {
		return 0, p.errorf("integer out of range")
	}
	p.advance()
	if negative {
		return int32(-n), nil
	}
	return int32(n), nil
}

func (p *parser) declare(token pl0lexer.Token, kind pl0ast.IdentityKind, value int32) (pl0ast.IdentityID, error) {
	current := p.scopes[len(p.scopes)-1]
	if _, ok := current[token.Text]; ok {
		return 0, &SyntaxError{
			Token:   token,
			Line:    token.Pos.Line,
			Message: "duplicate declaration of " + token.Text,
		}
	}
	identity := p.program.Declare(token.Text, kind, value)
	current[token.Text] = identity.ID
	return identity.ID, nil
}

func (p *parser) lookup(token pl0lexer.Token) (*pl0ast.Identity, error) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if id, ok := p.scopes[i][token.Text]; ok {
			return p.program.Identity(id), nil
		}
	}
	return nil, &UndeclaredIdentifierError{
		Name: token.Text,
		Line: token.Pos.Line,
	}
}

// lookupVariable resolves the target of an assignment or READ.
func (p *parser) lookupVariable(token pl0lexer.Token) (pl0ast.IdentityID, error) {
	identity, err := p.lookup(token)
	if err != nil {
		return 0, err
	}
	if identity.IsConstant() {
		return 0, &SyntaxError{
			Token:   token,
			Line:    token.Pos.Line,
			Message: "cannot assign to constant " + token.Text,
		}
	}
	return identity.ID, nil
}

func (p *parser) parseBlock() (*pl0ast.Block, error) {
	block := new(pl0ast.Block)
	p.scopes = append(p.scopes, make(scope))
	defer func() {
		p.scopes = p.scopes[:len(p.scopes)-1]
	}()

	if p.is("CONST") {
		p.advance()
		for {
			name, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			if err := p.expect("="); err != nil {
				return nil, err
			}
			negative := false
			if p.is("-") {
				negative = true
				p.advance()
			}
			value, err := p.parseInteger(negative)
			if err != nil {
				return nil, err
			}
			id, err := p.declare(name, pl0ast.IdentityConstant, value)
			if err != nil {
				return nil, err
			}
			block.Constants = append(block.Constants, id)
			if !p.is(",") {
				break
			}
			p.advance()
		}
		if err := p.expectTerminator(); err != nil {
			return nil, err
		}
	}

	if p.is("VAR") {
		p.advance()
		for {
			name, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			id, err := p.declare(name, pl0ast.IdentityVariable, 0)
			if err != nil {
				return nil, err
			}
			block.Variables = append(block.Variables, id)
			if !p.is(",") {
				break
			}
			p.advance()
		}
		if err := p.expectTerminator(); err != nil {
			return nil, err
		}
	}

	for p.is("PROCEDURE") {
		if p.depth > 0 {
			return nil, p.errorf("nested procedure declaration")
		}
		p.advance()
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		for _, existing := range block.Procedures {
			if existing.Name == name.Text {
				return nil, &SyntaxError{
					Token:   name,
					Line:    name.Pos.Line,
					Message: "duplicate procedure " + name.Text,
				}
			}
		}
		if err := p.expectTerminator(); err != nil {
			return nil, err
		}
		p.depth++
		procBlock, err := p.parseBlock()
		p.depth--
		if err != nil {
			return nil, err
		}
		if err := p.expectTerminator(); err != nil {
			return nil, err
		}
		block.Procedures = append(block.Procedures, &pl0ast.Procedure{
			Name:  name.Text,
			Block: procBlock,
		})
	}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	block.Statement = stmt

	return block, nil
}
