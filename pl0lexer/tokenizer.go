package pl0lexer

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

type Tokenizer struct {
	input  *bufio.Reader
	source *Source

	currPos Pos
	prevPos Pos
	done    bool
}

func NewTokenizer(source *Source) *Tokenizer {
	return &Tokenizer{
		input:  bufio.NewReader(strings.NewReader(source.Content)),
		source: source,
		currPos: Pos{
			Line:   1,
			Column: 1,
		},
	}
}

// Tokenize reads the whole source. Comment tokens are included; the
// stream always ends with a TokenEndProgram.
func Tokenize(source *Source) ([]Token, error) {
	t := NewTokenizer(source)
	var ret []Token
	for {
		token, err := t.Next()
		if err != nil {
			return nil, err
		}
		ret = append(ret, token)
		if token.Kind == TokenEndProgram {
			return ret, nil
		}
	}
}

func (t *Tokenizer) readRune() (rune, error) {
	r, _, err := t.input.ReadRune()
	if err != nil {
		return 0, err
	}
	t.prevPos = t.currPos
	if r == '\n' {
		t.currPos.Line++
		t.currPos.Column = 1
	} else {
		t.currPos.Column++
	}
	return r, nil
}

func (t *Tokenizer) unreadRune() {
	t.input.UnreadRune()
	t.currPos = t.prevPos
}

// accept reports whether the next rune is want, consuming it if so.
func (t *Tokenizer) accept(want rune) bool {
	r, err := t.readRune()
	if err != nil {
		return false
	}
	if r != want {
		t.unreadRune()
		return false
	}
	return true
}

// Next returns the next token. After the end of the program, or at the end
// of input, it keeps returning TokenEndProgram.
func (t *Tokenizer) Next() (Token, error) {
	if t.done {
		return Token{Kind: TokenEndProgram, Text: ".", Pos: t.currPos}, nil
	}
	t.skipWhitespace()
	startPos := t.currPos

	r, err := t.readRune()
	if errors.Is(err, io.EOF) {
		t.done = true
		return Token{Kind: TokenEndProgram, Pos: startPos}, nil
	}
	if err != nil {
		return Token{}, err
	}

	switch {

	case r == '.':
		t.done = true
		return t.token(TokenEndProgram, ".", startPos), nil

	case r == ';':
		return t.token(TokenTerminator, ";", startPos), nil

	case r == ',':
		return t.token(TokenSeparator, ",", startPos), nil

	case r == '(' || r == ')':
		return t.token(TokenParen, string(r), startPos), nil

	case r == '{':
		return t.token(TokenKeyword, "BEGIN", startPos), nil
	case r == '}':
		return t.token(TokenKeyword, "END", startPos), nil
	case r == '!':
		return t.token(TokenKeyword, "WRITE", startPos), nil
	case r == '?':
		return t.token(TokenKeyword, "READ", startPos), nil

	case r == '"':
		return t.parseString(startPos)

	case r == '/':
		if t.accept('/') {
			return t.lineComment(startPos), nil
		}
		if t.accept('*') {
			return t.blockComment(startPos), nil
		}
		return t.token(TokenOperator, "/", startPos), nil

	case r == ':':
		if t.accept('=') {
			return t.token(TokenOperator, ":=", startPos), nil
		}
		return Token{}, t.illegal(r, startPos)

	case r == '<' || r == '>':
		if t.accept('=') {
			return t.token(TokenOperator, string(r)+"=", startPos), nil
		}
		return t.token(TokenOperator, string(r), startPos), nil

	case r == '=' || r == '#' || r == '+' || r == '-' || r == '*':
		return t.token(TokenOperator, string(r), startPos), nil

	case isDigit(r):
		t.unreadRune()
		return t.parseWhile(TokenInteger, isDigit), nil

	case unicode.IsLetter(r) || r == '_':
		t.unreadRune()
		token := t.parseWhile(TokenIdentifier, isIdentifierRune)
		if IsKeyword(token.Text) {
			token.Kind = TokenKeyword
			token.Text = strings.ToUpper(token.Text)
		}
		return token, nil

	}

	return Token{}, t.illegal(r, startPos)
}

func (t *Tokenizer) token(kind TokenKind, text string, pos Pos) Token {
	return Token{
		Kind: kind,
		Text: text,
		Pos:  pos,
	}
}

func (t *Tokenizer) illegal(r rune, pos Pos) error {
	return &LexError{
		Char:   r,
		Pos:    pos,
		Source: t.source,
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (t *Tokenizer) skipWhitespace() {
	for {
		r, err := t.readRune()
		if err != nil {
			return
		}
		if !unicode.IsSpace(r) {
			t.unreadRune()
			return
		}
	}
}

func (t *Tokenizer) parseWhile(kind TokenKind, pred func(rune) bool) Token {
	startPos := t.currPos
	var sb strings.Builder
	for {
		r, err := t.readRune()
		if err != nil {
			break
		}
		if !pred(r) {
			t.unreadRune()
			break
		}
		sb.WriteRune(r)
	}
	return t.token(kind, sb.String(), startPos)
}

func (t *Tokenizer) lineComment(startPos Pos) Token {
	var sb strings.Builder
	for {
		r, err := t.readRune()
		if err != nil || r == '\n' {
			break
		}
		sb.WriteRune(r)
	}
	return t.token(TokenComment, sb.String(), startPos)
}

// blockComment consumes a /* */ comment. Comments nest.
func (t *Tokenizer) blockComment(startPos Pos) Token {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		r, err := t.readRune()
		if err != nil {
			break
		}
		switch {
		case r == '/' && t.accept('*'):
			depth++
			sb.WriteString("/*")
		case r == '*' && t.accept('/'):
			depth--
			if depth > 0 {
				sb.WriteString("*/")
			}
		default:
			sb.WriteRune(r)
		}
	}
	return t.token(TokenComment, sb.String(), startPos)
}

func (t *Tokenizer) parseString(startPos Pos) (Token, error) {
	var sb strings.Builder
	for {
		r, err := t.readRune()
		if err != nil {
			return Token{}, t.illegal('"', startPos)
		}
		switch r {
		case '"':
			return t.token(TokenString, sb.String(), startPos), nil
		case '\\':
			if t.accept('"') {
				sb.WriteRune('"')
				continue
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
}
