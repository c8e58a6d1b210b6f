// Package pl0lexer turns PL/0 source text into a flat token stream.
package pl0lexer

import (
	"fmt"
	"strings"
)

type TokenKind uint8

const (
	TokenInvalid TokenKind = iota
	TokenKeyword
	TokenIdentifier
	TokenInteger
	TokenString
	TokenOperator
	TokenSeparator
	TokenParen
	TokenTerminator
	TokenComment
	TokenEndProgram
)

var tokenKindNames = [...]string{
	TokenInvalid:    "invalid",
	TokenKeyword:    "keyword",
	TokenIdentifier: "identifier",
	TokenInteger:    "integer",
	TokenString:     "string",
	TokenOperator:   "operator",
	TokenSeparator:  "separator",
	TokenParen:      "paren",
	TokenTerminator: "terminator",
	TokenComment:    "comment",
	TokenEndProgram: "end of program",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Kind TokenKind
	Text string
	Pos  Pos
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %s", t.Kind, t.Text, t.Pos)
}

var keywords = map[string]bool{
	"CONST":     true,
	"VAR":       true,
	"PROCEDURE": true,
	"BEGIN":     true,
	"END":       true,
	"IF":        true,
	"THEN":      true,
	"DO":        true,
	"WHILE":     true,
	"CALL":      true,
	"ODD":       true,
	"READ":      true,
	"WRITE":     true,
	"FOR":       true,
	"TO":        true,
	"STEP":      true,
	"RAND":      true,
}

// IsKeyword reports whether text names a keyword, ignoring case.
func IsKeyword(text string) bool {
	return keywords[strings.ToUpper(text)]
}

type Source struct {
	Name    string
	Content string
	Lines   []string
}

func NewSource(name string, content string) *Source {
	return &Source{
		Name:    name,
		Content: content,
		Lines:   strings.Split(content, "\n"),
	}
}
