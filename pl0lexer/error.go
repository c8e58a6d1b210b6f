package pl0lexer

import (
	"fmt"
	"strings"
)

// LexError reports a character that cannot start any token.
type LexError struct {
	Char   rune
	Pos    Pos
	Source *Source
}

func (e *LexError) Error() string {
	msg := fmt.Sprintf("illegal character %q at line %d", e.Char, e.Pos.Line)
	if e.Source == nil {
		return msg
	}
	return msg + "\n" + Excerpt(e.Source, e.Pos)
}

// Excerpt returns the source line at pos with a caret under the column.
func Excerpt(source *Source, pos Pos) string {
	idx := pos.Line - 1
	if idx < 0 || idx >= len(source.Lines) {
		return ""
	}
	var sb strings.Builder
	line := source.Lines[idx]
	sb.WriteString(line)
	sb.WriteString("\n")
	for i, r := range []rune(line) {
		if i >= pos.Column-1 {
			break
		}
		if r == '\t' {
			sb.WriteString("\t")
		} else {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("^")
	return sb.String()
}
