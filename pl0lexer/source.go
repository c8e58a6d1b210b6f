package pl0lexer

// TokenSource yields tokens one at a time. After the TokenEndProgram
// token, further calls may return anything.
type TokenSource interface {
	Next() (Token, error)
}

var _ TokenSource = new(Tokenizer)

// SliceSource replays already scanned tokens.
type SliceSource struct {
	tokens []Token
	idx    int
}

var _ TokenSource = new(SliceSource)

func NewSliceSource(tokens []Token) *SliceSource {
	return &SliceSource{
		tokens: tokens,
	}
}

func (s *SliceSource) Next() (Token, error) {
	if s.idx >= len(s.tokens) {
		var pos Pos
		if len(s.tokens) > 0 {
			pos = s.tokens[len(s.tokens)-1].Pos
		}
		return Token{
			Kind: TokenEndProgram,
			Pos:  pos,
		}, nil
	}
	token := s.tokens[s.idx]
	s.idx++
	return token, nil
}
