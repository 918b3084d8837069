package types

// TokenKind classifies a lexical token produced by the scanner
type TokenKind string

const (
	TokenIdent   TokenKind = "ident"
	TokenKeyword TokenKind = "keyword"
	TokenPunct   TokenKind = "punct"
	TokenLiteral TokenKind = "literal"
	TokenEOF     TokenKind = "eof"
)

// Position represents a location in source text
type Position struct {
	Line   int
	Column int
}

// Token is one lexical unit of C++ source. Tokens are immutable once
// produced; the scanner returns a fresh slice on every run.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int // byte offset into the source
	Line   int
	Column int
	Depth  int // brace depth at the start of the token
}

// IsValue reports whether the token carries the given literal text.
func (t Token) IsValue(text string) bool {
	return t.Text == text
}

// IsKeyword reports whether the token is the given keyword.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == TokenKeyword && t.Text == kw
}
