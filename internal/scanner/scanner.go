package scanner

import (
	"unicode"

	"github.com/dshills/cppbind/pkg/types"
)

var keywords = map[string]bool{
	"class": true, "struct": true, "public": true, "private": true, "protected": true,
	"virtual": true, "const": true, "static": true, "inline": true, "explicit": true,
	"void": true, "int": true, "char": true, "float": true, "double": true,
	"bool": true, "long": true, "short": true, "unsigned": true, "signed": true,
	"return": true, "nullptr": true, "this": true, "operator": true,
	"template": true, "typename": true, "namespace": true, "using": true,
	"enum": true, "union": true, "friend": true, "typedef": true,
}

// Scanner tokenizes C++ source text, tracking brace depth so the
// extractor can restrict recognition to the designated namespace block.
// Literal and comment contents never affect the depth counters.
type Scanner struct {
	file  string
	input string

	pos    int
	line   int
	column int
	depth  int

	tokens []types.Token
	errs   []*types.ScanError
}

// New creates a scanner for one source file.
func New(file, input string) *Scanner {
	return &Scanner{file: file, input: input}
}

// Scan tokenizes the entire input. Scanning is a pure function of the
// source text: calling Scan again yields an identical token sequence.
// On malformed lexical content (unterminated string or block comment at
// end of file) the tokens produced before the failure point are returned
// together with the scan errors.
func (s *Scanner) Scan() ([]types.Token, []*types.ScanError) {
	s.pos, s.line, s.column, s.depth = 0, 1, 1, 0
	s.tokens = nil
	s.errs = nil

	for s.pos < len(s.input) {
		s.skipWhitespaceAndComments()
		if s.pos >= len(s.input) {
			break
		}

		ch := s.input[s.pos]

		if ch == ':' && s.peek() == ':' {
			s.emit(types.TokenPunct, "::")
			s.advance()
			s.advance()
			continue
		}

		switch {
		case ch == '"' || ch == '\'':
			s.readLiteral(ch)
		case ch == '#':
			s.skipPreprocessor()
		case unicode.IsLetter(rune(ch)) || ch == '_':
			s.readIdentifier()
		case unicode.IsDigit(rune(ch)):
			s.readNumber()
		case ch == '{':
			s.emitDepth(types.TokenPunct, "{", s.depth)
			s.depth++
			s.advance()
		case ch == '}':
			if s.depth > 0 {
				s.depth--
			}
			s.emitDepth(types.TokenPunct, "}", s.depth)
			s.advance()
		default:
			s.emit(types.TokenPunct, string(ch))
			s.advance()
		}
	}

	s.tokens = append(s.tokens, types.Token{
		Kind: types.TokenEOF, Offset: s.pos, Line: s.line, Column: s.column, Depth: s.depth,
	})
	return s.tokens, s.errs
}

// Depth returns the brace depth after the last Scan. A non-zero value
// means the scan is incomplete: some opening brace was never closed.
func (s *Scanner) Depth() int {
	return s.depth
}

func (s *Scanner) advance() {
	if s.pos < len(s.input) {
		if s.input[s.pos] == '\n' {
			s.line++
			s.column = 1
		} else {
			s.column++
		}
		s.pos++
	}
}

func (s *Scanner) peek() byte {
	if s.pos+1 < len(s.input) {
		return s.input[s.pos+1]
	}
	return 0
}

func (s *Scanner) skipWhitespaceAndComments() {
	for s.pos < len(s.input) {
		ch := s.input[s.pos]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peek() == '/':
			for s.pos < len(s.input) && s.input[s.pos] != '\n' {
				s.advance()
			}
		case ch == '/' && s.peek() == '*':
			startLine, startCol := s.line, s.column
			s.advance()
			s.advance()
			terminated := false
			for s.pos < len(s.input) {
				if s.input[s.pos] == '*' && s.peek() == '/' {
					s.advance()
					s.advance()
					terminated = true
					break
				}
				s.advance()
			}
			if !terminated {
				s.errs = append(s.errs, &types.ScanError{
					File: s.file, Line: startLine, Column: startCol,
					Message: "unterminated block comment",
				})
			}
		default:
			return
		}
	}
}

func (s *Scanner) skipPreprocessor() {
	for s.pos < len(s.input) && s.input[s.pos] != '\n' {
		if s.input[s.pos] == '\\' && s.peek() == '\n' {
			s.advance()
			s.advance()
			continue
		}
		s.advance()
	}
}

// readLiteral consumes a string or character literal. Braces and parens
// inside the literal are never counted. A literal still open at end of
// file is a scan error; the token is dropped but prior tokens survive.
func (s *Scanner) readLiteral(quote byte) {
	startLine, startCol, start := s.line, s.column, s.pos
	s.advance() // opening quote

	for s.pos < len(s.input) {
		ch := s.input[s.pos]
		if ch == '\\' {
			s.advance()
			s.advance()
			continue
		}
		if ch == quote {
			s.advance()
			s.emitAt(types.TokenLiteral, s.input[start:s.pos], start, startLine, startCol)
			return
		}
		if ch == '\n' {
			// Lenient: close the literal at the line break.
			s.emitAt(types.TokenLiteral, s.input[start:s.pos], start, startLine, startCol)
			return
		}
		s.advance()
	}

	s.errs = append(s.errs, &types.ScanError{
		File: s.file, Line: startLine, Column: startCol,
		Message: "unterminated string literal",
	})
}

func (s *Scanner) readIdentifier() {
	startLine, startCol, start := s.line, s.column, s.pos
	for s.pos < len(s.input) {
		ch := s.input[s.pos]
		if unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_' {
			s.advance()
		} else {
			break
		}
	}

	text := s.input[start:s.pos]
	kind := types.TokenIdent
	if keywords[text] {
		kind = types.TokenKeyword
	}
	s.emitAt(kind, text, start, startLine, startCol)
}

func (s *Scanner) readNumber() {
	startLine, startCol, start := s.line, s.column, s.pos
	for s.pos < len(s.input) {
		ch := s.input[s.pos]
		if unicode.IsDigit(rune(ch)) || ch == '.' || ch == 'x' || ch == 'X' ||
			(ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') ||
			ch == 'u' || ch == 'U' || ch == 'l' || ch == 'L' {
			s.advance()
		} else {
			break
		}
	}
	s.emitAt(types.TokenLiteral, s.input[start:s.pos], start, startLine, startCol)
}

func (s *Scanner) emit(kind types.TokenKind, text string) {
	s.emitDepth(kind, text, s.depth)
}

func (s *Scanner) emitDepth(kind types.TokenKind, text string, depth int) {
	s.tokens = append(s.tokens, types.Token{
		Kind: kind, Text: text, Offset: s.pos, Line: s.line, Column: s.column, Depth: depth,
	})
}

func (s *Scanner) emitAt(kind types.TokenKind, text string, offset, line, col int) {
	s.tokens = append(s.tokens, types.Token{
		Kind: kind, Text: text, Offset: offset, Line: line, Column: col, Depth: s.depth,
	})
}
