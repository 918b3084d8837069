package descriptor

type dtokenKind int

const (
	tokWord dtokenKind = iota
	tokPunct
	tokEOF
)

// dtoken is one descriptor token: a word (directive keyword, name, or
// type fragment) or structural punctuation.
type dtoken struct {
	kind dtokenKind
	text string
	line int
	col  int
}

func (t dtoken) isWord(w string) bool  { return t.kind == tokWord && t.text == w }
func (t dtoken) isPunct(p string) bool { return t.kind == tokPunct && t.text == p }

func isStructural(ch byte) bool {
	return ch == '(' || ch == ')' || ch == '{' || ch == '}' || ch == ','
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

// lex tokenizes descriptor text. Words are maximal runs of non-space,
// non-structural characters, so C++ type fragments like `Circle&` or
// `std::string` stay whole. `#` starts a comment to end of line.
func lex(path, text string) ([]dtoken, error) {
	var toks []dtoken
	line, col := 1, 1

	advance := func(i int) int {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		return i + 1
	}

	i := 0
	for i < len(text) {
		ch := text[i]
		switch {
		case isSpace(ch):
			i = advance(i)
		case ch == '#':
			for i < len(text) && text[i] != '\n' {
				i = advance(i)
			}
		case isStructural(ch):
			toks = append(toks, dtoken{kind: tokPunct, text: string(ch), line: line, col: col})
			i = advance(i)
		default:
			startLine, startCol, start := line, col, i
			for i < len(text) && !isSpace(text[i]) && !isStructural(text[i]) && text[i] != '#' {
				i = advance(i)
			}
			toks = append(toks, dtoken{kind: tokWord, text: text[start:i], line: startLine, col: startCol})
		}
	}

	toks = append(toks, dtoken{kind: tokEOF, line: line, col: col})
	return toks, nil
}
