package extractor

import (
	"strings"

	"github.com/dshills/cppbind/pkg/types"
)

// typeText renders a token run as readable C++ type text: identifiers
// separated by spaces, no space around scope and pointer/reference
// punctuation.
func typeText(toks []types.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && needSpace(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func needSpace(prev, cur types.Token) bool {
	switch cur.Text {
	case "&", "*", "::", "<", ">", ",", ")", "(":
		return false
	}
	switch prev.Text {
	case "::", "<", "(":
		return false
	}
	return true
}

// paramType extracts the type spelling from one parameter token group:
// default values are dropped and a trailing parameter name is stripped.
func paramType(group []types.Token) string {
	// Cut a default value: everything from `=` on.
	for i, t := range group {
		if t.IsValue("=") {
			group = group[:i]
			break
		}
	}
	if len(group) == 0 {
		return ""
	}
	// `void` parameter lists declare no parameters.
	if len(group) == 1 && group[0].IsKeyword("void") {
		return ""
	}
	// Strip the parameter name: a trailing identifier not preceded by
	// a scope operator (so `std::string` survives but `int n` loses n).
	last := group[len(group)-1]
	if len(group) >= 2 && last.Kind == types.TokenIdent && !group[len(group)-2].IsValue("::") {
		group = group[:len(group)-1]
	}
	return typeText(group)
}

// splitFieldHead splits a field declaration head into declared names and
// the shared type text. Handles grouped declarations like `float x, y`.
func splitFieldHead(head []types.Token) (names []string, fieldType string) {
	// Names are trailing identifiers separated by commas; everything
	// before the first name is the type.
	i := len(head) - 1
	expectName := true
	for i >= 0 {
		t := head[i]
		if expectName {
			if t.Kind != types.TokenIdent {
				return nil, ""
			}
			names = append([]string{t.Text}, names...)
			expectName = false
			i--
			continue
		}
		if t.IsValue(",") {
			expectName = true
			i--
			continue
		}
		break
	}
	if i < 0 {
		return nil, ""
	}
	// A name preceded by `::` is part of a qualified type, not a field.
	if head[i].IsValue("::") {
		return nil, ""
	}
	return names, typeText(head[:i+1])
}
