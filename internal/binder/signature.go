package binder

import (
	"regexp"
	"strings"
)

var punctSpacing = regexp.MustCompile(`\s*([,<>])\s*`)

// NormalizeType canonicalizes a C++ parameter type spelling so that
// compiler-dependent spellings compare equal: whitespace is collapsed,
// qualifier order is fixed (`T const&`, `const T &` and `const T&` all
// normalize identically), and the ref/pointer category is appended last.
func NormalizeType(t string) string {
	// Split pointer/reference punctuation off the words around it.
	spaced := strings.NewReplacer("&", " & ", "*", " * ").Replace(t)

	isConst := false
	var suffix strings.Builder
	var base []string
	for _, w := range strings.Fields(spaced) {
		switch w {
		case "const":
			isConst = true
		case "&", "*":
			suffix.WriteString(w)
		case "volatile":
			// cv noise; irrelevant to overload identity here
		default:
			base = append(base, w)
		}
	}

	out := punctSpacing.ReplaceAllString(strings.Join(base, " "), "$1")
	if isConst {
		out = "const " + out
	}
	return out + suffix.String()
}

// SplitSignature splits an explicit signature string into individual
// parameter type spellings at top-level commas; commas nested inside
// angle brackets stay within their type.
func SplitSignature(sig string) []string {
	sig = strings.TrimSpace(sig)
	if sig == "" {
		return nil
	}

	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(sig); i++ {
		switch sig[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(sig[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(sig[start:]))
	return parts
}

// SignatureMatches reports whether the declared parameter list matches
// an explicit signature, comparing normalized type spellings verbatim.
func SignatureMatches(declared []string, sig string) bool {
	want := SplitSignature(sig)
	if len(want) != len(declared) {
		return false
	}
	for i := range want {
		if NormalizeType(want[i]) != NormalizeType(declared[i]) {
			return false
		}
	}
	return true
}

// FormatSignature renders a parameter list for diagnostics.
func FormatSignature(params []string) string {
	return "(" + strings.Join(params, ", ") + ")"
}

var identSanitizer = regexp.MustCompile(`[^A-Za-z0-9]+`)

// SanitizeIdent turns a type argument spelling into a valid identifier
// fragment: `unsigned long` becomes unsigned_long, `std::string` becomes
// std_string.
func SanitizeIdent(typeArg string) string {
	s := identSanitizer.ReplaceAllString(strings.TrimSpace(typeArg), "_")
	return strings.Trim(s, "_")
}
