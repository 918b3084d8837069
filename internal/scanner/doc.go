// Package scanner tokenizes C++ source text into a flat token stream.
//
// The scanner tracks a running brace-depth counter on every token so that
// downstream extraction can restrict itself to the designated namespace
// block without re-reading the source. Matching brace pairs report the
// same depth value. Line and block comments, preprocessor lines, and the
// contents of string and character literals are skipped entirely and
// never affect brace counting.
//
// Malformed lexical content (an unterminated string or block comment at
// end of file) is reported as a ScanError but does not discard tokens
// produced before the failure point.
package scanner
