package types

import (
	"fmt"
	"strings"
)

// ScanError reports malformed lexical content such as an unterminated
// string or block comment. Tokens produced before the failure point are
// still returned alongside it.
type ScanError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s:%d:%d: scan error: %s", e.File, e.Line, e.Column, e.Message)
}

// ExtractionWarning records a skipped malformed declaration. Warnings are
// collected per file and never abort extraction.
type ExtractionWarning struct {
	File    string
	Line    int
	Message string
}

func (w *ExtractionWarning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
}

// DescriptorSyntaxError reports a malformed binding descriptor directive.
// Fatal for the module owning the descriptor, not for sibling modules.
type DescriptorSyntaxError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *DescriptorSyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: descriptor syntax error: %s", e.File, e.Line, e.Column, e.Message)
}

// BindErrorKind classifies binder failures
type BindErrorKind string

const (
	BindNotFound          BindErrorKind = "symbol not found"
	BindAmbiguousOverload BindErrorKind = "ambiguous overload"
	BindSignatureNotFound BindErrorKind = "signature not found"
	BindUnsupported       BindErrorKind = "unsupported declaration"
)

// BindError reports an unresolved or ambiguous export directive. For
// ambiguous overloads every candidate signature is named so the author
// can write an explicit signature.
type BindError struct {
	Kind       BindErrorKind
	Module     string
	Symbol     string
	Candidates []string
}

func (e *BindError) Error() string {
	msg := fmt.Sprintf("module %s: %s: %s", e.Module, e.Kind, e.Symbol)
	if len(e.Candidates) > 0 {
		msg += " (candidates: " + strings.Join(e.Candidates, "; ") + ")"
	}
	return msg
}

// DependencyCycleError is fatal for the entire build. Cycle holds the
// full module path, first node repeated at the end.
type DependencyCycleError struct {
	Cycle []string
}

func (e *DependencyCycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Cycle, " -> ")
}

// BuildFailure reports a failed external compilation step. Fatal for the
// module and its dependents only.
type BuildFailure struct {
	Module string
	Output string
	Err    error
}

func (e *BuildFailure) Error() string {
	return fmt.Sprintf("module %s: compilation failed: %v", e.Module, e.Err)
}

func (e *BuildFailure) Unwrap() error {
	return e.Err
}
