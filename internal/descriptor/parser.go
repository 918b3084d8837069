package descriptor

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/cppbind/pkg/types"
)

// Parser parses binding descriptor text into an ordered directive
// sequence. One parser instance may be reused across files.
type Parser struct{}

// New creates a descriptor parser.
func New() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a descriptor file.
func (p *Parser) ParseFile(path string) (*types.Descriptor, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(path, string(content))
}

// Parse parses descriptor text. Syntax failures return a
// *types.DescriptorSyntaxError carrying line and column; unknown
// directive keywords are collected as soft warnings and skipped to keep
// the format forward-compatible.
func (p *Parser) Parse(path, text string) (*types.Descriptor, error) {
	toks, err := lex(path, text)
	if err != nil {
		return nil, err
	}

	d := &types.Descriptor{Path: path, Text: text}
	s := &state{path: path, toks: toks, desc: d}

	for !s.atEnd() {
		if err := s.parseTopDirective(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

type state struct {
	path string
	toks []dtoken
	pos  int
	desc *types.Descriptor
}

func (s *state) parseTopDirective() error {
	t := s.cur()
	switch {
	case t.isWord("link"):
		return s.parseLink()
	case t.isWord("export"):
		return s.parseExportBlock()
	case t.isWord("dependency"):
		return s.parseDependency()
	case t.kind == tokWord:
		s.skipUnknown(t)
		return nil
	default:
		return s.errf(t, "unexpected %q at top level", t.text)
	}
}

// parseLink handles `link(<file>,...) <module_name>`.
func (s *state) parseLink() error {
	t := s.cur()
	s.advance()
	files, err := s.parseArgList("link")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return s.errf(t, "link directive requires at least one source file")
	}
	name := s.cur()
	if name.kind != tokWord {
		return s.errf(name, "link directive requires a module name")
	}
	s.advance()

	s.desc.Directives = append(s.desc.Directives, types.Directive{
		Kind:       types.DirectiveModuleLink,
		Line:       t.line,
		Files:      files,
		ModuleName: name.text,
	})
	return nil
}

// parseDependency handles `dependency(<module>,...)`.
func (s *state) parseDependency() error {
	t := s.cur()
	s.advance()
	mods, err := s.parseArgList("dependency")
	if err != nil {
		return err
	}
	if len(mods) == 0 {
		return s.errf(t, "dependency directive requires at least one module name")
	}
	s.desc.Directives = append(s.desc.Directives, types.Directive{
		Kind:      types.DirectiveDependency,
		Line:      t.line,
		DependsOn: mods,
	})
	return nil
}

// parseExportBlock handles `export { ... }` with nested class, func and
// template_func directives.
func (s *state) parseExportBlock() error {
	s.advance()
	if !s.cur().isPunct("{") {
		return s.errf(s.cur(), "export requires a braced block")
	}
	open := s.cur()
	s.advance()

	for {
		t := s.cur()
		switch {
		case t.kind == tokEOF:
			return s.errf(open, "unclosed export block")
		case t.isPunct("}"):
			s.advance()
			return nil
		case t.isWord("class"):
			if err := s.parseClassExport(); err != nil {
				return err
			}
		case t.isWord("func"):
			if err := s.parseFuncExport(); err != nil {
				return err
			}
		case t.isWord("template_func"):
			if err := s.parseTemplateExport(); err != nil {
				return err
			}
		case isMemberKeyword(t.text):
			return s.errf(t, "member directive %q outside a class block", t.text)
		case t.kind == tokWord:
			s.skipUnknown(t)
		default:
			return s.errf(t, "unexpected %q inside export block", t.text)
		}
	}
}

// parseClassExport handles `class(<Name>) { <member directives> }`.
func (s *state) parseClassExport() error {
	t := s.cur()
	s.advance()
	args, err := s.parseArgList("class")
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return s.errf(t, "class directive requires exactly one type name")
	}

	dir := types.Directive{
		Kind: types.DirectiveClassExport,
		Line: t.line,
		Name: args[0],
	}

	if s.cur().isPunct("{") {
		open := s.cur()
		s.advance()
		for {
			mt := s.cur()
			switch {
			case mt.kind == tokEOF:
				return s.errf(open, "unclosed class block for %s", dir.Name)
			case mt.isPunct("}"):
				s.advance()
				s.desc.Directives = append(s.desc.Directives, dir)
				return nil
			case isMemberKeyword(mt.text):
				sel, err := s.parseMemberSelect()
				if err != nil {
					return err
				}
				dir.Members = append(dir.Members, sel)
			case mt.kind == tokWord:
				s.skipUnknown(mt)
			default:
				return s.errf(mt, "unexpected %q inside class block", mt.text)
			}
		}
	}

	// A bare class(<Name>) exports every visible member.
	s.desc.Directives = append(s.desc.Directives, dir)
	return nil
}

func isMemberKeyword(word string) bool {
	switch types.MemberSelectKind(word) {
	case types.SelectConstructor, types.SelectMethod, types.SelectMethodConst,
		types.SelectStaticMethod, types.SelectField:
		return true
	}
	return false
}

// parseMemberSelect handles one member directive inside a class block.
// The first argument is the member name; everything after the first
// comma, commas included, is the explicit overload signature.
func (s *state) parseMemberSelect() (types.MemberSelect, error) {
	t := s.cur()
	kind := types.MemberSelectKind(t.text)
	s.advance()

	sel := types.MemberSelect{Kind: kind, Line: t.line}

	if kind == types.SelectConstructor {
		// constructor takes an optional signature-only arg list
		if s.cur().isPunct("(") {
			raw, err := s.parseRawArgs()
			if err != nil {
				return sel, err
			}
			sel.Signature = raw
		}
		return sel, nil
	}

	if !s.cur().isPunct("(") {
		return sel, s.errf(s.cur(), "%s directive requires a name argument", kind)
	}
	raw, err := s.parseRawArgs()
	if err != nil {
		return sel, err
	}
	name, sig := splitNameSig(raw)
	if name == "" {
		return sel, s.errf(t, "%s directive requires a member name", kind)
	}
	sel.Name = name
	sel.Signature = sig

	if kind == types.SelectMethodConst && sig == "" {
		return sel, s.errf(t, "method_const requires an explicit signature")
	}
	return sel, nil
}

// parseFuncExport handles `func(<name>[, <sig>])`.
func (s *state) parseFuncExport() error {
	t := s.cur()
	s.advance()
	raw, err := s.parseRawArgs()
	if err != nil {
		return err
	}
	name, sig := splitNameSig(raw)
	if name == "" {
		return s.errf(t, "func directive requires a function name")
	}
	s.desc.Directives = append(s.desc.Directives, types.Directive{
		Kind:      types.DirectiveFuncExport,
		Line:      t.line,
		Name:      name,
		Signature: sig,
	})
	return nil
}

// parseTemplateExport handles `template_func(<name>) types(<t1>,...)`.
func (s *state) parseTemplateExport() error {
	t := s.cur()
	s.advance()
	args, err := s.parseArgList("template_func")
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return s.errf(t, "template_func requires exactly one template name")
	}

	if !s.cur().isWord("types") {
		return s.errf(s.cur(), "template_func(%s) requires a types(...) list", args[0])
	}
	s.advance()
	typeArgs, err := s.parseArgList("types")
	if err != nil {
		return err
	}
	if len(typeArgs) == 0 {
		return s.errf(t, "template_func(%s) requires at least one type argument", args[0])
	}

	s.desc.Directives = append(s.desc.Directives, types.Directive{
		Kind:     types.DirectiveTemplate,
		Line:     t.line,
		Name:     args[0],
		TypeArgs: typeArgs,
	})
	return nil
}

// parseArgList consumes `( a, b, c )` and returns the trimmed arguments.
// Commas nested in angle brackets or parentheses do not separate
// arguments, so `types(std::pair<int, float>)` is one type argument.
func (s *state) parseArgList(directive string) ([]string, error) {
	if !s.cur().isPunct("(") {
		return nil, s.errf(s.cur(), "%s directive requires a parenthesized argument list", directive)
	}
	raw, err := s.parseRawArgs()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	args := make([]string, 0, 4)
	for _, p := range splitTopLevel(raw) {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	return args, nil
}

// splitTopLevel splits at commas outside any angle-bracket or
// parenthesis nesting.
func splitTopLevel(raw string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, raw[start:])
}

// parseRawArgs consumes a balanced `( ... )` group and returns the raw
// interior text. Nested parens and angle brackets survive verbatim so
// signatures like `std::map<std::string, int>&` stay intact.
func (s *state) parseRawArgs() (string, error) {
	open := s.cur()
	s.advance()
	depth := 1
	var parts []string
	for {
		t := s.cur()
		switch {
		case t.kind == tokEOF:
			return "", s.errf(open, "unmatched parenthesis")
		case t.isPunct("("):
			depth++
			parts = append(parts, t.text)
		case t.isPunct(")"):
			depth--
			if depth == 0 {
				s.advance()
				return strings.Join(parts, " "), nil
			}
			parts = append(parts, t.text)
		default:
			parts = append(parts, t.text)
		}
		s.advance()
	}
}

// splitNameSig splits a raw argument string at the first comma: the name
// before it, the explicit signature (commas and all) after it.
func splitNameSig(raw string) (name, sig string) {
	if i := strings.Index(raw, ","); i >= 0 {
		return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+1:])
	}
	return strings.TrimSpace(raw), ""
}

// skipUnknown records a soft warning for an unrecognized directive
// keyword and skips the keyword plus any argument list or block that
// follows it. Unknown keywords are recoverable to keep the format
// forward-compatible, but they are always surfaced, never silent.
func (s *state) skipUnknown(t dtoken) {
	s.desc.Warnings = append(s.desc.Warnings,
		fmt.Sprintf("%s:%d:%d: unknown directive %q skipped", s.path, t.line, t.col, t.text))
	s.advance()
	if s.cur().isPunct("(") {
		_, _ = s.parseRawArgs()
	}
	if s.cur().isPunct("{") {
		depth := 0
		for !s.atEnd() {
			if s.cur().isPunct("{") {
				depth++
			} else if s.cur().isPunct("}") {
				depth--
				if depth == 0 {
					s.advance()
					return
				}
			}
			s.advance()
		}
	}
}

func (s *state) errf(t dtoken, format string, args ...interface{}) error {
	return &types.DescriptorSyntaxError{
		File:    s.path,
		Line:    t.line,
		Column:  t.col,
		Message: fmt.Sprintf(format, args...),
	}
}

func (s *state) cur() dtoken {
	if s.pos < len(s.toks) {
		return s.toks[s.pos]
	}
	return dtoken{kind: tokEOF}
}

func (s *state) advance() {
	if s.pos < len(s.toks) {
		s.pos++
	}
}

func (s *state) atEnd() bool {
	return s.cur().kind == tokEOF
}
