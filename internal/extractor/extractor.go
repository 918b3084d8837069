package extractor

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/cppbind/internal/scanner"
	"github.com/dshills/cppbind/pkg/types"
)

// DefaultNamespace is the designated namespace scanned for declarations.
const DefaultNamespace = "includecpp"

// Extractor builds a symbol table from the token stream of one C++
// source file. Only declarations lexically nested inside the designated
// namespace block are recorded.
type Extractor struct {
	namespace string
}

// Result holds the outcome of one extractor run over one source file.
type Result struct {
	Table      *types.SymbolTable
	Warnings   []*types.ExtractionWarning
	ScanErrors []*types.ScanError
	// Incomplete is set when the brace counter never returned to the
	// namespace's opening depth before end of file.
	Incomplete bool
}

// New creates an extractor for the given designated namespace. An empty
// namespace selects DefaultNamespace.
func New(namespace string) *Extractor {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Extractor{namespace: namespace}
}

// ExtractFile reads and extracts a single source file.
func (e *Extractor) ExtractFile(path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.Extract(path, string(content)), nil
}

// Extract scans src and extracts every declaration inside the designated
// namespace. Extraction never hard-fails: malformed declarations are
// skipped with a warning and scan errors are carried alongside the
// partial table.
func (e *Extractor) Extract(file, src string) *Result {
	toks, scanErrs := scanner.New(file, src).Scan()

	w := &walker{
		file:   file,
		tokens: toks,
		table:  types.NewSymbolTable(),
	}

	res := &Result{Table: w.table, ScanErrors: scanErrs}

	nsDepth, ok := w.enterNamespace(e.namespace)
	if !ok {
		w.warnf(1, "designated namespace %q not found", e.namespace)
		res.Warnings = w.warnings
		return res
	}

	closed := false
	for !w.atEnd() {
		if w.cur().IsValue("}") && w.cur().Depth == nsDepth {
			closed = true
			break
		}
		w.parseTopLevel()
	}
	if !closed {
		res.Incomplete = true
		w.warnf(w.cur().Line, "namespace %q never closed; extraction incomplete", e.namespace)
	}

	res.Warnings = w.warnings
	return res
}

type walker struct {
	file     string
	tokens   []types.Token
	pos      int
	table    *types.SymbolTable
	warnings []*types.ExtractionWarning
}

// enterNamespace advances past the first `namespace <name> {` and returns
// the depth of its opening brace.
func (w *walker) enterNamespace(name string) (int, bool) {
	for !w.atEnd() {
		if w.cur().IsKeyword("namespace") &&
			w.peek(1).Kind == types.TokenIdent && w.peek(1).Text == name &&
			w.peek(2).IsValue("{") {
			depth := w.peek(2).Depth
			w.pos += 3
			return depth, true
		}
		w.advance()
	}
	return 0, false
}

func (w *walker) parseTopLevel() {
	var tparams []string
	if w.cur().IsKeyword("template") {
		tparams = w.parseTemplateHeader()
	}

	switch {
	case w.cur().IsKeyword("class") || w.cur().IsKeyword("struct"):
		isStruct := w.cur().Text == "struct"
		w.advance()
		w.parseType(isStruct, tparams)
	case w.cur().IsKeyword("using") || w.cur().IsKeyword("typedef") ||
		w.cur().IsKeyword("enum"):
		w.skipStatement()
	default:
		w.parseFreeFunction(tparams)
	}
}

// parseTemplateHeader consumes `template < ... >` and returns the
// template parameter names. Template bodies are never evaluated; only
// the parameter list is recorded.
func (w *walker) parseTemplateHeader() []string {
	w.advance() // template
	if !w.cur().IsValue("<") {
		return nil
	}
	w.advance()

	var params []string
	angle := 1
	expectName := false
	for !w.atEnd() && angle > 0 {
		t := w.cur()
		switch {
		case t.IsValue("<"):
			angle++
		case t.IsValue(">"):
			angle--
		case t.IsKeyword("typename") || t.IsKeyword("class"):
			expectName = true
		case t.Kind == types.TokenIdent && expectName:
			params = append(params, t.Text)
			expectName = false
		}
		w.advance()
	}
	return params
}

// parseType handles `class`/`struct` declarations: name, optional base
// list, and the member body.
func (w *walker) parseType(isStruct bool, tparams []string) {
	if w.cur().Kind != types.TokenIdent {
		w.warnf(w.cur().Line, "malformed type declaration, skipping")
		w.skipStatement()
		return
	}
	name := w.cur().Text
	line := w.cur().Line
	w.advance()

	decl := &types.Declaration{
		Kind:           types.DeclClass,
		Name:           name,
		File:           w.file,
		Line:           line,
		IsStructDef:    isStruct,
		TemplateParams: tparams,
	}
	if isStruct {
		decl.Kind = types.DeclStruct
	}
	if len(tparams) > 0 {
		decl.Kind = types.DeclTemplate
	}

	// Forward declaration
	if w.cur().IsValue(";") {
		w.advance()
		return
	}

	// Base list: `: [virtual] [access] Name (, ...)`
	if w.cur().IsValue(":") {
		w.advance()
		bases := 0
		for !w.atEnd() && !w.cur().IsValue("{") && !w.cur().IsValue(";") {
			t := w.cur()
			switch {
			case t.IsKeyword("public") || t.IsKeyword("private") || t.IsKeyword("protected"):
				// access specifier
			case t.IsKeyword("virtual"):
				decl.MultiBase = true
			case t.Kind == types.TokenIdent:
				if bases == 0 {
					decl.BaseType = t.Text
				}
			case t.IsValue(","):
				bases++
				decl.MultiBase = true
			}
			w.advance()
		}
		if bases > 0 {
			w.warnf(line, "type %s uses multiple or virtual inheritance; unsupported for binding", name)
		}
	}

	if !w.cur().IsValue("{") {
		w.warnf(line, "type %s has no body, skipping", name)
		w.skipStatement()
		return
	}
	bodyDepth := w.cur().Depth
	w.advance()

	for !w.atEnd() {
		if w.cur().IsValue("}") && w.cur().Depth == bodyDepth {
			w.advance()
			if w.cur().IsValue(";") {
				w.advance()
			}
			break
		}
		w.parseMember(decl, name)
	}

	if strings.HasPrefix(name, "_") {
		decl.Hidden = true
	}
	w.table.Add(decl)
}

// parseMember recognizes one constructor, method or field inside a type
// body. Anything it cannot classify is skipped with a soft warning so a
// single malformed declaration never blocks the rest of the file.
func (w *walker) parseMember(decl *types.Declaration, typeName string) {
	t := w.cur()

	// Access specifiers
	if t.IsKeyword("public") || t.IsKeyword("private") || t.IsKeyword("protected") {
		w.advance()
		if w.cur().IsValue(":") {
			w.advance()
		}
		return
	}

	// Destructors are never bindable; skip past the declaration.
	if t.IsValue("~") || (t.IsKeyword("virtual") && w.peek(1).IsValue("~")) {
		w.skipMemberTail()
		return
	}

	// Member templates: tolerate the header, record the member normally.
	if t.IsKeyword("template") {
		w.parseTemplateHeader()
	}

	line := w.cur().Line
	isStatic := false
	var head []types.Token

	for !w.atEnd() {
		t = w.cur()
		if t.IsValue("(") || t.IsValue(";") || t.IsValue("=") || t.IsValue("{") || t.IsValue("}") {
			break
		}
		switch {
		case t.IsKeyword("static"):
			isStatic = true
		case t.IsKeyword("inline") || t.IsKeyword("explicit") || t.IsKeyword("virtual") ||
			t.IsKeyword("friend"):
			// qualifier noise, not part of the type
		default:
			head = append(head, t)
		}
		w.advance()
	}

	switch {
	case w.cur().IsValue("("):
		if len(head) == 0 {
			w.warnf(line, "malformed member declaration in %s, skipping", typeName)
			w.skipMemberTail()
			return
		}
		name := head[len(head)-1].Text
		retType := typeText(head[:len(head)-1])

		// Operators carry punctuation in the name; record hidden.
		isOperator := false
		for _, h := range head {
			if h.IsKeyword("operator") {
				isOperator = true
			}
		}

		params, ok := w.parseParams()
		if !ok {
			w.warnf(line, "malformed parameter list for %s::%s, skipping", typeName, name)
			w.skipMemberTail()
			return
		}

		m := types.Member{
			Name:     name,
			Params:   params,
			IsStatic: isStatic,
			Line:     line,
		}
		if name == typeName && retType == "" {
			m.Kind = types.MemberConstructor
		} else {
			m.Kind = types.MemberMethod
			m.ReturnType = retType
		}

		// Trailing qualifiers and the body
		stub := false
		for !w.atEnd() && !w.cur().IsValue(";") && !w.cur().IsValue("{") {
			if w.cur().IsKeyword("const") {
				m.IsConst = true
			}
			w.advance()
		}
		if w.cur().IsValue("{") {
			stub = w.skipBracedBody()
		} else if w.cur().IsValue(";") {
			w.advance()
		}

		if isOperator {
			return
		}
		// Forwarding stubs and underscore names are a convenience
		// exclusion, overridable by naming the symbol verbatim.
		m.Hidden = strings.HasPrefix(name, "_") || (stub && m.Kind == types.MemberMethod)
		decl.Members = append(decl.Members, m)

	case w.cur().IsValue(";") || w.cur().IsValue("="):
		if w.cur().IsValue("=") {
			w.skipStatement()
		} else {
			w.advance()
		}
		if len(head) < 2 {
			return // stray semicolon or unrecognized statement
		}
		// Fields may be declared in groups: `float x, y;`
		names, fieldType := splitFieldHead(head)
		if fieldType == "" || len(names) == 0 {
			w.warnf(line, "malformed field declaration in %s, skipping", typeName)
			return
		}
		for _, n := range names {
			decl.Members = append(decl.Members, types.Member{
				Kind:       types.MemberField,
				Name:       n,
				ReturnType: fieldType,
				IsStatic:   isStatic,
				Line:       line,
			})
		}

	case w.cur().IsValue("{"):
		w.skipBracedBody()

	default:
		w.advance()
	}
}

// parseFreeFunction recognizes a top-level `<type> <name> (<params>)`
// with a body or a trailing semicolon.
func (w *walker) parseFreeFunction(tparams []string) {
	line := w.cur().Line
	var head []types.Token

	for !w.atEnd() {
		t := w.cur()
		if t.IsValue("(") || t.IsValue(";") || t.IsValue("{") || t.IsValue("}") {
			break
		}
		if !t.IsKeyword("inline") && !t.IsKeyword("static") {
			head = append(head, t)
		}
		w.advance()
	}

	if !w.cur().IsValue("(") || len(head) < 2 {
		w.skipStatement()
		return
	}

	// Out-of-class member definitions (Type Class::method) belong to a
	// type already declared elsewhere; they are not free functions.
	for _, h := range head {
		if h.IsValue("::") || h.IsKeyword("operator") {
			w.skipStatement()
			return
		}
	}

	name := head[len(head)-1].Text
	retType := typeText(head[:len(head)-1])
	params, ok := w.parseParams()
	if !ok {
		w.warnf(line, "malformed parameter list for function %s, skipping", name)
		w.skipStatement()
		return
	}

	stub := false
	for !w.atEnd() && !w.cur().IsValue(";") && !w.cur().IsValue("{") {
		w.advance()
	}
	if w.cur().IsValue("{") {
		stub = w.skipBracedBody()
	} else if w.cur().IsValue(";") {
		w.advance()
	}

	decl := &types.Declaration{
		Kind:           types.DeclFunction,
		Name:           name,
		File:           w.file,
		Line:           line,
		Params:         params,
		ReturnType:     retType,
		TemplateParams: tparams,
		Hidden:         strings.HasPrefix(name, "_") || stub,
	}
	if len(tparams) > 0 {
		decl.Kind = types.DeclTemplate
	}
	w.table.Add(decl)
}

// parseParams consumes a parenthesized parameter list and returns the
// parameter type spellings with names and default values stripped.
func (w *walker) parseParams() ([]string, bool) {
	if !w.cur().IsValue("(") {
		return nil, false
	}
	w.advance()

	params := []string{}
	var group []types.Token
	depth := 1
	angle := 0

	flush := func() {
		if text := paramType(group); text != "" {
			params = append(params, text)
		}
		group = nil
	}

	for !w.atEnd() {
		t := w.cur()
		switch {
		case t.IsValue("("):
			depth++
			group = append(group, t)
		case t.IsValue(")"):
			depth--
			if depth == 0 {
				w.advance()
				flush()
				return params, true
			}
			group = append(group, t)
		case t.IsValue("<"):
			angle++
			group = append(group, t)
		case t.IsValue(">"):
			angle--
			group = append(group, t)
		case t.IsValue(",") && depth == 1 && angle == 0:
			flush()
		default:
			group = append(group, t)
		}
		w.advance()
	}
	return nil, false // unbalanced parens
}

// skipBracedBody skips a `{ ... }` block and reports whether it was a
// one-line forwarding stub (single-line body beginning with return).
func (w *walker) skipBracedBody() bool {
	openDepth := w.cur().Depth
	openLine := w.cur().Line
	w.advance()

	firstIsReturn := w.cur().IsKeyword("return") || w.cur().Text == "return"
	endLine := openLine
	for !w.atEnd() {
		if w.cur().IsValue("}") && w.cur().Depth == openDepth {
			endLine = w.cur().Line
			w.advance()
			break
		}
		w.advance()
	}
	return firstIsReturn && openLine == endLine
}

// skipStatement resynchronizes after a malformed or irrelevant
// construct: advances past the next semicolon or balanced brace block.
func (w *walker) skipStatement() {
	for !w.atEnd() {
		if w.cur().IsValue(";") {
			w.advance()
			return
		}
		if w.cur().IsValue("{") {
			w.skipBracedBody()
			if w.cur().IsValue(";") {
				w.advance()
			}
			return
		}
		if w.cur().IsValue("}") {
			return
		}
		w.advance()
	}
}

// skipMemberTail skips the remainder of one member declaration,
// including an optional braced body.
func (w *walker) skipMemberTail() {
	for !w.atEnd() {
		if w.cur().IsValue(";") {
			w.advance()
			return
		}
		if w.cur().IsValue("{") {
			w.skipBracedBody()
			return
		}
		if w.cur().IsValue("}") {
			return
		}
		w.advance()
	}
}

func (w *walker) warnf(line int, format string, args ...interface{}) {
	w.warnings = append(w.warnings, &types.ExtractionWarning{
		File:    w.file,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// Token navigation helpers

func (w *walker) cur() types.Token {
	if w.pos < len(w.tokens) {
		return w.tokens[w.pos]
	}
	return types.Token{Kind: types.TokenEOF}
}

func (w *walker) peek(n int) types.Token {
	if w.pos+n < len(w.tokens) {
		return w.tokens[w.pos+n]
	}
	return types.Token{Kind: types.TokenEOF}
}

func (w *walker) advance() {
	if w.pos < len(w.tokens) {
		w.pos++
	}
}

func (w *walker) atEnd() bool {
	return w.pos >= len(w.tokens) || w.tokens[w.pos].Kind == types.TokenEOF
}
