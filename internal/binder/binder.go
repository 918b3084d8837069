package binder

import (
	"fmt"
	"regexp"

	"github.com/dshills/cppbind/pkg/types"
)

// Exposure describes how a bound declaration is surfaced to the host
// language.
type Exposure string

const (
	ExposeFunction     Exposure = "function"
	ExposeMethod       Exposure = "method"
	ExposeStaticMethod Exposure = "static_method"
	ExposeFactory      Exposure = "factory"      // constructors
	ExposeField        Exposure = "field_access" // get/set pair
)

// Binding is one entry of a module's binding plan: a native declaration
// (optionally one member of it) exposed under an export name.
type Binding struct {
	Decl       *types.Declaration
	Member     *types.Member // nil for free functions and templates
	ExportName string
	Exposure   Exposure
}

// Plan is the module-level binding plan plus the generated glue source.
// The binder performs no file I/O; writing the glue is the
// orchestrator's concern.
type Plan struct {
	Module   string
	Headers  []string // header files the glue unit includes, from the link directive
	Bindings []Binding
	Glue     string
}

// Binder cross-references descriptor directives against a merged symbol
// table.
type Binder struct{}

// New creates a binder.
func New() *Binder {
	return &Binder{}
}

// Bind resolves every export directive of the descriptor against the
// merged symbol table and assembles the binding plan and glue source.
// The first unresolved or ambiguous export aborts with a *types.BindError;
// binding is fatal for the module, never partial.
func (b *Binder) Bind(module string, table *types.SymbolTable, desc *types.Descriptor) (*Plan, error) {
	plan := &Plan{Module: module}
	if link := desc.Link(); link != nil {
		for _, f := range link.Files {
			if isHeader(f) {
				plan.Headers = append(plan.Headers, f)
			}
		}
	}

	for _, dir := range desc.Exports() {
		var err error
		switch dir.Kind {
		case types.DirectiveClassExport:
			err = b.bindClass(plan, module, table, dir)
		case types.DirectiveFuncExport:
			err = b.bindFunc(plan, module, table, dir)
		case types.DirectiveTemplate:
			err = b.bindTemplate(plan, module, table, dir)
		}
		if err != nil {
			return nil, err
		}
	}

	plan.Glue = generateGlue(plan)
	return plan, nil
}

func (b *Binder) bindClass(plan *Plan, module string, table *types.SymbolTable, dir types.Directive) error {
	var decl *types.Declaration
	for _, cand := range table.Lookup(dir.Name) {
		if cand.Kind == types.DeclClass || cand.Kind == types.DeclStruct {
			decl = cand
			break
		}
	}
	if decl == nil {
		return &types.BindError{Kind: types.BindNotFound, Module: module, Symbol: dir.Name}
	}
	if decl.MultiBase {
		return &types.BindError{
			Kind: types.BindUnsupported, Module: module,
			Symbol: dir.Name + " (multiple or virtual inheritance)",
		}
	}

	if len(dir.Members) == 0 {
		// Bare class(<Name>) exports every visible member.
		for i := range decl.Members {
			m := &decl.Members[i]
			if m.Hidden {
				continue
			}
			plan.Bindings = append(plan.Bindings, memberBinding(decl, m))
		}
		return nil
	}

	for _, sel := range dir.Members {
		m, err := resolveMember(module, decl, sel)
		if err != nil {
			return err
		}
		plan.Bindings = append(plan.Bindings, memberBinding(decl, m))
	}
	return nil
}

// resolveMember applies the overload resolution algorithm to one
// member-selection directive: one candidate binds directly; several
// require an explicit signature; no silent pick, ever.
func resolveMember(module string, decl *types.Declaration, sel types.MemberSelect) (*types.Member, error) {
	symbol := decl.Name + "::" + sel.Name

	var candidates []*types.Member
	for i := range decl.Members {
		m := &decl.Members[i]
		if !memberMatchesKind(m, sel.Kind) {
			continue
		}
		if sel.Kind != types.SelectConstructor && m.Name != sel.Name {
			continue
		}
		candidates = append(candidates, m)
	}

	switch {
	case len(candidates) == 0:
		return nil, &types.BindError{Kind: types.BindNotFound, Module: module, Symbol: symbol}
	case len(candidates) == 1 && sel.Signature == "":
		return candidates[0], nil
	}

	if sel.Signature == "" {
		return nil, &types.BindError{
			Kind: types.BindAmbiguousOverload, Module: module, Symbol: symbol,
			Candidates: candidateSignatures(candidates),
		}
	}

	for _, m := range candidates {
		if SignatureMatches(m.Params, sel.Signature) {
			return m, nil
		}
	}
	return nil, &types.BindError{
		Kind: types.BindSignatureNotFound, Module: module,
		Symbol:     symbol + FormatSignature(SplitSignature(sel.Signature)),
		Candidates: candidateSignatures(candidates),
	}
}

func memberMatchesKind(m *types.Member, kind types.MemberSelectKind) bool {
	switch kind {
	case types.SelectConstructor:
		return m.Kind == types.MemberConstructor
	case types.SelectField:
		return m.Kind == types.MemberField
	case types.SelectMethodConst:
		return m.Kind == types.MemberMethod && m.IsConst
	case types.SelectStaticMethod:
		return m.Kind == types.MemberMethod && m.IsStatic
	case types.SelectMethod:
		return m.Kind == types.MemberMethod
	}
	return false
}

func memberBinding(decl *types.Declaration, m *types.Member) Binding {
	b := Binding{Decl: decl, Member: m, ExportName: m.Name}
	switch {
	case m.Kind == types.MemberConstructor:
		b.Exposure = ExposeFactory
		b.ExportName = decl.Name
	case m.Kind == types.MemberField:
		b.Exposure = ExposeField
	case m.IsStatic:
		b.Exposure = ExposeStaticMethod
	default:
		b.Exposure = ExposeMethod
	}
	return b
}

func candidateSignatures(members []*types.Member) []string {
	sigs := make([]string, len(members))
	for i, m := range members {
		sigs[i] = m.Name + FormatSignature(m.Params)
		if m.IsConst {
			sigs[i] += " const"
		}
	}
	return sigs
}

func (b *Binder) bindFunc(plan *Plan, module string, table *types.SymbolTable, dir types.Directive) error {
	var candidates []*types.Declaration
	for _, cand := range table.Lookup(dir.Name) {
		if cand.Kind == types.DeclFunction {
			candidates = append(candidates, cand)
		}
	}

	switch {
	case len(candidates) == 0:
		return &types.BindError{Kind: types.BindNotFound, Module: module, Symbol: dir.Name}
	case len(candidates) == 1 && dir.Signature == "":
		plan.Bindings = append(plan.Bindings, Binding{
			Decl: candidates[0], ExportName: dir.Name, Exposure: ExposeFunction,
		})
		return nil
	}

	if dir.Signature == "" {
		sigs := make([]string, len(candidates))
		for i, c := range candidates {
			sigs[i] = c.Name + FormatSignature(c.Params)
		}
		return &types.BindError{
			Kind: types.BindAmbiguousOverload, Module: module, Symbol: dir.Name,
			Candidates: sigs,
		}
	}

	for _, c := range candidates {
		if SignatureMatches(c.Params, dir.Signature) {
			plan.Bindings = append(plan.Bindings, Binding{
				Decl: c, ExportName: dir.Name, Exposure: ExposeFunction,
			})
			return nil
		}
	}
	sigs := make([]string, len(candidates))
	for i, c := range candidates {
		sigs[i] = c.Name + FormatSignature(c.Params)
	}
	return &types.BindError{
		Kind: types.BindSignatureNotFound, Module: module,
		Symbol:     dir.Name + FormatSignature(SplitSignature(dir.Signature)),
		Candidates: sigs,
	}
}

// bindTemplate synthesizes one concrete declaration per requested type
// argument, substituting the argument textually for the template
// parameter throughout the signature.
func (b *Binder) bindTemplate(plan *Plan, module string, table *types.SymbolTable, dir types.Directive) error {
	var tmpl *types.Declaration
	for _, cand := range table.Lookup(dir.Name) {
		if cand.IsTemplate() && cand.Kind != types.DeclClass && cand.Kind != types.DeclStruct {
			tmpl = cand
			break
		}
	}
	if tmpl == nil {
		return &types.BindError{
			Kind: types.BindNotFound, Module: module,
			Symbol: dir.Name + " (template function)",
		}
	}
	if len(tmpl.TemplateParams) == 0 {
		return &types.BindError{Kind: types.BindUnsupported, Module: module, Symbol: dir.Name}
	}
	param := tmpl.TemplateParams[0]

	for _, arg := range dir.TypeArgs {
		inst := &types.Declaration{
			Kind:       types.DeclFunction,
			Name:       fmt.Sprintf("%s_%s", tmpl.Name, SanitizeIdent(arg)),
			File:       tmpl.File,
			Line:       tmpl.Line,
			ReturnType: substituteParam(tmpl.ReturnType, param, arg),
		}
		for _, p := range tmpl.Params {
			inst.Params = append(inst.Params, substituteParam(p, param, arg))
		}
		plan.Bindings = append(plan.Bindings, Binding{
			Decl: inst, ExportName: inst.Name, Exposure: ExposeFunction,
		})
	}
	return nil
}

// substituteParam replaces every whole-word occurrence of the template
// parameter in a type spelling with the concrete argument.
func substituteParam(typeText, param, arg string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(param) + `\b`)
	return re.ReplaceAllString(typeText, arg)
}
