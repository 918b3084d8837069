package types

// DirectiveKind tags a binding descriptor directive
type DirectiveKind string

const (
	DirectiveModuleLink  DirectiveKind = "link"
	DirectiveClassExport DirectiveKind = "class"
	DirectiveFuncExport  DirectiveKind = "func"
	DirectiveTemplate    DirectiveKind = "template_func"
	DirectiveDependency  DirectiveKind = "dependency"
)

// MemberSelectKind tags a member-selection directive inside a class block
type MemberSelectKind string

const (
	SelectConstructor  MemberSelectKind = "constructor"
	SelectMethod       MemberSelectKind = "method"
	SelectMethodConst  MemberSelectKind = "method_const"
	SelectStaticMethod MemberSelectKind = "static_method"
	SelectField        MemberSelectKind = "field"
)

// MemberSelect is one member-selection directive inside a class block.
// Signature, when present, disambiguates overloads and holds the raw
// parameter-type list text as authored (e.g. "const Circle&").
type MemberSelect struct {
	Kind      MemberSelectKind
	Name      string
	Signature string
	Line      int
}

// Directive is one parsed binding directive. Exactly the fields relevant
// to its Kind are populated.
type Directive struct {
	Kind DirectiveKind
	Line int

	// link
	Files      []string
	ModuleName string

	// class / func
	Name      string
	Signature string         // optional explicit overload signature (func)
	Members   []MemberSelect // class member selections, in authored order

	// template_func
	TypeArgs []string

	// dependency
	DependsOn []string
}

// Descriptor is the ordered directive sequence parsed from one binding
// descriptor file, plus any soft warnings emitted while parsing it.
type Descriptor struct {
	Path       string
	Text       string // raw descriptor text, hashed into the module content hash
	Directives []Directive
	Warnings   []string
}

// Link returns the descriptor's link directive, or nil when absent.
func (d *Descriptor) Link() *Directive {
	for i := range d.Directives {
		if d.Directives[i].Kind == DirectiveModuleLink {
			return &d.Directives[i]
		}
	}
	return nil
}

// Dependencies returns every prerequisite module name declared by
// dependency directives, in authored order.
func (d *Descriptor) Dependencies() []string {
	var deps []string
	for i := range d.Directives {
		if d.Directives[i].Kind == DirectiveDependency {
			deps = append(deps, d.Directives[i].DependsOn...)
		}
	}
	return deps
}

// Exports returns every class, func and template_func directive in
// authored order.
func (d *Descriptor) Exports() []Directive {
	var out []Directive
	for _, dir := range d.Directives {
		switch dir.Kind {
		case DirectiveClassExport, DirectiveFuncExport, DirectiveTemplate:
			out = append(out, dir)
		}
	}
	return out
}
