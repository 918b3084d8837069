package types

// DeclKind represents the kind of C++ declaration recorded in a symbol table
type DeclKind string

const (
	DeclClass    DeclKind = "class"
	DeclStruct   DeclKind = "struct"
	DeclFunction DeclKind = "function"
	DeclTemplate DeclKind = "template"
)

// MemberKind tags a member inside a class or struct body
type MemberKind string

const (
	MemberConstructor MemberKind = "constructor"
	MemberMethod      MemberKind = "method"
	MemberField       MemberKind = "field"
)

// Member is one declaration inside a class or struct body.
type Member struct {
	Kind       MemberKind
	Name       string
	Params     []string // parameter type spellings, in order
	ReturnType string
	IsConst    bool // trailing const qualifier
	IsStatic   bool
	Line       int

	// Hidden marks members excluded by the convenience policy
	// (underscore prefix or one-line forwarding stub); an explicit
	// member-selection directive naming them verbatim still binds.
	Hidden bool
}

// Declaration is a tagged variant over class, struct, free function and
// template declarations extracted from the designated namespace.
type Declaration struct {
	Kind DeclKind
	Name string
	File string
	Line int

	// Class/struct fields
	BaseType    string // single base type name, empty if none
	MultiBase   bool   // multiple or virtual inheritance seen; unsupported for binding
	Members     []Member
	IsStructDef bool // declared with the struct keyword

	// Function fields
	Params     []string
	ReturnType string

	// Template fields
	TemplateParams []string // template parameter names, empty for non-templates

	// Hidden marks declarations excluded by convenience policy
	// (underscore-prefixed names, one-line forwarding stubs). A directive
	// naming the symbol verbatim can still bind it.
	Hidden bool
}

// IsTemplate reports whether the declaration carries template parameters.
func (d *Declaration) IsTemplate() bool {
	return len(d.TemplateParams) > 0
}

// SymbolTable maps a declaration name to every declaration carrying that
// name (overload sets share one key). One table is produced per extractor
// run; the binder merges the tables of all sources linked into a module.
type SymbolTable struct {
	Decls map[string][]*Declaration
	Order []string // names in first-appearance order
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{Decls: make(map[string][]*Declaration)}
}

// Add records a declaration under its name.
func (st *SymbolTable) Add(d *Declaration) {
	if _, seen := st.Decls[d.Name]; !seen {
		st.Order = append(st.Order, d.Name)
	}
	st.Decls[d.Name] = append(st.Decls[d.Name], d)
}

// Lookup returns every declaration recorded under name.
func (st *SymbolTable) Lookup(name string) []*Declaration {
	return st.Decls[name]
}

// Merge adds every declaration from other into st.
func (st *SymbolTable) Merge(other *SymbolTable) {
	for _, name := range other.Order {
		for _, d := range other.Decls[name] {
			st.Add(d)
		}
	}
}

// Len returns the number of distinct names in the table.
func (st *SymbolTable) Len() int {
	return len(st.Order)
}
