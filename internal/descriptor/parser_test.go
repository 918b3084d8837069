package descriptor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cppbind/pkg/types"
)

const gamekitDescriptor = `# gamekit bindings
link(gamekit.h, gamekit.cpp) gamekit

export {
    class(Circle) {
        constructor
        method(intersects, const Circle&)
        method_const(scale, float)
        static_method(unit)
        field(radius)
    }
    class(Shape)
    func(clamp, float, float, float)
    template_func(maximum) types(int, float)
}

dependency(mathutils, core)
`

func parseText(t *testing.T, text string) *types.Descriptor {
	t.Helper()
	d, err := New().Parse("test.cppbind", text)
	require.NoError(t, err)
	return d
}

func TestParseLinkDirective(t *testing.T) {
	d := parseText(t, gamekitDescriptor)

	link := d.Link()
	require.NotNil(t, link)
	assert.Equal(t, "gamekit", link.ModuleName)
	assert.Equal(t, []string{"gamekit.h", "gamekit.cpp"}, link.Files)
}

func TestParseRetainsRawText(t *testing.T) {
	d := parseText(t, gamekitDescriptor)
	assert.Equal(t, gamekitDescriptor, d.Text)
}

func TestParseClassExportMembers(t *testing.T) {
	d := parseText(t, gamekitDescriptor)

	exports := d.Exports()
	require.NotEmpty(t, exports)
	circle := exports[0]
	assert.Equal(t, types.DirectiveClassExport, circle.Kind)
	assert.Equal(t, "Circle", circle.Name)
	require.Len(t, circle.Members, 5)

	assert.Equal(t, types.SelectConstructor, circle.Members[0].Kind)

	m := circle.Members[1]
	assert.Equal(t, types.SelectMethod, m.Kind)
	assert.Equal(t, "intersects", m.Name)
	assert.Equal(t, "const Circle&", m.Signature)

	mc := circle.Members[2]
	assert.Equal(t, types.SelectMethodConst, mc.Kind)
	assert.Equal(t, "scale", mc.Name)
	assert.Equal(t, "float", mc.Signature)

	sm := circle.Members[3]
	assert.Equal(t, types.SelectStaticMethod, sm.Kind)
	assert.Equal(t, "unit", sm.Name)

	f := circle.Members[4]
	assert.Equal(t, types.SelectField, f.Kind)
	assert.Equal(t, "radius", f.Name)
}

func TestParseBareClassExport(t *testing.T) {
	d := parseText(t, gamekitDescriptor)

	shape := d.Exports()[1]
	assert.Equal(t, types.DirectiveClassExport, shape.Kind)
	assert.Equal(t, "Shape", shape.Name)
	assert.Empty(t, shape.Members, "bare class export selects all visible members")
}

func TestParseFuncSignatureAfterFirstComma(t *testing.T) {
	d := parseText(t, gamekitDescriptor)

	clamp := d.Exports()[2]
	assert.Equal(t, types.DirectiveFuncExport, clamp.Kind)
	assert.Equal(t, "clamp", clamp.Name)
	// Everything after the first comma is the signature, commas included.
	assert.Equal(t, "float , float , float", clamp.Signature)
}

func TestParseTemplateFuncTypes(t *testing.T) {
	d := parseText(t, gamekitDescriptor)

	max := d.Exports()[3]
	assert.Equal(t, types.DirectiveTemplate, max.Kind)
	assert.Equal(t, "maximum", max.Name)
	assert.Equal(t, []string{"int", "float"}, max.TypeArgs)
}

func TestParseTemplateTypesWithNestedCommas(t *testing.T) {
	d := parseText(t, `link(a.h) mod
export {
    template_func(maximum) types(std::pair<int, float>, int)
}`)

	max := d.Exports()[0]
	assert.Equal(t, types.DirectiveTemplate, max.Kind)
	// The comma nested in the template argument list does not split.
	assert.Equal(t, []string{"std::pair<int , float>", "int"}, max.TypeArgs)
}

func TestParseDependencies(t *testing.T) {
	d := parseText(t, gamekitDescriptor)
	assert.Equal(t, []string{"mathutils", "core"}, d.Dependencies())
}

func TestParseCommentsIgnored(t *testing.T) {
	d := parseText(t, "# leading comment\nlink(a.h) mod # trailing comment\n# another\n")
	link := d.Link()
	require.NotNil(t, link)
	assert.Equal(t, "mod", link.ModuleName)
}

func TestParseUnknownDirectiveWarns(t *testing.T) {
	d := parseText(t, `link(a.h) mod
frobnicate(x, y)
export {
    func(go)
    optimize { nested { stuff } }
}`)

	require.Len(t, d.Warnings, 2)
	assert.Contains(t, d.Warnings[0], `unknown directive "frobnicate"`)
	assert.Contains(t, d.Warnings[1], `unknown directive "optimize"`)

	// Known directives around the unknown ones still parse.
	require.NotNil(t, d.Link())
	require.Len(t, d.Exports(), 1)
	assert.Equal(t, "go", d.Exports()[0].Name)
}

func TestParseQualifiedSignatureStaysIntact(t *testing.T) {
	d := parseText(t, `link(a.h) mod
export {
    func(lookup, const std::map<std::string, int>&)
}`)

	fn := d.Exports()[0]
	assert.Equal(t, "lookup", fn.Name)
	assert.Contains(t, fn.Signature, "std::map<std::string , int>&")
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "link without module name",
			text: "link(a.h)",
			want: "module name",
		},
		{
			name: "link without files",
			text: "link() mod",
			want: "at least one source file",
		},
		{
			name: "unclosed export block",
			text: "link(a.h) mod\nexport {\n    func(f)",
			want: "unclosed export block",
		},
		{
			name: "member directive outside class",
			text: "link(a.h) mod\nexport { method(f) }",
			want: "outside a class block",
		},
		{
			name: "method_const without signature",
			text: "link(a.h) mod\nexport { class(C) { method_const(f) } }",
			want: "explicit signature",
		},
		{
			name: "template_func without types",
			text: "link(a.h) mod\nexport { template_func(maximum) }",
			want: "types",
		},
		{
			name: "unmatched parenthesis",
			text: "link(a.h extra",
			want: "unmatched parenthesis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse("bad.cppbind", tt.text)
			require.Error(t, err)

			var syntaxErr *types.DescriptorSyntaxError
			require.True(t, errors.As(err, &syntaxErr), "error must be a DescriptorSyntaxError, got %T", err)
			assert.Contains(t, syntaxErr.Message, tt.want)
			assert.Positive(t, syntaxErr.Line)
		})
	}
}
