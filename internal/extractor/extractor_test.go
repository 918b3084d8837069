package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cppbind/pkg/types"
)

const gamekitHeader = `
#pragma once
#include <cmath>

// Outside the designated namespace: must be ignored.
int ignored_function(int x);

namespace includecpp {

class Shape {
public:
    Shape();
    virtual ~Shape();
    float area() const;
};

class Circle : public Shape {
public:
    Circle(float r);
    bool intersects(const Circle& other) const;
    bool intersects(const Rect& other) const;
    static Circle unit();
    float radius;
    float x, y;
    void _debugDump();
    float diameter() { return radius * 2.0f; }
};

float clamp(float v, float lo, float hi);
float clamp(float v);

template <typename T>
T maximum(T a, T b);

void _internalHelper();

} // namespace includecpp

// Also outside: ignored.
void trailing_function();
`

func extractGamekit(t *testing.T) *Result {
	t.Helper()
	res := New("").Extract("gamekit.h", gamekitHeader)
	require.NotNil(t, res.Table)
	require.False(t, res.Incomplete)
	return res
}

func findMember(t *testing.T, d *types.Declaration, name string) *types.Member {
	t.Helper()
	for i := range d.Members {
		if d.Members[i].Name == name {
			return &d.Members[i]
		}
	}
	t.Fatalf("member %s not found in %s", name, d.Name)
	return nil
}

func TestExtractOnlyDesignatedNamespace(t *testing.T) {
	res := extractGamekit(t)

	assert.Empty(t, res.Table.Lookup("ignored_function"))
	assert.Empty(t, res.Table.Lookup("trailing_function"))
	assert.NotEmpty(t, res.Table.Lookup("Circle"))
	assert.NotEmpty(t, res.Table.Lookup("clamp"))
}

func TestExtractClassWithBase(t *testing.T) {
	res := extractGamekit(t)

	decls := res.Table.Lookup("Circle")
	require.Len(t, decls, 1)
	circle := decls[0]

	assert.Equal(t, types.DeclClass, circle.Kind)
	assert.Equal(t, "Shape", circle.BaseType)
	assert.False(t, circle.MultiBase)
	assert.False(t, circle.IsStructDef)
}

func TestExtractConstructor(t *testing.T) {
	res := extractGamekit(t)
	circle := res.Table.Lookup("Circle")[0]

	ctor := findMember(t, circle, "Circle")
	assert.Equal(t, types.MemberConstructor, ctor.Kind)
	assert.Equal(t, []string{"float"}, ctor.Params)
	assert.Empty(t, ctor.ReturnType)
}

func TestExtractOverloadedConstMethods(t *testing.T) {
	res := extractGamekit(t)
	circle := res.Table.Lookup("Circle")[0]

	var overloads []types.Member
	for _, m := range circle.Members {
		if m.Name == "intersects" {
			overloads = append(overloads, m)
		}
	}
	require.Len(t, overloads, 2, "both overloads must be recorded")

	assert.Equal(t, []string{"const Circle&"}, overloads[0].Params)
	assert.Equal(t, []string{"const Rect&"}, overloads[1].Params)
	for _, m := range overloads {
		assert.True(t, m.IsConst, "trailing const must be recorded")
		assert.Equal(t, "bool", m.ReturnType)
	}
}

func TestExtractStaticMethod(t *testing.T) {
	res := extractGamekit(t)
	circle := res.Table.Lookup("Circle")[0]

	unit := findMember(t, circle, "unit")
	assert.True(t, unit.IsStatic)
	assert.Equal(t, "Circle", unit.ReturnType)
	assert.Empty(t, unit.Params)
}

func TestExtractFieldGroups(t *testing.T) {
	res := extractGamekit(t)
	circle := res.Table.Lookup("Circle")[0]

	for _, name := range []string{"radius", "x", "y"} {
		f := findMember(t, circle, name)
		assert.Equal(t, types.MemberField, f.Kind)
		assert.Equal(t, "float", f.ReturnType)
	}
}

func TestExtractHiddenConveniences(t *testing.T) {
	res := extractGamekit(t)
	circle := res.Table.Lookup("Circle")[0]

	// Underscore prefix
	dump := findMember(t, circle, "_debugDump")
	assert.True(t, dump.Hidden)

	// One-line forwarding stub
	diameter := findMember(t, circle, "diameter")
	assert.True(t, diameter.Hidden)

	// Normal declared members are visible
	assert.False(t, findMember(t, circle, "intersects").Hidden)

	// Underscore-prefixed free function
	helpers := res.Table.Lookup("_internalHelper")
	require.Len(t, helpers, 1)
	assert.True(t, helpers[0].Hidden)
}

func TestExtractDestructorSkipped(t *testing.T) {
	res := extractGamekit(t)
	shape := res.Table.Lookup("Shape")[0]

	names := make([]string, 0, len(shape.Members))
	for _, m := range shape.Members {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Shape", "area"}, names, "only constructor and method survive, destructor is dropped")
}

func TestExtractFreeFunctionOverloads(t *testing.T) {
	res := extractGamekit(t)

	decls := res.Table.Lookup("clamp")
	require.Len(t, decls, 2)
	assert.Equal(t, []string{"float", "float", "float"}, decls[0].Params)
	assert.Equal(t, []string{"float"}, decls[1].Params)
	for _, d := range decls {
		assert.Equal(t, types.DeclFunction, d.Kind)
		assert.Equal(t, "float", d.ReturnType)
	}
}

func TestExtractTemplateFunction(t *testing.T) {
	res := extractGamekit(t)

	decls := res.Table.Lookup("maximum")
	require.Len(t, decls, 1)
	max := decls[0]

	assert.Equal(t, types.DeclTemplate, max.Kind)
	assert.Equal(t, []string{"T"}, max.TemplateParams)
	assert.Equal(t, []string{"T", "T"}, max.Params)
	assert.Equal(t, "T", max.ReturnType)
}

func TestExtractDeterminism(t *testing.T) {
	ext := New("")
	first := ext.Extract("gamekit.h", gamekitHeader)
	second := ext.Extract("gamekit.h", gamekitHeader)

	assert.Equal(t, first.Table, second.Table)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestExtractMultipleInheritanceWarned(t *testing.T) {
	src := `namespace includecpp {
class Mixed : public A, public B {
public:
    void f();
};
}`
	res := New("").Extract("mixed.h", src)

	decls := res.Table.Lookup("Mixed")
	require.Len(t, decls, 1)
	assert.True(t, decls[0].MultiBase)

	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0].Message, "multiple or virtual inheritance")
}

func TestExtractOutOfClassDefinitionSkipped(t *testing.T) {
	src := `namespace includecpp {
class Vec {
public:
    float length() const;
};

float Vec::length() const {
    return 0.0f;
}
}`
	res := New("").Extract("vec.h", src)

	// The out-of-class definition must not appear as a free function.
	assert.Empty(t, res.Table.Lookup("length"))
	require.Len(t, res.Table.Lookup("Vec"), 1)
}

func TestExtractMissingNamespace(t *testing.T) {
	res := New("").Extract("plain.h", "int add(int a, int b);")

	assert.Equal(t, 0, res.Table.Len())
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0].Message, "not found")
}

func TestExtractUnclosedNamespaceIncomplete(t *testing.T) {
	src := `namespace includecpp {
int add(int a, int b);
`
	res := New("").Extract("open.h", src)

	assert.True(t, res.Incomplete)
	assert.NotEmpty(t, res.Table.Lookup("add"), "declarations before the break still extract")
}

func TestExtractMalformedMemberSkipped(t *testing.T) {
	src := `namespace includecpp {
class Broken {
public:
    int good();
    (malformed;
    int also_good();
};
}`
	res := New("").Extract("broken.h", src)

	decls := res.Table.Lookup("Broken")
	require.Len(t, decls, 1)
	names := make([]string, 0)
	for _, m := range decls[0].Members {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "good")
	assert.Contains(t, names, "also_good")
	assert.NotEmpty(t, res.Warnings, "malformed member emits a warning")
}

func TestExtractQualifiedTypes(t *testing.T) {
	src := `namespace includecpp {
std::string join(const std::string& a, const std::string& b);
}`
	res := New("").Extract("strings.h", src)

	decls := res.Table.Lookup("join")
	require.Len(t, decls, 1)
	assert.Equal(t, "std::string", decls[0].ReturnType)
	assert.Equal(t, []string{"const std::string&", "const std::string&"}, decls[0].Params)
}
