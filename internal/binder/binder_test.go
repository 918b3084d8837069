package binder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cppbind/internal/descriptor"
	"github.com/dshills/cppbind/internal/extractor"
	"github.com/dshills/cppbind/pkg/types"
)

const bindHeader = `
namespace includecpp {

class Circle {
public:
    Circle(float r);
    bool intersects(const Circle& other) const;
    bool intersects(const Rect& other) const;
    static Circle unit();
    float area() const;
    Circle scale(float f) const;
    float radius;
    void _internal();
};

float clamp(float v, float lo, float hi);
float clamp(float v);

int answer();

template <typename T>
T maximum(T a, T b);

}
`

func bindTable(t *testing.T) *types.SymbolTable {
	t.Helper()
	res := extractor.New("").Extract("bind.h", bindHeader)
	require.NotNil(t, res.Table)
	return res.Table
}

func bindWith(t *testing.T, descText string) (*Plan, error) {
	t.Helper()
	d, err := descriptor.New().Parse("bind.cppbind", descText)
	require.NoError(t, err)
	return New().Bind("geom", bindTable(t), d)
}

func mustBind(t *testing.T, descText string) *Plan {
	t.Helper()
	plan, err := bindWith(t, descText)
	require.NoError(t, err)
	return plan
}

func bindErr(t *testing.T, descText string) *types.BindError {
	t.Helper()
	_, err := bindWith(t, descText)
	require.Error(t, err)
	var be *types.BindError
	require.True(t, errors.As(err, &be), "expected BindError, got %T", err)
	return be
}

func TestBindOverloadAmbiguityTriad(t *testing.T) {
	t.Run("no signature over an overload set is ambiguous", func(t *testing.T) {
		be := bindErr(t, `link(bind.h) geom
export { class(Circle) { method(intersects) } }`)

		assert.Equal(t, types.BindAmbiguousOverload, be.Kind)
		require.Len(t, be.Candidates, 2, "every candidate signature must be named")
		assert.Contains(t, be.Candidates[0], "const Circle&")
		assert.Contains(t, be.Candidates[1], "const Rect&")
	})

	t.Run("matching signature resolves", func(t *testing.T) {
		plan := mustBind(t, `link(bind.h) geom
export { class(Circle) { method(intersects, const Rect&) } }`)

		require.Len(t, plan.Bindings, 1)
		b := plan.Bindings[0]
		assert.Equal(t, "intersects", b.ExportName)
		assert.Equal(t, []string{"const Rect&"}, b.Member.Params)
	})

	t.Run("non-matching signature is signature-not-found", func(t *testing.T) {
		be := bindErr(t, `link(bind.h) geom
export { class(Circle) { method(intersects, int) } }`)

		assert.Equal(t, types.BindSignatureNotFound, be.Kind)
		assert.NotEmpty(t, be.Candidates)
	})
}

func TestBindBothOverloadsSeparately(t *testing.T) {
	plan := mustBind(t, `link(bind.h) geom
export {
    class(Circle) {
        method(intersects, const Circle&)
        method(intersects, const Rect&)
    }
}`)

	require.Len(t, plan.Bindings, 2)
	assert.Equal(t, []string{"const Circle&"}, plan.Bindings[0].Member.Params)
	assert.Equal(t, []string{"const Rect&"}, plan.Bindings[1].Member.Params)
}

func TestBindSignatureSpellingVariants(t *testing.T) {
	// All three spellings of the same const reference resolve identically.
	for _, sig := range []string{"const Circle&", "Circle const&", "const Circle &"} {
		plan := mustBind(t, `link(bind.h) geom
export { class(Circle) { method(intersects, `+sig+`) } }`)
		require.Len(t, plan.Bindings, 1, "signature %q must resolve", sig)
		assert.Equal(t, []string{"const Circle&"}, plan.Bindings[0].Member.Params)
	}
}

func TestBindSymbolNotFound(t *testing.T) {
	be := bindErr(t, `link(bind.h) geom
export { class(Nonexistent) }`)
	assert.Equal(t, types.BindNotFound, be.Kind)
	assert.Equal(t, "geom", be.Module)
}

func TestBindMemberNotFound(t *testing.T) {
	be := bindErr(t, `link(bind.h) geom
export { class(Circle) { method(translate) } }`)
	assert.Equal(t, types.BindNotFound, be.Kind)
	assert.Contains(t, be.Symbol, "Circle::translate")
}

func TestBindExposures(t *testing.T) {
	plan := mustBind(t, `link(bind.h) geom
export {
    class(Circle) {
        constructor
        method_const(scale, float)
        static_method(unit)
        field(radius)
    }
}`)

	require.Len(t, plan.Bindings, 4)

	ctor := plan.Bindings[0]
	assert.Equal(t, ExposeFactory, ctor.Exposure)
	assert.Equal(t, "Circle", ctor.ExportName)

	scale := plan.Bindings[1]
	assert.Equal(t, ExposeMethod, scale.Exposure)
	assert.True(t, scale.Member.IsConst)

	unit := plan.Bindings[2]
	assert.Equal(t, ExposeStaticMethod, unit.Exposure)
	assert.True(t, unit.Member.IsStatic)

	radius := plan.Bindings[3]
	assert.Equal(t, ExposeField, radius.Exposure)
}

func TestBindBareClassSkipsHidden(t *testing.T) {
	plan := mustBind(t, `link(bind.h) geom
export { class(Circle) }`)

	for _, b := range plan.Bindings {
		assert.NotEqual(t, "_internal", b.ExportName, "hidden members are excluded from bare exports")
	}
	assert.NotEmpty(t, plan.Bindings)
}

func TestBindHiddenMemberByVerbatimName(t *testing.T) {
	plan := mustBind(t, `link(bind.h) geom
export { class(Circle) { method(_internal) } }`)

	require.Len(t, plan.Bindings, 1)
	assert.Equal(t, "_internal", plan.Bindings[0].ExportName)
}

func TestBindFreeFunctionTriad(t *testing.T) {
	t.Run("unique function binds without signature", func(t *testing.T) {
		plan := mustBind(t, `link(bind.h) geom
export { func(answer) }`)
		require.Len(t, plan.Bindings, 1)
		assert.Equal(t, ExposeFunction, plan.Bindings[0].Exposure)
	})

	t.Run("overloaded function without signature is ambiguous", func(t *testing.T) {
		be := bindErr(t, `link(bind.h) geom
export { func(clamp) }`)
		assert.Equal(t, types.BindAmbiguousOverload, be.Kind)
		assert.Len(t, be.Candidates, 2)
	})

	t.Run("signature selects one overload", func(t *testing.T) {
		plan := mustBind(t, `link(bind.h) geom
export { func(clamp, float, float, float) }`)
		require.Len(t, plan.Bindings, 1)
		assert.Equal(t, []string{"float", "float", "float"}, plan.Bindings[0].Decl.Params)
	})
}

func TestBindTemplateInstantiation(t *testing.T) {
	plan := mustBind(t, `link(bind.h) geom
export { template_func(maximum) types(int, float) }`)

	require.Len(t, plan.Bindings, 2)

	maxInt := plan.Bindings[0]
	assert.Equal(t, "maximum_int", maxInt.ExportName)
	assert.Equal(t, []string{"int", "int"}, maxInt.Decl.Params)
	assert.Equal(t, "int", maxInt.Decl.ReturnType)

	maxFloat := plan.Bindings[1]
	assert.Equal(t, "maximum_float", maxFloat.ExportName)
	assert.Equal(t, []string{"float", "float"}, maxFloat.Decl.Params)
	assert.Equal(t, "float", maxFloat.Decl.ReturnType)
}

func TestBindTemplateQualifiedTypeArg(t *testing.T) {
	plan := mustBind(t, `link(bind.h) geom
export { template_func(maximum) types(std::string) }`)

	require.Len(t, plan.Bindings, 1)
	assert.Equal(t, "maximum_std_string", plan.Bindings[0].ExportName)
	assert.Equal(t, []string{"std::string", "std::string"}, plan.Bindings[0].Decl.Params)
}

func TestBindTemplateNotFound(t *testing.T) {
	be := bindErr(t, `link(bind.h) geom
export { template_func(minimum) types(int) }`)
	assert.Equal(t, types.BindNotFound, be.Kind)
}

func TestGlueQualifiersPreserved(t *testing.T) {
	plan := mustBind(t, `link(bind.h) geom
export {
    class(Circle) {
        method_const(scale, float)
        static_method(unit)
        field(radius)
    }
    func(answer)
}`)

	glue := plan.Glue
	assert.Contains(t, glue, "#include <Python.h>")
	assert.Contains(t, glue, `#include "bind.h"`)
	assert.Contains(t, glue, "PyInit_geom")
	assert.Contains(t, glue, "geom_methods")

	// Recorded qualifiers survive into the wrapper comments.
	assert.Contains(t, glue, "scale(float) const")
	assert.Contains(t, glue, "static, no receiver")

	// Field access generates a get/set pair.
	assert.Contains(t, glue, "geom_wrap_Circle_get_radius")
	assert.Contains(t, glue, "geom_wrap_Circle_set_radius")

	// Free function wrapper is registered in the method table.
	assert.Contains(t, glue, "geom_wrap_answer")
}

func TestGlueDeterministicOrder(t *testing.T) {
	descText := `link(bind.h) geom
export { class(Circle) func(answer) }`
	first := mustBind(t, descText)
	second := mustBind(t, descText)
	assert.Equal(t, first.Glue, second.Glue)
}
