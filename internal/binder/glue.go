package binder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// isHeader reports whether a linked file is a header rather than a
// translation unit.
func isHeader(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h", ".hpp", ".hh", ".hxx":
		return true
	}
	return false
}

// generateGlue renders the module's glue translation unit: one wrapper
// per binding plus the host-language module table. The text is consumed
// by the external native toolchain; qualifiers recorded on the native
// declaration (const, static) are preserved verbatim in the wrapper
// signatures.
func generateGlue(plan *Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "// Generated by cppbind for module %q. Do not edit.\n", plan.Module)
	b.WriteString("#include <Python.h>\n")
	for _, h := range plan.Headers {
		fmt.Fprintf(&b, "#include %q\n", filepath.Base(h))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "// %d binding(s)\n\n", len(plan.Bindings))

	var methodRows []string
	for _, bind := range plan.Bindings {
		switch bind.Exposure {
		case ExposeFunction:
			writeFunctionWrapper(&b, plan.Module, bind)
			methodRows = append(methodRows, methodRow(plan.Module, bind.ExportName))
		case ExposeFactory:
			writeFactoryWrapper(&b, plan.Module, bind)
			methodRows = append(methodRows, methodRow(plan.Module, "new_"+bind.ExportName))
		case ExposeMethod, ExposeStaticMethod:
			writeMethodWrapper(&b, plan.Module, bind)
			methodRows = append(methodRows, methodRow(plan.Module, bind.Decl.Name+"_"+bind.ExportName))
		case ExposeField:
			writeFieldAccessors(&b, plan.Module, bind)
			methodRows = append(methodRows,
				methodRow(plan.Module, bind.Decl.Name+"_get_"+bind.ExportName),
				methodRow(plan.Module, bind.Decl.Name+"_set_"+bind.ExportName))
		}
	}

	fmt.Fprintf(&b, "static PyMethodDef %s_methods[] = {\n", plan.Module)
	for _, row := range methodRows {
		b.WriteString(row)
	}
	b.WriteString("    {NULL, NULL, 0, NULL},\n};\n\n")

	fmt.Fprintf(&b, "static struct PyModuleDef %s_moduledef = {\n", plan.Module)
	fmt.Fprintf(&b, "    PyModuleDef_HEAD_INIT, %q, NULL, -1, %s_methods,\n", plan.Module, plan.Module)
	b.WriteString("};\n\n")

	fmt.Fprintf(&b, "extern \"C\" PyObject *PyInit_%s(void) {\n", plan.Module)
	fmt.Fprintf(&b, "    return PyModule_Create(&%s_moduledef);\n", plan.Module)
	b.WriteString("}\n")

	return b.String()
}

func methodRow(module, export string) string {
	return fmt.Sprintf("    {%q, (PyCFunction)%s_wrap_%s, METH_VARARGS, NULL},\n",
		export, module, export)
}

func writeFunctionWrapper(b *strings.Builder, module string, bind Binding) {
	d := bind.Decl
	fmt.Fprintf(b, "// %s %s%s\n", d.ReturnType, d.Name, FormatSignature(d.Params))
	fmt.Fprintf(b, "static PyObject *%s_wrap_%s(PyObject *self, PyObject *args);\n\n",
		module, bind.ExportName)
}

func writeFactoryWrapper(b *strings.Builder, module string, bind Binding) {
	fmt.Fprintf(b, "// factory for %s%s\n", bind.Decl.Name, FormatSignature(bind.Member.Params))
	fmt.Fprintf(b, "static PyObject *%s_wrap_new_%s(PyObject *self, PyObject *args);\n\n",
		module, bind.ExportName)
}

func writeMethodWrapper(b *strings.Builder, module string, bind Binding) {
	m := bind.Member
	qual := ""
	if m.IsConst {
		qual = " const"
	}
	receiver := "with receiver"
	if m.IsStatic {
		receiver = "static, no receiver"
	}
	fmt.Fprintf(b, "// %s %s::%s%s%s (%s)\n",
		m.ReturnType, bind.Decl.Name, m.Name, FormatSignature(m.Params), qual, receiver)
	fmt.Fprintf(b, "static PyObject *%s_wrap_%s_%s(PyObject *self, PyObject *args);\n\n",
		module, bind.Decl.Name, bind.ExportName)
}

func writeFieldAccessors(b *strings.Builder, module string, bind Binding) {
	m := bind.Member
	fmt.Fprintf(b, "// field %s %s::%s (direct get/set)\n", m.ReturnType, bind.Decl.Name, m.Name)
	fmt.Fprintf(b, "static PyObject *%s_wrap_%s_get_%s(PyObject *self, PyObject *args);\n",
		module, bind.Decl.Name, bind.ExportName)
	fmt.Fprintf(b, "static PyObject *%s_wrap_%s_set_%s(PyObject *self, PyObject *args);\n\n",
		module, bind.Decl.Name, bind.ExportName)
}
