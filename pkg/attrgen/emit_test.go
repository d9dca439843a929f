package attrgen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitValid(t *testing.T, opts EmitOptions) string {
	t.Helper()
	shapes, err := InspectSource("demo.go", validSource)
	require.NoError(t, err)
	out, err := Emit(opts, shapes)
	require.NoError(t, err)
	return string(out)
}

func TestEmitParses(t *testing.T) {
	out := emitValid(t, EmitOptions{Package: "demo"})

	assert.True(t, strings.HasPrefix(out, "// Code generated by slang-attrgen. DO NOT EDIT.\n"))

	f, err := parser.ParseFile(token.NewFileSet(), "demo_slangattr.go", out, parser.ParseComments)
	require.NoError(t, err, out)
	assert.True(t, ast.IsGenerated(f))
	assert.Equal(t, "demo", f.Name.Name)

	var methods []string
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			require.Equal(t, "FromUserAttribute", fn.Name.Name)
			methods = append(methods, receiverType(fn))
		}
	}
	assert.Equal(t, []string{"RangeAttribute", "LabelAttribute", "Metadata", "ShaderAttribute"}, methods)

	var paths []string
	for _, imp := range f.Imports {
		paths = append(paths, imp.Path.Value)
	}
	assert.Equal(t, []string{`"example.com/other"`, `"github.com/justyntemme/slanggo/pkg/reflection"`}, paths)
}

func TestEmitRecord(t *testing.T) {
	out := emitValid(t, EmitOptions{Package: "demo"})

	for _, want := range []string{
		"var _ reflection.Attribute = (*RangeAttribute)(nil)",
		"func (a *RangeAttribute) FromUserAttribute(attr reflection.UserAttribute) error {",
		"if reflection.IsNil(attr) {",
		"return reflection.NilAttribute()",
		"return reflection.MissingName()",
		`if name != "Range" {`,
		`return reflection.NameMismatch("Range", name)`,
		"if n := attr.ArgumentCount(); n < 2 {",
		"return reflection.TooFewArguments(2, n)",
		"v0, ok := attr.ArgumentValueFloat(0)",
		"return reflection.BadArgument(1, reflection.KindFloat)",
		`if name != "LabelAttribute" {`,
		"v0, ok := attr.ArgumentValueString(0)",
		"v2, ok := attr.ArgumentValueInt(2)",
		"return reflection.BadArgument(2, reflection.KindInt)",
	} {
		assert.Contains(t, out, want)
	}
}

func TestEmitChoice(t *testing.T) {
	out := emitValid(t, EmitOptions{Package: "demo"})

	for _, want := range []string{
		"var _ reflection.Attribute = (*ShaderAttribute)(nil)",
		"switch name {",
		`case "Range":`,
		"var inner RangeAttribute",
		"*a = ShaderAttribute{Range: &inner}",
		`case "Text":`,
		"*a = ShaderAttribute{Label: &inner}",
		"var inner Hand",
		`case "Other":`,
		"var inner other.Thing",
		"return reflection.UnknownName(name)",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, `case "Label":`, "tag override replaces the field name")
}

func TestEmitReflectionImport(t *testing.T) {
	out := emitValid(t, EmitOptions{Package: "demo", ReflectionImport: "example.com/fork/reflection"})
	assert.Contains(t, out, `"example.com/fork/reflection"`)
	assert.NotContains(t, out, DefaultReflectionImport)
}

func TestEmitRequiresPackage(t *testing.T) {
	_, err := Emit(EmitOptions{}, nil)
	assert.Error(t, err)
}
