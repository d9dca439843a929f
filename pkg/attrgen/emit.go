package attrgen

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"text/template"

	"golang.org/x/tools/imports"
)

// DefaultReflectionImport is the import path generated code uses for the
// reflection package.
const DefaultReflectionImport = "github.com/justyntemme/slanggo/pkg/reflection"

// EmitOptions controls the generated file.
type EmitOptions struct {
	// Package is the package clause of the generated file.
	Package string
	// ReflectionImport overrides DefaultReflectionImport.
	ReflectionImport string
	// Filename is used for error positions while formatting.
	Filename string
}

type fieldView struct {
	Name string
	Extraction
}

type shapeView struct {
	Shape
	IsChoice bool
	Views    []fieldView
}

type importView struct {
	Name string
	Path string
}

// newImport drops the import name when it matches the last path element.
func newImport(name, importPath string) importView {
	if path.Base(importPath) == name {
		name = ""
	}
	return importView{Name: name, Path: importPath}
}

type fileView struct {
	EmitOptions
	Imports []importView
	Shapes  []shapeView
}

// Emit renders decoders for shapes. shapes must come from Inspect.
func Emit(opts EmitOptions, shapes []Shape) ([]byte, error) {
	if opts.Package == "" {
		return nil, fmt.Errorf("attrgen: package name is required")
	}
	if opts.ReflectionImport == "" {
		opts.ReflectionImport = DefaultReflectionImport
	}
	if opts.Filename == "" {
		opts.Filename = opts.Package + "_slangattr.go"
	}

	view := fileView{EmitOptions: opts}
	seen := map[string]bool{opts.ReflectionImport: true}
	view.Imports = append(view.Imports, newImport("reflection", opts.ReflectionImport))

	for _, s := range shapes {
		sv := shapeView{Shape: s, IsChoice: s.Kind == Choice}
		for _, f := range s.Fields {
			e, ok := FieldExtraction(f.Kind, f.Index)
			if !ok {
				return nil, fmt.Errorf("attrgen: %s.%s: no extraction for kind %s", s.Name, f.Name, f.Kind)
			}
			sv.Views = append(sv.Views, fieldView{Name: f.Name, Extraction: e})
		}
		for _, c := range s.Cases {
			if c.ImportPath != "" && !seen[c.ImportPath] {
				seen[c.ImportPath] = true
				view.Imports = append(view.Imports, newImport(c.ImportName, c.ImportPath))
			}
		}
		view.Shapes = append(view.Shapes, sv)
	}
	sort.Slice(view.Imports, func(i, j int) bool { return view.Imports[i].Path < view.Imports[j].Path })

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("attrgen: render: %w", err)
	}

	out, err := imports.Process(opts.Filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("attrgen: format generated code: %w\n%s", err, buf.Bytes())
	}
	return out, nil
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by slang-attrgen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	{{if .Name}}{{.Name}} {{end}}"{{.Path}}"
{{- end}}
)
{{range .Shapes}}
var _ reflection.Attribute = (*{{.Name}})(nil)
{{if .IsChoice}}{{template "choice" .}}{{else}}{{template "record" .}}{{end}}
{{- end}}

{{- define "record"}}
// FromUserAttribute decodes a [{{.Expected}}] user attribute into a.
func (a *{{.Name}}) FromUserAttribute(attr reflection.UserAttribute) error {
	if reflection.IsNil(attr) {
		return reflection.NilAttribute()
	}
	name, ok := attr.Name()
	if !ok {
		return reflection.MissingName()
	}
	if name != {{printf "%q" .Expected}} {
		return reflection.NameMismatch({{printf "%q" .Expected}}, name)
	}
	if n := attr.ArgumentCount(); n < {{len .Views}} {
		return reflection.TooFewArguments({{len .Views}}, n)
	}
{{- range .Views}}
	v{{.Index}}, ok := attr.{{.Accessor}}({{.Index}})
	if !ok {
		return reflection.BadArgument({{.Index}}, reflection.{{.KindConst}})
	}
{{- end}}
	*a = {{.Name}}{
{{- range .Views}}
		{{.Name}}: v{{.Index}},
{{- end}}
	}
	return nil
}
{{end}}

{{- define "choice"}}
// FromUserAttribute sets the case of a selected by the attribute name and
// decodes the attribute into it.
func (a *{{.Name}}) FromUserAttribute(attr reflection.UserAttribute) error {
	if reflection.IsNil(attr) {
		return reflection.NilAttribute()
	}
	name, ok := attr.Name()
	if !ok {
		return reflection.MissingName()
	}
	switch name {
{{- range .Cases}}
	case {{printf "%q" .Tag}}:
		var inner {{.Inner}}
		if err := inner.FromUserAttribute(attr); err != nil {
			return err
		}
		*a = {{$.Name}}{ {{- .Name}}: &inner}
		return nil
{{- end}}
	default:
		return reflection.UnknownName(name)
	}
}
{{end}}
`))
