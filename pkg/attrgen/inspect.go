package attrgen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"reflect"
	"strconv"
	"strings"

	"github.com/justyntemme/slanggo/pkg/reflection"
)

// directive holds the options of one //slang:attribute comment.
type directive struct {
	name    string
	hasName bool
}

// InspectSource parses a single Go file and inspects it.
func InspectSource(filename string, src any) ([]Shape, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	return Inspect(fset, []*ast.File{f})
}

// Inspect returns the shapes declared in files. Every problem found is
// reported, and no shape is returned unless all declarations are valid.
func Inspect(fset *token.FileSet, files []*ast.File) ([]Shape, error) {
	in := &inspector{
		fset:      fset,
		annotated: make(map[string]bool),
		decoders:  make(map[string]bool),
	}
	for _, f := range files {
		in.file(f)
	}
	in.crossCheck()
	if len(in.errs) > 0 {
		return nil, errors.Join(in.errs...)
	}
	return in.shapes, nil
}

type inspector struct {
	fset    *token.FileSet
	imports map[string]string
	shapes  []Shape
	errs    []error

	// annotated holds every type carrying the directive, valid or not;
	// decoders holds types with a hand-written FromUserAttribute.
	annotated map[string]bool
	decoders  map[string]bool
}

func (in *inspector) errorf(pos token.Pos, typ, format string, args ...any) {
	in.errs = append(in.errs, &ShapeError{
		Pos:  in.fset.Position(pos),
		Type: typ,
		Msg:  fmt.Sprintf(format, args...),
	})
}

func (in *inspector) file(f *ast.File) {
	in.imports = fileImports(f)

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if _, found, _ := parseDirective(d.Doc); found {
				in.errorf(d.Pos(), d.Name.Name, "%s must annotate a type declaration", Directive)
			}
			if recv := receiverType(d); recv != "" && d.Name.Name == "FromUserAttribute" {
				in.decoders[recv] = true
			}
		case *ast.GenDecl:
			in.genDecl(d)
		}
	}
}

func (in *inspector) genDecl(d *ast.GenDecl) {
	if d.Tok != token.TYPE {
		if _, found, _ := parseDirective(d.Doc); found {
			in.errorf(d.Pos(), "", "%s must annotate a type declaration", Directive)
		}
		return
	}

	for _, spec := range d.Specs {
		ts := spec.(*ast.TypeSpec)
		doc := ts.Doc
		if !d.Lparen.IsValid() {
			doc = d.Doc
		}

		opts, found, err := parseDirective(doc)
		if err != nil {
			in.errorf(ts.Pos(), ts.Name.Name, "%v", err)
			continue
		}
		if !found {
			continue
		}
		in.annotated[ts.Name.Name] = true
		in.typeSpec(ts, opts)
	}
}

func (in *inspector) typeSpec(ts *ast.TypeSpec, opts directive) {
	name := ts.Name.Name
	if ts.Assign.IsValid() {
		in.errorf(ts.Pos(), name, "type aliases cannot be attributes")
		return
	}
	if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
		in.errorf(ts.Pos(), name, "generic types cannot be attributes")
		return
	}
	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		in.errorf(ts.Pos(), name, "must be a struct type, got %s", types.ExprString(ts.Type))
		return
	}
	if generatedIdent(name) {
		in.errorf(ts.Pos(), name, "type name %s is used by generated decoders, rename the type", name)
		return
	}

	fields := st.Fields.List
	if len(fields) == 0 {
		in.errorf(ts.Pos(), name, "attribute structs need at least one field")
		return
	}
	shape := Shape{Name: name, Pos: in.fset.Position(ts.Pos())}
	if _, isPtr := fields[0].Type.(*ast.StarExpr); isPtr {
		shape.Kind = Choice
	}

	before := len(in.errs)
	switch shape.Kind {
	case Record:
		shape.Expected = name
		if opts.hasName {
			shape.Expected = opts.name
		}
		shape.Fields = in.recordFields(name, fields)
	case Choice:
		if opts.hasName {
			in.errorf(ts.Pos(), name, "name= is only valid on record attributes")
		}
		shape.Cases = in.choiceCases(name, fields)
	}
	if len(in.errs) == before {
		in.shapes = append(in.shapes, shape)
	}
}

func (in *inspector) recordFields(typ string, list []*ast.Field) []Field {
	var fields []Field
	for _, f := range list {
		if len(f.Names) == 0 {
			in.errorf(f.Pos(), typ, "embedded field %s is not allowed, record fields must be named", types.ExprString(f.Type))
			continue
		}
		kind, ok := scalarKind(f.Type)
		if !ok {
			in.errorf(f.Pos(), typ, "field %s has unsupported type %s (want string, float32 or int32)",
				f.Names[0].Name, types.ExprString(f.Type))
			continue
		}
		for _, id := range f.Names {
			if id.Name == "_" {
				in.errorf(id.Pos(), typ, "blank fields are not allowed, record fields must be named")
				continue
			}
			fields = append(fields, Field{
				Name:  id.Name,
				Kind:  kind,
				Index: len(fields),
				Pos:   in.fset.Position(id.Pos()),
			})
		}
	}
	return fields
}

func (in *inspector) choiceCases(typ string, list []*ast.Field) []Case {
	var cases []Case
	for _, f := range list {
		if len(f.Names) == 0 {
			in.errorf(f.Pos(), typ, "embedded field %s is not allowed, choice cases must be named", types.ExprString(f.Type))
			continue
		}
		c, ok := in.caseType(typ, f)
		if !ok {
			continue
		}

		tag := ""
		if f.Tag != nil {
			raw, err := strconv.Unquote(f.Tag.Value)
			if err == nil {
				tag = reflect.StructTag(raw).Get("slang")
			}
		}
		if tag != "" && len(f.Names) > 1 {
			in.errorf(f.Pos(), typ, "slang tag %q would select %d cases", tag, len(f.Names))
			continue
		}

		for _, id := range f.Names {
			if id.Name == "_" {
				in.errorf(id.Pos(), typ, "blank fields are not allowed, choice cases must be named")
				continue
			}
			c.Name = id.Name
			c.Tag = id.Name
			if tag != "" {
				c.Tag = tag
			}
			c.Pos = in.fset.Position(id.Pos())
			cases = append(cases, c)
		}
	}
	return cases
}

// caseType checks that a choice case wraps exactly one attribute type,
// written as *T or *pkg.T.
func (in *inspector) caseType(typ string, f *ast.Field) (Case, bool) {
	fail := func() (Case, bool) {
		in.errorf(f.Pos(), typ, "case %s must be a pointer to one attribute type, got %s",
			f.Names[0].Name, types.ExprString(f.Type))
		return Case{}, false
	}

	star, ok := f.Type.(*ast.StarExpr)
	if !ok {
		return fail()
	}
	switch x := star.X.(type) {
	case *ast.Ident:
		if _, scalar := scalarKind(x); scalar || types.Universe.Lookup(x.Name) != nil {
			return fail()
		}
		if generatedIdent(x.Name) {
			in.errorf(f.Pos(), typ, "case %s wraps %s, a name used by generated decoders", f.Names[0].Name, x.Name)
			return Case{}, false
		}
		return Case{Inner: x.Name}, true
	case *ast.SelectorExpr:
		pkg, ok := x.X.(*ast.Ident)
		if !ok {
			return fail()
		}
		importPath, ok := in.imports[pkg.Name]
		if !ok {
			in.errorf(f.Pos(), typ, "case %s refers to unknown package %s", f.Names[0].Name, pkg.Name)
			return Case{}, false
		}
		if generatedIdent(pkg.Name) {
			in.errorf(f.Pos(), typ, "case %s uses package name %s, which generated decoders use, import it under another name",
				f.Names[0].Name, pkg.Name)
			return Case{}, false
		}
		return Case{
			Inner:      pkg.Name + "." + x.Sel.Name,
			ImportName: pkg.Name,
			ImportPath: importPath,
		}, true
	default:
		return fail()
	}
}

// crossCheck validates what single declarations cannot: duplicate names,
// duplicate case tags, and cases wrapping local types that decode nothing.
func (in *inspector) crossCheck() {
	seen := make(map[string]bool)
	for _, s := range in.shapes {
		if seen[s.Name] {
			in.errs = append(in.errs, &ShapeError{Pos: s.Pos, Type: s.Name, Msg: "declared more than once"})
		}
		seen[s.Name] = true

		tags := make(map[string]string)
		for _, c := range s.Cases {
			if prev, dup := tags[c.Tag]; dup {
				in.errs = append(in.errs, &ShapeError{
					Pos:  c.Pos,
					Type: s.Name,
					Msg:  fmt.Sprintf("cases %s and %s both select attribute %q", prev, c.Name, c.Tag),
				})
				continue
			}
			tags[c.Tag] = c.Name

			if c.ImportPath == "" && !in.annotated[c.Inner] && !in.decoders[c.Inner] {
				in.errs = append(in.errs, &ShapeError{
					Pos:  c.Pos,
					Type: s.Name,
					Msg:  fmt.Sprintf("case %s wraps %s, which is not an attribute type", c.Name, c.Inner),
				})
			}
		}
	}
}

func receiverType(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) != 1 {
		return ""
	}
	t := d.Recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	if id, ok := t.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

// generatedIdents are the identifiers a generated decoder declares or
// imports. A type or package of the same name would be shadowed inside it.
var generatedIdents = map[string]bool{
	"a":          true,
	"attr":       true,
	"err":        true,
	"inner":      true,
	"n":          true,
	"name":       true,
	"ok":         true,
	"reflection": true,
}

// generatedIdent reports whether id collides with a generated identifier,
// including the field locals v0, v1, ...
func generatedIdent(id string) bool {
	if generatedIdents[id] {
		return true
	}
	digits, ok := strings.CutPrefix(id, "v")
	if !ok || digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func scalarKind(expr ast.Expr) (reflection.ArgumentKind, bool) {
	id, ok := expr.(*ast.Ident)
	if !ok {
		return 0, false
	}
	k, ok := scalarKinds[id.Name]
	return k, ok
}

// parseDirective finds the attribute directive in doc and parses its
// options. found is false when doc carries no directive.
func parseDirective(doc *ast.CommentGroup) (opts directive, found bool, err error) {
	if doc == nil {
		return directive{}, false, nil
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			return directive{}, false, fmt.Errorf("unknown directive %s", strings.Fields(c.Text)[0])
		}
		if found {
			return directive{}, true, fmt.Errorf("%s given more than once", Directive)
		}
		found = true

		for _, opt := range strings.Fields(rest) {
			key, value, hasValue := strings.Cut(opt, "=")
			switch {
			case key == "name" && hasValue:
				if unquoted, err := strconv.Unquote(value); err == nil {
					value = unquoted
				}
				if value == "" {
					return directive{}, true, fmt.Errorf("empty name= in %s", Directive)
				}
				opts.name, opts.hasName = value, true
			default:
				return directive{}, true, fmt.Errorf("unknown option %q in %s", opt, Directive)
			}
		}
	}
	return opts, found, nil
}

func fileImports(f *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := path.Base(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		imports[name] = p
	}
	return imports
}
