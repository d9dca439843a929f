package attrgen

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/tools/go/packages"
)

// Result is the outcome of a generator run.
type Result struct {
	Package string
	// Output is the path Write writes to.
	Output string
	// Shapes are the shapes that were emitted.
	Shapes []Shape
	// Source is the formatted generated file.
	Source []byte
}

// Write stores the generated source at r.Output.
func (r *Result) Write() error {
	if err := os.WriteFile(r.Output, r.Source, 0o644); err != nil {
		return fmt.Errorf("attrgen: write %s: %w", r.Output, err)
	}
	return nil
}

// Generate loads the package in cfg.Dir, validates every annotated type and
// renders the decoders. Nothing is written; call Result.Write for that.
func Generate(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles,
		Dir:     cfg.Dir,
		Tests:   false,
	}, ".")
	if err != nil {
		return nil, fmt.Errorf("attrgen: load %s: %w", cfg.Dir, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("attrgen: %s: expected one package, found %d", cfg.Dir, len(pkgs))
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		errs := make([]error, 0, len(pkg.Errors))
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
		return nil, fmt.Errorf("attrgen: load %s: %w", cfg.Dir, errors.Join(errs...))
	}
	log.Debug("loaded package %s (%s) with %d files", pkg.Name, pkg.PkgPath, len(pkg.GoFiles))

	return GenerateFiles(cfg, pkg.Name, pkg.GoFiles)
}

// GenerateFiles is Generate over an explicit file list of package pkgName.
// Files marked as generated are skipped, as is the output file itself.
func GenerateFiles(cfg Config, pkgName string, filenames []string) (*Result, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	output := cfg.Output
	if output == "" {
		output = pkgName + OutputSuffix
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(cfg.Dir, output)
	}

	fset := token.NewFileSet()
	var files []*ast.File
	for _, name := range filenames {
		if sameFile(name, output) {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("attrgen: %w", err)
		}
		if ast.IsGenerated(f) {
			log.Debug("skipping generated file %s", name)
			continue
		}
		if f.Name.Name != pkgName {
			return nil, fmt.Errorf("attrgen: %s: package %s, want %s", name, f.Name.Name, pkgName)
		}
		files = append(files, f)
	}

	shapes, err := Inspect(fset, files)
	if err != nil {
		return nil, err
	}
	shapes, err = selectShapes(shapes, cfg.Types)
	if err != nil {
		return nil, err
	}
	if len(shapes) == 0 {
		return nil, fmt.Errorf("attrgen: no %s types in package %s", Directive, pkgName)
	}
	for _, s := range shapes {
		log.Debug("%s: %s %s", s.Pos, s.Kind, s.Name)
	}

	src, err := Emit(EmitOptions{
		Package:          pkgName,
		ReflectionImport: cfg.ReflectionImport,
		Filename:         output,
	}, shapes)
	if err != nil {
		return nil, err
	}
	log.Info("generated %d decoders for package %s", len(shapes), pkgName)

	return &Result{
		Package: pkgName,
		Output:  output,
		Shapes:  shapes,
		Source:  src,
	}, nil
}

func selectShapes(shapes []Shape, names []string) ([]Shape, error) {
	if len(names) == 0 {
		return shapes, nil
	}
	var selected []Shape
	for _, name := range names {
		i := slices.IndexFunc(shapes, func(s Shape) bool { return s.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("attrgen: type %s has no %s directive", name, Directive)
		}
		selected = append(selected, shapes[i])
	}
	return selected, nil
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
