// Package attrgen generates Slang user-attribute decoders from annotated Go
// type declarations.
//
// A struct is marked with a directive comment:
//
//	//slang:attribute name=Range
//	type RangeAttribute struct {
//		Min float32
//		Max float32
//	}
//
// Structs whose fields are all string, float32 or int32 are records: the
// attribute name must match (the name= override, or the type name) and
// fields are read positionally. Structs whose fields are all pointers to
// other attribute types are choices: the attribute name picks the case.
//
//	//slang:attribute
//	type ShaderAttribute struct {
//		Range *RangeAttribute
//		Label *LabelAttribute `slang:"Label"`
//	}
//
// Generation runs in two phases. Inspect validates every declaration and
// fails before anything is emitted; Emit renders the decoders.
package attrgen

import (
	"fmt"
	"go/token"

	"github.com/justyntemme/slanggo/pkg/reflection"
)

// Directive marks a type declaration for generation.
const Directive = "//slang:attribute"

// ShapeKind distinguishes records from choices.
type ShapeKind int

const (
	Record ShapeKind = iota
	Choice
)

func (k ShapeKind) String() string {
	switch k {
	case Record:
		return "record"
	case Choice:
		return "choice"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape is a validated attribute declaration.
type Shape struct {
	Name string
	Kind ShapeKind
	Pos  token.Position

	// Expected is the attribute name a record accepts.
	Expected string
	Fields   []Field

	Cases []Case
}

// Field is one positional argument of a record.
type Field struct {
	Name  string
	Kind  reflection.ArgumentKind
	Index int
	Pos   token.Position
}

// Case is one alternative of a choice.
type Case struct {
	// Name is the struct field holding the case.
	Name string
	// Tag is the attribute name selecting the case.
	Tag string
	// Inner is the wrapped type as written in source, e.g. RangeAttribute
	// or attrs.RangeAttribute.
	Inner string
	// ImportName and ImportPath are set when Inner is qualified by another
	// package.
	ImportName string
	ImportPath string
	Pos        token.Position
}

// ShapeError is a declaration rejected by Inspect.
type ShapeError struct {
	Pos  token.Position
	Type string
	Msg  string
}

func (e *ShapeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Type, e.Msg)
}
