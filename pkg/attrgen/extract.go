package attrgen

import "github.com/justyntemme/slanggo/pkg/reflection"

// Extraction says how one record field is read from a user attribute.
type Extraction struct {
	// Accessor is the UserAttribute method to call.
	Accessor string
	// GoType is the type the accessor returns.
	GoType string
	// Index is the argument position passed to the accessor.
	Index uint32
	// KindConst names the reflection.ArgumentKind constant reported when
	// the value is missing.
	KindConst string
}

// FieldExtraction maps a field's kind and position to its extraction rule.
// It reports false for kinds the native accessors cannot produce.
func FieldExtraction(kind reflection.ArgumentKind, index int) (Extraction, bool) {
	e := Extraction{Index: uint32(index)}
	switch kind {
	case reflection.KindString:
		e.Accessor, e.GoType, e.KindConst = "ArgumentValueString", "string", "KindString"
	case reflection.KindFloat:
		e.Accessor, e.GoType, e.KindConst = "ArgumentValueFloat", "float32", "KindFloat"
	case reflection.KindInt:
		e.Accessor, e.GoType, e.KindConst = "ArgumentValueInt", "int32", "KindInt"
	default:
		return Extraction{}, false
	}
	return e, true
}

// scalarKinds lists the field types a record may use.
var scalarKinds = map[string]reflection.ArgumentKind{
	"string":  reflection.KindString,
	"float32": reflection.KindFloat,
	"int32":   reflection.KindInt,
}
