package reflection

// ArgumentKind is one of the scalar kinds the native accessors can return.
type ArgumentKind int

const (
	KindString ArgumentKind = iota
	KindFloat
	KindInt
)

// String returns the Go type name the kind decodes into.
func (k ArgumentKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float32"
	case KindInt:
		return "int32"
	default:
		return "invalid"
	}
}
