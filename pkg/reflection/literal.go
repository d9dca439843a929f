package reflection

import (
	"fmt"
	"strconv"
	"strings"
)

// Literal is an in-memory UserAttribute. It behaves like the native
// accessors: asking for a value of the wrong kind, or past the last
// argument, reports false.
type Literal struct {
	name    string
	hasName bool
	args    []any
}

// NewLiteral builds a named attribute. Arguments must be strings, floats or
// integers; float64 and int are narrowed to float32 and int32 the way the
// shader front end narrows untyped literals.
func NewLiteral(name string, args ...any) *Literal {
	return &Literal{name: name, hasName: true, args: normalizeArgs(args)}
}

// NewUnnamedLiteral builds an attribute whose name cannot be read.
func NewUnnamedLiteral(args ...any) *Literal {
	return &Literal{args: normalizeArgs(args)}
}

func normalizeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case float64:
			out[i] = float32(v)
		case int:
			out[i] = int32(v)
		case string, float32, int32:
			out[i] = v
		default:
			panic(fmt.Sprintf("reflection: unsupported literal argument %T at %d", a, i))
		}
	}
	return out
}

// Name implements UserAttribute.
func (l *Literal) Name() (string, bool) { return l.name, l.hasName }

// ArgumentCount implements UserAttribute.
func (l *Literal) ArgumentCount() uint32 { return uint32(len(l.args)) }

func (l *Literal) arg(index uint32) any {
	if index >= uint32(len(l.args)) {
		return nil
	}
	return l.args[index]
}

// ArgumentValueString implements UserAttribute.
func (l *Literal) ArgumentValueString(index uint32) (string, bool) {
	v, ok := l.arg(index).(string)
	return v, ok
}

// ArgumentValueFloat implements UserAttribute.
func (l *Literal) ArgumentValueFloat(index uint32) (float32, bool) {
	v, ok := l.arg(index).(float32)
	return v, ok
}

// ArgumentValueInt implements UserAttribute.
func (l *Literal) ArgumentValueInt(index uint32) (int32, bool) {
	v, ok := l.arg(index).(int32)
	return v, ok
}

// String renders the attribute in shader syntax, e.g. [Range(0, 10)].
func (l *Literal) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	if l.hasName {
		sb.WriteString(l.name)
	} else {
		sb.WriteString("<unnamed>")
	}
	if len(l.args) > 0 {
		sb.WriteByte('(')
		for i, a := range l.args {
			if i > 0 {
				sb.WriteString(", ")
			}
			switch v := a.(type) {
			case string:
				sb.WriteString(strconv.Quote(v))
			case float32:
				sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
			case int32:
				sb.WriteString(strconv.FormatInt(int64(v), 10))
			}
		}
		sb.WriteByte(')')
	}
	sb.WriteByte(']')
	return sb.String()
}
