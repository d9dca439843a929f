// Package reflection defines the host-side contract for Slang user
// attributes and the typed decoding built on top of it.
//
// The native reflection API exposes a user attribute only through scalar
// positional accessors. UserAttribute mirrors exactly those accessors;
// types implementing Attribute (usually generated by slang-attrgen) decode
// an attribute into a Go value using nothing else.
package reflection

import "reflect"

// UserAttribute is a read-only view of a native user attribute such as
// [Range(0.0, 10.0)]. Accessors report false instead of returning garbage
// when the native side has no value of the requested kind.
type UserAttribute interface {
	Name() (string, bool)
	ArgumentCount() uint32
	ArgumentValueString(index uint32) (string, bool)
	ArgumentValueFloat(index uint32) (float32, bool)
	ArgumentValueInt(index uint32) (int32, bool)
}

// Attribute is implemented by types that can decode themselves from a user
// attribute. Implementations use a pointer receiver, like json.Unmarshaler.
type Attribute interface {
	FromUserAttribute(attr UserAttribute) error
}

// Decode returns the T decoded from attr.
func Decode[T any, PT interface {
	*T
	Attribute
}](attr UserAttribute) (T, error) {
	var v T
	if err := PT(&v).FromUserAttribute(attr); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// AttributeSource is anything carrying an ordered list of user attributes,
// such as a reflected variable or function.
type AttributeSource interface {
	UserAttributeCount() uint32
	UserAttributeByIndex(index uint32) UserAttribute
}

// ExtractAttribute decodes the attribute at index of src into a T.
func ExtractAttribute[T any, PT interface {
	*T
	Attribute
}](src AttributeSource, index uint32) (T, error) {
	var zero T
	if index >= src.UserAttributeCount() {
		return zero, &AttributeError{Reason: ReasonNoAttribute, Index: index, Err: ErrIndexOutOfBounds}
	}
	attr := src.UserAttributeByIndex(index)
	if isNil(attr) {
		return zero, &AttributeError{Reason: ReasonNoAttribute, Index: index, Err: ErrUnexpectedNull}
	}
	return Decode[T, PT](attr)
}

// FindAttribute returns the first attribute of src named name.
func FindAttribute(src AttributeSource, name string) (UserAttribute, error) {
	if err := checkName(name); err != nil {
		return nil, &ReflectionError{Op: "find user attribute", Name: name, Err: err}
	}
	for i := uint32(0); i < src.UserAttributeCount(); i++ {
		attr := src.UserAttributeByIndex(i)
		if isNil(attr) {
			continue
		}
		if n, ok := attr.Name(); ok && n == name {
			return attr, nil
		}
	}
	return nil, &ReflectionError{Op: "find user attribute", Name: name, Err: ErrNotFound}
}

// IsNil reports whether attr is nil or holds a nil pointer. Native-backed
// accessors return the latter for a NULL attribute, so decoders check with
// IsNil rather than comparing against nil.
func IsNil(attr UserAttribute) bool {
	return isNil(attr)
}

func isNil(attr UserAttribute) bool {
	if attr == nil {
		return true
	}
	v := reflect.ValueOf(attr)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// Attributes is an AttributeSource over a fixed list.
type Attributes []UserAttribute

// UserAttributeCount implements AttributeSource.
func (a Attributes) UserAttributeCount() uint32 { return uint32(len(a)) }

// UserAttributeByIndex implements AttributeSource.
func (a Attributes) UserAttributeByIndex(index uint32) UserAttribute {
	if index >= uint32(len(a)) {
		return nil
	}
	return a[index]
}
