package reflection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/slanggo/pkg/slang"
)

// levels is decoded by hand the same way generated decoders work.
type levels struct {
	Low  int32
	High int32
}

func (l *levels) FromUserAttribute(attr UserAttribute) error {
	if IsNil(attr) {
		return NilAttribute()
	}
	name, ok := attr.Name()
	if !ok {
		return MissingName()
	}
	if name != "Levels" {
		return NameMismatch("Levels", name)
	}
	if n := attr.ArgumentCount(); n < 2 {
		return TooFewArguments(2, n)
	}
	v0, ok := attr.ArgumentValueInt(0)
	if !ok {
		return BadArgument(0, KindInt)
	}
	v1, ok := attr.ArgumentValueInt(1)
	if !ok {
		return BadArgument(1, KindInt)
	}
	*l = levels{Low: v0, High: v1}
	return nil
}

func TestLiteralAccessors(t *testing.T) {
	attr := NewLiteral("Mixed", "label", 1.5, 7)

	name, ok := attr.Name()
	require.True(t, ok)
	assert.Equal(t, "Mixed", name)
	assert.Equal(t, uint32(3), attr.ArgumentCount())

	s, ok := attr.ArgumentValueString(0)
	assert.True(t, ok)
	assert.Equal(t, "label", s)

	f, ok := attr.ArgumentValueFloat(1)
	assert.True(t, ok)
	assert.Equal(t, float32(1.5), f)

	i, ok := attr.ArgumentValueInt(2)
	assert.True(t, ok)
	assert.Equal(t, int32(7), i)

	_, ok = attr.ArgumentValueInt(0)
	assert.False(t, ok, "string argument read as int")
	_, ok = attr.ArgumentValueFloat(2)
	assert.False(t, ok, "int argument read as float")
	_, ok = attr.ArgumentValueString(3)
	assert.False(t, ok, "index past the end")

	assert.Equal(t, `[Mixed("label", 1.5, 7)]`, attr.String())
}

func TestUnnamedLiteral(t *testing.T) {
	attr := NewUnnamedLiteral(int32(1))
	_, ok := attr.Name()
	assert.False(t, ok)
	assert.Equal(t, "[<unnamed>(1)]", attr.String())
}

func TestLiteralRejectsUnsupportedArguments(t *testing.T) {
	assert.Panics(t, func() { NewLiteral("Bad", []int{1}) })
}

func TestDecode(t *testing.T) {
	got, err := Decode[levels](NewLiteral("Levels", 1, 4))
	require.NoError(t, err)
	assert.Equal(t, levels{Low: 1, High: 4}, got)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		attr   UserAttribute
		reason Reason
		msg    string
	}{
		{"Nil", nil, ReasonNilAttribute, "attribute is nil"},
		{"Unnamed", NewUnnamedLiteral(1, 2), ReasonMissingName, "invalid value: attribute has no name"},
		{"WrongName", NewLiteral("Range", 1, 2), ReasonNameMismatch, "invalid value: expected attribute name 'Levels', got 'Range'"},
		{"TooFew", NewLiteral("Levels", 1), ReasonTooFewArguments, "invalid value: expected at least 2 arguments, got 1"},
		{"Mistyped", NewLiteral("Levels", 1, "two"), ReasonBadArgument, "invalid value: missing or invalid int32 value at argument 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attr UserAttribute
			if tt.attr != nil {
				attr = tt.attr
			}
			_, err := Decode[levels](attr)
			require.Error(t, err)

			var ae *AttributeError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.reason, ae.Reason)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDecodeErrorSentinels(t *testing.T) {
	_, err := Decode[levels](NewLiteral("Range", 1, 2))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Decode[levels](nil)
	assert.ErrorIs(t, err, ErrUnexpectedNull)
}

func TestExtraArgumentsAreTolerated(t *testing.T) {
	got, err := Decode[levels](NewLiteral("Levels", 1, 4, "extra", 9.0))
	require.NoError(t, err)
	assert.Equal(t, levels{Low: 1, High: 4}, got)
}

func TestExtractAttribute(t *testing.T) {
	src := Attributes{
		NewLiteral("Label", "intensity"),
		NewLiteral("Levels", 0, 255),
	}

	got, err := ExtractAttribute[levels](src, 1)
	require.NoError(t, err)
	assert.Equal(t, levels{Low: 0, High: 255}, got)

	_, err = ExtractAttribute[levels](src, 0)
	var ae *AttributeError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ReasonNameMismatch, ae.Reason)

	_, err = ExtractAttribute[levels](src, 5)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ReasonNoAttribute, ae.Reason)
	assert.Equal(t, uint32(5), ae.Index)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	assert.EqualError(t, err, "index out of bounds: no attribute at index 5")

	_, err = ExtractAttribute[levels](Attributes{nil}, 0)
	assert.ErrorIs(t, err, ErrUnexpectedNull)

	_, err = ExtractAttribute[levels](Attributes{(*Literal)(nil)}, 0)
	assert.ErrorIs(t, err, ErrUnexpectedNull)
}

func TestIsNil(t *testing.T) {
	var typed *Literal
	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(typed))
	assert.True(t, IsNil(Attributes{typed}.UserAttributeByIndex(0)))
	assert.False(t, IsNil(NewLiteral("Range")))

	_, err := Decode[levels](typed)
	assert.ErrorIs(t, err, ErrUnexpectedNull)
}

func TestFindAttributeSkipsNil(t *testing.T) {
	label := NewLiteral("Label", "x")
	found, err := FindAttribute(Attributes{(*Literal)(nil), nil, label}, "Label")
	require.NoError(t, err)
	assert.Same(t, label, found)
}

func TestFindAttribute(t *testing.T) {
	label := NewLiteral("Label", "intensity")
	src := Attributes{NewUnnamedLiteral(), label, NewLiteral("Label", "second")}

	found, err := FindAttribute(src, "Label")
	require.NoError(t, err)
	assert.Same(t, label, found)

	_, err = FindAttribute(src, "Range")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, `find user attribute "Range": not found`)

	_, err = FindAttribute(src, "La\x00bel")
	var invalid *slang.InvalidStringError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 2, invalid.Position)
}

func TestAsReflectionError(t *testing.T) {
	assert.NoError(t, AsReflectionError("extract", nil))

	err := AsReflectionError("extract", UnknownName("Tint"))
	var re *ReflectionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "extract", re.Op)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.EqualError(t, err, "extract: invalid value: unknown attribute name: Tint")

	assert.Same(t, err, AsReflectionError("other", err))
}
