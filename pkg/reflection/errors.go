package reflection

import (
	"errors"
	"fmt"

	"github.com/justyntemme/slanggo/pkg/slang"
)

// Sentinel errors.
var (
	// ErrInvalidValue is wrapped by every attribute decoding failure.
	ErrInvalidValue = errors.New("invalid value")
	// ErrUnexpectedNull reports a nil value where the native API promised
	// an object.
	ErrUnexpectedNull = errors.New("unexpected NULL from Slang reflection API")
	// ErrNotFound reports a lookup by name that matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrIndexOutOfBounds reports an index past the end of a list.
	ErrIndexOutOfBounds = errors.New("index out of bounds")
)

// Reason tells which decoding step failed.
type Reason int

const (
	ReasonNilAttribute Reason = iota
	ReasonMissingName
	ReasonNameMismatch
	ReasonTooFewArguments
	ReasonBadArgument
	ReasonUnknownName
	ReasonNoAttribute
)

func (r Reason) String() string {
	switch r {
	case ReasonNilAttribute:
		return "nil attribute"
	case ReasonMissingName:
		return "missing name"
	case ReasonNameMismatch:
		return "name mismatch"
	case ReasonTooFewArguments:
		return "too few arguments"
	case ReasonBadArgument:
		return "bad argument"
	case ReasonUnknownName:
		return "unknown name"
	case ReasonNoAttribute:
		return "no attribute"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// AttributeError describes why a user attribute could not be decoded.
// Only the fields relevant to Reason are set.
type AttributeError struct {
	Reason Reason

	// Expected and Actual are attribute names (ReasonNameMismatch) or the
	// unrecognized name (Actual, ReasonUnknownName).
	Expected string
	Actual   string

	// Index is the argument position (ReasonBadArgument) or attribute
	// position (ReasonNoAttribute).
	Index uint32
	Kind  ArgumentKind

	// Want and Got are argument counts (ReasonTooFewArguments).
	Want uint32
	Got  uint32

	Err error
}

func (e *AttributeError) Error() string {
	var msg string
	switch e.Reason {
	case ReasonNilAttribute:
		msg = "attribute is nil"
	case ReasonMissingName:
		msg = "attribute has no name"
	case ReasonNameMismatch:
		msg = fmt.Sprintf("expected attribute name '%s', got '%s'", e.Expected, e.Actual)
	case ReasonTooFewArguments:
		msg = fmt.Sprintf("expected at least %d arguments, got %d", e.Want, e.Got)
	case ReasonBadArgument:
		msg = fmt.Sprintf("missing or invalid %s value at argument %d", e.Kind, e.Index)
	case ReasonUnknownName:
		msg = fmt.Sprintf("unknown attribute name: %s", e.Actual)
	case ReasonNoAttribute:
		msg = fmt.Sprintf("no attribute at index %d", e.Index)
	default:
		msg = e.Reason.String()
	}
	if e.Err == nil {
		return msg
	}
	return e.Err.Error() + ": " + msg
}

func (e *AttributeError) Unwrap() error { return e.Err }

// Constructors used by generated decoders.

// NilAttribute reports a nil UserAttribute.
func NilAttribute() error {
	return &AttributeError{Reason: ReasonNilAttribute, Err: ErrUnexpectedNull}
}

// MissingName reports an attribute whose name could not be read.
func MissingName() error {
	return &AttributeError{Reason: ReasonMissingName, Err: ErrInvalidValue}
}

// NameMismatch reports an attribute named actual where expected was required.
func NameMismatch(expected, actual string) error {
	return &AttributeError{Reason: ReasonNameMismatch, Expected: expected, Actual: actual, Err: ErrInvalidValue}
}

// TooFewArguments reports an attribute with got arguments where at least
// want are required.
func TooFewArguments(want, got uint32) error {
	return &AttributeError{Reason: ReasonTooFewArguments, Want: want, Got: got, Err: ErrInvalidValue}
}

// BadArgument reports a missing or mistyped argument at index.
func BadArgument(index uint32, kind ArgumentKind) error {
	return &AttributeError{Reason: ReasonBadArgument, Index: index, Kind: kind, Err: ErrInvalidValue}
}

// UnknownName reports an attribute name that matches no case of a choice.
func UnknownName(name string) error {
	return &AttributeError{Reason: ReasonUnknownName, Actual: name, Err: ErrInvalidValue}
}

// ReflectionError wraps a failure of the reflection layer itself.
type ReflectionError struct {
	Op   string
	Name string
	Err  error
}

func (e *ReflectionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *ReflectionError) Unwrap() error { return e.Err }

// AsReflectionError lifts an attribute decoding error into the reflection
// error space, keeping it reachable through errors.As.
func AsReflectionError(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *ReflectionError
	if errors.As(err, &re) {
		return err
	}
	return &ReflectionError{Op: op, Err: err}
}

// checkName rejects names that cannot be passed to native lookups.
func checkName(name string) error {
	_, err := slang.CString(name)
	return err
}
