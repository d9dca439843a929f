package slang

import "fmt"

// Result is the int32 status every Slang COM method returns. Negative
// values are failures.
type Result int32

// Result codes. The failure values are the HRESULTs slang.h defines, not
// arbitrary choices: native callers compare against them.
const (
	ResultOK          Result = 0
	ResultNoInterface Result = -0x7FFFBFFE // 0x80004002
	ResultInvalidArg  Result = -0x7FF8FFA9 // 0x80070057
)

// Succeeded reports whether r denotes success.
func Succeeded(r Result) bool { return r >= 0 }

// Failed reports whether r denotes failure.
func Failed(r Result) bool { return r < 0 }

// String returns the slang.h name of well-known codes and the hex value
// otherwise.
func (r Result) String() string {
	switch r {
	case ResultOK:
		return "SLANG_OK"
	case ResultNoInterface:
		return "SLANG_E_NO_INTERFACE"
	case ResultInvalidArg:
		return "SLANG_E_INVALID_ARG"
	default:
		return fmt.Sprintf("0x%08X", uint32(r))
	}
}

// Err converts a failed result into an *Error and a successful one into nil.
func (r Result) Err() error {
	if Succeeded(r) {
		return nil
	}
	return &Error{Code: r}
}

// Error is a failed Result surfaced to Go callers.
type Error struct {
	Code Result
	Op   string
}

// Sentinel errors for errors.Is checks.
var (
	ErrInvalidArgument = &Error{Code: ResultInvalidArg}
	ErrNoInterface     = &Error{Code: ResultNoInterface}
)

func (e *Error) Error() string {
	if e.Op == "" {
		return "slang: " + e.Code.String()
	}
	return fmt.Sprintf("slang: %s: %s", e.Op, e.Code)
}

// Is matches any *Error carrying the same code, ignoring Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}
