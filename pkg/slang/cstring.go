package slang

import (
	"fmt"
	"strings"
)

// InvalidStringError reports a Go string that cannot cross the boundary as
// a NUL-terminated C string.
type InvalidStringError struct {
	Position int
}

func (e *InvalidStringError) Error() string {
	return fmt.Sprintf("string contains NUL byte at position %d", e.Position)
}

// CString returns s as a NUL-terminated byte sequence suitable for copying
// into C memory. Strings with interior NUL bytes are rejected.
func CString(s string) ([]byte, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, &InvalidStringError{Position: i}
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b, nil
}
