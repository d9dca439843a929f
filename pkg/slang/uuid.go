// Package slang holds the plain-Go view of the Slang ABI: interface
// identifiers, status codes and string conversion helpers shared by the
// COM runtime and the reflection layer.
package slang

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// UUID identifies a COM interface. The layout matches SlangUUID field for
// field (32/16/16/8x8) so a *UUID can be handed to native code directly.
type UUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// Interface IDs. They are returned by value so callers cannot change the
// identity every object negotiates with.
var (
	iidUnknown = UUID{
		Data1: 0x00000000,
		Data2: 0x0000,
		Data3: 0x0000,
		Data4: [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46},
	}
	iidBlob = UUID{
		Data1: 0x8BA5FB08,
		Data2: 0x5195,
		Data3: 0x40E2,
		Data4: [8]byte{0xAC, 0x58, 0x0D, 0x98, 0x9C, 0x3A, 0x01, 0x02},
	}
)

// IIDUnknown is the identity every interface object answers to.
func IIDUnknown() UUID { return iidUnknown }

// IIDBlob identifies ISlangBlob.
func IIDBlob() UUID { return iidBlob }

// Equal compares all four fields. It is only meant for capability
// negotiation, not ordering or hashing.
func (a UUID) Equal(b UUID) bool {
	return a.Data1 == b.Data1 && a.Data2 == b.Data2 && a.Data3 == b.Data3 && a.Data4 == b.Data4
}

// String formats the identifier in the registry form used by slang.h,
// e.g. 8ba5fb08-5195-40e2-ac58-0d989c3a0102.
func (a UUID) String() string {
	return uuid.UUID(a.bytes()).String()
}

// ParseUUID parses the canonical textual form, with or without braces or
// the urn:uuid: prefix.
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("parse interface id %q: %w", s, err)
	}
	return fromBytes(u), nil
}

// MustParseUUID is ParseUUID for package-level IID declarations.
func MustParseUUID(s string) UUID {
	id, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (a UUID) bytes() [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint32(b[0:4], a.Data1)
	binary.BigEndian.PutUint16(b[4:6], a.Data2)
	binary.BigEndian.PutUint16(b[6:8], a.Data3)
	copy(b[8:], a.Data4[:])
	return b
}

func fromBytes(b [16]byte) UUID {
	var id UUID
	id.Data1 = binary.BigEndian.Uint32(b[0:4])
	id.Data2 = binary.BigEndian.Uint16(b[4:6])
	id.Data3 = binary.BigEndian.Uint16(b[6:8])
	copy(id.Data4[:], b[8:])
	return id
}
