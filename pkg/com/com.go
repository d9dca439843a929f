// Package com implements the host side of Slang's COM-style object
// protocol: borrowed views that dispatch through an object's vtable, a
// host-owned ISlangBlob, and the Ptr smart handle that owns exactly one
// reference.
//
// All cgo for the protocol lives in this package. Other packages only see
// unsafe.Pointer values and the typed views below.
package com

// #cgo CFLAGS: -I${SRCDIR}/../../include
// #include "slang/slang_abi.h"
//
// // Vtable dispatch helpers. Slots are addressed by position, exactly as
// // native callers do.
// static inline SlangResult unknown_query_interface(ISlangUnknown* self, const SlangUUID* uuid, void** out) {
//     return self->vtbl->queryInterface(self, uuid, out);
// }
//
// static inline uint32_t unknown_add_ref(ISlangUnknown* self) {
//     return self->vtbl->addRef(self);
// }
//
// static inline uint32_t unknown_release(ISlangUnknown* self) {
//     return self->vtbl->release(self);
// }
//
// static inline const void* blob_get_buffer_pointer(ISlangBlob* self) {
//     return self->vtbl->getBufferPointer(self);
// }
//
// static inline size_t blob_get_buffer_size(ISlangBlob* self) {
//     return self->vtbl->getBufferSize(self);
// }
import "C"
import (
	"unsafe"

	"github.com/justyntemme/slanggo/pkg/slang"
)

// SlangUUID and the Go UUID are used interchangeably at the boundary.
var _ = [1]struct{}{}[unsafe.Sizeof(slang.UUID{})-uintptr(C.sizeof_SlangUUID)]

// Interface is satisfied by the typed views of this package. T's zero value
// reports the interface ID used to query for it.
type Interface interface {
	~struct{ p unsafe.Pointer }
	IID() slang.UUID
	Raw() unsafe.Pointer
}

// view builds a typed view over a raw interface pointer.
func view[T Interface](raw unsafe.Pointer) T {
	return T(struct{ p unsafe.Pointer }{raw})
}

// Unknown is a borrowed view of any object that starts with an
// ISlangUnknown vtable pointer.
type Unknown struct {
	p unsafe.Pointer
}

// AsUnknown returns a borrowed view without touching the reference count.
func AsUnknown(raw unsafe.Pointer) Unknown {
	return Unknown{p: raw}
}

// IID returns the ISlangUnknown identifier.
func (Unknown) IID() slang.UUID { return slang.IIDUnknown() }

// Raw returns the wrapped pointer.
func (u Unknown) Raw() unsafe.Pointer { return u.p }

func (u Unknown) c() *C.ISlangUnknown { return (*C.ISlangUnknown)(u.p) }

// QueryInterface asks the object for the interface iid. On success the
// returned pointer carries a new reference the caller must release.
func (u Unknown) QueryInterface(iid slang.UUID) (unsafe.Pointer, error) {
	var out unsafe.Pointer
	res := queryInterfaceRaw(u, &iid, &out)
	if err := res.Err(); err != nil {
		return nil, &slang.Error{Code: res, Op: "queryInterface " + iid.String()}
	}
	return out, nil
}

// queryInterfaceRaw calls slot 0 with caller-chosen pointers, nil included.
func queryInterfaceRaw(u Unknown, iid *slang.UUID, out *unsafe.Pointer) slang.Result {
	return slang.Result(C.unknown_query_interface(u.c(), (*C.SlangUUID)(unsafe.Pointer(iid)), out))
}

// AddRef increments the reference count and returns the new value.
func (u Unknown) AddRef() uint32 {
	return uint32(C.unknown_add_ref(u.c()))
}

// Release decrements the reference count and returns the new value. The
// object may be gone once Release returns; u must not be used again.
func (u Unknown) Release() uint32 {
	return uint32(C.unknown_release(u.c()))
}

// Blob is a borrowed view of an ISlangBlob, native or host-owned.
type Blob struct {
	p unsafe.Pointer
}

// AsBlob returns a borrowed view without touching the reference count. raw
// must already be known to implement ISlangBlob.
func AsBlob(raw unsafe.Pointer) Blob {
	return Blob{p: raw}
}

// IID returns the ISlangBlob identifier.
func (Blob) IID() slang.UUID { return slang.IIDBlob() }

// Raw returns the wrapped pointer.
func (b Blob) Raw() unsafe.Pointer { return b.p }

// Unknown returns the base view of the same object.
func (b Blob) Unknown() Unknown { return Unknown{p: b.p} }

// BufferPointer returns the start of the blob's bytes.
func (b Blob) BufferPointer() unsafe.Pointer {
	return unsafe.Pointer(C.blob_get_buffer_pointer((*C.ISlangBlob)(b.p)))
}

// BufferSize returns the number of bytes in the blob.
func (b Blob) BufferSize() int {
	return int(C.blob_get_buffer_size((*C.ISlangBlob)(b.p)))
}

// Bytes returns a view of the blob contents. The slice aliases native
// memory and is only valid while a reference to the blob is held.
func (b Blob) Bytes() []byte {
	n := b.BufferSize()
	if n == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(b.BufferPointer()), n)
}

// CopyBytes returns a Go-owned copy of the blob contents.
func (b Blob) CopyBytes() []byte {
	return append([]byte(nil), b.Bytes()...)
}
