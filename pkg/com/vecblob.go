package com

// #include <stdlib.h>
// #include "vecblob.h"
import "C"
import (
	"sync/atomic"
	"unsafe"

	"github.com/justyntemme/slanggo/pkg/slang"
)

// The vtable pointer must be the first word of the record.
var _ = [1]struct{}{}[unsafe.Offsetof(C.VecBlob{}.vtbl)]

// liveVecBlobs counts VecBlob records that have not been reclaimed yet.
var liveVecBlobs atomic.Int64

// LiveVecBlobs returns the number of host-owned blobs still alive.
func LiveVecBlobs() int64 {
	return liveVecBlobs.Load()
}

// NewVecBlob copies data into a new host-owned ISlangBlob with a reference
// count of one and returns it as an ISlangUnknown pointer. Ownership of
// that reference passes to the caller, who must release it exactly once
// (directly, through Wrap, or by handing it to native code that does).
//
// The record and its payload live in C memory, so native code may keep
// the pointer for as long as it holds a reference.
func NewVecBlob(data []byte) unsafe.Pointer {
	b := (*C.VecBlob)(C.malloc(C.sizeof_VecBlob))
	b.vtbl = &C.vecblob_vtbl
	b.refCount = 1
	b.data = C.CBytes(data)
	b.size = C.size_t(len(data))

	liveVecBlobs.Add(1)
	if cfg := currentConfig(); cfg.TraceRefCounts {
		logger().Debug("vecblob %p: created, %d bytes", b, len(data))
	}
	return unsafe.Pointer(b)
}

// NewVecBlobString copies s into a new host-owned blob. See NewVecBlob.
func NewVecBlobString(s string) unsafe.Pointer {
	return NewVecBlob(unsafe.Slice(unsafe.StringData(s), len(s)))
}

// NewBlob creates a host-owned blob and wraps it straight away.
func NewBlob(data []byte) *Ptr[Blob] {
	return Wrap[Blob](NewVecBlob(data))
}

// vecBlobFrom recovers the record behind an interface pointer. Every
// callback goes through here; the pointer is always one NewVecBlob made,
// because only vecblob_vtbl routes calls to these functions.
func vecBlobFrom(self unsafe.Pointer) *C.VecBlob {
	return (*C.VecBlob)(self)
}

func refCount(b *C.VecBlob) *uint32 {
	return (*uint32)(unsafe.Pointer(&b.refCount))
}

// reclaim frees the payload and then the record itself.
func reclaim(b *C.VecBlob) {
	C.free(b.data)
	b.data = nil
	b.size = 0
	C.free(unsafe.Pointer(b))
	liveVecBlobs.Add(-1)
}

// recoverPanic stops a panic in a callback from unwinding into native
// frames. It must be deferred directly by the exported function.
func recoverPanic(operation string) {
	if r := recover(); r != nil {
		logger().Error("%s: recovered panic: %v", operation, r)
	}
}

//export GoVecBlobQueryInterface
func GoVecBlobQueryInterface(self *C.ISlangUnknown, iid *C.SlangUUID, out *unsafe.Pointer) (res C.SlangResult) {
	// Reported if the body panics.
	res = C.SlangResult(slang.ResultInvalidArg)
	defer recoverPanic("GoVecBlobQueryInterface")

	// Both pointers are checked before either is dereferenced.
	if out == nil || iid == nil {
		return C.SlangResult(slang.ResultInvalidArg)
	}

	requested := *(*slang.UUID)(unsafe.Pointer(iid))
	if !requested.Equal(slang.IIDUnknown()) && !requested.Equal(slang.IIDBlob()) {
		*out = nil
		return C.SlangResult(slang.ResultNoInterface)
	}

	b := vecBlobFrom(unsafe.Pointer(self))
	atomic.AddUint32(refCount(b), 1)
	*out = unsafe.Pointer(b)
	return C.SlangResult(slang.ResultOK)
}

//export GoVecBlobAddRef
func GoVecBlobAddRef(self *C.ISlangUnknown) C.uint32_t {
	defer recoverPanic("GoVecBlobAddRef")

	b := vecBlobFrom(unsafe.Pointer(self))
	n := atomic.AddUint32(refCount(b), 1)
	if cfg := currentConfig(); cfg.TraceRefCounts {
		logger().Debug("vecblob %p: addRef -> %d", b, n)
	}
	return C.uint32_t(n)
}

// GoVecBlobRelease is the only place a VecBlob's lifetime ends. Go atomics
// are sequentially consistent, so the decrement that reaches zero observes
// every earlier increment and every write made by other holders.
//
//export GoVecBlobRelease
func GoVecBlobRelease(self *C.ISlangUnknown) C.uint32_t {
	defer recoverPanic("GoVecBlobRelease")

	b := vecBlobFrom(unsafe.Pointer(self))
	n := atomic.AddUint32(refCount(b), ^uint32(0))
	switch {
	case n == 0:
		if cfg := currentConfig(); cfg.TraceRefCounts {
			logger().Debug("vecblob %p: released, reclaiming", b)
		}
		reclaim(b)
	case n == ^uint32(0):
		logger().Error("vecblob %p: release on a dead object", b)
	default:
		if cfg := currentConfig(); cfg.TraceRefCounts {
			logger().Debug("vecblob %p: release -> %d", b, n)
		}
	}
	return C.uint32_t(n)
}

//export GoVecBlobGetBufferPointer
func GoVecBlobGetBufferPointer(self *C.ISlangBlob) unsafe.Pointer {
	defer recoverPanic("GoVecBlobGetBufferPointer")
	return vecBlobFrom(unsafe.Pointer(self)).data
}

//export GoVecBlobGetBufferSize
func GoVecBlobGetBufferSize(self *C.ISlangBlob) C.size_t {
	defer recoverPanic("GoVecBlobGetBufferSize")
	return vecBlobFrom(unsafe.Pointer(self)).size
}
