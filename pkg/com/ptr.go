package com

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

// Ptr owns exactly one reference to an interface object and releases it
// exactly once. Use it with defer:
//
//	blob := com.Wrap[com.Blob](raw)
//	defer blob.Close()
//
// A handle that becomes unreachable without being closed keeps its
// reference, unless Config.ReleaseUnreachable is on, in which case a runtime
// cleanup releases it.
type Ptr[T Interface] struct {
	obj     T
	state   *handleState
	cleanup runtime.Cleanup
	tracked bool
}

// handleState is kept apart from Ptr so the cleanup can reach it without
// keeping the Ptr itself alive.
type handleState struct {
	raw      unsafe.Pointer
	released atomic.Bool
}

func (s *handleState) release() bool {
	if !s.released.CompareAndSwap(false, true) {
		return false
	}
	Unknown{p: s.raw}.Release()
	return true
}

func releaseUnreachable(s *handleState) {
	if s.release() {
		logger().Warn("com: handle %p released by cleanup, missing Close", s.raw)
	}
}

// Wrap takes ownership of the reference raw represents. It panics if raw
// is nil: a nil interface pointer is a programming error, not a status.
func Wrap[T Interface](raw unsafe.Pointer) *Ptr[T] {
	if raw == nil {
		panic("com: to-be-wrapped pointer must not be nil")
	}
	p := &Ptr[T]{
		obj:   view[T](raw),
		state: &handleState{raw: raw},
	}
	if currentConfig().ReleaseUnreachable {
		p.cleanup = runtime.AddCleanup(p, releaseUnreachable, p.state)
		p.tracked = true
	}
	return p
}

// Raw returns the wrapped pointer without affecting the reference count.
func (p *Ptr[T]) Raw() unsafe.Pointer {
	return p.state.raw
}

// Get returns a borrowed view of the object. Calls made through it never
// change the reference count, and it must not outlive p.
func (p *Ptr[T]) Get() T {
	return p.obj
}

// Released reports whether the handle has given up its reference.
func (p *Ptr[T]) Released() bool {
	return p.state.released.Load()
}

// Release gives up the reference. Only the first call reaches the object.
func (p *Ptr[T]) Release() {
	if p.tracked {
		p.cleanup.Stop()
	}
	p.state.release()
}

// Close calls Release. It exists so a Ptr satisfies io.Closer.
func (p *Ptr[T]) Close() error {
	p.Release()
	return nil
}

// Clone adds a reference and returns a second handle owning it.
func (p *Ptr[T]) Clone() *Ptr[T] {
	Unknown{p: p.state.raw}.AddRef()
	return Wrap[T](p.state.raw)
}

// Cast queries the object behind p for U. The new handle owns the
// reference queryInterface added; p keeps its own.
func Cast[U, T Interface](p *Ptr[T]) (*Ptr[U], error) {
	var target U
	raw, err := Unknown{p: p.state.raw}.QueryInterface(target.IID())
	if err != nil {
		return nil, err
	}
	return Wrap[U](raw), nil
}
