package com

import (
	"bytes"
	"errors"
	"io"
	"runtime"
	"strings"
	"testing"
	"unsafe"

	"github.com/justyntemme/slanggo/pkg/debug"
	"github.com/justyntemme/slanggo/pkg/slang"
)

// foreign is a view type no VecBlob implements.
type foreign struct {
	p unsafe.Pointer
}

func (foreign) IID() slang.UUID { return slang.MustParseUUID("6f6e7b2a-3c1d-4e5f-8a9b-0c1d2e3f4a5b") }
func (f foreign) Raw() unsafe.Pointer { return f.p }

func TestWrapNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected Wrap(nil) to panic")
		}
	}()
	Wrap[Blob](nil)
}

func TestPtrReleasesOnce(t *testing.T) {
	before := LiveVecBlobs()
	raw := NewVecBlob([]byte("handle"))
	// An extra reference lets us observe the count after the handle is done.
	AsUnknown(raw).AddRef()

	p := Wrap[Blob](raw)
	if p.Raw() != raw {
		t.Error("Raw should return the wrapped pointer")
	}
	if got := refs(AsUnknown(raw)); got != 2 {
		t.Errorf("Wrap must not add a reference, count is %d", got)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	p.Release()
	_ = p.Close()

	if !p.Released() {
		t.Error("Expected handle to report released")
	}
	if got := refs(AsUnknown(raw)); got != 1 {
		t.Errorf("Expected exactly one release, count is %d", got)
	}

	AsUnknown(raw).Release()
	if LiveVecBlobs() != before {
		t.Error("Blob not reclaimed")
	}
}

func TestPtrReleasesOnEveryExitPath(t *testing.T) {
	before := LiveVecBlobs()

	errEarly := errors.New("early exit")
	use := func(fail bool) (err error) {
		p := NewBlob([]byte("scoped"))
		defer p.Close()
		if fail {
			return errEarly
		}
		if p.Get().BufferSize() != 6 {
			return errors.New("unexpected size")
		}
		return nil
	}

	if err := use(false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := use(true); !errors.Is(err, errEarly) {
		t.Fatalf("Expected early exit, got %v", err)
	}

	func() {
		defer func() { _ = recover() }()
		p := NewBlob([]byte("panic"))
		defer p.Close()
		panic("boom")
	}()

	if LiveVecBlobs() != before {
		t.Errorf("Expected %d live blobs, got %d", before, LiveVecBlobs())
	}
}

func TestPtrGetBorrows(t *testing.T) {
	p := NewBlob([]byte("borrowed"))
	defer p.Close()

	for i := 0; i < 3; i++ {
		if got := string(p.Get().Bytes()); got != "borrowed" {
			t.Errorf("Expected 'borrowed', got %q", got)
		}
	}
	if got := refs(p.Get().Unknown()); got != 1 {
		t.Errorf("Get must not change the count, got %d", got)
	}
}

func TestPtrClone(t *testing.T) {
	before := LiveVecBlobs()
	p := NewBlob([]byte("clone"))
	q := p.Clone()

	if q.Raw() != p.Raw() {
		t.Error("Clone should share the object")
	}
	if got := refs(p.Get().Unknown()); got != 2 {
		t.Errorf("Expected count 2, got %d", got)
	}

	p.Release()
	if LiveVecBlobs() != before+1 {
		t.Error("Object reclaimed while a clone is alive")
	}
	if got := string(q.Get().Bytes()); got != "clone" {
		t.Errorf("Expected 'clone', got %q", got)
	}
	q.Release()
	if LiveVecBlobs() != before {
		t.Error("Blob not reclaimed")
	}
}

func TestCast(t *testing.T) {
	before := LiveVecBlobs()
	blob := NewBlob([]byte("cast"))

	unk, err := Cast[Unknown](blob)
	if err != nil {
		t.Fatalf("Cast to Unknown failed: %v", err)
	}
	if got := refs(unk.Get()); got != 2 {
		t.Errorf("Expected count 2 after cast, got %d", got)
	}

	back, err := Cast[Blob](unk)
	if err != nil {
		t.Fatalf("Cast back to Blob failed: %v", err)
	}
	if got := string(back.Get().Bytes()); got != "cast" {
		t.Errorf("Expected 'cast', got %q", got)
	}

	for _, c := range []io.Closer{blob, unk, back} {
		_ = c.Close()
	}
	if LiveVecBlobs() != before {
		t.Error("Blob not reclaimed after all handles closed")
	}
}

func TestInterfaceIDs(t *testing.T) {
	if !(Blob{}).IID().Equal(slang.IIDBlob()) {
		t.Error("Blob should report IIDBlob")
	}
	if !(Unknown{}).IID().Equal(slang.IIDUnknown()) {
		t.Error("Unknown should report IIDUnknown")
	}
}

func TestCastUnsupported(t *testing.T) {
	blob := NewBlob([]byte("cast"))
	defer blob.Close()

	got, err := Cast[foreign](blob)
	if got != nil {
		t.Error("Expected no handle on failure")
	}
	if !errors.Is(err, slang.ErrNoInterface) {
		t.Errorf("Expected ErrNoInterface, got %v", err)
	}
	if n := refs(blob.Get().Unknown()); n != 1 {
		t.Errorf("Failed cast must not change the count, got %d", n)
	}
}

func TestBorrowedViewOutlivesDroppedPtr(t *testing.T) {
	before := LiveVecBlobs()
	view := NewBlob([]byte("borrowed")).Get()
	runtime.GC()
	runtime.GC()

	if LiveVecBlobs() != before+1 {
		t.Fatal("Blob reclaimed while a borrowed view is still in use")
	}
	if got := string(view.Bytes()); got != "borrowed" {
		t.Errorf("Expected 'borrowed', got %q", got)
	}

	view.Unknown().Release()
	if LiveVecBlobs() != before {
		t.Error("Blob not reclaimed after the leaked reference was released")
	}
}

func TestPtrTrackedConfig(t *testing.T) {
	var buf bytes.Buffer
	log := debug.New(&buf, "com", debug.FlagLevel)
	log.SetLevel(debug.LogLevelDebug)
	SetLogger(log)
	SetConfig(Config{ReleaseUnreachable: true, TraceRefCounts: true})
	defer func() {
		SetConfig(DefaultConfig)
		SetLogger(nil)
	}()

	p := NewBlob([]byte("trace"))
	if !p.tracked {
		t.Error("Expected a cleanup when ReleaseUnreachable is on")
	}
	p.Release()

	out := buf.String()
	for _, want := range []string{"created, 5 bytes", "released, reclaiming"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got:\n%s", want, out)
		}
	}
}

func TestDefaultConfigLeavesHandlesUntracked(t *testing.T) {
	p := NewBlob([]byte("plain"))
	defer p.Close()
	if p.tracked {
		t.Error("Expected no cleanup with the default configuration")
	}
}
