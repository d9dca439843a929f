package com

import (
	"io"
	"sync/atomic"

	"github.com/justyntemme/slanggo/pkg/debug"
)

// Config controls runtime behavior of the package.
type Config struct {
	// ReleaseUnreachable registers a cleanup on every Ptr so a handle that
	// is dropped without Close still releases its reference. With it on, a
	// view returned by Get must not be used once its Ptr is unreachable:
	// the cleanup may free the object underneath it.
	ReleaseUnreachable bool

	// TraceRefCounts logs every reference count transition of host-owned
	// objects at debug level.
	TraceRefCounts bool
}

// DefaultConfig is the configuration in effect until SetConfig is called.
// A dropped handle leaks its reference rather than freeing memory a
// borrowed view may still point at.
var DefaultConfig = Config{}

var (
	configPtr atomic.Pointer[Config]
	loggerPtr atomic.Pointer[debug.Logger]
)

func init() {
	cfg := DefaultConfig
	configPtr.Store(&cfg)

	silent := debug.New(io.Discard, "com", debug.DefaultFlags)
	silent.SetEnabled(false)
	loggerPtr.Store(silent)
}

// SetConfig replaces the package configuration. Handles created before the
// call keep the behavior they were created with.
func SetConfig(cfg Config) {
	configPtr.Store(&cfg)
}

func currentConfig() Config {
	return *configPtr.Load()
}

// SetLogger routes package diagnostics to l. Pass nil to silence them.
func SetLogger(l *debug.Logger) {
	if l == nil {
		l = debug.New(io.Discard, "com", debug.DefaultFlags)
		l.SetEnabled(false)
	}
	loggerPtr.Store(l)
}

func logger() *debug.Logger {
	return loggerPtr.Load()
}
