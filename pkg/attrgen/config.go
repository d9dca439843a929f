package attrgen

import (
	"io"

	"github.com/justyntemme/slanggo/pkg/debug"
)

// Config drives one generator run.
type Config struct {
	// Dir is the package directory to scan. Defaults to ".".
	Dir string
	// Output is the generated file. Relative paths are resolved against
	// Dir. Defaults to <package>_slangattr.go.
	Output string
	// Types restricts emission to the named shapes. Every annotated type
	// is still validated.
	Types []string
	// ReflectionImport overrides DefaultReflectionImport.
	ReflectionImport string
	// Logger receives progress messages. Nil means silent.
	Logger *debug.Logger
}

// OutputSuffix is appended to the package name to form the default output
// file name.
const OutputSuffix = "_slangattr.go"

func (c Config) withDefaults() Config {
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.ReflectionImport == "" {
		c.ReflectionImport = DefaultReflectionImport
	}
	if c.Logger == nil {
		c.Logger = debug.New(io.Discard, "attrgen", debug.DefaultFlags)
		c.Logger.SetEnabled(false)
	}
	return c
}
