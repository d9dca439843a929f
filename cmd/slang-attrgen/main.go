// Command slang-attrgen generates FromUserAttribute decoders for the
// //slang:attribute types of a Go package.
//
// It is meant to run from go:generate:
//
//	//go:generate go run github.com/justyntemme/slanggo/cmd/slang-attrgen
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ZenLiuCN/fn"
	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/justyntemme/slanggo/pkg/attrgen"
	"github.com/justyntemme/slanggo/pkg/debug"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "slang-attrgen: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "slang-attrgen"
	app.Usage = "generate Slang user-attribute decoders"
	app.Description = "slang-attrgen validates every //slang:attribute type in a package and writes " +
		"FromUserAttribute decoders for them. Nothing is written unless every type is valid."
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Value:   ".",
			Usage:   "package directory",
			EnvVars: []string{"SLANG_ATTRGEN_DIR"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output file, default <package>" + attrgen.OutputSuffix,
			EnvVars: []string{"SLANG_ATTRGEN_OUTPUT"},
		},
		&cli.StringSliceFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "only emit decoders for these types",
			EnvVars: []string{"SLANG_ATTRGEN_TYPES"},
		},
		&cli.StringFlag{
			Name:    "reflection-import",
			Value:   attrgen.DefaultReflectionImport,
			Usage:   "import path of the reflection package used by generated code",
			EnvVars: []string{"SLANG_ATTRGEN_REFLECTION_IMPORT"},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log at debug level, same as --log-level=debug",
			EnvVars: []string{"SLANG_ATTRGEN_VERBOSE"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "minimum log level: debug, info, warn, error or off",
			EnvVars: []string{"SLANG_ATTRGEN_LOG_LEVEL"},
		},
		&cli.BoolFlag{
			Name:  "dump",
			Usage: "dump the inspected shapes",
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "append logs to this file instead of stderr",
			EnvVars: []string{"SLANG_ATTRGEN_LOG_FILE"},
		},
	}
	app.Action = func(ctx *cli.Context) error { return run(ctx, true) }
	app.Commands = []*cli.Command{
		{
			Name:   "check",
			Usage:  "validate the package without writing anything",
			Action: func(ctx *cli.Context) error { return run(ctx, false) },
		},
	}
	return app
}

// newLogger builds the command logger from --log-file and --log-level. The
// returned closer is nil when logging to stderr.
func newLogger(ctx *cli.Context) (*debug.Logger, io.Closer, error) {
	level, err := debug.ParseLevel(ctx.String("log-level"))
	if err != nil {
		return nil, nil, err
	}
	if ctx.Bool("verbose") {
		level = debug.LogLevelDebug
	}

	const flags = debug.FlagLevel | debug.FlagPrefix
	var (
		log    *debug.Logger
		closer io.Closer
	)
	if name := ctx.String("log-file"); name != "" {
		if log, closer, err = debug.NewFileLogger(name, "slang-attrgen", flags|debug.FlagTime); err != nil {
			return nil, nil, err
		}
	} else {
		log = debug.New(ctx.App.ErrWriter, "slang-attrgen", flags)
	}
	log.SetLevel(level)
	return log, closer, nil
}

func run(ctx *cli.Context, write bool) error {
	log, closer, err := newLogger(ctx)
	if err != nil {
		return err
	}
	if closer != nil {
		defer fn.IgnoreClose(closer)
	}

	res, err := attrgen.Generate(ctx.Context, attrgen.Config{
		Dir:              ctx.String("dir"),
		Output:           ctx.String("output"),
		Types:            ctx.StringSlice("type"),
		ReflectionImport: ctx.String("reflection-import"),
		Logger:           log.With("attrgen"),
	})
	if err != nil {
		return err
	}

	if ctx.Bool("dump") {
		cfg := spew.NewDefaultConfig()
		cfg.MaxDepth = 4
		cfg.DisablePointerAddresses = true
		cfg.Fdump(ctx.App.Writer, res.Shapes)
	}

	if !write {
		log.Info("%s: %d attribute types ok", res.Package, len(res.Shapes))
		return nil
	}
	if err := res.Write(); err != nil {
		return err
	}
	log.Info("wrote %s", res.Output)
	return nil
}
