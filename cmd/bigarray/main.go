// Command bigarray expands @bigarray items in Go source files, generating
// seq codec functions for array fields longer than the host framework
// supports.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alexhholmes/bigarray/internal/analyzer"
	"github.com/alexhholmes/bigarray/internal/codegen"
	"github.com/alexhholmes/bigarray/internal/config"
	"github.com/alexhholmes/bigarray/internal/parser"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	config    string
	threshold int
	prefix    string
	output    string
	write     bool
	list      bool
	verbose   bool
}

func run(args []string, stdout io.Writer) error {
	var f flags

	flagSet := pflag.NewFlagSet("bigarray", pflag.ContinueOnError)
	flagSet.StringVar(&f.config, "config", "", "path to the YAML configuration (default: "+config.DefaultPath+" if present)")
	flagSet.IntVar(&f.threshold, "threshold", 0, "longest literal array length encoded natively (overrides config)")
	flagSet.StringVar(&f.prefix, "prefix", "", "generated function name prefix (overrides config)")
	flagSet.StringVarP(&f.output, "output", "o", "", "write the expanded file here instead of stdout")
	flagSet.BoolVarP(&f.write, "write", "w", false, "rewrite the input files in place")
	flagSet.BoolVar(&f.list, "list", false, "print the classified fields instead of expanding")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log every classified field")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	files := flagSet.Args()
	if len(files) == 0 {
		return errors.New("no input files")
	}
	if f.output != "" && (f.write || len(files) > 1) {
		return errors.New("--output takes exactly one input file and cannot be combined with --write")
	}

	logger, err := newLogger(f.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	codegen.SetLogger(logger)

	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if flagSet.Changed("threshold") {
		cfg.Threshold = f.threshold
	}
	if flagSet.Changed("prefix") {
		cfg.Prefix = f.prefix
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	opts := cfg.Options()

	if f.list {
		for _, name := range files {
			if err := list(stdout, name, opts); err != nil {
				return err
			}
		}
		return nil
	}

	// Expand everything before writing anything.
	outputs := make([][]byte, len(files))
	for i, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			return errors.Wrap(err, "failed to read input")
		}
		out, _, err := codegen.ExpandSource(name, src, opts)
		if err != nil {
			return err
		}
		outputs[i] = out
	}

	switch {
	case f.write:
		for i, name := range files {
			info, err := os.Stat(name)
			if err != nil {
				return errors.Wrap(err, "failed to stat input")
			}
			if err := os.WriteFile(name, outputs[i], info.Mode().Perm()); err != nil {
				return errors.Wrapf(err, "failed to write %s", name)
			}
			logger.Info("file written", zap.String("file", name))
		}
	case f.output != "":
		if err := os.WriteFile(f.output, outputs[0], 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", f.output)
		}
	default:
		for _, out := range outputs {
			if _, err := stdout.Write(out); err != nil {
				return err
			}
		}
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// list prints every marked item of a file with the fields that would get
// generated functions.
func list(w io.Writer, filename string, opts codegen.Options) error {
	file, err := parser.ParseFile(filename, parser.Options{Marker: opts.Marker})
	if err != nil {
		return err
	}
	if len(file.Items) == 0 {
		fmt.Fprintf(w, "%s: no %s items\n", filename, opts.Marker)
		return nil
	}

	registry := analyzer.RegistryFromFile(file.AST)
	for _, item := range file.Items {
		analyzed, err := analyzer.Analyze(item, registry, opts.Analyzer)
		if err != nil {
			return err
		}

		ctx := analyzed.Context
		derives := lo.Compact([]string{
			lo.Ternary(ctx.Serialize, "Serialize", ""),
			lo.Ternary(ctx.Deserialize, "Deserialize", ""),
		})
		fmt.Fprintf(w, "\n%s (%s, derives=%s)\n", item.Name, item.Kind, strings.Join(derives, ","))

		if len(analyzed.Fields) == 0 {
			fmt.Fprintln(w, "  no big array fields")
		}
		for _, b := range analyzed.Fields {
			dirs := lo.Compact([]string{
				lo.Ternary(analyzed.Enabled(b, analyzer.CapSerialize), "ser", ""),
				lo.Ternary(analyzed.Enabled(b, analyzer.CapDeserialize), "de", ""),
			})
			name := b.Field.Name
			if item.Kind == parser.TaggedUnion {
				name = b.Field.Variant + "." + name
			}
			fmt.Fprintf(w, "  %-3d %-20s %-20s len=%-10s %s\n",
				b.Field.Index, name, b.Field.GoType, b.Len, strings.Join(dirs, ","))
		}
		for _, warning := range analyzed.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `bigarray generates seq codec functions for fixed-size array fields
longer than the serialization runtime encodes natively.

Items are type declarations whose doc comment contains the marker line:

  // @bigarray
  // @derive(seq.Serialize, seq.Deserialize)
  type Frame struct {
      Samples [4096]int16
  }

Usage:
  bigarray [flags] file.go...

Examples:
  # Print the expanded file
  bigarray frame.go

  # Expand in place, as a go:generate step
  //go:generate bigarray -w $GOFILE

  # Show which fields would get generated functions
  bigarray --list frame.go

Flags:
`)
	flagSet.PrintDefaults()
}
