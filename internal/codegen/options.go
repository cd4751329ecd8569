package codegen

import (
	"path"

	"github.com/alexhholmes/bigarray/internal/analyzer"
	"github.com/alexhholmes/bigarray/internal/parser"
)

// DefaultSeqImport is the import path of the serialization runtime used by
// generated code.
const DefaultSeqImport = "github.com/alexhholmes/bigarray/seq"

// DefaultPrefix starts every generated function name.
const DefaultPrefix = "bigarray"

// Options controls a file expansion
type Options struct {
	Marker    string // doc comment line marking items
	Prefix    string // generated function name prefix
	SeqImport string // import path of the serialization runtime
	Register  bool   // emit init functions registering the hooks
	Analyzer  analyzer.Options
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Marker:    parser.DefaultMarker,
		Prefix:    DefaultPrefix,
		SeqImport: DefaultSeqImport,
		Register:  true,
		Analyzer:  analyzer.DefaultOptions(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Marker == "" {
		o.Marker = def.Marker
	}
	if o.Prefix == "" {
		o.Prefix = def.Prefix
	}
	if o.SeqImport == "" {
		o.SeqImport = def.SeqImport
	}
	if o.Analyzer.Threshold == 0 {
		o.Analyzer.Threshold = def.Analyzer.Threshold
	}
	if o.Analyzer.TagKey == "" {
		o.Analyzer.TagKey = def.Analyzer.TagKey
	}
	if o.Analyzer.HostTagKey == "" {
		o.Analyzer.HostTagKey = def.Analyzer.HostTagKey
	}
	return o
}

// SeqPackage is the package name generated code uses to refer to the runtime.
func (o Options) SeqPackage() string {
	return path.Base(o.SeqImport)
}
