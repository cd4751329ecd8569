package config

import (
	"bytes"
	"go/token"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/alexhholmes/bigarray/internal/analyzer"
	"github.com/alexhholmes/bigarray/internal/codegen"
	"github.com/alexhholmes/bigarray/internal/parser"
	"github.com/alexhholmes/bigarray/seq"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = ".bigarray.yaml"

// Config is the configuration of the bigarray tool. Every key is optional.
type Config struct {
	// Threshold is the longest array literal length the host framework
	// encodes on its own. Longer literal arrays get generated functions.
	Threshold int `yaml:"threshold"`

	// Marker is the doc comment line marking an item for expansion.
	Marker string `yaml:"marker"`

	// Tag is the struct tag key holding field directives.
	Tag string `yaml:"tag"`

	// HostTag is the struct tag key of the serialization framework. The
	// bundled seq runtime only reads seq.TagKey; other keys are meant for
	// alternate runtimes set through SeqImport.
	HostTag string `yaml:"host_tag"`

	// Prefix starts every generated function name.
	Prefix string `yaml:"prefix"`

	// SeqImport is the import path generated code uses for the runtime.
	SeqImport string `yaml:"seq_import"`

	// Register controls generation of init functions registering the
	// generated hooks. Items can still opt out with register=false.
	Register bool `yaml:"register"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		Threshold: analyzer.DefaultThreshold,
		Marker:    parser.DefaultMarker,
		Tag:       parser.DefaultTagKey,
		HostTag:   seq.TagKey,
		Prefix:    codegen.DefaultPrefix,
		SeqImport: codegen.DefaultSeqImport,
		Register:  true,
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// loads DefaultPath if it exists and the defaults otherwise.
func Load(path string) (*Config, error) {
	config := Default()

	optional := path == ""
	if optional {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := Parse(data, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return config, nil
}

// Parse decodes YAML data into config. Keys missing from data keep their
// current value.
func Parse(data []byte, config *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		// An empty document decodes nothing.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Threshold <= 0 {
		return errors.Newf("threshold must be positive, got %d", c.Threshold)
	}
	if !strings.HasPrefix(c.Marker, "@") || strings.ContainsAny(c.Marker, " \t") {
		return errors.Newf("marker %q must start with @ and contain no spaces", c.Marker)
	}

	idents := []struct {
		key   string
		value string
	}{
		{"tag", c.Tag},
		{"host_tag", c.HostTag},
		{"prefix", c.Prefix},
	}
	for _, id := range idents {
		if !token.IsIdentifier(id.value) {
			return errors.Newf("%s %q is not an identifier", id.key, id.value)
		}
	}
	if c.Tag == c.HostTag {
		return errors.Newf("tag and host_tag must differ, both are %q", c.Tag)
	}

	if c.SeqImport == "" {
		return errors.New("seq_import is required")
	}
	if c.SeqImport == codegen.DefaultSeqImport && c.HostTag != seq.TagKey {
		return errors.Newf("host_tag %q is ignored by %s, which reads %q tags", c.HostTag, c.SeqImport, seq.TagKey)
	}
	return nil
}

// Options converts the configuration to expansion options.
func (c *Config) Options() codegen.Options {
	return codegen.Options{
		Marker:    c.Marker,
		Prefix:    c.Prefix,
		SeqImport: c.SeqImport,
		Register:  c.Register,
		Analyzer: analyzer.Options{
			Threshold:  c.Threshold,
			TagKey:     c.Tag,
			HostTagKey: c.HostTag,
		},
	}
}
