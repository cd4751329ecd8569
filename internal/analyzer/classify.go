package analyzer

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/alexhholmes/bigarray/internal/parser"
	"github.com/alexhholmes/bigarray/seq"
)

// DefaultThreshold is the longest array the host framework encodes natively.
const DefaultThreshold = seq.MaxArrayLen

// Options controls field classification
type Options struct {
	Threshold  int    // literal lengths above this need a codec
	TagKey     string // struct tag key holding directives
	HostTagKey string // struct tag key of the serialization framework
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Threshold:  DefaultThreshold,
		TagKey:     parser.DefaultTagKey,
		HostTagKey: seq.TagKey,
	}
}

// BigArrayField is a field that needs generated codec functions
type BigArrayField struct {
	Field       *parser.Field
	Len         string   // length expression as written
	Named       bool     // Len is a constant name rather than a literal
	Explicit    bool     // Len came from a bufsize directive
	Serialize   bool     // no serialize customization is already present
	Deserialize bool     // no deserialize customization is already present
	ElementType ast.Expr // nil unless the declared type is an array
}

// LenExpr returns Len as an int-typed expression for generated code.
func (b *BigArrayField) LenExpr() string {
	if b.Named {
		return "int(" + b.Len + ")"
	}
	return b.Len
}

// Classify decides whether field needs generated codec functions.
//
// The directive key is always removed from the field's tag, also for fields
// that end up unclassified. Returns nil when the field is skipped, is not a
// big array, or already has both directions customized.
func Classify(field *parser.Field, opts Options) (*BigArrayField, error) {
	tag, err := parser.FieldTag(field.Node)
	if err != nil {
		return nil, parser.FieldError(field, err, "")
	}

	raw, hasDirectives := tag.Get(opts.TagKey)
	parser.SetFieldTag(field.Node, tag.Without(opts.TagKey))

	var directives []parser.Directive
	if hasDirectives {
		directives, err = parser.ParseDirectives(raw)
		if err != nil {
			return nil, parser.FieldError(field, err, "")
		}
	}

	b := &BigArrayField{Field: field, Serialize: true, Deserialize: true}

	for _, d := range directives {
		switch d.Name {
		case "skip":
			on, err := flagValue(d)
			if err != nil {
				return nil, parser.FieldError(field, err, "")
			}
			if on {
				return nil, nil
			}

		case "skip_serializing":
			on, err := flagValue(d)
			if err != nil {
				return nil, parser.FieldError(field, err, "")
			}
			if on {
				b.Serialize = false
			}

		case "skip_deserializing":
			on, err := flagValue(d)
			if err != nil {
				return nil, parser.FieldError(field, err, "")
			}
			if on {
				b.Deserialize = false
			}

		case "bufsize":
			length, named, err := bufsize(d)
			if err != nil {
				return nil, parser.FieldError(field, err, "")
			}
			b.Len, b.Named, b.Explicit = length, named, true

		default:
			return nil, parser.FieldError(field, errors.Wrapf(parser.ErrUnknownDirective, "%q", d.Name),
				"expected skip, skip_serializing, skip_deserializing or bufsize")
		}
	}

	hostRaw, _ := tag.Get(opts.HostTagKey)
	host, err := seq.ParseTag(hostRaw)
	if err != nil {
		return nil, parser.FieldError(field, errors.Mark(err, parser.ErrMalformedTag), opts.HostTagKey+" tag")
	}
	if host.SerializeWith != "" || host.SkipSerializing {
		b.Serialize = false
	}
	if host.DeserializeWith != "" || host.SkipDeserializing {
		b.Deserialize = false
	}
	if host.Skip || host.With != "" {
		b.Serialize = false
		b.Deserialize = false
	}

	if arr, ok := field.Node.Type.(*ast.ArrayType); ok && arr.Len != nil {
		b.ElementType = arr.Elt
		if !b.Explicit {
			b.Len, b.Named = arrayLen(arr.Len, opts.Threshold)
		}
	}

	if b.Len == "" || (!b.Serialize && !b.Deserialize) {
		return nil, nil
	}
	return b, nil
}

func flagValue(d parser.Directive) (bool, error) {
	if d.Value == nil {
		return true, nil
	}
	if d.Value.Kind != parser.BoolLit {
		return false, errors.Wrapf(parser.ErrInvalidDirectiveValue,
			"%s expects a boolean, got %s %s", d.Name, d.Value.Kind, d.Value.Text)
	}
	return d.Value.Bool, nil
}

func bufsize(d parser.Directive) (length string, named bool, err error) {
	if d.Value == nil {
		return "", false, errors.Wrap(parser.ErrInvalidDirectiveValue, "bufsize requires a value")
	}
	switch d.Value.Kind {
	case parser.IntLit:
		return d.Value.Text, false, nil
	case parser.StringLit:
		if !parser.IsQualifiedIdent(d.Value.Text) {
			return "", false, errors.Wrapf(parser.ErrInvalidDirectiveValue,
				"bufsize constant %q is not an identifier", d.Value.Text)
		}
		return d.Value.Text, true, nil
	default:
		return "", false, errors.Wrapf(parser.ErrInvalidDirectiveValue,
			"bufsize expects an integer or a quoted constant name, got %s %s", d.Value.Kind, d.Value.Text)
	}
}

// arrayLen extracts the length of a declared array. Integer literals qualify
// above threshold; constant names always qualify since their value is not
// known here.
func arrayLen(expr ast.Expr, threshold int) (string, bool) {
	switch l := expr.(type) {
	case *ast.BasicLit:
		if l.Kind != token.INT {
			return "", false
		}
		n, err := strconv.ParseUint(l.Value, 0, 64)
		if err == nil && n > uint64(threshold) {
			return l.Value, false
		}
	case *ast.Ident:
		return l.Name, true
	case *ast.SelectorExpr:
		if _, ok := l.X.(*ast.Ident); ok {
			return types.ExprString(l), true
		}
	}
	return "", false
}
