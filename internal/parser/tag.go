package parser

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// DefaultTagKey is the struct tag key holding field directives.
const DefaultTagKey = "bigarray"

type LiteralKind int

const (
	IntLit    LiteralKind = iota // 300, 0x12c, 1_000
	StringLit                    // 'BufSize', "pkg.BufSize"
	BoolLit                      // true, false
)

func (k LiteralKind) String() string {
	switch k {
	case IntLit:
		return "integer"
	case StringLit:
		return "string"
	case BoolLit:
		return "boolean"
	default:
		return "unknown"
	}
}

// Literal is a directive value
type Literal struct {
	Kind LiteralKind
	Text string // integer text as written, or the string contents without quotes
	Bool bool
}

// Directive is one option from the bigarray tag. Value is nil for bare flags.
type Directive struct {
	Name  string
	Value *Literal
}

// ParseDirectives parses the value of a bigarray struct tag
//
// Semantics:
//   - "skip"                  : no codec for this field
//   - "skip_serializing"      : deserialize only
//   - "skip_deserializing"    : serialize only
//   - "flag=true|false"       : explicit form of the three flags
//   - "bufsize=300"           : explicit array length
//   - "bufsize='Name'"        : explicit array length from a named constant
//
// Directives are comma separated. Only syntax is checked here; names and
// value kinds are validated by the analyzer.
func ParseDirectives(tag string) ([]Directive, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, nil
	}

	var directives []Directive
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, errors.Wrapf(ErrMalformedTag, "empty directive in %q", tag)
		}

		name, value, hasValue := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !token.IsIdentifier(name) {
			return nil, errors.Wrapf(ErrMalformedTag, "invalid directive name %q", name)
		}
		if !hasValue {
			directives = append(directives, Directive{Name: name})
			continue
		}

		lit, err := parseLiteral(strings.TrimSpace(value))
		if err != nil {
			return nil, errors.Wrapf(err, "directive %s", name)
		}
		directives = append(directives, Directive{Name: name, Value: lit})
	}

	return directives, nil
}

func parseLiteral(s string) (*Literal, error) {
	switch {
	case s == "":
		return nil, errors.Wrap(ErrMalformedTag, "missing value")

	case s == "true" || s == "false":
		return &Literal{Kind: BoolLit, Text: s, Bool: s == "true"}, nil

	case len(s) >= 2 && (s[0] == '\'' || s[0] == '"'):
		if s[len(s)-1] != s[0] {
			return nil, errors.Wrapf(ErrMalformedTag, "unterminated string %s", s)
		}
		return &Literal{Kind: StringLit, Text: s[1 : len(s)-1]}, nil

	case s[0] >= '0' && s[0] <= '9':
		if _, err := strconv.ParseUint(s, 0, 64); err != nil {
			return nil, errors.Wrapf(ErrMalformedTag, "invalid integer %s", s)
		}
		return &Literal{Kind: IntLit, Text: s}, nil

	default:
		return nil, errors.Wrapf(ErrInvalidDirectiveValue,
			"expected an integer, a quoted constant name or a boolean, got %s", s)
	}
}

// IsQualifiedIdent reports whether s is an identifier or a package-qualified
// identifier such as "pkg.Name".
func IsQualifiedIdent(s string) bool {
	pkg, name, qualified := strings.Cut(s, ".")
	if !qualified {
		return token.IsIdentifier(s)
	}
	return token.IsIdentifier(pkg) && token.IsIdentifier(name)
}

// TagPair is one key:"value" entry of a struct tag.
type TagPair struct {
	Key   string
	Value string
}

// StructTag is a parsed struct tag. Order of keys is preserved.
type StructTag []TagPair

// ParseStructTag splits a struct tag into key:"value" pairs following the
// conventions of reflect.StructTag.
func ParseStructTag(tag string) (StructTag, error) {
	var pairs StructTag
	for {
		tag = strings.TrimLeft(tag, " ")
		if tag == "" {
			return pairs, nil
		}

		i := 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			return nil, errors.Wrapf(ErrMalformedTag, "bad syntax near %q", tag)
		}
		key := tag[:i]
		tag = tag[i+1:]

		// Scan quoted value, honouring escapes.
		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			return nil, errors.Wrapf(ErrMalformedTag, "unterminated value for key %q", key)
		}
		value, err := strconv.Unquote(tag[:i+1])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedTag, "bad value for key %q", key)
		}
		tag = tag[i+1:]

		pairs = append(pairs, TagPair{Key: key, Value: value})
	}
}

// Get returns the value for key.
func (t StructTag) Get(key string) (string, bool) {
	pair, ok := lo.Find(t, func(p TagPair) bool { return p.Key == key })
	return pair.Value, ok
}

// Without returns the tag with key removed.
func (t StructTag) Without(key string) StructTag {
	return lo.Reject(t, func(p TagPair, _ int) bool { return p.Key == key })
}

// With returns the tag with key set to value, replacing an existing entry in
// place or appending a new one.
func (t StructTag) With(key, value string) StructTag {
	out := make(StructTag, 0, len(t)+1)
	replaced := false
	for _, p := range t {
		if p.Key == key {
			p.Value = value
			replaced = true
		}
		out = append(out, p)
	}
	if !replaced {
		out = append(out, TagPair{Key: key, Value: value})
	}
	return out
}

func (t StructTag) String() string {
	parts := lo.Map(t, func(p TagPair, _ int) string { return p.Key + ":" + strconv.Quote(p.Value) })
	return strings.Join(parts, " ")
}

// FieldTag returns the parsed struct tag of field.
func FieldTag(field *ast.Field) (StructTag, error) {
	if field.Tag == nil {
		return nil, nil
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedTag, "tag literal %s", field.Tag.Value)
	}
	return ParseStructTag(raw)
}

// SetFieldTag replaces the struct tag of field. An empty tag removes the
// literal altogether.
func SetFieldTag(field *ast.Field, tag StructTag) {
	if len(tag) == 0 {
		field.Tag = nil
		return
	}

	text := tag.String()
	lit := "`" + text + "`"
	if strings.ContainsRune(text, '`') {
		lit = strconv.Quote(text)
	}

	pos := field.Type.End()
	if field.Tag != nil {
		pos = field.Tag.ValuePos
	}
	field.Tag = &ast.BasicLit{ValuePos: pos, Kind: token.STRING, Value: lit}
}
