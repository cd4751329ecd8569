package parser

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectives(t *testing.T) {
	tests := []struct {
		tag     string
		want    []Directive
		wantErr error
	}{
		{"", nil, nil},
		{"skip", []Directive{{Name: "skip"}}, nil},
		{"skip=true", []Directive{{Name: "skip", Value: &Literal{Kind: BoolLit, Text: "true", Bool: true}}}, nil},
		{"skip_serializing=false", []Directive{{Name: "skip_serializing", Value: &Literal{Kind: BoolLit, Text: "false"}}}, nil},
		{"bufsize=300", []Directive{{Name: "bufsize", Value: &Literal{Kind: IntLit, Text: "300"}}}, nil},
		{"bufsize=0x12c", []Directive{{Name: "bufsize", Value: &Literal{Kind: IntLit, Text: "0x12c"}}}, nil},
		{"bufsize=1_000", []Directive{{Name: "bufsize", Value: &Literal{Kind: IntLit, Text: "1_000"}}}, nil},
		{"bufsize='BufSize'", []Directive{{Name: "bufsize", Value: &Literal{Kind: StringLit, Text: "BufSize"}}}, nil},
		{`bufsize="pkg.N"`, []Directive{{Name: "bufsize", Value: &Literal{Kind: StringLit, Text: "pkg.N"}}}, nil},
		{"skip_serializing, bufsize=40", []Directive{
			{Name: "skip_serializing"},
			{Name: "bufsize", Value: &Literal{Kind: IntLit, Text: "40"}},
		}, nil},

		// Error cases
		{"bufsize=BufSize", nil, ErrInvalidDirectiveValue}, // unquoted identifier
		{"bufsize=", nil, ErrMalformedTag},                 // missing value
		{"bufsize='BufSize", nil, ErrMalformedTag},         // unterminated string
		{"bufsize=12ab", nil, ErrMalformedTag},             // bad integer
		{"skip,,bufsize=3", nil, ErrMalformedTag},          // empty directive
		{"not a name", nil, ErrMalformedTag},               // bad name
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseDirectives(tt.tag)

			if tt.wantErr != nil {
				require.Error(t, err, "ParseDirectives(%q)", tt.tag)
				assert.True(t, errors.Is(err, tt.wantErr), "ParseDirectives(%q) error = %v, want %v", tt.tag, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsQualifiedIdent(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"BufSize", true},
		{"pkg.BufSize", true},
		{"_n", true},
		{"300", false},
		{"a.b.c", false},
		{"pkg.", false},
		{"2*N", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsQualifiedIdent(tt.in), "IsQualifiedIdent(%q)", tt.in)
	}
}

func TestParseStructTag(t *testing.T) {
	tests := []struct {
		tag     string
		want    StructTag
		wantErr bool
	}{
		{``, nil, false},
		{`seq:"skip"`, StructTag{{"seq", "skip"}}, false},
		{`json:"id,omitempty" bigarray:"bufsize='N'"`, StructTag{{"json", "id,omitempty"}, {"bigarray", "bufsize='N'"}}, false},
		{`bigarray:"bufsize=\"N\""`, StructTag{{"bigarray", `bufsize="N"`}}, false},
		{`  a:"1"   b:""`, StructTag{{"a", "1"}, {"b", ""}}, false},

		// Error cases
		{`seq`, nil, true},
		{`seq:skip`, nil, true},
		{`seq:"skip`, nil, true},
		{`:"x"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseStructTag(tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedTag))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStructTagEdit(t *testing.T) {
	tag, err := ParseStructTag(`json:"data" bigarray:"skip" seq:"rename=d"`)
	require.NoError(t, err)

	tag = tag.Without("bigarray")
	assert.Equal(t, `json:"data" seq:"rename=d"`, tag.String())

	tag = tag.With("seq", "rename=d,serialize_with=enc")
	assert.Equal(t, `json:"data" seq:"rename=d,serialize_with=enc"`, tag.String())

	tag = tag.With("extra", "1")
	v, ok := tag.Get("extra")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = tag.Get("bigarray")
	assert.False(t, ok)
}

func TestSetFieldTag(t *testing.T) {
	field := &ast.Field{
		Names: []*ast.Ident{ast.NewIdent("Data")},
		Type:  &ast.ArrayType{Len: &ast.BasicLit{Kind: token.INT, Value: "300"}, Elt: ast.NewIdent("byte")},
		Tag:   &ast.BasicLit{Kind: token.STRING, Value: "`bigarray:\"skip_serializing\"`"},
	}

	tag, err := FieldTag(field)
	require.NoError(t, err)

	SetFieldTag(field, tag.Without("bigarray"))
	assert.Nil(t, field.Tag, "empty tag should drop the literal")

	SetFieldTag(field, StructTag{{"seq", "deserialize_with=dec"}})
	require.NotNil(t, field.Tag)
	assert.Equal(t, "`seq:\"deserialize_with=dec\"`", field.Tag.Value)

	// Double-quoted tag literals are accepted too.
	field.Tag.Value = `"seq:\"skip\""`
	tag, err = FieldTag(field)
	require.NoError(t, err)
	assert.Equal(t, StructTag{{"seq", "skip"}}, tag)
}
