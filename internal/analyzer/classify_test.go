package analyzer

import (
	"go/types"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhholmes/bigarray/internal/parser"
	"github.com/alexhholmes/bigarray/seq"
)

// parseItem parses a single marked struct with the given field lines.
func parseItem(t *testing.T, derive string, fields string) *parser.Item {
	t.Helper()
	src := "package p\n\nconst BufSize = 300\n\ntype Buffer [BufSize]byte\n\n// @bigarray\n"
	if derive != "" {
		src += "// @derive(" + derive + ")\n"
	}
	src += "type S[T any] struct {\n" + fields + "\n}\n"

	file, err := parser.ParseSource("p.go", []byte(src), parser.Options{})
	require.NoError(t, err)
	require.Len(t, file.Items, 1)
	return file.Items[0]
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		want      bool
		wantLen   string
		wantNamed bool
		wantSer   bool
		wantDeser bool
	}{
		// Length extraction from the declared type
		{"large literal", "A [300]byte", true, "300", false, true, true},
		{"just above threshold", "A [33]byte", true, "33", false, true, true},
		{"at threshold", "A [32]byte", false, "", false, false, false},
		{"small literal", "A [8]byte", false, "", false, false, false},
		{"hex literal", "A [0x200]byte", true, "0x200", false, true, true},
		{"named constant", "A [BufSize]byte", true, "BufSize", true, true, true},
		{"qualified constant", "A [pkg.N]byte", true, "pkg.N", true, true, true},
		{"constant expression", "A [2*BufSize]byte", false, "", false, false, false},
		{"slice", "A []byte", false, "", false, false, false},
		{"not an array", "A int", false, "", false, false, false},
		{"pointer to array", "A *[300]byte", false, "", false, false, false},
		{"generic element", "A [300]T", true, "300", false, true, true},

		// Directives
		{"bufsize literal on alias", "A Buffer `bigarray:\"bufsize=300\"`", true, "300", false, true, true},
		{"bufsize constant on alias", "A Buffer `bigarray:\"bufsize='BufSize'\"`", true, "BufSize", true, true, true},
		{"bufsize double quoted", "A Buffer `bigarray:\"bufsize=\\\"BufSize\\\"\"`", true, "BufSize", true, true, true},
		{"bufsize forces small array", "A [8]byte `bigarray:\"bufsize=8\"`", true, "8", false, true, true},
		{"skip", "A [300]byte `bigarray:\"skip\"`", false, "", false, false, false},
		{"skip=true", "A [300]byte `bigarray:\"skip=true\"`", false, "", false, false, false},
		{"skip=false", "A [300]byte `bigarray:\"skip=false\"`", true, "300", false, true, true},
		{"skip wins over bufsize", "A Buffer `bigarray:\"bufsize=300,skip\"`", false, "", false, false, false},
		{"skip_serializing", "A [300]byte `bigarray:\"skip_serializing\"`", true, "300", false, false, true},
		{"skip_deserializing", "A [300]byte `bigarray:\"skip_deserializing\"`", true, "300", false, true, false},
		{"both skip flags", "A [300]byte `bigarray:\"skip_serializing,skip_deserializing\"`", false, "", false, false, false},

		// Existing host customization
		{"host serialize_with", "A [300]byte `seq:\"serialize_with=enc\"`", true, "300", false, false, true},
		{"host deserialize_with", "A [300]byte `seq:\"deserialize_with=dec\"`", true, "300", false, true, false},
		{"host skip_serializing", "A [300]byte `seq:\"skip_serializing\"`", true, "300", false, false, true},
		{"host with", "A [300]byte `seq:\"with=codec\"`", false, "", false, false, false},
		{"host skip", "A [300]byte `seq:\"skip\"`", false, "", false, false, false},
		{"host rename only", "A [300]byte `seq:\"rename=a\"`", true, "300", false, true, true},
		{"host both hooks", "A [300]byte `seq:\"serialize_with=enc,deserialize_with=dec\"`", false, "", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := parseItem(t, "Serialize, Deserialize", tt.field)
			got, err := Classify(item.Fields[0], DefaultOptions())
			require.NoError(t, err)

			if !tt.want {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.wantLen, got.Len, "Len")
			assert.Equal(t, tt.wantNamed, got.Named, "Named")
			assert.Equal(t, tt.wantSer, got.Serialize, "Serialize")
			assert.Equal(t, tt.wantDeser, got.Deserialize, "Deserialize")
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		wantErr error
	}{
		{"unknown directive", "A [300]byte `bigarray:\"sizes=3\"`", parser.ErrUnknownDirective},
		{"bool bufsize", "A [300]byte `bigarray:\"bufsize=true\"`", parser.ErrInvalidDirectiveValue},
		{"bare bufsize", "A [300]byte `bigarray:\"bufsize\"`", parser.ErrInvalidDirectiveValue},
		{"unquoted constant", "A [300]byte `bigarray:\"bufsize=BufSize\"`", parser.ErrInvalidDirectiveValue},
		{"quoted expression", "A [300]byte `bigarray:\"bufsize='2*N'\"`", parser.ErrInvalidDirectiveValue},
		{"integer skip", "A [300]byte `bigarray:\"skip=1\"`", parser.ErrInvalidDirectiveValue},
		{"string skip_serializing", "A [300]byte `bigarray:\"skip_serializing='yes'\"`", parser.ErrInvalidDirectiveValue},
		{"malformed directives", "A [300]byte `bigarray:\"skip,,\"`", parser.ErrMalformedTag},
		{"malformed struct tag", "A [300]byte `bigarray:skip`", parser.ErrMalformedTag},
		{"malformed host tag", "A [300]byte `seq:\"skip=true\"`", parser.ErrMalformedTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := parseItem(t, "Serialize", tt.field)
			_, err := Classify(item.Fields[0], DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)

			var expErr *parser.ExpansionError
			require.True(t, errors.As(err, &expErr))
			assert.Equal(t, "S", expErr.Item)
			assert.Equal(t, "A", expErr.Field)
		})
	}
}

func TestClassifyHostTagErrorKeepsCause(t *testing.T) {
	item := parseItem(t, "Serialize", "A [300]byte `seq:\"skip=true\"`")
	_, err := Classify(item.Fields[0], DefaultOptions())
	assert.True(t, errors.Is(err, seq.ErrInvalidTag))
}

func TestClassifyStripsDirectives(t *testing.T) {
	item := parseItem(t, "Serialize", "A [300]byte `json:\"a\" bigarray:\"skip_serializing\"`\nB [300]byte `bigarray:\"skip\"`\nC [8]byte `bigarray:\"skip_deserializing\"`")

	for _, f := range item.Fields {
		_, err := Classify(f, DefaultOptions())
		require.NoError(t, err)
	}

	require.NotNil(t, item.Fields[0].Node.Tag)
	assert.Equal(t, "`json:\"a\"`", item.Fields[0].Node.Tag.Value)
	assert.Nil(t, item.Fields[1].Node.Tag, "skipped fields lose the directive too")
	assert.Nil(t, item.Fields[2].Node.Tag, "unclassified fields lose the directive too")
}

func TestClassifyElementType(t *testing.T) {
	item := parseItem(t, "Serialize", "A [300]T\nB Buffer `bigarray:\"bufsize=300\"`\nC [BufSize][2]uint8")
	opts := DefaultOptions()

	a, err := Classify(item.Fields[0], opts)
	require.NoError(t, err)
	assert.Equal(t, "T", types.ExprString(a.ElementType))

	b, err := Classify(item.Fields[1], opts)
	require.NoError(t, err)
	assert.Nil(t, b.ElementType, "alias types have no visible element type")
	assert.True(t, b.Explicit)

	c, err := Classify(item.Fields[2], opts)
	require.NoError(t, err)
	assert.Equal(t, "[2]uint8", types.ExprString(c.ElementType))
	assert.Equal(t, "int(BufSize)", c.LenExpr())
	assert.Equal(t, "300", a.LenExpr())
}

func TestClassifyCustomOptions(t *testing.T) {
	item := parseItem(t, "Serialize", "A [40]byte `huge:\"skip_serializing\"`\nB [20]byte")
	opts := Options{Threshold: 16, TagKey: "huge", HostTagKey: "seq"}

	a, err := Classify(item.Fields[0], opts)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.False(t, a.Serialize)

	b, err := Classify(item.Fields[1], opts)
	require.NoError(t, err)
	require.NotNil(t, b, "20 exceeds a threshold of 16")
	assert.Equal(t, "20", b.Len)
}
