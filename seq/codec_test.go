package seq

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type backend struct {
	name      string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var backends = []backend{
	{"msgpack", MarshalMsgpack, UnmarshalMsgpack},
	{"cbor", MarshalCBOR, UnmarshalCBOR},
	{"yaml", MarshalYAML, UnmarshalYAML},
}

type point struct {
	X     int32
	Y     int32
	Label string `seq:"rename=label"`
	Small [4]uint8
	Cache string `seq:"skip"`
	Audit string `seq:"skip_deserializing"`
	hidden int
}

type wide struct {
	Name string
	Data [40]uint16 `seq:"serialize_with=testEncodeWide,deserialize_with=testDecodeWide"`
}

type tooWide struct {
	Data [33]byte
}

type unhooked struct {
	Data [40]byte `seq:"with=neverRegistered"`
}

type badTag struct {
	Data int `seq:"omitempty"`
}

func encodeWide(array *[40]uint16, s Serializer) error {
	tuple, err := s.SerializeTuple(40)
	if err != nil {
		return err
	}
	for i := range array {
		if err := tuple.SerializeElement(&array[i]); err != nil {
			return err
		}
	}
	return tuple.End()
}

func decodeWide(d Deserializer) ([40]uint16, error) {
	var array [40]uint16
	tuple, err := d.DeserializeTuple(40)
	if err != nil {
		return array, err
	}
	for n := 0; n < 40; n++ {
		ok, err := tuple.NextElement(&array[n])
		if err == nil && !ok {
			err = InvalidLength(n, 40)
		}
		if err != nil {
			return [40]uint16{}, err
		}
	}
	return array, nil
}

func init() {
	SerializeWith("testEncodeWide", encodeWide)
	DeserializeWith("testDecodeWide", decodeWide)
}

func TestStructRoundtrip(t *testing.T) {
	original := point{
		X:      -7,
		Y:      42,
		Label:  "origin",
		Small:  [4]uint8{1, 2, 3, 4},
		Cache:  "not encoded",
		Audit:  "encoded, never decoded",
		hidden: 9,
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			data, err := b.marshal(original)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			var decoded point
			require.NoError(t, b.unmarshal(data, &decoded))

			assert.Equal(t, original.X, decoded.X)
			assert.Equal(t, original.Y, decoded.Y)
			assert.Equal(t, original.Label, decoded.Label)
			assert.Equal(t, original.Small, decoded.Small)
			assert.Empty(t, decoded.Cache)
			assert.Empty(t, decoded.Audit)
			assert.Zero(t, decoded.hidden)
		})
	}
}

func TestStructRoundtripWithHooks(t *testing.T) {
	original := wide{Name: "samples"}
	for i := range original.Data {
		original.Data[i] = uint16(i * 1000)
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			data, err := b.marshal(&original)
			require.NoError(t, err)

			var decoded wide
			require.NoError(t, b.unmarshal(data, &decoded))
			assert.Equal(t, original, decoded)
		})
	}
}

func TestArrayTooLarge(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			_, err := b.marshal(tooWide{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrArrayTooLarge))

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, "Data", fieldErr.Field)
			assert.Equal(t, "tooWide", fieldErr.Type)
		})
	}
}

func TestMissingHook(t *testing.T) {
	_, err := MarshalMsgpack(unhooked{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoHook))
}

func TestUnknownTagOption(t *testing.T) {
	_, err := MarshalMsgpack(badTag{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTag))
}

func TestNotStruct(t *testing.T) {
	_, err := MarshalMsgpack(42)
	assert.True(t, errors.Is(err, ErrNotStruct))

	var p point
	assert.True(t, errors.Is(UnmarshalMsgpack(nil, p), ErrNotStruct))
	assert.True(t, errors.Is(Marshal(NewMsgpackSerializer(&bytes.Buffer{}), (*point)(nil)), ErrNotStruct))
}

func TestMsgpackTupleLength(t *testing.T) {
	var buf bytes.Buffer
	s := NewMsgpackSerializer(&buf)
	tuple, err := s.SerializeTuple(3)
	require.NoError(t, err)
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, tuple.SerializeElement(v))
	}
	require.Error(t, tuple.SerializeElement(4), "tuple must refuse to overrun its header")
	require.NoError(t, tuple.End())

	// Declared arity larger than the input: elements run out early.
	access, err := NewMsgpackDeserializer(bytes.NewReader(buf.Bytes())).DeserializeTuple(5)
	require.NoError(t, err)
	var got []int
	for {
		var v int
		ok, err := access.NextElement(&v)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)

	// Declared arity smaller than the input: rejected before any element.
	_, err = NewMsgpackDeserializer(bytes.NewReader(buf.Bytes())).DeserializeTuple(2)
	var lengthErr *LengthError
	require.True(t, errors.As(err, &lengthErr))
	assert.Equal(t, 3, lengthErr.Got)
	assert.Equal(t, 2, lengthErr.Want)
}

func TestTupleEndChecksArity(t *testing.T) {
	var raw cbor.RawMessage
	tuple, err := NewCBORSerializer(&raw).SerializeTuple(2)
	require.NoError(t, err)
	require.NoError(t, tuple.SerializeElement("only one"))

	err = tuple.End()
	var lengthErr *LengthError
	require.True(t, errors.As(err, &lengthErr))
	assert.Equal(t, &LengthError{Got: 1, Want: 2}, lengthErr)

	var node yaml.Node
	ytuple, err := NewYAMLSerializer(&node).SerializeTuple(1)
	require.NoError(t, err)
	assert.True(t, errors.As(ytuple.End(), &lengthErr))
	assert.Equal(t, 0, lengthErr.Got)
}

func TestYAMLTupleKind(t *testing.T) {
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("just a scalar"), &doc))

	_, err := NewYAMLDeserializer(&doc).DeserializeTuple(3)
	assert.True(t, errors.Is(err, ErrUnexpectedKind))
}

type counted struct {
	live *int
}

func (c *counted) Release() {
	*c.live--
}

func TestReleaseAll(t *testing.T) {
	live := 3
	elems := []counted{{&live}, {&live}, {&live}}

	ReleaseAll(elems)

	assert.Equal(t, 0, live)
	for _, e := range elems {
		assert.Nil(t, e.live, "released elements must be cleared")
	}

	// Non-releasable elements are only cleared.
	plain := []int{1, 2}
	ReleaseAll(plain)
	assert.Equal(t, []int{0, 0}, plain)
}

type valueCounted struct {
	live *int
}

func (c valueCounted) Release() {
	*c.live--
}

func TestReleaseAllElementKinds(t *testing.T) {
	tests := []struct {
		name    string
		release func(live *int)
	}{
		{"pointer elements", func(live *int) {
			ReleaseAll([]*counted{{live}, {live}, nil})
		}},
		{"interface elements", func(live *int) {
			ReleaseAll([]Releaser{&counted{live}, valueCounted{live}, nil, (*counted)(nil)})
		}},
		{"value receiver released once", func(live *int) {
			ReleaseAll([]valueCounted{{live}, {live}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := 2
			tt.release(&live)
			assert.Equal(t, 0, live)
		})
	}

	elems := []*counted{{new(int)}}
	ReleaseAll(elems)
	assert.Nil(t, elems[0], "released pointers are cleared")
}

func TestLengthErrorMessage(t *testing.T) {
	assert.Equal(t, "invalid length 3, expected a tuple of size 5", InvalidLength(3, 5).Error())
}
