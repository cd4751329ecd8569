package seq

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/samber/lo"
)

// cborEnc uses Core Deterministic Encoding (RFC 8949 §4.2) so the same value
// always produces the same bytes.
var cborEnc cbor.EncMode

var cborDec cbor.DecMode

func init() {
	var err error

	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("seq: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("seq: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBORSerializer writes one CBOR data item into a slot. Tuples and structs
// collect their elements as raw messages and encode them on End.
type CBORSerializer struct {
	out *cbor.RawMessage
}

// NewCBORSerializer returns a serializer writing into out.
func NewCBORSerializer(out *cbor.RawMessage) *CBORSerializer {
	return &CBORSerializer{out: out}
}

func (s *CBORSerializer) SerializeValue(v any) error {
	if m, ok := v.(Marshaler); ok {
		return m.MarshalSeq(s)
	}
	data, err := cborEnc.Marshal(v)
	if err != nil {
		return err
	}
	*s.out = data
	return nil
}

func (s *CBORSerializer) SerializeTuple(n int) (TupleSerializer, error) {
	return &cborTuple{out: s.out, want: n, elems: make([]cbor.RawMessage, 0, n)}, nil
}

func (s *CBORSerializer) SerializeStruct(_ string, n int) (StructSerializer, error) {
	return &cborStruct{out: s.out, want: n, fields: make(map[string]cbor.RawMessage, n)}, nil
}

type cborTuple struct {
	out   *cbor.RawMessage
	want  int
	elems []cbor.RawMessage
}

func (t *cborTuple) SerializeElement(v any) error {
	if len(t.elems) >= t.want {
		return InvalidLength(len(t.elems)+1, t.want)
	}
	var raw cbor.RawMessage
	if err := NewCBORSerializer(&raw).SerializeValue(v); err != nil {
		return err
	}
	t.elems = append(t.elems, raw)
	return nil
}

func (t *cborTuple) End() error {
	if len(t.elems) != t.want {
		return InvalidLength(len(t.elems), t.want)
	}
	data, err := cborEnc.Marshal(t.elems)
	if err != nil {
		return err
	}
	*t.out = data
	return nil
}

type cborStruct struct {
	out    *cbor.RawMessage
	want   int
	fields map[string]cbor.RawMessage
}

func (t *cborStruct) SerializeField(name string, v any) error {
	var raw cbor.RawMessage
	if err := NewCBORSerializer(&raw).SerializeValue(v); err != nil {
		return err
	}
	t.fields[name] = raw
	return nil
}

func (t *cborStruct) End() error {
	if len(t.fields) != t.want {
		return InvalidLength(len(t.fields), t.want)
	}
	data, err := cborEnc.Marshal(t.fields)
	if err != nil {
		return err
	}
	*t.out = data
	return nil
}

// CBORDeserializer reads one CBOR data item.
type CBORDeserializer struct {
	raw cbor.RawMessage
}

// NewCBORDeserializer returns a deserializer reading raw.
func NewCBORDeserializer(raw []byte) *CBORDeserializer {
	return &CBORDeserializer{raw: raw}
}

func (d *CBORDeserializer) DeserializeValue(dst any) error {
	if u, ok := dst.(Unmarshaler); ok {
		return u.UnmarshalSeq(d)
	}
	return cborDec.Unmarshal(d.raw, dst)
}

func (d *CBORDeserializer) DeserializeTuple(n int) (TupleAccess, error) {
	var elems []cbor.RawMessage
	if err := cborDec.Unmarshal(d.raw, &elems); err != nil {
		return nil, errors.Wrapf(ErrUnexpectedKind, "expected a tuple: %v", err)
	}
	if len(elems) > n {
		return nil, InvalidLength(len(elems), n)
	}
	return &cborTupleAccess{elems: elems}, nil
}

func (d *CBORDeserializer) DeserializeStruct(_ string) (StructAccess, error) {
	var fields map[string]cbor.RawMessage
	if err := cborDec.Unmarshal(d.raw, &fields); err != nil {
		return nil, errors.Wrapf(ErrUnexpectedKind, "expected a struct: %v", err)
	}
	names := lo.Keys(fields)
	slices.Sort(names)
	return &cborStructAccess{fields: fields, names: names, next: -1}, nil
}

type cborTupleAccess struct {
	elems []cbor.RawMessage
	next  int
}

func (a *cborTupleAccess) NextElement(dst any) (bool, error) {
	if a.next >= len(a.elems) {
		return false, nil
	}
	raw := a.elems[a.next]
	a.next++
	if err := NewCBORDeserializer(raw).DeserializeValue(dst); err != nil {
		return false, err
	}
	return true, nil
}

type cborStructAccess struct {
	fields map[string]cbor.RawMessage
	names  []string
	next   int
}

func (a *cborStructAccess) NextField() (string, bool, error) {
	a.next++
	if a.next >= len(a.names) {
		return "", false, nil
	}
	return a.names[a.next], true, nil
}

func (a *cborStructAccess) FieldValue(dst any) error {
	return NewCBORDeserializer(a.fields[a.names[a.next]]).DeserializeValue(dst)
}

func (a *cborStructAccess) SkipValue() error {
	return nil
}

// MarshalCBOR encodes the struct v as CBOR.
func MarshalCBOR(v any) ([]byte, error) {
	var raw cbor.RawMessage
	if err := Marshal(NewCBORSerializer(&raw), v); err != nil {
		return nil, err
	}
	return raw, nil
}

// UnmarshalCBOR decodes CBOR data into the struct v points to.
func UnmarshalCBOR(data []byte, v any) error {
	return Unmarshal(NewCBORDeserializer(data), v)
}
