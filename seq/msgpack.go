package seq

import (
	"bytes"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackSerializer writes MessagePack to a stream. Tuples are MessagePack
// arrays and structs are maps keyed by field name.
type MsgpackSerializer struct {
	enc *msgpack.Encoder
}

// NewMsgpackSerializer returns a serializer writing to w.
func NewMsgpackSerializer(w io.Writer) *MsgpackSerializer {
	return &MsgpackSerializer{enc: msgpack.NewEncoder(w)}
}

func (s *MsgpackSerializer) SerializeValue(v any) error {
	if m, ok := v.(Marshaler); ok {
		return m.MarshalSeq(s)
	}
	return s.enc.Encode(v)
}

func (s *MsgpackSerializer) SerializeTuple(n int) (TupleSerializer, error) {
	if err := s.enc.EncodeArrayLen(n); err != nil {
		return nil, err
	}
	return &msgpackTuple{s: s, want: n}, nil
}

func (s *MsgpackSerializer) SerializeStruct(_ string, n int) (StructSerializer, error) {
	if err := s.enc.EncodeMapLen(n); err != nil {
		return nil, err
	}
	return &msgpackStruct{s: s, want: n}, nil
}

type msgpackTuple struct {
	s    *MsgpackSerializer
	want int
	n    int
}

func (t *msgpackTuple) SerializeElement(v any) error {
	// The array header is already written; refuse to overrun it.
	if t.n >= t.want {
		return InvalidLength(t.n+1, t.want)
	}
	t.n++
	return t.s.SerializeValue(v)
}

func (t *msgpackTuple) End() error {
	if t.n != t.want {
		return InvalidLength(t.n, t.want)
	}
	return nil
}

type msgpackStruct struct {
	s    *MsgpackSerializer
	want int
	n    int
}

func (t *msgpackStruct) SerializeField(name string, v any) error {
	if t.n >= t.want {
		return InvalidLength(t.n+1, t.want)
	}
	t.n++
	if err := t.s.enc.EncodeString(name); err != nil {
		return err
	}
	return t.s.SerializeValue(v)
}

func (t *msgpackStruct) End() error {
	if t.n != t.want {
		return InvalidLength(t.n, t.want)
	}
	return nil
}

// MsgpackDeserializer reads MessagePack from a stream.
type MsgpackDeserializer struct {
	dec *msgpack.Decoder
}

// NewMsgpackDeserializer returns a deserializer reading from r.
func NewMsgpackDeserializer(r io.Reader) *MsgpackDeserializer {
	return &MsgpackDeserializer{dec: msgpack.NewDecoder(r)}
}

func (d *MsgpackDeserializer) DeserializeValue(dst any) error {
	if u, ok := dst.(Unmarshaler); ok {
		return u.UnmarshalSeq(d)
	}
	return d.dec.Decode(dst)
}

func (d *MsgpackDeserializer) DeserializeTuple(n int) (TupleAccess, error) {
	l, err := d.dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	if l < 0 { // nil array
		l = 0
	}
	if l > n {
		return nil, InvalidLength(l, n)
	}
	return &msgpackTupleAccess{d: d, remaining: l}, nil
}

func (d *MsgpackDeserializer) DeserializeStruct(_ string) (StructAccess, error) {
	l, err := d.dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if l < 0 {
		l = 0
	}
	return &msgpackStructAccess{d: d, remaining: l}, nil
}

type msgpackTupleAccess struct {
	d         *MsgpackDeserializer
	remaining int
}

func (a *msgpackTupleAccess) NextElement(dst any) (bool, error) {
	if a.remaining == 0 {
		return false, nil
	}
	a.remaining--
	if err := a.d.DeserializeValue(dst); err != nil {
		return false, err
	}
	return true, nil
}

type msgpackStructAccess struct {
	d         *MsgpackDeserializer
	remaining int
}

func (a *msgpackStructAccess) NextField() (string, bool, error) {
	if a.remaining == 0 {
		return "", false, nil
	}
	a.remaining--
	name, err := a.d.dec.DecodeString()
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

func (a *msgpackStructAccess) FieldValue(dst any) error {
	return a.d.DeserializeValue(dst)
}

func (a *msgpackStructAccess) SkipValue() error {
	return a.d.dec.Skip()
}

// MarshalMsgpack encodes the struct v as MessagePack.
func MarshalMsgpack(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Marshal(NewMsgpackSerializer(&buf), v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalMsgpack decodes MessagePack data into the struct v points to.
func UnmarshalMsgpack(data []byte, v any) error {
	return Unmarshal(NewMsgpackDeserializer(bytes.NewReader(data)), v)
}
