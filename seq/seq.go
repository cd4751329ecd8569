// Package seq is a small serialization framework with pluggable wire formats.
//
// Values are written through a Serializer and read back through a
// Deserializer. Three shapes exist on the wire: plain values (encoded by the
// backend natively), tuples (ordered, length-known sequences) and structs
// (name-keyed fields).
//
// The struct codec (Marshal/Unmarshal) encodes fixed-size arrays natively only
// up to MaxArrayLen elements. Longer arrays need per-field hooks declared in
// the seq struct tag:
//
//	type Frame struct {
//		Samples [512]int16 `seq:"serialize_with=encodeSamples,deserialize_with=decodeSamples"`
//	}
//
// Hooks are resolved by name through the registry (see SerializeWith and
// DeserializeWith). The bigarray generator writes such hooks automatically.
package seq

import "reflect"

// MaxArrayLen is the longest fixed-size array the struct codec encodes
// without a hook.
const MaxArrayLen = 32

// Serializer writes one value.
type Serializer interface {
	// SerializeValue encodes v natively, or through v.MarshalSeq when v
	// implements Marshaler.
	SerializeValue(v any) error

	// SerializeTuple starts a tuple of exactly n elements.
	SerializeTuple(n int) (TupleSerializer, error)

	// SerializeStruct starts a struct named name with n fields.
	SerializeStruct(name string, n int) (StructSerializer, error)
}

// TupleSerializer writes the elements of a tuple in order.
type TupleSerializer interface {
	SerializeElement(v any) error

	// End fails with a *LengthError when the number of elements written
	// differs from the declared arity.
	End() error
}

// StructSerializer writes the fields of a struct.
type StructSerializer interface {
	SerializeField(name string, v any) error
	End() error
}

// Deserializer reads one value.
type Deserializer interface {
	// DeserializeValue decodes into dst, which must be a pointer. When dst
	// implements Unmarshaler its UnmarshalSeq method is used.
	DeserializeValue(dst any) error

	// DeserializeTuple opens a tuple of declared arity n. Inputs holding more
	// than n elements fail with a *LengthError before any element is read.
	DeserializeTuple(n int) (TupleAccess, error)

	// DeserializeStruct opens a struct named name.
	DeserializeStruct(name string) (StructAccess, error)
}

// TupleAccess reads the elements of a tuple in order.
type TupleAccess interface {
	// NextElement decodes the next element into dst. It returns false
	// without touching dst once the input has no more elements.
	NextElement(dst any) (bool, error)
}

// StructAccess reads the fields of a struct.
type StructAccess interface {
	// NextField returns the name of the next field, or false when all
	// fields have been visited.
	NextField() (string, bool, error)

	// FieldValue decodes the value of the field returned by NextField.
	FieldValue(dst any) error

	// SkipValue discards the value of the field returned by NextField.
	SkipValue() error
}

// Marshaler is implemented by values that write themselves.
type Marshaler interface {
	MarshalSeq(s Serializer) error
}

// Unmarshaler is implemented by values that read themselves.
type Unmarshaler interface {
	UnmarshalSeq(d Deserializer) error
}

// Releaser is implemented by values owning resources that must be given back
// when a partially decoded array is discarded.
type Releaser interface {
	Release()
}

// ReleaseAll releases every element of elems that implements Releaser, then
// clears elems so the released values cannot be observed again. Generated
// decoders call it with exactly the prefix of elements constructed so far.
//
// An element is released through its address when that implements Releaser,
// otherwise through its value, which covers pointer and interface elements.
// Nil elements are skipped.
func ReleaseAll[E any](elems []E) {
	for i := range elems {
		if r, ok := any(&elems[i]).(Releaser); ok {
			r.Release()
		} else if r, ok := any(elems[i]).(Releaser); ok && !isNil(r) {
			r.Release()
		}
	}
	clear(elems)
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
