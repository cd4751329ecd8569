package example

import "github.com/alexhholmes/bigarray/seq"

//go:generate go run ../cmd/bigarray -o table.go testdata/table.go

// Table is a fixed window of values of any encodable type.
//
// @derive(seq.Serialize, seq.Deserialize) @bound(T: Serialize) @bound(T: Deserialize)
type Table[T any] struct {
	Name   string
	Values [64]T `seq:"serialize_with=bigarraySerializeTableArr1,deserialize_with=bigarrayDeserializeTableArr1"`
}

// bigarraySerializeTableArr1 writes Table.Values as a tuple of 64 elements.
func bigarraySerializeTableArr1[T any](array *[64]T, serializer seq.Serializer) error {
	tuple, err := serializer.SerializeTuple(64)
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

// bigarrayDeserializeTableArr1 reads Table.Values from a tuple of 64 elements.
func bigarrayDeserializeTableArr1[T any](deserializer seq.Deserializer) ([64]T, error) {
	var array [64]T
	tuple, err := deserializer.DeserializeTuple(64)
	if err != nil {
		return array, err
	}
	for n := 0; n < 64; n++ {
		ok, err := tuple.NextElement(&array[n])
		if err == nil && !ok {
			err = seq.InvalidLength(n, 64)
		}
		if err != nil {
			seq.ReleaseAll(array[:n])
			var zero [64]T
			return zero, err
		}
	}
	return array, nil
}
