package example

import "github.com/alexhholmes/bigarray/seq"

//go:generate go run ../cmd/bigarray -o message.go testdata/message.go

// Message is exchanged between capture nodes.
//
// @derive(seq.Serialize, seq.Deserialize)
type (
	Message interface {
		isMessage()
	}

	// ArrBig carries two large arrays.
	ArrBig struct {
		A [300]byte  `seq:"serialize_with=bigarraySerializeMessageArr0,deserialize_with=bigarrayDeserializeMessageArr0"`
		B [40]uint32 `seq:"serialize_with=bigarraySerializeMessageArr1,deserialize_with=bigarrayDeserializeMessageArr1"`
	}

	// ArrSmall fits the runtime as is.
	ArrSmall struct {
		C [4]byte
	}

	// Mixed has one large array among plain fields.
	Mixed struct {
		D [8]byte
		E [500]uint16 `seq:"serialize_with=bigarraySerializeMessageArr4,deserialize_with=bigarrayDeserializeMessageArr4"`
		F string
	}
)

// bigarraySerializeMessageArr0 writes ArrBig.A as a tuple of 300 elements.
func bigarraySerializeMessageArr0(array *[300]byte, serializer seq.Serializer) error {
	tuple, err := serializer.SerializeTuple(300)
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

// bigarrayDeserializeMessageArr0 reads ArrBig.A from a tuple of 300 elements.
func bigarrayDeserializeMessageArr0(deserializer seq.Deserializer) ([300]byte, error) {
	var array [300]byte
	tuple, err := deserializer.DeserializeTuple(300)
	if err != nil {
		return array, err
	}
	for n := 0; n < 300; n++ {
		ok, err := tuple.NextElement(&array[n])
		if err == nil && !ok {
			err = seq.InvalidLength(n, 300)
		}
		if err != nil {
			seq.ReleaseAll(array[:n])
			var zero [300]byte
			return zero, err
		}
	}
	return array, nil
}

// bigarraySerializeMessageArr1 writes ArrBig.B as a tuple of 40 elements.
func bigarraySerializeMessageArr1(array *[40]uint32, serializer seq.Serializer) error {
	tuple, err := serializer.SerializeTuple(40)
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

// bigarrayDeserializeMessageArr1 reads ArrBig.B from a tuple of 40 elements.
func bigarrayDeserializeMessageArr1(deserializer seq.Deserializer) ([40]uint32, error) {
	var array [40]uint32
	tuple, err := deserializer.DeserializeTuple(40)
	if err != nil {
		return array, err
	}
	for n := 0; n < 40; n++ {
		ok, err := tuple.NextElement(&array[n])
		if err == nil && !ok {
			err = seq.InvalidLength(n, 40)
		}
		if err != nil {
			seq.ReleaseAll(array[:n])
			var zero [40]uint32
			return zero, err
		}
	}
	return array, nil
}

// bigarraySerializeMessageArr4 writes Mixed.E as a tuple of 500 elements.
func bigarraySerializeMessageArr4(array *[500]uint16, serializer seq.Serializer) error {
	tuple, err := serializer.SerializeTuple(500)
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

// bigarrayDeserializeMessageArr4 reads Mixed.E from a tuple of 500 elements.
func bigarrayDeserializeMessageArr4(deserializer seq.Deserializer) ([500]uint16, error) {
	var array [500]uint16
	tuple, err := deserializer.DeserializeTuple(500)
	if err != nil {
		return array, err
	}
	for n := 0; n < 500; n++ {
		ok, err := tuple.NextElement(&array[n])
		if err == nil && !ok {
			err = seq.InvalidLength(n, 500)
		}
		if err != nil {
			seq.ReleaseAll(array[:n])
			var zero [500]uint16
			return zero, err
		}
	}
	return array, nil
}

func init() {
	seq.SerializeWith("bigarraySerializeMessageArr0", bigarraySerializeMessageArr0)
	seq.DeserializeWith("bigarrayDeserializeMessageArr0", bigarrayDeserializeMessageArr0)
	seq.SerializeWith("bigarraySerializeMessageArr1", bigarraySerializeMessageArr1)
	seq.DeserializeWith("bigarrayDeserializeMessageArr1", bigarrayDeserializeMessageArr1)
	seq.SerializeWith("bigarraySerializeMessageArr4", bigarraySerializeMessageArr4)
	seq.DeserializeWith("bigarrayDeserializeMessageArr4", bigarrayDeserializeMessageArr4)
}

func (ArrBig) isMessage()   {}
func (ArrSmall) isMessage() {}
func (Mixed) isMessage()    {}
