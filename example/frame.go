package example

import "github.com/alexhholmes/bigarray/seq"

//go:generate go run ../cmd/bigarray -o frame.go testdata/frame.go

// HistoryLen is the number of blocks a frame keeps.
const HistoryLen = 48

// BufLen is the size of a raw capture buffer.
const BufLen = 256

// Buffer is a raw capture buffer.
type Buffer [BufLen]byte

// Frame is one capture.
//
// @derive(seq.Serialize, seq.Deserialize)
type Frame struct {
	ID      uint32
	Samples [300]int16 `seq:"serialize_with=bigarraySerializeFrameArr1,deserialize_with=bigarrayDeserializeFrameArr1"`
	Small   [8]byte
	History [HistoryLen]Block `seq:"serialize_with=bigarraySerializeFrameArr3,deserialize_with=bigarrayDeserializeFrameArr3"`
	Recent  [5]Block          `seq:"serialize_with=bigarraySerializeFrameArr4,deserialize_with=bigarrayDeserializeFrameArr4"`
	Raw     Buffer            `seq:"rename=raw,serialize_with=bigarraySerializeFrameArr5,deserialize_with=bigarrayDeserializeFrameArr5"`
	Outbox  [64]uint16        `seq:"skip_deserializing,serialize_with=bigarraySerializeFrameArr6"`
	Inbox   [64]uint16        `seq:"skip_serializing,deserialize_with=bigarrayDeserializeFrameArr7"`
	Scratch [512]byte         `seq:"skip"`
	Custom  [40]uint16        `seq:"serialize_with=encodeCustom,deserialize_with=bigarrayDeserializeFrameArr9"`
}

// bigarraySerializeFrameArr1 writes Frame.Samples as a tuple of 300 elements.
func bigarraySerializeFrameArr1(array *[300]int16, serializer seq.Serializer) error {
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

// bigarrayDeserializeFrameArr1 reads Frame.Samples from a tuple of 300 elements.
func bigarrayDeserializeFrameArr1(deserializer seq.Deserializer) ([300]int16, error) {
	var array [300]int16
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
			var zero [300]int16
			return zero, err
		}
	}
	return array, nil
}

// bigarraySerializeFrameArr3 writes Frame.History as a tuple of HistoryLen elements.
func bigarraySerializeFrameArr3(array *[HistoryLen]Block, serializer seq.Serializer) error {
	tuple, err := serializer.SerializeTuple(int(HistoryLen))
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

// bigarrayDeserializeFrameArr3 reads Frame.History from a tuple of HistoryLen elements.
func bigarrayDeserializeFrameArr3(deserializer seq.Deserializer) ([HistoryLen]Block, error) {
	var array [HistoryLen]Block
	tuple, err := deserializer.DeserializeTuple(int(HistoryLen))
	if err != nil {
		return array, err
	}
	for n := 0; n < int(HistoryLen); n++ {
		ok, err := tuple.NextElement(&array[n])
		if err == nil && !ok {
			err = seq.InvalidLength(n, int(HistoryLen))
		}
		if err != nil {
			seq.ReleaseAll(array[:n])
			var zero [HistoryLen]Block
			return zero, err
		}
	}
	return array, nil
}

// bufsize 5 must equal the length of Frame.Recent.
var (
	_ [5 - 5]struct{}
	_ [5 - 5]struct{}
)

// bigarraySerializeFrameArr4 writes Frame.Recent as a tuple of 5 elements.
func bigarraySerializeFrameArr4(array *[5]Block, serializer seq.Serializer) error {
	tuple, err := serializer.SerializeTuple(5)
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

// bigarrayDeserializeFrameArr4 reads Frame.Recent from a tuple of 5 elements.
func bigarrayDeserializeFrameArr4(deserializer seq.Deserializer) ([5]Block, error) {
	var array [5]Block
	tuple, err := deserializer.DeserializeTuple(5)
	if err != nil {
		return array, err
	}
	for n := 0; n < 5; n++ {
		ok, err := tuple.NextElement(&array[n])
		if err == nil && !ok {
			err = seq.InvalidLength(n, 5)
		}
		if err != nil {
			seq.ReleaseAll(array[:n])
			var zero [5]Block
			return zero, err
		}
	}
	return array, nil
}

// bufsize BufLen must equal the length of Frame.Raw.
var (
	_ [int(BufLen) - len(Buffer{})]struct{}
	_ [len(Buffer{}) - int(BufLen)]struct{}
)

// bigarraySerializeFrameArr5 writes Frame.Raw as a tuple of BufLen elements.
func bigarraySerializeFrameArr5(array *Buffer, serializer seq.Serializer) error {
	tuple, err := serializer.SerializeTuple(int(BufLen))
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

// bigarrayDeserializeFrameArr5 reads Frame.Raw from a tuple of BufLen elements.
func bigarrayDeserializeFrameArr5(deserializer seq.Deserializer) (Buffer, error) {
	var array Buffer
	tuple, err := deserializer.DeserializeTuple(int(BufLen))
	if err != nil {
		return array, err
	}
	for n := 0; n < int(BufLen); n++ {
		ok, err := tuple.NextElement(&array[n])
		if err == nil && !ok {
			err = seq.InvalidLength(n, int(BufLen))
		}
		if err != nil {
			seq.ReleaseAll(array[:n])
			var zero Buffer
			return zero, err
		}
	}
	return array, nil
}

// bigarraySerializeFrameArr6 writes Frame.Outbox as a tuple of 64 elements.
func bigarraySerializeFrameArr6(array *[64]uint16, serializer seq.Serializer) error {
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

// bigarrayDeserializeFrameArr7 reads Frame.Inbox from a tuple of 64 elements.
func bigarrayDeserializeFrameArr7(deserializer seq.Deserializer) ([64]uint16, error) {
	var array [64]uint16
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
			var zero [64]uint16
			return zero, err
		}
	}
	return array, nil
}

// bigarrayDeserializeFrameArr9 reads Frame.Custom from a tuple of 40 elements.
func bigarrayDeserializeFrameArr9(deserializer seq.Deserializer) ([40]uint16, error) {
	var array [40]uint16
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
			var zero [40]uint16
			return zero, err
		}
	}
	return array, nil
}

func init() {
	seq.SerializeWith("bigarraySerializeFrameArr1", bigarraySerializeFrameArr1)
	seq.DeserializeWith("bigarrayDeserializeFrameArr1", bigarrayDeserializeFrameArr1)
	seq.SerializeWith("bigarraySerializeFrameArr3", bigarraySerializeFrameArr3)
	seq.DeserializeWith("bigarrayDeserializeFrameArr3", bigarrayDeserializeFrameArr3)
	seq.SerializeWith("bigarraySerializeFrameArr4", bigarraySerializeFrameArr4)
	seq.DeserializeWith("bigarrayDeserializeFrameArr4", bigarrayDeserializeFrameArr4)
	seq.SerializeWith("bigarraySerializeFrameArr5", bigarraySerializeFrameArr5)
	seq.DeserializeWith("bigarrayDeserializeFrameArr5", bigarrayDeserializeFrameArr5)
	seq.SerializeWith("bigarraySerializeFrameArr6", bigarraySerializeFrameArr6)
	seq.DeserializeWith("bigarrayDeserializeFrameArr7", bigarrayDeserializeFrameArr7)
	seq.DeserializeWith("bigarrayDeserializeFrameArr9", bigarrayDeserializeFrameArr9)
}
