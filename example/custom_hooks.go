package example

import (
	"sync/atomic"

	"github.com/alexhholmes/bigarray/seq"
)

// customEncodes counts calls to encodeCustom.
var customEncodes atomic.Int64

// encodeCustom writes Frame.Custom newest first. Decoding goes through the
// generated hook, so a round trip reverses the array.
func encodeCustom(array *[40]uint16, s seq.Serializer) error {
	customEncodes.Add(1)
	tuple, err := s.SerializeTuple(len(array))
	if err != nil {
		return err
	}
	for i := len(array) - 1; i >= 0; i-- {
		if err := tuple.SerializeElement(&array[i]); err != nil {
			return err
		}
	}
	return tuple.End()
}

func init() {
	seq.SerializeWith("encodeCustom", encodeCustom)
}
