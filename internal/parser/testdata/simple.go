package testdata

// Frame is a fixed-size sample frame.
//
// @bigarray
// @derive(seq.Serialize, seq.Deserialize)
type Frame struct {
	ID      uint32
	Samples [300]int16
	Small   [8]byte
}

// Ignored carries no marker and must be left alone.
// @derive(seq.Serialize)
type Ignored struct {
	Data [300]byte
}

// @bigarray register=false
// @derive(Debug, seq.Serialize, seq.Deserialize)
type (
	Message interface {
		isMessage()
	}

	Ping struct {
		Payload [64]byte
	}

	Pong struct {
		Seq     uint64
		Payload [128]byte
		Trailer string
	}
)
