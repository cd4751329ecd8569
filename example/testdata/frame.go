package example

//go:generate go run ../cmd/bigarray -o frame.go testdata/frame.go

// HistoryLen is the number of blocks a frame keeps.
const HistoryLen = 48

// BufLen is the size of a raw capture buffer.
const BufLen = 256

// Buffer is a raw capture buffer.
type Buffer [BufLen]byte

// Frame is one capture.
//
// @bigarray
// @derive(seq.Serialize, seq.Deserialize)
type Frame struct {
	ID      uint32
	Samples [300]int16
	Small   [8]byte
	History [HistoryLen]Block
	Recent  [5]Block   `bigarray:"bufsize=5"`
	Raw     Buffer     `bigarray:"bufsize='BufLen'" seq:"rename=raw"`
	Outbox  [64]uint16 `seq:"skip_deserializing"`
	Inbox   [64]uint16 `seq:"skip_serializing"`
	Scratch [512]byte  `bigarray:"skip" seq:"skip"`
	Custom  [40]uint16 `seq:"serialize_with=encodeCustom"`
}
