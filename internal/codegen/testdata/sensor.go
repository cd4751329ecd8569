package sensor

import "time"

const Window = 512

// Trace is a raw capture window.
type Trace [Window]float32

// Reading is one sampled capture.
//
// @bigarray
// @derive(seq.Serialize, seq.Deserialize)
type Reading struct {
	Taken   time.Time
	Raw     [Window]int16
	Filter  Trace `bigarray:"bufsize='Window'" seq:"rename=filter"`
	Header  [16]byte
	Scratch [1024]byte `bigarray:"skip"`
	Audit   [64]uint32 `bigarray:"skip_deserializing"`
}

// @bigarray
// @derive(seq.Serialize, seq.Deserialize)
type (
	Event interface {
		isEvent()
	}

	Burst struct {
		Samples [256]int16
	}

	Heartbeat struct {
		Seq uint64
	}
)

func (Burst) isEvent()     {}
func (Heartbeat) isEvent() {}
