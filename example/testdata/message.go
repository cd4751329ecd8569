package example

//go:generate go run ../cmd/bigarray -o message.go testdata/message.go

// Message is exchanged between capture nodes.
//
// @bigarray
// @derive(seq.Serialize, seq.Deserialize)
type (
	Message interface {
		isMessage()
	}

	// ArrBig carries two large arrays.
	ArrBig struct {
		A [300]byte
		B [40]uint32
	}

	// ArrSmall fits the runtime as is.
	ArrSmall struct {
		C [4]byte
	}

	// Mixed has one large array among plain fields.
	Mixed struct {
		D [8]byte
		E [500]uint16
		F string
	}
)

func (ArrBig) isMessage()   {}
func (ArrSmall) isMessage() {}
func (Mixed) isMessage()    {}
