package example

import (
	"sync/atomic"

	"github.com/alexhholmes/bigarray/seq"
)

// liveBlocks counts blocks acquired by decoding and not yet released.
var liveBlocks atomic.Int64

// LiveBlocks returns the number of decoded blocks still holding a reference.
func LiveBlocks() int64 {
	return liveBlocks.Load()
}

// Block is a reference to a pooled storage block. Decoding a Block acquires
// a reference; Release gives it back.
type Block struct {
	ID   uint32
	held bool
}

func (b *Block) MarshalSeq(s seq.Serializer) error {
	return s.SerializeValue(b.ID)
}

func (b *Block) UnmarshalSeq(d seq.Deserializer) error {
	var id uint32
	if err := d.DeserializeValue(&id); err != nil {
		return err
	}
	b.Release()
	b.ID = id
	b.held = true
	liveBlocks.Add(1)
	return nil
}

// Release drops the reference held by b. Releasing twice is a no-op.
func (b *Block) Release() {
	if b.held {
		b.held = false
		liveBlocks.Add(-1)
	}
}
