package testdata

const BufSize = 300

type Buffer [BufSize]byte

// @bigarray
// @derive(seq.Serialize, seq.Deserialize)
type Table[T any, K comparable] struct {
	Keys        [40]K
	Left, Right [BufSize]T `bigarray:"skip_serializing"`
	Alias       Buffer     `bigarray:"bufsize='BufSize'"`
	Count       int
}
