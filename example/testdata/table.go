package example

//go:generate go run ../cmd/bigarray -o table.go testdata/table.go

// Table is a fixed window of values of any encodable type.
//
// @bigarray
// @derive(seq.Serialize, seq.Deserialize)
type Table[T any] struct {
	Name   string
	Values [64]T
}
