package example

import "github.com/alexhholmes/bigarray/seq"

// Generic hooks are registered once per instantiation in use.
func init() {
	seq.SerializeWith("bigarraySerializeTableArr1", bigarraySerializeTableArr1[float64])
	seq.DeserializeWith("bigarrayDeserializeTableArr1", bigarrayDeserializeTableArr1[float64])
	seq.SerializeWith("bigarraySerializeTableArr1", bigarraySerializeTableArr1[Block])
	seq.DeserializeWith("bigarrayDeserializeTableArr1", bigarrayDeserializeTableArr1[Block])
}
