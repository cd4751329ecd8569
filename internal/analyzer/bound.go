package analyzer

import (
	"fmt"
	"go/ast"
)

// Capability names used in bound annotations.
const (
	CapSerialize   = "Serialize"
	CapDeserialize = "Deserialize"
)

// Bound requires a type parameter to carry a capability, e.g. T: Serialize.
type Bound struct {
	Param      string
	Capability string
}

func (b Bound) String() string {
	return fmt.Sprintf("@bound(%s: %s)", b.Param, b.Capability)
}

// Compensate returns the type parameter that elem names, if elem is a bare
// identifier for one of params. Element types that only mention a parameter
// (Wrapper[T], *T) get no bound.
func Compensate(elem ast.Expr, params *ast.FieldList) (string, bool) {
	ident, ok := elem.(*ast.Ident)
	if !ok || params == nil {
		return "", false
	}
	for _, p := range params.List {
		for _, name := range p.Names {
			if name.Name == ident.Name {
				return name.Name, true
			}
		}
	}
	return "", false
}
