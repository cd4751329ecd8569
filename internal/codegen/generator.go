package codegen

import (
	"fmt"
	"go/ast"
	"go/types"
	"strings"

	"github.com/samber/lo"

	"github.com/alexhholmes/bigarray/internal/analyzer"
)

// Direction selects the codec function being generated
type Direction int

const (
	Serialize Direction = iota
	Deserialize
)

func (d Direction) String() string {
	switch d {
	case Serialize:
		return "Serialize"
	case Deserialize:
		return "Deserialize"
	default:
		return "unknown"
	}
}

// Capability returns the capability an item needs for d.
func (d Direction) Capability() string {
	if d == Serialize {
		return analyzer.CapSerialize
	}
	return analyzer.CapDeserialize
}

// GeneratedFunction is one synthesized codec function
type GeneratedFunction struct {
	Name       string
	Direction  Direction
	FieldType  string // declared field type, e.g. "[300]T" or "Buffer"
	Len        string // tuple arity expression
	TypeParams string // e.g. "[T any]"; empty for non-generic fields
	Source     string

	// Guard holds declarations emitted before Source that stop compilation
	// when an explicit length differs from the array length. Only the first
	// function of a field carries it.
	Guard string
}

// Generic reports whether the function has type parameters. Generic
// functions cannot be registered without an instantiation.
func (f GeneratedFunction) Generic() bool {
	return f.TypeParams != ""
}

// Generator synthesizes codec functions for classified fields
type Generator struct {
	opts Options
	seq  string // qualifier of the runtime package in generated code
}

// NewGenerator creates a new code generator
func NewGenerator(opts Options) *Generator {
	opts = opts.withDefaults()
	return &Generator{opts: opts, seq: opts.SeqPackage()}
}

// FunctionName derives the name of a generated function from the item, the
// direction and the field's flattened position.
//
//	bigarraySerializeFrameArr1, bigarrayDeserializeFrameArr1
func (g *Generator) FunctionName(typeName string, dir Direction, index int) string {
	return fmt.Sprintf("%s%s%sArr%d", g.opts.Prefix, dir, typeName, index)
}

// Synthesize generates the codec function for b in direction dir.
func (g *Generator) Synthesize(b *analyzer.BigArrayField, name string, dir Direction) GeneratedFunction {
	fn := GeneratedFunction{
		Name:       name,
		Direction:  dir,
		FieldType:  types.ExprString(b.Field.Node.Type),
		Len:        b.LenExpr(),
		TypeParams: typeParams(b.Field.Node.Type, b.Field.TypeParams),
	}

	if dir == Serialize {
		fn.Source = g.generateSerialize(b, fn)
	} else {
		fn.Source = g.generateDeserialize(b, fn)
	}
	return fn
}

// generateSerialize writes the elements as a tuple in ascending order
func (g *Generator) generateSerialize(b *analyzer.BigArrayField, fn GeneratedFunction) string {
	var code strings.Builder
	seq := g.seq

	code.WriteString(fmt.Sprintf("// %s writes %s.%s as a tuple of %s elements.\n",
		fn.Name, b.Field.Variant, b.Field.Name, b.Len))
	code.WriteString(fmt.Sprintf("func %s%s(array *%s, serializer %s.Serializer) error {\n",
		fn.Name, fn.TypeParams, fn.FieldType, seq))
	code.WriteString(fmt.Sprintf("\ttuple, err := serializer.SerializeTuple(%s)\n", fn.Len))
	code.WriteString("\tif err != nil {\n")
	code.WriteString("\t\treturn err\n")
	code.WriteString("\t}\n")
	code.WriteString("\tfor i := range array {\n")
	code.WriteString("\t\tif err := tuple.SerializeElement(&array[i]); err != nil {\n")
	code.WriteString("\t\t\treturn err\n")
	code.WriteString("\t\t}\n")
	code.WriteString("\t}\n")
	code.WriteString("\treturn tuple.End()\n")
	code.WriteString("}\n")

	return code.String()
}

// generateDeserialize reads exactly Len elements. On failure the elements
// already constructed, array[:n], are released before returning.
func (g *Generator) generateDeserialize(b *analyzer.BigArrayField, fn GeneratedFunction) string {
	var code strings.Builder
	seq := g.seq

	code.WriteString(fmt.Sprintf("// %s reads %s.%s from a tuple of %s elements.\n",
		fn.Name, b.Field.Variant, b.Field.Name, b.Len))
	code.WriteString(fmt.Sprintf("func %s%s(deserializer %s.Deserializer) (%s, error) {\n",
		fn.Name, fn.TypeParams, seq, fn.FieldType))
	code.WriteString(fmt.Sprintf("\tvar array %s\n", fn.FieldType))
	code.WriteString(fmt.Sprintf("\ttuple, err := deserializer.DeserializeTuple(%s)\n", fn.Len))
	code.WriteString("\tif err != nil {\n")
	code.WriteString("\t\treturn array, err\n")
	code.WriteString("\t}\n")
	code.WriteString(fmt.Sprintf("\tfor n := 0; n < %s; n++ {\n", fn.Len))
	code.WriteString("\t\tok, err := tuple.NextElement(&array[n])\n")
	code.WriteString("\t\tif err == nil && !ok {\n")
	code.WriteString(fmt.Sprintf("\t\t\terr = %s.InvalidLength(n, %s)\n", seq, fn.Len))
	code.WriteString("\t\t}\n")
	code.WriteString("\t\tif err != nil {\n")
	code.WriteString(fmt.Sprintf("\t\t\t%s.ReleaseAll(array[:n])\n", seq))
	code.WriteString(fmt.Sprintf("\t\t\tvar zero %s\n", fn.FieldType))
	code.WriteString("\t\t\treturn zero, err\n")
	code.WriteString("\t\t}\n")
	code.WriteString("\t}\n")
	code.WriteString("\treturn array, nil\n")
	code.WriteString("}\n")

	return code.String()
}

// LengthGuard returns declarations that fail to compile when the bufsize of
// b differs from the length of its array type. It is empty when the length
// was taken from the type, or when the type mentions type parameters and
// cannot be named at package level.
func (g *Generator) LengthGuard(b *analyzer.BigArrayField) string {
	if !b.Explicit {
		return ""
	}

	var declared string
	if arr, ok := b.Field.Node.Type.(*ast.ArrayType); ok && arr.Len != nil {
		declared = types.ExprString(arr.Len)
		if _, lit := arr.Len.(*ast.BasicLit); !lit {
			declared = "int(" + declared + ")"
		}
	} else if typeParams(b.Field.Node.Type, b.Field.TypeParams) == "" {
		declared = "len(" + types.ExprString(b.Field.Node.Type) + "{})"
	} else {
		return ""
	}

	var code strings.Builder
	code.WriteString(fmt.Sprintf("// bufsize %s must equal the length of %s.%s.\n",
		b.Len, b.Field.Variant, b.Field.Name))
	code.WriteString("var (\n")
	code.WriteString(fmt.Sprintf("\t_ [%s - %s]struct{}\n", b.LenExpr(), declared))
	code.WriteString(fmt.Sprintf("\t_ [%s - %s]struct{}\n", declared, b.LenExpr()))
	code.WriteString(")\n")
	return code.String()
}

// typeParams returns the declaration of the owner's type parameters that typ
// mentions, keeping their order and constraints.
func typeParams(typ ast.Expr, params *ast.FieldList) string {
	if params == nil {
		return ""
	}

	used := make(map[string]bool)
	mark := func(expr ast.Expr) {
		ast.Inspect(expr, func(n ast.Node) bool {
			switch x := n.(type) {
			case *ast.SelectorExpr:
				// pkg.T never refers to a type parameter
				return false
			case *ast.Ident:
				used[x.Name] = true
			}
			return true
		})
	}
	mark(typ)

	// A kept parameter needs every parameter its constraint mentions.
	for changed := true; changed; {
		changed = false
		for _, p := range params.List {
			needed := lo.SomeBy(p.Names, func(name *ast.Ident) bool { return used[name.Name] })
			if !needed {
				continue
			}
			before := len(used)
			mark(p.Type)
			changed = changed || len(used) != before
		}
	}

	var decls []string
	for _, p := range params.List {
		var names []string
		for _, name := range p.Names {
			if used[name.Name] {
				names = append(names, name.Name)
			}
		}
		if len(names) > 0 {
			decls = append(decls, strings.Join(names, ", ")+" "+types.ExprString(p.Type))
		}
	}
	if len(decls) == 0 {
		return ""
	}
	return "[" + strings.Join(decls, ", ") + "]"
}
