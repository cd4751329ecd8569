package parser

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Kind is the shape of a marked item
type Kind int

const (
	Record      Kind = iota // type S struct{...}
	TaggedUnion             // type ( U interface{...}; A struct{...}; ... )
)

func (k Kind) String() string {
	switch k {
	case Record:
		return "record"
	case TaggedUnion:
		return "union"
	default:
		return "unknown"
	}
}

// File is a parsed source file together with its marked items
type File struct {
	Name  string
	Fset  *token.FileSet
	AST   *ast.File
	Src   []byte
	Items []*Item
}

// Item is a type declaration carrying the marker
type Item struct {
	Kind         Kind
	Name         string
	Decl         *ast.GenDecl
	Anno         *Annotation
	Marker       *ast.Comment   // the marker line in Decl.Doc
	Capabilities []*ast.Comment // @derive lines in Decl.Doc
	TypeParams   *ast.FieldList // of the struct, or of the union interface
	Variants     []*Variant     // a record has exactly one
	Fields       []*Field       // flattened over all variants

	// Start and End are source offsets of the declaration including its
	// doc comment, taken before any rewriting.
	Start, End int
}

// Variant is one struct of an item. A record is its own single variant.
type Variant struct {
	Name   string
	Spec   *ast.TypeSpec
	Struct *ast.StructType
}

// Field is one named or embedded struct field of an item
type Field struct {
	Index      int    // position in the flattened field list, never reused
	Item       string // owning item name
	Variant    string // owning struct name
	Name       string // field name, or the type for embedded fields
	GoType     string
	Node       *ast.Field
	TypeParams *ast.FieldList // of the owning struct
	Pos        token.Position
}

// Options controls item discovery.
type Options struct {
	Marker string
}

// ParseFile parses a Go source file and extracts marked items
func ParseFile(filename string, opts Options) (*File, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read source")
	}
	return ParseSource(filename, src, opts)
}

// ParseSource parses src and extracts marked items. Items are returned in
// source order.
func ParseSource(filename string, src []byte, opts Options) (*File, error) {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}

	f := &File{Name: filename, Fset: fset, AST: file, Src: src}
	f.Items, err = extractItems(fset, file, opts.Marker)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func extractItems(fset *token.FileSet, file *ast.File, marker string) ([]*Item, error) {
	var items []*Item

	for _, decl := range file.Decls {
		var doc *ast.CommentGroup
		switch d := decl.(type) {
		case *ast.GenDecl:
			doc = d.Doc
		case *ast.FuncDecl:
			doc = d.Doc
		}

		anno, markerLine, err := FindAnnotation(marker, doc)
		if err != nil {
			return nil, &ExpansionError{Err: err, Pos: fset.Position(doc.Pos())}
		}
		if anno == nil {
			continue // No marker, leave untouched
		}

		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			return nil, &ExpansionError{
				Err:    ErrUnsupportedItem,
				Pos:    fset.Position(decl.Pos()),
				Detail: marker + " only applies to type declarations",
			}
		}

		item, err := newItem(fset, genDecl, anno, markerLine)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func newItem(fset *token.FileSet, decl *ast.GenDecl, anno *Annotation, marker *ast.Comment) (*Item, error) {
	specs := lo.Map(decl.Specs, func(s ast.Spec, _ int) *ast.TypeSpec { return s.(*ast.TypeSpec) })
	unsupported := func(spec *ast.TypeSpec, detail string) error {
		return &ExpansionError{
			Err:    ErrUnsupportedItem,
			Pos:    fset.Position(spec.Pos()),
			Item:   spec.Name.Name,
			Detail: detail,
		}
	}

	item := &Item{
		Name:   specs[0].Name.Name,
		Decl:   decl,
		Anno:   anno,
		Marker: marker,
		Start:  fset.Position(decl.Doc.Pos()).Offset,
		End:    fset.Position(decl.End()).Offset,
	}
	for _, c := range decl.Doc.List {
		if _, ok := ParseDerive(c.Text); ok {
			item.Capabilities = append(item.Capabilities, c)
		}
	}

	for _, spec := range specs {
		if spec.Assign.IsValid() {
			return nil, unsupported(spec, "type aliases cannot be expanded")
		}
	}

	switch _, isInterface := specs[0].Type.(*ast.InterfaceType); {
	case isInterface && len(specs) > 1:
		item.Kind = TaggedUnion
		item.TypeParams = specs[0].TypeParams
		for _, spec := range specs[1:] {
			st, ok := spec.Type.(*ast.StructType)
			if !ok {
				return nil, unsupported(spec, "union variants must be struct types")
			}
			item.Variants = append(item.Variants, &Variant{Name: spec.Name.Name, Spec: spec, Struct: st})
		}

	case len(specs) == 1:
		st, ok := specs[0].Type.(*ast.StructType)
		if !ok {
			return nil, unsupported(specs[0], "expected a struct type or an interface followed by its variant structs")
		}
		item.Kind = Record
		item.TypeParams = specs[0].TypeParams
		item.Variants = []*Variant{{Name: specs[0].Name.Name, Spec: specs[0], Struct: st}}

	default:
		return nil, unsupported(specs[0], "a type group must start with the union interface")
	}

	for _, v := range item.Variants {
		splitFields(v.Struct)
		for _, node := range v.Struct.Fields.List {
			item.Fields = append(item.Fields, &Field{
				Index:      len(item.Fields),
				Item:       item.Name,
				Variant:    v.Name,
				Name:       fieldName(node),
				GoType:     types.ExprString(node.Type),
				Node:       node,
				TypeParams: v.Spec.TypeParams,
				Pos:        fset.Position(node.Pos()),
			})
		}
	}

	return item, nil
}

// splitFields rewrites "A, B T" into separate fields so that each name can
// carry its own tag.
func splitFields(st *ast.StructType) {
	var list []*ast.Field
	for _, f := range st.Fields.List {
		if len(f.Names) <= 1 {
			list = append(list, f)
			continue
		}
		for i, name := range f.Names {
			nf := &ast.Field{Names: []*ast.Ident{name}, Type: f.Type}
			if f.Tag != nil {
				nf.Tag = &ast.BasicLit{ValuePos: f.Tag.ValuePos, Kind: f.Tag.Kind, Value: f.Tag.Value}
			}
			if i == 0 {
				nf.Doc = f.Doc
			}
			if i == len(f.Names)-1 {
				nf.Comment = f.Comment
			}
			list = append(list, nf)
		}
	}
	st.Fields.List = list
}

func fieldName(field *ast.Field) string {
	if len(field.Names) > 0 {
		return field.Names[0].Name
	}
	return types.ExprString(field.Type)
}

// CapabilityLines returns the cleaned capability declarations of the item.
func (it *Item) CapabilityLines() []string {
	return lo.Map(it.Capabilities, func(c *ast.Comment, _ int) string { return CleanComment(c.Text) })
}

// RemoveMarker drops the marker line from the item's doc comment.
func (it *Item) RemoveMarker() {
	doc := it.Decl.Doc
	doc.List = lo.Reject(doc.List, func(c *ast.Comment, _ int) bool { return c == it.Marker })
	if len(doc.List) == 0 {
		it.Decl.Doc = nil
	}
}
