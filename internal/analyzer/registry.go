package analyzer

import (
	"go/ast"
	"go/token"
	"strconv"
)

// Registry tracks integer constants and defined array types declared in a
// file. It serves diagnostics and bufsize checks: lengths are never
// evaluated for classification.
type Registry struct {
	consts map[string]uint64   // constant name → value
	types  map[string]ast.Expr // defined type name → underlying type expression
}

func NewRegistry() *Registry {
	return &Registry{
		consts: make(map[string]uint64),
		types:  make(map[string]ast.Expr),
	}
}

// RegistryFromFile collects the constants with integer literal values and
// the non-alias type definitions of file.
func RegistryFromFile(file *ast.File) *Registry {
	r := NewRegistry()
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}

		for _, spec := range genDecl.Specs {
			switch s := spec.(type) {
			case *ast.ValueSpec:
				if genDecl.Tok != token.CONST {
					continue
				}
				for i, name := range s.Names {
					if i >= len(s.Values) {
						break
					}
					if n, ok := intLiteral(s.Values[i]); ok {
						r.Register(name.Name, n)
					}
				}

			case *ast.TypeSpec:
				if !s.Assign.IsValid() && s.TypeParams == nil {
					r.RegisterType(s.Name.Name, s.Type)
				}
			}
		}
	}
	return r
}

// Register adds a constant with its value
func (r *Registry) Register(name string, value uint64) {
	r.consts[name] = value
}

// RegisterType adds a type definition (e.g., type Buffer [300]byte)
func (r *Registry) RegisterType(name string, underlying ast.Expr) {
	r.types[name] = underlying
}

// Lookup returns the value of a registered constant
func (r *Registry) Lookup(name string) (uint64, bool) {
	v, ok := r.consts[name]
	return v, ok
}

// ResolveArray follows type definitions from expr until it reaches an array
// type. Returns false for anything else, including types declared elsewhere.
func (r *Registry) ResolveArray(expr ast.Expr) (*ast.ArrayType, bool) {
	seen := make(map[string]bool)
	for {
		switch t := expr.(type) {
		case *ast.ArrayType:
			return t, t.Len != nil
		case *ast.ParenExpr:
			expr = t.X
		case *ast.Ident:
			underlying, ok := r.types[t.Name]
			if !ok || seen[t.Name] {
				return nil, false
			}
			seen[t.Name] = true
			expr = underlying
		default:
			return nil, false
		}
	}
}

// LenValue evaluates an array length that is an integer literal or a
// registered constant.
func (r *Registry) LenValue(expr ast.Expr) (uint64, bool) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return intLiteral(e)
	case *ast.Ident:
		return r.Lookup(e.Name)
	case *ast.ParenExpr:
		return r.LenValue(e.X)
	}
	return 0, false
}

func intLiteral(expr ast.Expr) (uint64, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, false
	}
	n, err := strconv.ParseUint(lit.Value, 0, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
