package codegen

import (
	"bytes"
	"go/ast"
	"go/format"
	goparser "go/parser"
	"go/printer"
	"go/token"
	"path"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/tools/go/ast/astutil"

	"github.com/alexhholmes/bigarray/internal/analyzer"
	"github.com/alexhholmes/bigarray/internal/parser"
)

// ExpandSource parses src and expands every marked item. Either every item
// expands and the new source is returned, or nothing is.
func ExpandSource(filename string, src []byte, opts Options) ([]byte, []*Expansion, error) {
	opts = opts.withDefaults()
	file, err := parser.ParseSource(filename, src, parser.Options{Marker: opts.Marker})
	if err != nil {
		return nil, nil, err
	}
	return Expand(file, opts)
}

// Expand rewrites the items of a parsed file and renders the result.
func Expand(file *parser.File, opts Options) ([]byte, []*Expansion, error) {
	gen := NewGenerator(opts)
	if name, ok := importName(file.AST, gen.opts.SeqImport); ok {
		gen.seq = name
	}
	registry := analyzer.RegistryFromFile(file.AST)

	var expansions []*Expansion
	for _, item := range file.Items {
		analyzed, err := analyzer.Analyze(item, registry, gen.opts.Analyzer)
		if err != nil {
			return nil, nil, err
		}

		exp, err := gen.Rewrite(item, analyzed)
		if err != nil {
			return nil, nil, err
		}
		for _, w := range exp.Warnings {
			Logger().Warn(w, zap.String("file", file.Name), zap.String("item", item.Name))
		}
		Logger().Info("item expanded",
			zap.String("file", file.Name),
			zap.String("item", item.Name),
			zap.Stringer("kind", item.Kind),
			zap.Int("functions", len(exp.Functions)),
			zap.Int("bounds", len(exp.Bounds)),
		)

		expansions = append(expansions, exp)
	}

	out, err := Emit(file, expansions, gen.opts.SeqImport)
	if err != nil {
		return nil, nil, err
	}
	return out, expansions, nil
}

// Emit splices each rewritten item, followed by its generated functions and
// registration, into the original source and formats the result. The runtime
// import is added when any function was generated.
func Emit(file *parser.File, expansions []*Expansion, seqImport string) ([]byte, error) {
	if len(expansions) == 0 {
		return file.Src, nil
	}

	var out bytes.Buffer
	last := 0
	generated := false
	for _, exp := range expansions {
		text, err := renderItem(file, exp.Item)
		if err != nil {
			return nil, err
		}

		out.Write(file.Src[last:exp.Item.Start])
		out.WriteString(text)
		for _, fn := range exp.Functions {
			out.WriteString("\n\n")
			if fn.Guard != "" {
				out.WriteString(fn.Guard)
				out.WriteString("\n")
			}
			out.WriteString(fn.Source)
		}
		if exp.Init != "" {
			out.WriteString("\n\n")
			out.WriteString(exp.Init)
		}

		last = exp.Item.End
		generated = generated || len(exp.Functions) > 0
	}
	out.Write(file.Src[last:])

	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, file.Name, out.Bytes(), goparser.ParseComments)
	if err != nil {
		return nil, errors.Wrap(err, "generated code does not parse")
	}
	if _, ok := importName(f, seqImport); generated && !ok {
		astutil.AddImport(fset, f, seqImport)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return nil, errors.Wrap(err, "format generated code")
	}
	return buf.Bytes(), nil
}

// renderItem prints the rewritten declaration of item with its doc comment
// and the comments inside it.
func renderItem(file *parser.File, item *parser.Item) (string, error) {
	var buf bytes.Buffer

	decl := item.Decl
	doc := decl.Doc
	if doc != nil {
		for _, c := range doc.List {
			buf.WriteString(c.Text)
			buf.WriteByte('\n')
		}
	}

	// The doc comment is written above; the printer would otherwise emit the
	// original text, including the marker.
	decl.Doc = nil
	defer func() { decl.Doc = doc }()

	comments := lo.Filter(file.AST.Comments, func(cg *ast.CommentGroup, _ int) bool {
		return cg.Pos() >= decl.Pos() && cg.End() <= decl.End()
	})

	cfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	if err := cfg.Fprint(&buf, file.Fset, &printer.CommentedNode{Node: decl, Comments: comments}); err != nil {
		return "", errors.Wrapf(err, "print %s", item.Name)
	}
	return buf.String(), nil
}

// importName returns the name generated code must use for importPath, if f
// already imports it under a usable name.
func importName(f *ast.File, importPath string) (string, bool) {
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil || p != importPath {
			continue
		}
		if spec.Name == nil {
			return path.Base(importPath), true
		}
		if spec.Name.Name != "_" && spec.Name.Name != "." {
			return spec.Name.Name, true
		}
	}
	return "", false
}
