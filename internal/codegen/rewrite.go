package codegen

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/alexhholmes/bigarray/internal/analyzer"
	"github.com/alexhholmes/bigarray/internal/parser"
)

// Expansion is the result of rewriting one item
type Expansion struct {
	Item      *parser.Item
	Context   analyzer.Context
	Functions []GeneratedFunction // in classification order, serialize first per field
	Bounds    []analyzer.Bound
	Init      string   // source of the registration function, empty if none
	Warnings  []string // diagnostics from analysis and rewriting
}

// Rewrite mutates item in place and collects the functions it now refers to:
// each classified field gets serialize_with/deserialize_with options for its
// enabled directions, bounds are recorded on the capability declaration, and
// the marker line is removed.
func (g *Generator) Rewrite(item *parser.Item, analyzed *analyzer.AnalyzedItem) (*Expansion, error) {
	exp := &Expansion{
		Item:     item,
		Context:  analyzed.Context,
		Warnings: append([]string(nil), analyzed.Warnings...),
	}
	hostKey := g.opts.Analyzer.HostTagKey

	for _, b := range analyzed.Fields {
		param, needsBound := analyzer.Compensate(b.ElementType, b.Field.TypeParams)
		first := len(exp.Functions)

		for _, dir := range []Direction{Serialize, Deserialize} {
			if !analyzed.Enabled(b, dir.Capability()) {
				continue
			}

			name := g.FunctionName(analyzed.Context.TypeName, dir, b.Field.Index)
			option := "serialize_with"
			if dir == Deserialize {
				option = "deserialize_with"
			}
			if err := attachHook(b.Field, hostKey, option, name); err != nil {
				return nil, err
			}
			if needsBound {
				exp.addBound(analyzer.Bound{Param: param, Capability: dir.Capability()})
			}

			fn := g.Synthesize(b, name, dir)
			exp.Functions = append(exp.Functions, fn)

			Logger().Debug("field classified",
				zap.String("item", item.Name),
				zap.String("field", b.Field.Variant+"."+b.Field.Name),
				zap.Int("index", b.Field.Index),
				zap.String("len", b.Len),
				zap.Stringer("direction", dir),
				zap.String("function", name),
			)
		}

		if len(exp.Functions) > first {
			exp.Functions[first].Guard = g.LengthGuard(b)
		}
	}

	if len(exp.Bounds) > 0 {
		derive := item.Capabilities[0]
		text, block := strings.CutSuffix(derive.Text, "*/")
		text = strings.TrimRight(text, " ")
		for _, bound := range exp.Bounds {
			text += " " + bound.String()
		}
		if block {
			text += " */"
		}
		derive.Text = text
	}

	item.RemoveMarker()

	if g.opts.Register && item.Anno.Register {
		exp.Init = g.registration(exp)
	}

	return exp, nil
}

// addBound records bound once, in first-seen order.
func (e *Expansion) addBound(bound analyzer.Bound) {
	if !lo.Contains(e.Bounds, bound) {
		e.Bounds = append(e.Bounds, bound)
	}
}

// attachHook appends option=fn to the field's host tag, creating the tag if
// needed.
func attachHook(field *parser.Field, key, option, fn string) error {
	tag, err := parser.FieldTag(field.Node)
	if err != nil {
		return parser.FieldError(field, err, "")
	}
	value, _ := tag.Get(key)
	if value != "" {
		value += ","
	}
	value += option + "=" + fn
	parser.SetFieldTag(field.Node, tag.With(key, value))
	return nil
}

// registration generates an init function registering the non-generic hooks
// of exp under their own names. Generic hooks are reported instead.
func (g *Generator) registration(exp *Expansion) string {
	var code strings.Builder

	for _, fn := range exp.Functions {
		if fn.Generic() {
			msg := fmt.Sprintf("%s has type parameters %s and must be registered per instantiation", fn.Name, fn.TypeParams)
			exp.Warnings = append(exp.Warnings, msg)
			continue
		}

		register := "SerializeWith"
		if fn.Direction == Deserialize {
			register = "DeserializeWith"
		}
		code.WriteString(fmt.Sprintf("\t%s.%s(%q, %s)\n", g.seq, register, fn.Name, fn.Name))
	}

	if code.Len() == 0 {
		return ""
	}
	return "func init() {\n" + code.String() + "}\n"
}
