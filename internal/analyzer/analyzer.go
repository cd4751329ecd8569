package analyzer

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/alexhholmes/bigarray/internal/parser"
)

// Context is the capability snapshot of one item, taken before any field
// is classified
type Context struct {
	TypeName    string
	Serialize   bool // item derives Serialize
	Deserialize bool // item derives Deserialize
}

// NewContext scans the capability declarations of item
func NewContext(item *parser.Item) Context {
	ser, deser := parser.ScanCapabilities(item.CapabilityLines())
	return Context{
		TypeName:    item.Name,
		Serialize:   ser,
		Deserialize: deser,
	}
}

// AnalyzedItem contains the classified fields of an item
type AnalyzedItem struct {
	Context  Context
	Fields   []*BigArrayField // in flattened field order
	Warnings []string         // diagnostics that do not stop expansion
}

// Analyze classifies every field of item. The registry, which may be nil,
// is only used for warnings.
func Analyze(item *parser.Item, registry *Registry, opts Options) (*AnalyzedItem, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}

	// Phase 1: Capabilities
	a := &AnalyzedItem{Context: NewContext(item)}

	// Phase 2: Classify fields in positional order
	for _, field := range item.Fields {
		b, err := Classify(field, opts)
		if err != nil {
			return nil, err
		}
		if b != nil {
			a.Fields = append(a.Fields, b)
		}
	}

	// Phase 3: Diagnostics
	if registry != nil {
		for _, b := range a.Fields {
			warnings, err := checkLength(b, registry, opts.Threshold)
			if err != nil {
				return nil, err
			}
			a.Warnings = append(a.Warnings, warnings...)
		}
	}

	return a, nil
}

// Enabled reports whether b gets a function for the given capability.
func (a *AnalyzedItem) Enabled(b *BigArrayField, capability string) bool {
	switch capability {
	case CapSerialize:
		return a.Context.Serialize && b.Serialize
	case CapDeserialize:
		return a.Context.Deserialize && b.Deserialize
	}
	return false
}

// checkLength reports named lengths within the threshold. A bufsize that
// differs from a resolvable array length is an error: the generated
// functions would index past the array or never fill it.
func checkLength(b *BigArrayField, registry *Registry, threshold int) ([]string, error) {
	var warnings []string
	name := b.Field.Variant + "." + b.Field.Name

	if b.Named {
		if v, ok := registry.Lookup(b.Len); ok && v <= uint64(threshold) {
			warnings = append(warnings, fmt.Sprintf(
				"%s: constant %s = %d does not exceed %d; codec generated anyway", name, b.Len, v, threshold))
		}
	}

	if b.Explicit {
		arr, ok := registry.ResolveArray(b.Field.Node.Type)
		if !ok {
			return warnings, nil
		}
		want, ok1 := registry.LenValue(arr.Len)
		got, ok2 := fieldLen(b, registry)
		if ok1 && ok2 && want != got {
			return nil, parser.FieldError(b.Field, parser.ErrLengthMismatch, fmt.Sprintf(
				"bufsize %s (%d) does not match array length %d of %s", b.Len, got, want, b.Field.GoType))
		}
	}

	return warnings, nil
}

func fieldLen(b *BigArrayField, registry *Registry) (uint64, bool) {
	if b.Named {
		return registry.Lookup(b.Len)
	}
	n, err := strconv.ParseUint(b.Len, 0, 64)
	return n, err == nil
}
