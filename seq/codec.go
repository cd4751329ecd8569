package seq

import (
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// structPlan describes how to encode and decode one struct type.
type structPlan struct {
	name   string
	fields []fieldPlan
}

// fieldPlan describes a single exported field.
type fieldPlan struct {
	index    []int        // reflect.Value.FieldByIndex access path
	goName   string       // Go field name for error messages
	name     string       // wire name
	typ      reflect.Type // field type, used for hook lookup
	tag      Tag
	tooLarge bool // array longer than MaxArrayLen
}

// plans caches struct plans by type. Plans are immutable after construction.
var plans sync.Map

func planFor(t reflect.Type) (*structPlan, error) {
	if cached, ok := plans.Load(t); ok {
		return cached.(*structPlan), nil
	}

	p := &structPlan{name: t.Name()}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag, err := ParseTag(sf.Tag.Get(TagKey))
		if err != nil {
			return nil, &FieldError{Type: p.name, Field: sf.Name, Err: err}
		}
		if len(tag.Unknown) > 0 {
			return nil, &FieldError{
				Type:  p.name,
				Field: sf.Name,
				Err:   errors.Wrapf(ErrInvalidTag, "unknown option %q", tag.Unknown[0]),
			}
		}

		name := sf.Name
		if tag.Rename != "" {
			name = tag.Rename
		}

		p.fields = append(p.fields, fieldPlan{
			index:    sf.Index,
			goName:   sf.Name,
			name:     name,
			typ:      sf.Type,
			tag:      tag,
			tooLarge: sf.Type.Kind() == reflect.Array && sf.Type.Len() > MaxArrayLen,
		})
	}

	actual, _ := plans.LoadOrStore(t, p)
	return actual.(*structPlan), nil
}

func (p *structPlan) field(name string) (fieldPlan, bool) {
	return lo.Find(p.fields, func(f fieldPlan) bool { return f.name == name })
}

// encodable returns the value handed to the backend for field.
func (f fieldPlan) encodable(field reflect.Value) (any, error) {
	if name := f.tag.SerializeHook(); name != "" {
		hook, err := lookupSerializeHook(name, f.typ)
		if err != nil {
			return nil, err
		}
		return hookMarshaler{hook: hook, field: field}, nil
	}
	if f.tooLarge {
		return nil, errors.Wrapf(ErrArrayTooLarge, "length %d exceeds %d", f.typ.Len(), MaxArrayLen)
	}
	return field.Addr().Interface(), nil
}

// decodable returns the destination handed to the backend for field.
func (f fieldPlan) decodable(field reflect.Value) (any, error) {
	if name := f.tag.DeserializeHook(); name != "" {
		hook, err := lookupDeserializeHook(name, f.typ)
		if err != nil {
			return nil, err
		}
		return hookUnmarshaler{hook: hook, field: field}, nil
	}
	if f.tooLarge {
		return nil, errors.Wrapf(ErrArrayTooLarge, "length %d exceeds %d", f.typ.Len(), MaxArrayLen)
	}
	return field.Addr().Interface(), nil
}

// Marshal writes the struct v (or the struct v points to) to s.
func Marshal(s Serializer, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.Wrap(ErrNotStruct, "nil pointer")
		}
		rv = rv.Elem()
	} else if rv.IsValid() {
		// Hooks take the field's address, so work on an addressable copy.
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		rv = cp
	}
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return errors.Wrapf(ErrNotStruct, "%T", v)
	}

	plan, err := planFor(rv.Type())
	if err != nil {
		return err
	}

	fields := lo.Filter(plan.fields, func(f fieldPlan, _ int) bool { return f.tag.Serializes() })
	ss, err := s.SerializeStruct(plan.name, len(fields))
	if err != nil {
		return err
	}
	for _, f := range fields {
		value, err := f.encodable(rv.FieldByIndex(f.index))
		if err != nil {
			return &FieldError{Type: plan.name, Field: f.goName, Err: err}
		}
		if err := ss.SerializeField(f.name, value); err != nil {
			return &FieldError{Type: plan.name, Field: f.goName, Err: err}
		}
	}
	return ss.End()
}

// Unmarshal reads a struct from d into the struct v points to. Fields absent
// from the input keep their current value; unknown input fields are skipped.
func Unmarshal(d Deserializer, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Wrapf(ErrNotStruct, "Unmarshal requires a non-nil pointer, got %T", v)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return errors.Wrapf(ErrNotStruct, "%T", v)
	}

	plan, err := planFor(rv.Type())
	if err != nil {
		return err
	}

	sa, err := d.DeserializeStruct(plan.name)
	if err != nil {
		return err
	}
	for {
		name, ok, err := sa.NextField()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		f, found := plan.field(name)
		if !found || !f.tag.Deserializes() {
			if err := sa.SkipValue(); err != nil {
				return err
			}
			continue
		}

		dst, err := f.decodable(rv.FieldByIndex(f.index))
		if err != nil {
			return &FieldError{Type: plan.name, Field: f.goName, Err: err}
		}
		if err := sa.FieldValue(dst); err != nil {
			return &FieldError{Type: plan.name, Field: f.goName, Err: err}
		}
	}
}
