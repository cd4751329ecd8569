package seq

import (
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
)

// hookKey identifies a hook by name and the field type it handles. The same
// name may be registered for several instantiations of a generic hook.
type hookKey struct {
	name string
	typ  reflect.Type
}

type serializeHook func(field reflect.Value, s Serializer) error

type deserializeHook func(d Deserializer, field reflect.Value) error

var (
	hooksMu          sync.RWMutex
	serializeHooks   = make(map[hookKey]serializeHook)
	deserializeHooks = make(map[hookKey]deserializeHook)
)

// SerializeWith registers fn as the serialize hook called name for fields of
// type A. Registering the same name and type twice replaces the earlier hook.
func SerializeWith[A any](name string, fn func(*A, Serializer) error) {
	key := hookKey{name: name, typ: reflect.TypeOf((*A)(nil)).Elem()}

	hooksMu.Lock()
	defer hooksMu.Unlock()
	serializeHooks[key] = func(field reflect.Value, s Serializer) error {
		return fn(field.Addr().Interface().(*A), s)
	}
}

// DeserializeWith registers fn as the deserialize hook called name for fields
// of type A.
func DeserializeWith[A any](name string, fn func(Deserializer) (A, error)) {
	key := hookKey{name: name, typ: reflect.TypeOf((*A)(nil)).Elem()}

	hooksMu.Lock()
	defer hooksMu.Unlock()
	deserializeHooks[key] = func(d Deserializer, field reflect.Value) error {
		v, err := fn(d)
		if err != nil {
			return err
		}
		*field.Addr().Interface().(*A) = v
		return nil
	}
}

func lookupSerializeHook(name string, typ reflect.Type) (serializeHook, error) {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	hook, ok := serializeHooks[hookKey{name: name, typ: typ}]
	if !ok {
		return nil, errors.Wrapf(ErrNoHook, "serialize hook %q for %s", name, typ)
	}
	return hook, nil
}

func lookupDeserializeHook(name string, typ reflect.Type) (deserializeHook, error) {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	hook, ok := deserializeHooks[hookKey{name: name, typ: typ}]
	if !ok {
		return nil, errors.Wrapf(ErrNoHook, "deserialize hook %q for %s", name, typ)
	}
	return hook, nil
}

// ResetHooks clears the hook registry.
// This is primarily useful for test isolation.
func ResetHooks() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	serializeHooks = make(map[hookKey]serializeHook)
	deserializeHooks = make(map[hookKey]deserializeHook)
}

// hookMarshaler adapts a serialize hook and its field to Marshaler so that
// backends can treat hooked fields like any other value.
type hookMarshaler struct {
	hook  serializeHook
	field reflect.Value
}

func (h hookMarshaler) MarshalSeq(s Serializer) error {
	return h.hook(h.field, s)
}

type hookUnmarshaler struct {
	hook  deserializeHook
	field reflect.Value
}

func (h hookUnmarshaler) UnmarshalSeq(d Deserializer) error {
	return h.hook(d, h.field)
}
