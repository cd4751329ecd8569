package seq

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// TagKey is the struct tag key read by the struct codec.
const TagKey = "seq"

// Tag is a parsed seq struct tag.
//
// Semantics:
//   - "rename=name"            : encode the field under name
//   - "skip"                   : never encode or decode the field
//   - "skip_serializing"       : never encode the field
//   - "skip_deserializing"     : never decode the field
//   - "serialize_with=fn"      : encode through the serialize hook fn
//   - "deserialize_with=fn"    : decode through the deserialize hook fn
//   - "with=fn"                : both hooks registered under fn
//
// Options are comma separated and may appear in any order.
type Tag struct {
	Rename            string
	Skip              bool
	SkipSerializing   bool
	SkipDeserializing bool
	SerializeWith     string
	DeserializeWith   string
	With              string

	// Unknown holds option names the codec does not understand. ParseTag
	// keeps them so that tools reading a subset of options can ignore them;
	// the struct codec itself rejects them.
	Unknown []string
}

// ParseTag parses a seq struct tag value.
func ParseTag(tag string) (Tag, error) {
	var t Tag
	if strings.TrimSpace(tag) == "" {
		return t, nil
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return t, errors.Wrapf(ErrInvalidTag, "empty option in %q", tag)
		}

		key, value, hasValue := strings.Cut(part, "=")
		if hasValue && value == "" {
			return t, errors.Wrapf(ErrInvalidTag, "%s= requires a value", key)
		}

		switch key {
		case "skip", "skip_serializing", "skip_deserializing":
			if hasValue {
				return t, errors.Wrapf(ErrInvalidTag, "%s takes no value", key)
			}
			switch key {
			case "skip":
				t.Skip = true
			case "skip_serializing":
				t.SkipSerializing = true
			default:
				t.SkipDeserializing = true
			}
		case "rename", "serialize_with", "deserialize_with", "with":
			if !hasValue {
				return t, errors.Wrapf(ErrInvalidTag, "%s requires a value", key)
			}
			switch key {
			case "rename":
				t.Rename = value
			case "serialize_with":
				t.SerializeWith = value
			case "deserialize_with":
				t.DeserializeWith = value
			default:
				t.With = value
			}
		default:
			t.Unknown = append(t.Unknown, key)
		}
	}

	return t, nil
}

// Serializes reports whether the field is written at all.
func (t Tag) Serializes() bool {
	return !t.Skip && !t.SkipSerializing
}

// Deserializes reports whether the field is read at all.
func (t Tag) Deserializes() bool {
	return !t.Skip && !t.SkipDeserializing
}

// SerializeHook returns the name of the serialize hook, if any.
func (t Tag) SerializeHook() string {
	if t.SerializeWith != "" {
		return t.SerializeWith
	}
	return t.With
}

// DeserializeHook returns the name of the deserialize hook, if any.
func (t Tag) DeserializeHook() string {
	if t.DeserializeWith != "" {
		return t.DeserializeWith
	}
	return t.With
}
