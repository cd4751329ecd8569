package parser

import (
	"go/token"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for expansion failures. Use errors.Is to check for these.
var (
	// ErrUnsupportedItem indicates the marker was placed on something other
	// than a struct type or an interface union of structs.
	ErrUnsupportedItem = errors.New("unsupported item")

	// ErrUnknownDirective indicates a bigarray tag directive with an
	// unrecognized name.
	ErrUnknownDirective = errors.New("unknown directive")

	// ErrInvalidDirectiveValue indicates a directive value of the wrong kind.
	ErrInvalidDirectiveValue = errors.New("invalid directive value")

	// ErrMalformedTag indicates a struct tag or directive list that cannot
	// be parsed.
	ErrMalformedTag = errors.New("malformed tag")

	// ErrLengthMismatch indicates a bufsize that differs from the length of
	// the field's array type.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrInvalidAnnotation indicates a malformed marker comment.
	ErrInvalidAnnotation = errors.New("invalid annotation")
)

// ExpansionError reports why an item could not be expanded.
type ExpansionError struct {
	Err    error
	Pos    token.Position
	Item   string
	Field  string
	Detail string
}

func (e *ExpansionError) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	if e.Item != "" {
		b.WriteString(" in ")
		b.WriteString(e.Item)
		if e.Field != "" {
			b.WriteByte('.')
			b.WriteString(e.Field)
		}
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ExpansionError) Unwrap() error {
	return e.Err
}

// FieldError builds an ExpansionError located at field.
func FieldError(field *Field, err error, detail string) *ExpansionError {
	return &ExpansionError{
		Err:    err,
		Pos:    field.Pos,
		Item:   field.Item,
		Field:  field.Name,
		Detail: detail,
	}
}
