package seq

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrArrayTooLarge indicates a struct field holds an array longer than
	// MaxArrayLen and declares no hook for it.
	ErrArrayTooLarge = errors.New("array too large")

	// ErrNoHook indicates a hook named in a seq tag was never registered.
	ErrNoHook = errors.New("hook not registered")

	// ErrInvalidTag indicates a seq struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrNotStruct indicates Marshal or Unmarshal was given a non-struct value.
	ErrNotStruct = errors.New("not a struct")

	// ErrUnexpectedKind indicates the input holds a different shape than
	// requested (for example a scalar where a tuple was expected).
	ErrUnexpectedKind = errors.New("unexpected kind")
)

// LengthError reports a tuple whose element count differs from its declared
// arity.
type LengthError struct {
	Got  int // Elements actually present
	Want int // Declared arity
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("invalid length %d, expected a tuple of size %d", e.Got, e.Want)
}

// InvalidLength returns a *LengthError. Generated decoders use it when the
// input ends after got elements.
func InvalidLength(got, want int) error {
	return &LengthError{Got: got, Want: want}
}

// FieldError wraps a failure of the struct codec with the type and field it
// occurred on.
type FieldError struct {
	Type  string // Struct type name
	Field string // Go field name
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Type, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
