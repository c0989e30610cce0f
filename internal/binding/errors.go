package binding

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a path does not name a field of the table.
var ErrUnknownField = errors.New("unknown field")

// ParseError reports raw widget input that could not be converted to the
// field's type. It is a mutator fault: the commit that produced it changed
// nothing.
type ParseError struct {
	Field string
	Raw   string
	Type  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid value %q for type %s", e.Raw, e.Type)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MismatchError describes a value handed to a field of a different type.
// It is raised as a panic: only code that bypasses the typed API can trigger it.
type MismatchError struct {
	Field string
	Want  string
	Got   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("binding: field %s holds %s, got %s", e.Field, e.Want, e.Got)
}
