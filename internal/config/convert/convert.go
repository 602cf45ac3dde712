// Package convert turns single configuration tokens into typed values and
// back.
//
// A Converter is the capability the typed accessor needs for a type T.
// Parse may fail; Format never does. Parse failures are reported as
// *ConversionError values wrapping ErrMalformed or ErrOverflow.
package convert

import (
	"errors"
	"fmt"
)

// Errors wrapped by ConversionError.
var (
	// ErrMalformed indicates the text does not represent a value of the type.
	ErrMalformed = errors.New("malformed value")

	// ErrOverflow indicates the text represents a number outside the type's range.
	ErrOverflow = errors.New("value out of range")
)

// Converter converts between a single token of text and a value of type T.
type Converter[T any] interface {
	// TypeName describes T in error messages.
	TypeName() string
	// Parse converts text to a value.
	Parse(text string) (T, error)
	// Format converts a value to text that Parse accepts.
	Format(v T) string
}

// ConversionError is returned when text cannot be converted to a type.
type ConversionError struct {
	// Text is the offending token.
	Text string
	// Type is the target type name.
	Type string
	// Err is ErrMalformed or ErrOverflow, possibly wrapped with detail.
	Err error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %v", e.Text, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

func malformed(text, typeName string) error {
	return &ConversionError{Text: text, Type: typeName, Err: ErrMalformed}
}

func overflow(text, typeName string) error {
	return &ConversionError{Text: text, Type: typeName, Err: ErrOverflow}
}

// Func adapts a pair of functions to a Converter.
type Func[T any] struct {
	Name       string
	ParseFunc  func(text string) (T, error)
	FormatFunc func(v T) string
}

// TypeName returns f.Name.
func (f Func[T]) TypeName() string {
	return f.Name
}

// Parse calls ParseFunc. Errors that match neither ErrMalformed nor
// ErrOverflow are treated as malformed input.
func (f Func[T]) Parse(text string) (T, error) {
	v, err := f.ParseFunc(text)
	if err == nil {
		return v, nil
	}

	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return v, err
	}
	if !errors.Is(err, ErrMalformed) && !errors.Is(err, ErrOverflow) {
		err = fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, &ConversionError{Text: text, Type: f.Name, Err: err}
}

// Format calls FormatFunc, falling back to fmt.Sprint.
func (f Func[T]) Format(v T) string {
	if f.FormatFunc == nil {
		return fmt.Sprint(v)
	}
	return f.FormatFunc(v)
}

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}
