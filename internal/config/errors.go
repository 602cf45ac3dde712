package config

import (
	"errors"
	"fmt"

	"github.com/dshills/typedconf/internal/config/convert"
)

// Errors returned by accessor operations. Every accessor failure matches
// exactly one of them through errors.Is.
var (
	// ErrMissingKey indicates the requested key has no entry.
	ErrMissingKey = errors.New("missing key")

	// ErrInvalidKey indicates the key exists but its value cannot be used
	// as the requested type.
	ErrInvalidKey = errors.New("invalid key")
)

// Structural reasons reported through InvalidKeyError.
var (
	errNotSingleValue  = errors.New("value is a list, not a single value")
	errArrayDimensions = errors.New("array has more than one dimension")
	errMatrixTooFlat   = errors.New("matrix has less than two dimensions")
	errMatrixTooDeep   = errors.New("matrix has more than two dimensions")
	errPathNotExist    = errors.New("path does not exist")
)

// MissingKeyError is returned when a key is absent from the store.
type MissingKeyError struct {
	// Key is the requested key.
	Key string
	// Section is the name of the owning configuration block.
	Section string
	// Err is the store's lookup error, if any.
	Err error
}

// Error implements the error interface.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("key '%s' in section '%s' does not exist", e.Key, e.Section)
}

// Unwrap returns the store's lookup error.
func (e *MissingKeyError) Unwrap() error {
	return e.Err
}

// Is implements error matching for MissingKeyError.
func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}

// InvalidKeyError is returned when a key's value cannot be converted.
type InvalidKeyError struct {
	// Key is the requested key.
	Key string
	// Section is the name of the owning configuration block.
	Section string
	// Text is the offending raw text: the whole value, or the single
	// element that failed.
	Text string
	// Type is the requested type.
	Type string
	// Reason describes the failure.
	Reason string
	// Err is the underlying parse or conversion error.
	Err error
}

// Error implements the error interface.
func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("value %q of key '%s' in section '%s' is not valid as %s: %s",
		e.Text, e.Key, e.Section, e.Type, e.Reason)
}

// Unwrap returns the underlying error.
func (e *InvalidKeyError) Unwrap() error {
	return e.Err
}

// Is implements error matching for InvalidKeyError.
func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

func (c *Configuration) missing(key string, err error) error {
	return &MissingKeyError{Key: key, Section: c.Name(), Err: err}
}

func (c *Configuration) invalid(key, text, typeName string, err error) error {
	reason := err.Error()
	var convErr *convert.ConversionError
	if errors.As(err, &convErr) {
		reason = convErr.Err.Error()
	}
	return &InvalidKeyError{
		Key:     key,
		Section: c.Name(),
		Text:    text,
		Type:    typeName,
		Reason:  reason,
		Err:     err,
	}
}
