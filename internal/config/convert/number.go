package convert

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// Signed is the set of signed integer types.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is the set of unsigned integer types.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Floating is the set of floating point types.
type Floating interface {
	~float32 | ~float64
}

// Int returns a converter for a signed integer type. Parse accepts
// decimal, 0x, 0o and 0b prefixes and underscores between digits, and
// reports values outside the type's range as ErrOverflow.
func Int[T Signed]() Converter[T] {
	return intConverter[T]{name: typeName[T](), bits: bitSize[T]()}
}

type intConverter[T Signed] struct {
	name string
	bits int
}

func (c intConverter[T]) TypeName() string { return c.name }

func (c intConverter[T]) Parse(text string) (T, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 0, c.bits)
	if err != nil {
		return 0, numError(text, c.name, err)
	}
	return T(n), nil
}

func (c intConverter[T]) Format(v T) string {
	return strconv.FormatInt(int64(v), 10)
}

// Uint returns a converter for an unsigned integer type. A leading minus
// sign is malformed, not an overflow.
func Uint[T Unsigned]() Converter[T] {
	return uintConverter[T]{name: typeName[T](), bits: bitSize[T]()}
}

type uintConverter[T Unsigned] struct {
	name string
	bits int
}

func (c uintConverter[T]) TypeName() string { return c.name }

func (c uintConverter[T]) Parse(text string) (T, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(text), 0, c.bits)
	if err != nil {
		return 0, numError(text, c.name, err)
	}
	return T(n), nil
}

func (c uintConverter[T]) Format(v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

// Float returns a converter for a floating point type. Finite text whose
// magnitude exceeds the type's range is reported as ErrOverflow.
func Float[T Floating]() Converter[T] {
	return floatConverter[T]{name: typeName[T](), bits: bitSize[T]()}
}

type floatConverter[T Floating] struct {
	name string
	bits int
}

func (c floatConverter[T]) TypeName() string { return c.name }

func (c floatConverter[T]) Parse(text string) (T, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), c.bits)
	if err != nil {
		return 0, numError(text, c.name, err)
	}
	return T(f), nil
}

func (c floatConverter[T]) Format(v T) string {
	return strconv.FormatFloat(float64(v), 'g', -1, c.bits)
}

func numError(text, typeName string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return overflow(text, typeName)
	}
	return malformed(text, typeName)
}

func bitSize[T any]() int {
	var zero T
	return reflect.TypeOf(zero).Bits()
}
