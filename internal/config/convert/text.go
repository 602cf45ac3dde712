package convert

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
)

// String returns the string converter. A token enclosed in double quotes
// is unquoted with Go escape rules; any other token is taken literally.
// Format quotes strings that would otherwise not survive the value grammar.
func String() Converter[string] {
	return stringConverter{}
}

type stringConverter struct{}

func (stringConverter) TypeName() string { return "string" }

func (stringConverter) Parse(text string) (string, error) {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		s, err := strconv.Unquote(text)
		if err != nil {
			return "", malformed(text, "string")
		}
		return s, nil
	}
	return text, nil
}

func (stringConverter) Format(s string) string {
	if needsQuote(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return true
	}
	if strings.ContainsAny(s, `,[]"\`) {
		return true
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return true
		}
	}
	return false
}

var boolWords = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true,
	"false": false, "no": false, "off": false, "0": false,
}

// Bool returns the boolean converter. It accepts true/false, yes/no,
// on/off and 1/0 in any letter case.
func Bool() Converter[bool] {
	return boolConverter{}
}

type boolConverter struct{}

func (boolConverter) TypeName() string { return "bool" }

func (boolConverter) Parse(text string) (bool, error) {
	b, ok := boolWords[strings.ToLower(strings.TrimSpace(text))]
	if !ok {
		return false, malformed(text, "bool")
	}
	return b, nil
}

func (boolConverter) Format(b bool) string {
	return strconv.FormatBool(b)
}

// Duration returns a converter for time.Duration using Go duration syntax
// such as "1h30m" or "250ms".
func Duration() Converter[time.Duration] {
	return durationConverter{}
}

type durationConverter struct{}

func (durationConverter) TypeName() string { return "duration" }

func (durationConverter) Parse(text string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(text))
	if err != nil {
		return 0, &ConversionError{Text: text, Type: "duration", Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return d, nil
}

func (durationConverter) Format(d time.Duration) string {
	return d.String()
}

// Enum returns a converter for a named set of values. Names are matched
// case-insensitively using Unicode case folding.
func Enum[T comparable](name string, values map[string]T) Converter[T] {
	c := enumConverter[T]{
		name:   name,
		byName: make(map[string]T, len(values)),
		names:  make(map[T]string, len(values)),
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := values[k]
		c.byName[fold(k)] = v
		// First name in sorted order wins when several map to one value.
		if _, ok := c.names[v]; !ok {
			c.names[v] = k
		}
	}
	return c
}

type enumConverter[T comparable] struct {
	name   string
	byName map[string]T
	names  map[T]string
}

func (c enumConverter[T]) TypeName() string { return c.name }

func (c enumConverter[T]) Parse(text string) (T, error) {
	v, ok := c.byName[fold(strings.TrimSpace(text))]
	if !ok {
		var zero T
		return zero, malformed(text, c.name)
	}
	return v, nil
}

func (c enumConverter[T]) Format(v T) string {
	if name, ok := c.names[v]; ok {
		return name
	}
	return fmt.Sprint(v)
}

func fold(s string) string {
	return cases.Fold().String(s)
}
