package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lucasb-eyer/go-colorful"
)

// Size returns a converter for byte sizes such as "512", "64 KiB" or
// "1.5GB". Format prefers IEC units when the value is exactly
// representable and plain bytes otherwise.
func Size() Converter[uint64] {
	return sizeConverter{}
}

type sizeConverter struct{}

func (sizeConverter) TypeName() string { return "size" }

func (sizeConverter) Parse(text string) (uint64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(text))
	if err != nil {
		if strings.Contains(err.Error(), "too large") {
			return 0, overflow(text, "size")
		}
		return 0, &ConversionError{Text: text, Type: "size", Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return n, nil
}

func (sizeConverter) Format(n uint64) string {
	s := humanize.IBytes(n)
	if back, err := humanize.ParseBytes(s); err == nil && back == n {
		return s
	}
	return strconv.FormatUint(n, 10)
}

// Color returns a converter for "#rrggbb" (or "#rgb") colors.
func Color() Converter[colorful.Color] {
	return colorConverter{}
}

type colorConverter struct{}

func (colorConverter) TypeName() string { return "color" }

func (colorConverter) Parse(text string) (colorful.Color, error) {
	c, err := colorful.Hex(strings.TrimSpace(text))
	if err != nil {
		return colorful.Color{}, &ConversionError{Text: text, Type: "color", Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return c, nil
}

func (colorConverter) Format(c colorful.Color) string {
	return c.Hex()
}
