package config

import (
	"time"

	"github.com/dshills/typedconf/internal/config/convert"
	"github.com/dshills/typedconf/internal/config/value"
)

// Matrix is a list of rows. Rows may have different lengths.
type Matrix[T any] [][]T

// Get returns the value of key converted with conv.
//
// It fails with a MissingKeyError if key is absent and with an
// InvalidKeyError if the raw text is malformed, is a list, or cannot be
// converted.
func Get[T any](c *Configuration, key string, conv convert.Converter[T]) (T, error) {
	var zero T

	raw, err := c.lookup(key)
	if err != nil {
		return zero, err
	}

	root, err := value.Parse(raw)
	if err != nil {
		return zero, c.invalid(key, raw, conv.TypeName(), err)
	}
	if !root.IsLeaf() {
		return zero, c.invalid(key, raw, conv.TypeName(), errNotSingleValue)
	}

	v, err := conv.Parse(root.Value)
	if err != nil {
		return zero, c.invalid(key, raw, conv.TypeName(), err)
	}
	return v, nil
}

// GetOr is like Get but returns def when key is absent. A present but
// invalid value is still an error.
func GetOr[T any](c *Configuration, key string, def T, conv convert.Converter[T]) (T, error) {
	if !c.Has(key) {
		return def, nil
	}
	return Get(c, key, conv)
}

// GetArray returns the value of key as a list, converting each element
// with conv. Blank text is an empty list and a single value is a list of
// one. The first element that fails conversion aborts the call with an
// InvalidKeyError naming that element.
func GetArray[T any](c *Configuration, key string, conv convert.Converter[T]) ([]T, error) {
	raw, err := c.lookup(key)
	if err != nil {
		return nil, err
	}

	root, err := value.Parse(raw)
	if err != nil {
		return nil, c.invalid(key, raw, arrayType(conv), err)
	}

	if root.IsLeaf() {
		if root.Value == "" {
			return []T{}, nil
		}
		v, err := conv.Parse(root.Value)
		if err != nil {
			return nil, c.invalid(key, root.Value, conv.TypeName(), err)
		}
		return []T{v}, nil
	}

	out := make([]T, 0, len(root.Children))
	for _, child := range root.Children {
		if !child.IsLeaf() {
			return nil, c.invalid(key, raw, arrayType(conv), errArrayDimensions)
		}
		v, err := conv.Parse(child.Value)
		if err != nil {
			return nil, c.invalid(key, child.Value, conv.TypeName(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// GetArrayOr is like GetArray but returns def when key is absent.
func GetArrayOr[T any](c *Configuration, key string, def []T, conv convert.Converter[T]) ([]T, error) {
	if !c.Has(key) {
		return def, nil
	}
	return GetArray(c, key, conv)
}

// GetMatrix returns the value of key as a list of rows, converting each
// cell with conv. Every row must be a bracketed, non-empty list; a flat
// list or an empty row "[]" is rejected. Rows need not have equal
// lengths. Blank text is an empty matrix.
func GetMatrix[T any](c *Configuration, key string, conv convert.Converter[T]) (Matrix[T], error) {
	raw, err := c.lookup(key)
	if err != nil {
		return nil, err
	}

	root, err := value.Parse(raw)
	if err != nil {
		return nil, c.invalid(key, raw, matrixType(conv), err)
	}

	if root.IsLeaf() {
		if root.Value == "" {
			return Matrix[T]{}, nil
		}
		return nil, c.invalid(key, raw, matrixType(conv), errMatrixTooFlat)
	}

	out := make(Matrix[T], 0, len(root.Children))
	for _, row := range root.Children {
		if row.IsLeaf() || len(row.Children) == 0 {
			return nil, c.invalid(key, raw, matrixType(conv), errMatrixTooFlat)
		}

		cells := make([]T, 0, len(row.Children))
		for _, cell := range row.Children {
			if !cell.IsLeaf() {
				return nil, c.invalid(key, raw, matrixType(conv), errMatrixTooDeep)
			}
			v, err := conv.Parse(cell.Value)
			if err != nil {
				return nil, c.invalid(key, cell.Value, conv.TypeName(), err)
			}
			cells = append(cells, v)
		}
		out = append(out, cells)
	}
	return out, nil
}

// GetMatrixOr is like GetMatrix but returns def when key is absent.
func GetMatrixOr[T any](c *Configuration, key string, def Matrix[T], conv convert.Converter[T]) (Matrix[T], error) {
	if !c.Has(key) {
		return def, nil
	}
	return GetMatrix(c, key, conv)
}

// Set stores v under key, replacing any existing value.
func Set[T any](c *Configuration, key string, v T, conv convert.Converter[T]) {
	c.SetText(key, conv.Format(v))
}

// SetArray stores vs under key as a comma separated list.
func SetArray[T any](c *Configuration, key string, vs []T, conv convert.Converter[T]) {
	c.SetText(key, value.FormatList(formatAll(vs, conv)))
}

// SetMatrix stores m under key as a list of bracketed rows. A matrix with
// an empty row is rejected with an InvalidKeyError and nothing is stored,
// since GetMatrix could not read it back.
func SetMatrix[T any](c *Configuration, key string, m Matrix[T], conv convert.Converter[T]) error {
	text, err := formatMatrix(m, conv)
	if err != nil {
		return c.invalid(key, text, matrixType(conv), err)
	}
	c.SetText(key, text)
	return nil
}

// SetDefault stores v under key only if key is absent.
func SetDefault[T any](c *Configuration, key string, v T, conv convert.Converter[T]) {
	if !c.Has(key) {
		Set(c, key, v, conv)
	}
}

// SetDefaultArray stores vs under key only if key is absent.
func SetDefaultArray[T any](c *Configuration, key string, vs []T, conv convert.Converter[T]) {
	if !c.Has(key) {
		SetArray(c, key, vs, conv)
	}
}

// SetDefaultMatrix stores m under key only if key is absent. It fails like
// SetMatrix when m has an empty row.
func SetDefaultMatrix[T any](c *Configuration, key string, m Matrix[T], conv convert.Converter[T]) error {
	if c.Has(key) {
		return nil
	}
	return SetMatrix(c, key, m, conv)
}

// formatMatrix renders m in the grammar GetMatrix reads. It returns the
// text together with errMatrixTooFlat if any row is empty.
func formatMatrix[T any](m Matrix[T], conv convert.Converter[T]) (string, error) {
	rows := make([][]string, len(m))
	empty := false
	for i, row := range m {
		rows[i] = formatAll(row, conv)
		empty = empty || len(row) == 0
	}
	text := value.FormatMatrix(rows)
	if empty {
		return text, errMatrixTooFlat
	}
	return text, nil
}

func formatAll[T any](vs []T, conv convert.Converter[T]) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = conv.Format(v)
	}
	return out
}

func arrayType[T any](conv convert.Converter[T]) string {
	return "[]" + conv.TypeName()
}

func matrixType[T any](conv convert.Converter[T]) string {
	return "[][]" + conv.TypeName()
}

// GetString returns a string value.
func (c *Configuration) GetString(key string) (string, error) {
	return Get(c, key, convert.String())
}

// GetInt returns an int value.
func (c *Configuration) GetInt(key string) (int, error) {
	return Get(c, key, convert.Int[int]())
}

// GetInt64 returns an int64 value.
func (c *Configuration) GetInt64(key string) (int64, error) {
	return Get(c, key, convert.Int[int64]())
}

// GetFloat64 returns a float64 value.
func (c *Configuration) GetFloat64(key string) (float64, error) {
	return Get(c, key, convert.Float[float64]())
}

// GetBool returns a boolean value.
func (c *Configuration) GetBool(key string) (bool, error) {
	return Get(c, key, convert.Bool())
}

// GetDuration returns a time.Duration value.
func (c *Configuration) GetDuration(key string) (time.Duration, error) {
	return Get(c, key, convert.Duration())
}

// GetStringArray returns a list of strings.
func (c *Configuration) GetStringArray(key string) ([]string, error) {
	return GetArray(c, key, convert.String())
}
