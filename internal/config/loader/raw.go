package loader

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/typedconf/internal/config/convert"
	"github.com/dshills/typedconf/internal/config/store"
)

// number is numeric text kept exactly as written in the source.
type number string

// Sections splits a decoded document into sections. Top-level tables
// become sections named after their key; nested tables inside a section
// are flattened into dotted keys. Top-level scalars and lists go to the
// global section, which comes first when present.
func Sections(tree map[string]any) ([]*store.Section, error) {
	global := make(map[string]string)
	named := make(map[string]map[string]string)

	for _, key := range sortedKeys(tree) {
		v := tree[key]
		if table, ok := v.(map[string]any); ok {
			values, exists := named[key]
			if !exists {
				values = make(map[string]string)
				named[key] = values
			}
			if err := flatten(values, "", table); err != nil {
				return nil, fmt.Errorf("section %s: %w", key, err)
			}
			continue
		}

		text, err := RawText(v)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		global[key] = text
	}

	var sections []*store.Section
	if values, ok := named[GlobalSection]; ok {
		for k, v := range global {
			if _, taken := values[k]; !taken {
				values[k] = v
			}
		}
		global = values
		delete(named, GlobalSection)
	}
	if len(global) > 0 {
		sections = append(sections, store.NewSectionWithValues(GlobalSection, global))
	}

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sections = append(sections, store.NewSectionWithValues(name, named[name]))
	}
	return sections, nil
}

func flatten(dst map[string]string, prefix string, table map[string]any) error {
	for _, key := range sortedKeys(table) {
		v := table[key]
		if nested, ok := v.(map[string]any); ok {
			if err := flatten(dst, prefix+key+".", nested); err != nil {
				return err
			}
			continue
		}

		text, err := RawText(v)
		if err != nil {
			return fmt.Errorf("key %s%s: %w", prefix, key, err)
		}
		dst[prefix+key] = text
	}
	return nil
}

// RawText renders a decoded value in the raw value grammar. Lists become
// comma separated elements, nested lists are bracketed, and strings are
// quoted when their content would otherwise be read as structure. A null
// value is blank on its own and the quoted empty string inside a list.
func RawText(v any) (string, error) {
	if list, ok := v.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			text, err := nestedText(item)
			if err != nil {
				return "", err
			}
			parts[i] = text
		}
		return strings.Join(parts, ","), nil
	}
	return scalarText(v)
}

func nestedText(v any) (string, error) {
	if v == nil {
		return convert.String().Format(""), nil
	}
	if _, ok := v.([]any); !ok {
		return scalarText(v)
	}
	inner, err := RawText(v)
	if err != nil {
		return "", err
	}
	return "[" + inner + "]", nil
}

func scalarText(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return convert.String().Format(x), nil
	case number:
		return string(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case map[string]any:
		return "", fmt.Errorf("tables inside lists are not supported")
	case fmt.Stringer:
		return convert.String().Format(x.String()), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
