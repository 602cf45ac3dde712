package loader

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

func decodeJSON(source string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: source, Message: "invalid JSON"}
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Path: source, Message: "top-level value must be an object"}
	}

	tree, _ := fromJSON(root).(map[string]any)
	return tree, nil
}

// decodeJSONC accepts comments and trailing commas.
func decodeJSONC(source string, data []byte) (map[string]any, error) {
	return decodeJSON(source, jsonc.ToJSON(data))
}

// fromJSON converts a gjson result into a tree. Numbers keep their source
// text so large integers are not rounded through float64.
func fromJSON(r gjson.Result) any {
	switch {
	case r.IsObject():
		m := make(map[string]any)
		r.ForEach(func(k, v gjson.Result) bool {
			m[k.String()] = fromJSON(v)
			return true
		})
		return m
	case r.IsArray():
		list := []any{}
		r.ForEach(func(_, v gjson.Result) bool {
			list = append(list, fromJSON(v))
			return true
		})
		return list
	}

	switch r.Type {
	case gjson.Number:
		return number(r.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Null:
		return nil
	default:
		return r.String()
	}
}
