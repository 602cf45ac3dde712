package loader

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/typedconf/internal/config/store"
	"github.com/dshills/typedconf/internal/config/value"
)

// ExportJSON renders sections as a JSON document that decodeJSON reads
// back into the same raw text. Keys of the global section are written at
// the top level; every other section becomes an object. Raw values are
// parsed: lists become arrays, JSON numbers and booleans stay literal and
// anything else is a string.
func ExportJSON(sections []*store.Section, indent bool) ([]byte, error) {
	out := []byte("{}")

	for _, s := range sections {
		obj := []byte("{}")
		for _, key := range s.Keys() {
			raw, err := s.At(key)
			if err != nil {
				continue
			}
			encoded, err := json.Marshal(jsonValue(raw))
			if err != nil {
				return nil, fmt.Errorf("exporting %s.%s: %w", s.Name(), key, err)
			}
			obj, err = sjson.SetRawBytes(obj, escapePath(key), encoded)
			if err != nil {
				return nil, fmt.Errorf("exporting %s.%s: %w", s.Name(), key, err)
			}
		}

		var err error
		if s.Name() == GlobalSection {
			gjson.ParseBytes(obj).ForEach(func(k, v gjson.Result) bool {
				out, err = sjson.SetRawBytes(out, escapePath(k.String()), []byte(v.Raw))
				return err == nil
			})
		} else {
			out, err = sjson.SetRawBytes(out, escapePath(s.Name()), obj)
		}
		if err != nil {
			return nil, fmt.Errorf("exporting section %s: %w", s.Name(), err)
		}
	}

	if indent {
		return pretty.Pretty(out), nil
	}
	return pretty.Ugly(out), nil
}

func jsonValue(raw string) any {
	root, err := value.Parse(raw)
	if err != nil {
		return raw
	}
	if root.IsLeaf() {
		if strings.TrimSpace(raw) == "" {
			return []any{}
		}
		return jsonLeaf(root.Value)
	}
	return jsonNode(root)
}

func jsonNode(n *value.Node) any {
	if n.IsLeaf() {
		return jsonLeaf(n.Value)
	}
	list := make([]any, len(n.Children))
	for i, child := range n.Children {
		list[i] = jsonNode(child)
	}
	return list
}

func jsonLeaf(text string) any {
	switch text {
	case "true":
		return true
	case "false":
		return false
	}
	if gjson.Valid(text) && gjson.Parse(text).Type == gjson.Number {
		return json.RawMessage(text)
	}
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		if s, err := strconv.Unquote(text); err == nil {
			return s
		}
	}
	return text
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
)

// escapePath makes key a single literal sjson path component.
func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
