package loader

import (
	"fmt"
	"os"
	"path/filepath"
)

const includeKey = "@include"

// loadTree reads and decodes path, then loads every file named by its
// @include key and merges them underneath it. Returns nil, nil if path
// does not exist.
func (l *FileLoader) loadTree(path string, format Format, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("include depth exceeded for %s", path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	tree, err := decode(format, path, data)
	if err != nil {
		return nil, err
	}

	includes, hasIncludes := tree[includeKey]
	if !hasIncludes {
		return tree, nil
	}
	delete(tree, includeKey)

	var includeList []string
	switch v := includes.(type) {
	case string:
		includeList = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be string or array of strings", includeKey)
			}
			includeList = append(includeList, s)
		}
	default:
		return nil, fmt.Errorf("%s must be string or array of strings, got %T", includeKey, includes)
	}

	// Includes are lower priority than the file naming them.
	baseDir := filepath.Dir(path)
	for _, inc := range includeList {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(baseDir, inc)
		}

		incFormat, err := FormatFromPath(incPath)
		if err != nil {
			incFormat = format
		}

		incTree, err := l.loadTree(incPath, incFormat, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", incPath, err)
		}

		tree = DeepMerge(incTree, tree)
	}

	return tree, nil
}

// DeepMerge merges src into dst recursively. Values from src take
// precedence, and nested tables are merged rather than replaced.
// Returns a new map and leaves both inputs untouched.
func DeepMerge(dst, src map[string]any) map[string]any {
	result := Clone(dst)
	if result == nil {
		result = make(map[string]any)
	}

	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := result[key].(map[string]any)
		if srcIsMap && dstIsMap {
			result[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		result[key] = cloneValue(srcVal)
	}

	return result
}

// Clone creates a deep copy of a decoded tree.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return Clone(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
