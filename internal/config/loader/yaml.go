package loader

import (
	"gopkg.in/yaml.v3"
)

func decodeYAML(source string, data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}
	return tree, nil
}
