package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/typedconf/internal/config/convert"
)

// GetPath returns the value of key as a cleaned absolute path. Relative
// paths are resolved against the base directory (see WithBaseDir), or the
// working directory when none is set. With mustExist set, a path that does
// not exist is an InvalidKeyError.
func (c *Configuration) GetPath(key string, mustExist bool) (string, error) {
	p, err := c.GetString(key)
	if err != nil {
		return "", err
	}
	return c.resolvePath(key, p, mustExist)
}

// GetPathArray is GetPath for a list of paths.
func (c *Configuration) GetPathArray(key string, mustExist bool) ([]string, error) {
	paths, err := GetArray(c, key, convert.String())
	if err != nil {
		return nil, err
	}

	out := make([]string, len(paths))
	for i, p := range paths {
		resolved, err := c.resolvePath(key, p, mustExist)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func (c *Configuration) resolvePath(key, p string, mustExist bool) (string, error) {
	if !filepath.IsAbs(p) && c.baseDir != "" {
		p = filepath.Join(c.baseDir, p)
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", c.invalid(key, p, "path", err)
	}

	if mustExist {
		if _, err := os.Stat(abs); err != nil {
			if os.IsNotExist(err) {
				return "", c.invalid(key, p, "path", errPathNotExist)
			}
			return "", c.invalid(key, p, "path", fmt.Errorf("stat %s: %w", abs, err))
		}
	}
	return abs, nil
}
