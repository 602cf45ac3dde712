// Package loader reads configuration files and environment variables into
// store sections.
//
// Structured formats (TOML, YAML, JSON, JSON with comments, HCL) are
// decoded and each value is rendered back into the raw text grammar, so
// that every source ends up as plain key to text entries. Top-level tables
// (or HCL blocks) become sections; top-level scalars go to the global
// section.
package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/typedconf/internal/config/store"
)

// GlobalSection names the section holding top-level keys.
const GlobalSection = "global"

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns its sections.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() ([]*store.Section, error)
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format identifies a file format.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
	FormatJSON
	FormatJSONC
	FormatHCL
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatJSONC:
		return "jsonc"
	case FormatHCL:
		return "hcl"
	default:
		return "unknown"
	}
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".conf":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonc":
		return FormatJSONC, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return 0, fmt.Errorf("unsupported configuration file extension %q", filepath.Ext(path))
	}
}

type decodeFunc func(source string, data []byte) (map[string]any, error)

var decoders = map[Format]decodeFunc{
	FormatTOML:  decodeTOML,
	FormatYAML:  decodeYAML,
	FormatJSON:  decodeJSON,
	FormatJSONC: decodeJSONC,
	FormatHCL:   decodeHCL,
}

// FileLoader loads configuration from a file.
type FileLoader struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFileLoader creates a loader for path, choosing the format from its
// extension.
func NewFileLoader(path string) (*FileLoader, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return NewFileLoaderWithFS(DefaultFS(), path, format), nil
}

// NewFileLoaderWithFS creates a loader with a custom file system and an
// explicit format.
func NewFileLoaderWithFS(fsys FileSystem, path string, format Format) *FileLoader {
	return &FileLoader{
		fs:     fsys,
		path:   path,
		format: format,
	}
}

// Path returns the file path.
func (l *FileLoader) Path() string {
	return l.path
}

// Format returns the file format.
func (l *FileLoader) Format() Format {
	return l.format
}

// MaxIncludeDepth limits nested @include directives.
const MaxIncludeDepth = 8

// Load reads configuration from the configured path, following @include
// directives.
func (l *FileLoader) Load() ([]*store.Section, error) {
	tree, err := l.loadTree(l.path, l.format, MaxIncludeDepth)
	if err != nil || tree == nil {
		return nil, err
	}
	return l.sections(l.path, tree)
}

// LoadFromReader reads configuration from an io.Reader. Includes are not
// followed.
func (l *FileLoader) LoadFromReader(r io.Reader) ([]*store.Section, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	tree, err := decode(l.format, "<reader>", data)
	if err != nil {
		return nil, err
	}
	delete(tree, includeKey)
	return l.sections("<reader>", tree)
}

func (l *FileLoader) sections(source string, tree map[string]any) ([]*store.Section, error) {
	sections, err := Sections(tree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return sections, nil
}

func decode(format Format, source string, data []byte) (map[string]any, error) {
	fn, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("no decoder for format %s", format)
	}
	tree, err := fn(source, data)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		tree = make(map[string]any)
	}
	return tree, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
