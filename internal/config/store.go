package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Store loads and saves the user's configuration document.
type Store interface {
	// Load returns the stored override, or an empty document when none exists.
	// It returns *LoadError when the stored data is corrupt.
	Load() (Document, error)
	// Save replaces the stored document.
	Save(doc Document) error
	// Path describes where the document lives, for messages.
	Path() string
}

// Format is the on-disk encoding of a configuration file.
type Format string

// Supported formats, chosen by file extension.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath picks the encoding from the file extension. Anything that is
// not YAML or TOML is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// FileStore keeps the configuration in a single file. Writes are serialized
// across processes with a lock file next to it.
type FileStore struct {
	path   string
	format Format
}

// NewFileStore creates a FileStore for path. An empty path means DefaultPath.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{path: path, format: FormatForPath(path)}
}

// Path returns the configuration file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and parses the configuration file.
// A missing or blank file yields an empty document and no error.
func (s *FileStore) Load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, nil
		}
		return nil, fmt.Errorf("read configuration %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, nil
	}

	doc, err := decodeDocument(data, s.format)
	if err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}
	return doc, nil
}

// Save writes doc to the configuration file, creating its directory.
func (s *FileStore) Save(doc Document) error {
	data, err := encodeDocument(doc, s.format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create configuration directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock configuration %s: %w", s.path, err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write configuration %s: %w", s.path, err)
	}
	return nil
}

func decodeDocument(data []byte, format Format) (Document, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return Document(raw), nil
}

func encodeDocument(doc Document, format Format) ([]byte, error) {
	var data []byte
	var err error
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(map[string]any(doc))
	case FormatTOML:
		data, err = toml.Marshal(map[string]any(doc))
	default:
		data, err = json.MarshalIndent(doc, "", "    ")
		if err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s configuration: %w", format, err)
	}
	return data, nil
}
