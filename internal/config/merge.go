package config

import (
	"errors"
	"fmt"
)

// LoadError reports a stored configuration that exists but cannot be used.
// The run continues on the defaults.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return "configuration is corrupt: " + e.Err.Error()
	}
	return fmt.Sprintf("configuration %s is corrupt: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Merge overlays override on defaults one top-level key at a time.
//
// A key present in override replaces the default value wholesale; nested
// mappings are not merged. Overriding optionalEntries with {"tags": true}
// leaves exactly {"tags": true}, and the other toggles read as disabled.
// Neither input is modified.
func Merge(defaults, override Document) Document {
	merged := make(Document, len(defaults)+len(override))
	for key, val := range defaults {
		merged[key] = val
	}
	for key, val := range override {
		merged[key] = val
	}
	return merged
}

// Load reads the user override from store and merges it over the defaults.
//
// The returned Config is always usable. A non-nil error is a warning:
//   - *LoadError when the stored document is corrupt or holds values of the
//     wrong type; the defaults are used and the stored file is left alone.
//   - a save error when no override existed and writing the defaults back
//     failed.
//
// When the store holds no override at all the defaults are saved so the
// user gets an editable file; persisted reports whether that happened.
func Load(store Store) (cfg Config, persisted bool, err error) {
	defaults := Defaults()

	override, loadErr := store.Load()
	if loadErr != nil {
		return DefaultConfig(), false, asLoadError(store, loadErr)
	}

	if len(override) == 0 {
		if saveErr := store.Save(defaults); saveErr != nil {
			return DefaultConfig(), false, fmt.Errorf("save default configuration: %w", saveErr)
		}
		return DefaultConfig(), true, nil
	}

	cfg, decodeErr := Decode(Merge(defaults, override))
	if decodeErr != nil {
		return DefaultConfig(), false, &LoadError{Path: store.Path(), Err: decodeErr}
	}
	return cfg, false, nil
}

func asLoadError(store Store, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	return &LoadError{Path: store.Path(), Err: err}
}
