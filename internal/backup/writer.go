// Package backup writes rendered snippets to disk and drives complete
// backup runs.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorewood/textbackup/internal/config"
	"github.com/gorewood/textbackup/internal/fsname"
	"github.com/gorewood/textbackup/internal/snippet"
)

// DirectoryError reports an export directory that could not be created.
// Nothing has been written when it is returned.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("export directory %s could not be found or created: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// NameError reports a file name that sanitizes to nothing.
type NameError struct {
	NID    string
	Source string
}

func (e *NameError) Error() string {
	if e.NID == "" {
		return fmt.Sprintf("file name %q has no usable characters", e.Source)
	}
	return fmt.Sprintf("file name %q for note %s has no usable characters", e.Source, e.NID)
}

// Result describes a finished write or run.
type Result struct {
	RunID        string   `json:"run_id,omitempty"`
	Dir          string   `json:"dir"`
	Files        []string `json:"files"`
	Notes        int      `json:"notes"`
	HookWarnings []string `json:"hook_warnings,omitempty"`
}

// EnsureDir creates path and its parents if needed. A leading "~" is
// expanded. It returns the resolved directory.
func EnsureDir(path string) (string, error) {
	dir := config.ExpandHome(path)
	if dir == "" {
		return "", &DirectoryError{Path: path, Err: errors.New("empty path")}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &DirectoryError{Path: dir, Err: err}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", &DirectoryError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return "", &DirectoryError{Path: dir, Err: errors.New("not a directory")}
	}
	return dir, nil
}

// CombinedPath returns the path of the single export file in dir.
func CombinedPath(dir string, cfg config.Config) (string, error) {
	name := fsname.Sanitize(cfg.ExportFileName)
	if !usable(name) {
		return "", &NameError{Source: cfg.ExportFileName}
	}
	return filepath.Join(dir, name), nil
}

// Write stores snippets under dir. In combined mode they are joined with
// the note separator on lines of its own into one file; otherwise each
// snippet goes to a file named from its meta. When two notes produce the
// same file name the later one wins. snippets and metas must have the
// same length.
func Write(dir string, snippets []string, metas []snippet.Meta, cfg config.Config) (*Result, error) {
	if len(snippets) != len(metas) {
		return nil, fmt.Errorf("write backup: %d snippets but %d metas", len(snippets), len(metas))
	}

	dir, err := EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	res := &Result{Dir: dir, Notes: len(snippets)}

	if !cfg.IndividualFiles {
		path, err := CombinedPath(dir, cfg)
		if err != nil {
			return nil, err
		}
		if err := atomicWrite(path, []byte(joinSnippets(snippets, cfg.NoteSeparator))); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		res.Files = []string{path}
		return res, nil
	}

	seen := make(map[string]bool)
	for i, text := range snippets {
		path, err := notePath(dir, cfg.IndividualNameFormat, metas[i])
		if err != nil {
			return nil, err
		}
		if err := atomicWrite(path, []byte(text)); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		if !seen[path] {
			seen[path] = true
			res.Files = append(res.Files, path)
		}
	}
	return res, nil
}

func joinSnippets(snippets []string, separator string) string {
	var out []byte
	for i, s := range snippets {
		if i > 0 {
			out = append(out, '\n')
			out = append(out, separator...)
			out = append(out, '\n')
		}
		out = append(out, s...)
	}
	return string(out)
}

func notePath(dir, format string, meta snippet.Meta) (string, error) {
	raw, err := snippet.RenderName(format, meta)
	if err != nil {
		return "", fmt.Errorf("file name for note %s: %w", meta.NID, err)
	}
	name := fsname.Sanitize(raw)
	if !usable(name) {
		return "", &NameError{NID: meta.NID, Source: raw}
	}
	return filepath.Join(dir, name), nil
}

// usable rejects names that would not denote a file inside the directory.
func usable(name string) bool {
	return name != "" && name != "." && name != ".."
}

// atomicWrite writes data to path using write-to-temp-then-rename.
// The temp file is created in the same directory as path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".textbackup-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write data: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
