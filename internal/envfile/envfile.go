// Package envfile reads KEY=VALUE files. They stand in for environment
// variables where the environment cannot be set, such as the process an
// MCP client launches for "textbackup serve".
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads KEY=VALUE lines from r. Blank lines, "#" comments and lines
// without "=" are skipped; an "export " prefix is allowed. Values may be
// wrapped in matching single or double quotes. Unquoted values end at
// " #". Later definitions of a key win.
func Parse(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := parseLine(line)
		if !ok {
			continue
		}
		vars[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// Read parses the file at path. A missing file yields an empty map.
func Read(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only

	vars, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return vars, nil
}

// Lookup returns key from the environment when set and non-empty,
// otherwise from the first file in paths that defines it. It returns ""
// when nothing defines the key.
func Lookup(key string, paths ...string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	for _, path := range paths {
		vars, err := Read(path)
		if err != nil {
			return "", err
		}
		if value, ok := vars[key]; ok {
			return value, nil
		}
	}
	return "", nil
}

func parseLine(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))
	if key == "" {
		return "", "", false
	}

	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			return key, value[1 : len(value)-1], true
		}
	}
	if i := strings.Index(value, " #"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return key, value, true
}
