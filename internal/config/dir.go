// Package config loads, merges, validates and persists the textbackup
// configuration.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultFileName is the configuration file created in Dir when no path is given.
const DefaultFileName = "config.json"

// Dir returns the textbackup configuration directory.
//
// Resolution:
//   - $TEXTBACKUP_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/textbackup if set (respects XDG on any platform)
//   - %AppData%/textbackup on Windows
//   - ~/.config/textbackup on macOS and Linux
func Dir() string {
	if dir := os.Getenv("TEXTBACKUP_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "textbackup")
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "textbackup")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "textbackup")
}

// DefaultPath returns the path of the configuration file inside Dir.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return DefaultFileName
	}
	return filepath.Join(dir, DefaultFileName)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
