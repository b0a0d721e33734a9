// Package prefs persists clusterboard user preferences in
// ~/.config/clusterboard/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
)

// Theme values understood by the UI.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Prefs holds user preferences.
type Prefs struct {
	Theme string `toml:"theme"`
}

const (
	defaultPrefsPath = "~/.config/clusterboard/prefs.toml"
	defaultTheme     = ThemeDark
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// ToggleTheme returns the other theme. Unknown values toggle to light.
func ToggleTheme(theme string) string {
	if NormalizeTheme(theme) == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// NormalizeTheme maps any stored value onto dark or light.
func NormalizeTheme(theme string) string {
	if strings.EqualFold(strings.TrimSpace(theme), ThemeLight) {
		return ThemeLight
	}
	return ThemeDark
}

// Load reads preferences from path. A missing file yields defaults. Any other
// failure also yields defaults, along with the error so callers can report it.
func Load(path string) (Prefs, error) {
	defaults := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return defaults, fmt.Errorf("resolve path: %w", err)
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("open prefs: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return defaults, fmt.Errorf("read prefs: %w", err)
	}

	prefs := defaults
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return defaults, fmt.Errorf("parse prefs %s: %w", resolved, err)
	}

	prefs.Theme = NormalizeTheme(prefs.Theme)
	return prefs, nil
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	p.Theme = NormalizeTheme(p.Theme)
	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	expanded, err := homedir.Expand(trimmed)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", trimmed, err)
	}
	return filepath.Abs(expanded)
}
