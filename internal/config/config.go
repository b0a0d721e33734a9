package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
)

// EnvAPIBase overrides the backend base URL from the config file.
const EnvAPIBase = "CLUSTERBOARD_API_BASE"

// Config captures the client settings read from config.toml.
type Config struct {
	APIBase      string
	UserID       string
	PollInterval time.Duration
	LogFile      string
	ExportDir    string
}

const (
	defaultConfigPath = "~/.config/clusterboard/config.toml"
	defaultLogFile    = "~/.local/state/clusterboard/clusterboard.log"
	defaultExportDir  = "~/.local/share/clusterboard/exports"
	defaultAPIBase    = "http://localhost:5000"
	defaultPoll       = 5 * time.Second
	minPoll           = time.Second
)

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		APIBase:      defaultAPIBase,
		PollInterval: defaultPoll,
		LogFile:      mustExpand(defaultLogFile),
		ExportDir:    mustExpand(defaultExportDir),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
// CLUSTERBOARD_API_BASE, when set, wins over api_base.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase     string `toml:"api_base"`
		UserID      string `toml:"user_id"`
		PollSeconds int    `toml:"poll_seconds"`
		LogFile     string `toml:"log_file"`
		ExportDir   string `toml:"export_dir"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	cfg.UserID = strings.TrimSpace(raw.UserID)
	if raw.PollSeconds < 0 {
		return Config{}, fmt.Errorf("parse config: poll_seconds must not be negative")
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = ClampPoll(time.Duration(raw.PollSeconds) * time.Second)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.ExportDir); v != "" {
		cfg.ExportDir = mustExpand(v)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// ClampPoll keeps poll intervals at or above one second; zero selects the default.
func ClampPoll(d time.Duration) time.Duration {
	if d == 0 {
		return defaultPoll
	}
	if d < minPoll {
		return minPoll
	}
	return d
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBase)); v != "" {
		cfg.APIBase = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
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
