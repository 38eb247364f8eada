// Package config loads gamesight settings from defaults, an optional TOML
// file and environment variables, in that order.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains HTTP listener settings.
type Server struct {
	Bind           string `toml:"bind"`
	Port           int    `toml:"port"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Detector contains detection pipeline settings.
type Detector struct {
	TemplatesDir string `toml:"templates_dir"`
	GamesFile    string `toml:"games_file"`
	OCRLanguage  string `toml:"ocr_language"`
	OCREnabled   bool   `toml:"ocr_enabled"`
}

// Notify contains the outbound webhook settings.
type Notify struct {
	Enabled        bool   `toml:"enabled"`
	APIURL         string `toml:"api_url"`
	WebhookPath    string `toml:"webhook_path"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Relay contains broadcast relay settings.
type Relay struct {
	BroadcastDetections bool `toml:"broadcast_detections"`
}

// Store contains detection history settings.
type Store struct {
	DataDir      string `toml:"data_dir"`
	HistoryLimit int    `toml:"history_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Tray contains system tray settings.
type Tray struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for gamesight.
//
// Configuration sections by subsystem:
//   - Server: HTTP bind address, port and request timeout
//   - Detector: template directory, games registry file, OCR language
//   - Notify: webhook endpoint and credentials
//   - Relay: whether detections are pushed to relay listeners
//   - Store: history database location and retention
//   - Logging: log format and level
//   - Tray: system tray toggle
type Config struct {
	Server   Server   `toml:"server"`
	Detector Detector `toml:"detector"`
	Notify   Notify   `toml:"notify"`
	Relay    Relay    `toml:"relay"`
	Store    Store    `toml:"store"`
	Logging  Logging  `toml:"logging"`
	Tray     Tray     `toml:"tray"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/gamesight/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has environment overrides applied and paths expanded. It also
// reports the resolved file path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gamesight.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// RequestTimeout returns the per-request timeout for the HTTP server.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// NotifyTimeout returns the webhook request timeout.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notify.TimeoutSeconds) * time.Second
}

// DatabasePath returns the history database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Store.DataDir, "gamesight.db")
}

// LockPath returns the single-instance lock file for serve.
func (c *Config) LockPath() string {
	return filepath.Join(c.Store.DataDir, "gamesight.lock")
}

// EnsureDirectories creates the data directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Store.DataDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Store.DataDir, err)
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
