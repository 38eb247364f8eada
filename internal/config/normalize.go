package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.applyEnv(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNotify()
	c.normalizeLogging()
	return nil
}

// applyEnv applies the environment variables understood by the detector
// service. Set variables win over the config file.
func (c *Config) applyEnv() error {
	if value := lookupEnv("API_URL"); value != "" {
		c.Notify.APIURL = value
	} else if value := lookupEnv("NEXT_PUBLIC_API_URL"); value != "" {
		c.Notify.APIURL = value
	}
	if value := lookupEnv("GAME_DETECTOR_WEBHOOK"); value != "" {
		c.Notify.WebhookPath = value
	}
	if value := lookupEnv("API_KEY"); value != "" {
		c.Notify.APIKey = value
	}
	if value := lookupEnv("PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("PORT: invalid value %q", value)
		}
		c.Server.Port = port
	}
	if value := lookupEnv("GAMESIGHT_TEMPLATES_DIR"); value != "" {
		c.Detector.TemplatesDir = value
	}
	if value := lookupEnv("GAMESIGHT_LOG_LEVEL"); value != "" {
		c.Logging.Level = value
	}
	return nil
}

func lookupEnv(key string) string {
	value, _ := os.LookupEnv(key)
	return strings.TrimSpace(value)
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Detector.TemplatesDir, err = ExpandPath(c.Detector.TemplatesDir); err != nil {
		return fmt.Errorf("detector.templates_dir: %w", err)
	}
	if c.Detector.GamesFile, err = ExpandPath(c.Detector.GamesFile); err != nil {
		return fmt.Errorf("detector.games_file: %w", err)
	}
	if strings.TrimSpace(c.Store.DataDir) == "" {
		c.Store.DataDir = defaultDataDir
	}
	if c.Store.DataDir, err = ExpandPath(c.Store.DataDir); err != nil {
		return fmt.Errorf("store.data_dir: %w", err)
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	return nil
}

func (c *Config) normalizeNotify() {
	c.Notify.APIURL = strings.TrimRight(strings.TrimSpace(c.Notify.APIURL), "/")
	c.Notify.WebhookPath = strings.TrimSpace(c.Notify.WebhookPath)
	if c.Notify.WebhookPath != "" && !strings.HasPrefix(c.Notify.WebhookPath, "/") {
		c.Notify.WebhookPath = "/" + c.Notify.WebhookPath
	}
	c.Notify.APIKey = strings.TrimSpace(c.Notify.APIKey)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
