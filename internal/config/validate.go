package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateNotify(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateNotify() error {
	if c.Notify.TimeoutSeconds <= 0 {
		return errors.New("notify.timeout_seconds must be positive")
	}
	if !c.Notify.Enabled {
		return nil
	}
	u, err := url.Parse(c.Notify.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("notify.api_url must be an absolute URL, got %q", c.Notify.APIURL)
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.HistoryLimit < 0 {
		return errors.New("store.history_limit must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
