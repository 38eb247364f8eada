package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ayusman/gamesight/internal/app"
	"github.com/ayusman/gamesight/internal/config"
	"github.com/ayusman/gamesight/internal/detector"
	"github.com/ayusman/gamesight/internal/games"
	"github.com/ayusman/gamesight/internal/logging"
	"github.com/ayusman/gamesight/internal/notify"
	"github.com/ayusman/gamesight/internal/ocr"
	"github.com/ayusman/gamesight/internal/relay"
	"github.com/ayusman/gamesight/internal/store"
	"github.com/ayusman/gamesight/internal/templates"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger writes to the command's stderr so stdout stays clean for results.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// components holds everything assembled from configuration.
type components struct {
	app       *app.App
	store     *store.Store
	library   *templates.Library
	extractor ocr.TextExtractor
	hub       *relay.Hub
	notifier  *notify.Webhook
}

type componentOptions struct {
	// withRelay creates the relay hub; only serve has listeners.
	withRelay bool
}

func buildComponents(cfg *config.Config, logger *slog.Logger, opts componentOptions) (*components, error) {
	rt := &components{}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	registry := games.Default()
	if cfg.Detector.GamesFile != "" {
		loaded, err := games.LoadFile(cfg.Detector.GamesFile)
		if err != nil {
			return nil, fmt.Errorf("load games file: %w", err)
		}
		registry = loaded
	}

	library, err := templates.LoadDir(cfg.Detector.TemplatesDir, logger)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	rt.library = library
	logger.Info("templates loaded",
		"dir", cfg.Detector.TemplatesDir,
		"count", library.Len(),
		"names", library.Names())

	if cfg.Detector.OCREnabled {
		extractor, err := ocr.NewTesseractExtractor(ocr.Config{Language: cfg.Detector.OCRLanguage})
		if err != nil {
			logger.Warn("ocr unavailable, continuing with template matching only", "error", err)
		} else {
			rt.extractor = extractor
		}
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	rt.store = st

	rt.notifier = notify.NewWebhook(notify.Config{
		BaseURL: cfg.Notify.APIURL,
		Path:    cfg.Notify.WebhookPath,
		APIKey:  cfg.Notify.APIKey,
		Timeout: cfg.NotifyTimeout(),
		Enabled: cfg.Notify.Enabled,
	}, logger)

	if opts.withRelay {
		rt.hub = relay.NewHub(logger)
	}

	det := detector.New(detector.Config{
		Extractor: rt.extractor,
		Registry:  registry,
		Matcher:   templates.NewMatcher(library, templates.NewCorrelationScorer(), registry, logger),
		Logger:    logger,
	})

	rt.app = app.New(app.Config{
		Detector:            det,
		Notifier:            rt.notifier,
		Store:               st,
		Relay:               rt.hub,
		Library:             library,
		BroadcastDetections: cfg.Relay.BroadcastDetections,
		HistoryLimit:        cfg.Store.HistoryLimit,
		Logger:              logger,
	})

	ok = true
	return rt, nil
}

// Close releases everything buildComponents opened.
func (r *components) Close() {
	if r.hub != nil {
		r.hub.Close()
	}
	if r.extractor != nil {
		r.extractor.Close()
	}
	r.library.Close()
	r.store.Close()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// build loads config and a logger for cmd and assembles the components
// used by one-shot commands.
func (c *commandContext) build(cmd *cobra.Command) (*components, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return nil, err
	}
	return buildComponents(cfg, logger, componentOptions{})
}
