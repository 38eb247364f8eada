// Package app wires the detector, notifier, history store and relay into the
// detection flows used by the HTTP server, the CLI and the tray.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/gamesight/internal/detector"
	"github.com/ayusman/gamesight/internal/notify"
	"github.com/ayusman/gamesight/internal/relay"
	"github.com/ayusman/gamesight/internal/store"
	"github.com/ayusman/gamesight/internal/templates"
	"github.com/ayusman/gamesight/internal/vision"
)

// Toggler is a Notifier that can be switched on and off at runtime.
type Toggler interface {
	notify.Notifier
	SetEnabled(enabled bool)
	Enabled() bool
}

// Config holds the components of an App. Only Detector is required.
type Config struct {
	Detector *detector.Detector
	Notifier notify.Notifier
	Store    *store.Store
	Relay    *relay.Hub
	// Library is the loaded template library, reported by health checks.
	Library *templates.Library
	// BroadcastDetections pushes confident image detections to relay listeners.
	BroadcastDetections bool
	// HistoryLimit caps stored detections; 0 keeps everything.
	HistoryLimit int
	Logger       *slog.Logger
}

// App runs detection flows and their side effects.
type App struct {
	config    Config
	detector  *detector.Detector
	notifier  notify.Notifier
	logger    *slog.Logger
	observers []func(detector.Result)
	mu        sync.RWMutex
}

// New creates a new App instance with the given configuration. A stored
// notification preference overrides the notifier's initial state.
func New(config Config) *App {
	a := &App{
		config:   config,
		detector: config.Detector,
		notifier: config.Notifier,
		logger:   config.Logger,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.detector == nil {
		a.detector = detector.New(detector.Config{Logger: a.logger})
	}
	if a.notifier == nil {
		a.notifier = notify.Nop{}
	}

	if t, ok := a.notifier.(Toggler); ok && config.Store != nil {
		enabled, err := config.Store.Settings().GetBool(store.SettingNotificationsEnabled, t.Enabled())
		if err != nil {
			a.logger.Warn("failed to load notification setting", "error", err)
		} else {
			t.SetEnabled(enabled)
		}
	}

	return a
}

// DetectImage decodes encoded image bytes and runs image detection.
// Only an unreadable or empty image is reported as an error.
func (a *App) DetectImage(ctx context.Context, data []byte) (detector.Result, error) {
	img, err := vision.Decode(data)
	if err != nil {
		return detector.Result{}, fmt.Errorf("invalid image: %w", err)
	}
	defer img.Close()

	return a.DetectFrame(ctx, img), nil
}

// DetectFrame runs image detection on an already decoded frame, then
// notifies, records and broadcasts the result.
func (a *App) DetectFrame(ctx context.Context, img gocv.Mat) detector.Result {
	result := a.detector.Detect(img)

	notified := a.notifier.Notify(ctx, result)
	a.record(result, store.SourceImage, notified)
	a.broadcast(result)
	a.publish(result)

	a.logger.Info("image detection",
		"game", result.Game,
		"method", string(result.Method),
		"confidence", result.Confidence,
		"notified", notified)
	return result
}

// DetectWindowTitle matches a window title. Matches are recorded; misses are
// not.
func (a *App) DetectWindowTitle(ctx context.Context, title string) (detector.Result, bool) {
	result, ok := a.detector.DetectWindowTitle(title)
	if !ok {
		a.logger.Debug("window title did not match", "title", title)
		return detector.Result{}, false
	}

	a.record(result, store.SourceWindowTitle, false)
	a.publish(result)
	return result, true
}

// State returns the sticky detection state.
func (a *App) State() detector.Snapshot {
	return a.detector.State().Snapshot()
}

// Detector returns the decision arbiter.
func (a *App) Detector() *detector.Detector {
	return a.detector
}

// Relay returns the relay hub, or nil when none is configured.
func (a *App) Relay() *relay.Hub {
	return a.config.Relay
}

// TemplateCount returns the number of loaded templates.
func (a *App) TemplateCount() int {
	return a.config.Library.Len()
}

// Store returns the history store, or nil when none is configured.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// History returns up to limit recorded detections, newest first.
func (a *App) History(limit int) ([]*store.Detection, error) {
	if a.config.Store == nil {
		return nil, nil
	}
	return a.config.Store.Detections().ListRecent(limit)
}

// NotificationsEnabled reports whether the notifier currently sends.
func (a *App) NotificationsEnabled() bool {
	if t, ok := a.notifier.(Toggler); ok {
		return t.Enabled()
	}
	return false
}

// SetNotificationsEnabled switches notifications and persists the choice.
func (a *App) SetNotificationsEnabled(enabled bool) error {
	t, ok := a.notifier.(Toggler)
	if !ok {
		return nil
	}
	t.SetEnabled(enabled)

	if a.config.Store == nil {
		return nil
	}
	if err := a.config.Store.Settings().SetBool(store.SettingNotificationsEnabled, enabled); err != nil {
		return fmt.Errorf("save notification setting: %w", err)
	}
	return nil
}

// OnDetection registers fn to be called after every produced result.
func (a *App) OnDetection(fn func(detector.Result)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

func (a *App) publish(result detector.Result) {
	a.mu.RLock()
	observers := append(([]func(detector.Result))(nil), a.observers...)
	a.mu.RUnlock()

	for _, fn := range observers {
		fn(result)
	}
}

func (a *App) record(result detector.Result, source store.Source, notified bool) {
	if a.config.Store == nil {
		return
	}

	repo := a.config.Store.Detections()
	err := repo.Create(&store.Detection{
		Game:       result.Game,
		Confidence: result.Confidence,
		Method:     string(result.Method),
		Keyword:    result.Match,
		Template:   result.Template,
		Error:      result.Error,
		Source:     source,
		Notified:   notified,
	})
	if err != nil {
		a.logger.Warn("failed to record detection", "error", err)
		return
	}

	if a.config.HistoryLimit > 0 {
		if _, err := repo.Prune(a.config.HistoryLimit); err != nil {
			a.logger.Warn("failed to prune history", "error", err)
		}
	}
}

func (a *App) broadcast(result detector.Result) {
	if a.config.Relay == nil || !a.config.BroadcastDetections {
		return
	}
	if result.Confidence <= notify.Threshold {
		return
	}

	cmd := relay.NewGameDetected(result.Game, result.Confidence, string(result.Method))
	if _, err := a.config.Relay.Broadcast(cmd); err != nil {
		a.logger.Warn("relay broadcast failed", "error", err)
	}
}
