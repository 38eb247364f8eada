// Package tray provides a system tray menu for the game detector.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/gamesight/internal/detector"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	last     string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle   *systray.MenuItem
	menuLastGame *systray.MenuItem
}

// New creates a new Tray with notifications shown as enabled or disabled.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
		last:    lastGameLabel(detector.Result{}),
	}
}

// OnToggle sets the callback called when notifications are toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback called when the dashboard menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops a running tray.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("GameSight")
	systray.SetTooltip("GameSight game detector")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleLabel(t.enabled), "Toggle game notifications")
	systray.AddSeparator()

	t.menuLastGame = systray.AddMenuItem(t.last, "Last detected game")
	t.menuLastGame.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the detector API in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit GameSight")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleLabel(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// ShowResult updates the last game display. It is safe to call before the
// tray is running.
func (t *Tray) ShowResult(result detector.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = lastGameLabel(result)
	if t.menuLastGame != nil {
		t.menuLastGame.SetTitle(t.last)
	}
}

// LastGame returns the current last game label.
func (t *Tray) LastGame() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current notification state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleLabel(enabled bool) string {
	if enabled {
		return "● Notifications on"
	}
	return "○ Notifications off"
}

func lastGameLabel(result detector.Result) string {
	if result.Game == "" || result.Game == detector.UnknownGame {
		return "Last: none"
	}
	return fmt.Sprintf("Last: %s (%s, %.0f%%)", result.Game, result.Method, result.Confidence*100)
}
