package api

import (
	"net/http"

	"github.com/ayusman/gamesight/internal/app"
)

// SettingsHandler exposes runtime settings.
type SettingsHandler struct {
	app *app.App
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(a *app.App) *SettingsHandler {
	return &SettingsHandler{app: a}
}

type notificationsSetting struct {
	Enabled *bool `json:"enabled"`
}

// GetNotifications handles GET /api/settings/notifications.
func (h *SettingsHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	enabled := h.app.NotificationsEnabled()
	writeJSON(w, http.StatusOK, notificationsSetting{Enabled: &enabled})
}

// PutNotifications handles PUT /api/settings/notifications {"enabled": bool}.
func (h *SettingsHandler) PutNotifications(w http.ResponseWriter, r *http.Request) {
	var req notificationsSetting
	if err := decodeJSON(w, r, &req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	if err := h.app.SetNotificationsEnabled(*req.Enabled); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}

	h.GetNotifications(w, r)
}
