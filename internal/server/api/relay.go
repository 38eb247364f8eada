package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/gamesight/internal/relay"
)

// RelayHandler accepts commands over HTTP and broadcasts them to relay
// listeners.
type RelayHandler struct {
	hub *relay.Hub
}

// NewRelayHandler creates a new RelayHandler.
func NewRelayHandler(hub *relay.Hub) *RelayHandler {
	return &RelayHandler{hub: hub}
}

type statusResponse struct {
	Status string `json:"status"`
}

type animationRequest struct {
	Emotion   string   `json:"emotion"`
	Intensity *float64 `json:"intensity"`
}

type speakRequest struct {
	Text     string `json:"text"`
	AudioURL string `json:"audio_url"`
}

// Command handles POST /api/relay/commands with an arbitrary JSON object.
func (h *RelayHandler) Command(w http.ResponseWriter, r *http.Request) {
	var cmd map[string]interface{}
	if err := decodeJSON(w, r, &cmd); err != nil || cmd == nil {
		writeError(w, http.StatusBadRequest, "Command must be a JSON object")
		return
	}
	h.send(w, cmd)
}

// Animation handles POST /api/relay/animation.
func (h *RelayHandler) Animation(w http.ResponseWriter, r *http.Request) {
	var req animationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Emotion) == "" {
		writeError(w, http.StatusBadRequest, "emotion is required")
		return
	}
	h.send(w, relay.NewAnimation(req.Emotion, req.Intensity))
}

// Speak handles POST /api/relay/speak.
func (h *RelayHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.AudioURL) == "" {
		writeError(w, http.StatusBadRequest, "text or audio_url is required")
		return
	}
	h.send(w, relay.NewSpeak(req.Text, req.AudioURL))
}

func (h *RelayHandler) send(w http.ResponseWriter, cmd interface{}) {
	sent, err := h.hub.Broadcast(cmd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: relay.StatusFor(sent)})
}
