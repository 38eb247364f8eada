package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/gamesight/internal/app"
	"github.com/ayusman/gamesight/internal/store"
)

// DefaultListLimit is used when a history request has no limit.
const DefaultListLimit = 50

// MaxListLimit caps the history page size.
const MaxListLimit = 500

// DetectionsHandler serves detection history and the sticky state.
type DetectionsHandler struct {
	app *app.App
}

// NewDetectionsHandler creates a new DetectionsHandler.
func NewDetectionsHandler(a *app.App) *DetectionsHandler {
	return &DetectionsHandler{app: a}
}

type listDetectionsResponse struct {
	Detections []*store.Detection `json:"detections"`
}

// List handles GET /api/detections?limit=n.
func (h *DetectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	detections, err := h.app.History(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list detections")
		return
	}
	if detections == nil {
		detections = []*store.Detection{}
	}

	writeJSON(w, http.StatusOK, listDetectionsResponse{Detections: detections})
}

// Get handles GET /api/detections/{id}.
func (h *DetectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := h.app.Store()
	if s == nil {
		writeError(w, http.StatusNotFound, "Detection not found")
		return
	}

	d, err := s.Detections().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Detection not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get detection")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// State handles GET /api/state.
func (h *DetectionsHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.State())
}
