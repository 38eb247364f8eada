package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/ayusman/gamesight/internal/app"
	"github.com/ayusman/gamesight/internal/vision"
)

// MaxUploadSize bounds an uploaded frame.
const MaxUploadSize = 32 << 20

// DetectHandler handles image and window-title detection requests.
type DetectHandler struct {
	app *app.App
}

// NewDetectHandler creates a new DetectHandler.
func NewDetectHandler(a *app.App) *DetectHandler {
	return &DetectHandler{app: a}
}

type windowTitleRequest struct {
	Title string `json:"title"`
}

type noMatchResponse struct {
	Match bool `json:"match"`
}

// Image handles POST /detect with a multipart "file" field and responds with
// the flat detection result.
func (h *DetectHandler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read image file")
		return
	}

	result, err := h.app.DetectImage(r.Context(), data)
	if err != nil {
		if errors.Is(err, vision.ErrEmptyFrame) || errors.Is(err, vision.ErrDecode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Detection failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// WindowTitle handles POST /detect/window-title. A miss is reported as 404
// with {"match": false}; it never falls back to a previous game.
func (h *DetectHandler) WindowTitle(w http.ResponseWriter, r *http.Request) {
	var req windowTitleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, ok := h.app.DetectWindowTitle(r.Context(), req.Title)
	if !ok {
		writeJSON(w, http.StatusNotFound, noMatchResponse{Match: false})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
