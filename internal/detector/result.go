package detector

import "math"

// Method names the stage that produced a Result.
type Method string

const (
	MethodOCR         Method = "ocr"
	MethodTemplate    Method = "template"
	MethodWindowTitle Method = "window_title"
	MethodFallback    Method = "fallback"
	MethodError       Method = "error"
)

// UnknownGame is reported when nothing has ever been detected.
const UnknownGame = "unknown"

// Result is the outcome of one detection call. It is serialized as a flat
// JSON object; the optional fields depend on Method.
type Result struct {
	Game       string  `json:"game"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`

	// Match is the keyword that matched (ocr, window_title).
	Match string `json:"match,omitempty"`
	// Template is the accepted template name (template).
	Template string `json:"template,omitempty"`
	// Error is the diagnostic message (error).
	Error string `json:"error,omitempty"`
}

// Valid reports whether m is one of the known methods.
func (m Method) Valid() bool {
	switch m {
	case MethodOCR, MethodTemplate, MethodWindowTitle, MethodFallback, MethodError:
		return true
	}
	return false
}

// ClampConfidence limits c to [0, 1]. NaN becomes 0.
func ClampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c), c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

func (r Result) normalized() Result {
	r.Confidence = ClampConfidence(r.Confidence)
	if r.Game == "" {
		r.Game = UnknownGame
	}
	return r
}
