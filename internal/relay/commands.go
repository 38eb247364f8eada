package relay

// Command types understood by avatar listeners.
const (
	TypeAnimation    = "animation"
	TypeSpeak        = "speak"
	TypeGameDetected = "game_detected"
)

// DefaultIntensity is used when an animation request omits intensity.
const DefaultIntensity = 1.0

// Animation asks listeners to play an emotion animation.
type Animation struct {
	Type      string  `json:"type"`
	Emotion   string  `json:"emotion"`
	Intensity float64 `json:"intensity"`
}

// NewAnimation builds an animation command. A nil intensity means
// DefaultIntensity.
func NewAnimation(emotion string, intensity *float64) Animation {
	v := DefaultIntensity
	if intensity != nil {
		v = *intensity
	}
	return Animation{Type: TypeAnimation, Emotion: emotion, Intensity: v}
}

// Speak asks listeners to say text, optionally from pre-rendered audio.
type Speak struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// NewSpeak builds a speak command.
func NewSpeak(text, audioURL string) Speak {
	return Speak{Type: TypeSpeak, Text: text, AudioURL: audioURL}
}

// GameDetected announces a confident detection.
type GameDetected struct {
	Type       string  `json:"type"`
	Game       string  `json:"game"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// NewGameDetected builds a game_detected command.
func NewGameDetected(game string, confidence float64, method string) GameDetected {
	return GameDetected{Type: TypeGameDetected, Game: game, Confidence: confidence, Method: method}
}

// Status values reported by the relay endpoints.
const (
	StatusSent          = "sent"
	StatusNoConnections = "no_connections"
)

// StatusFor maps a Broadcast result to its status string.
func StatusFor(sent bool) string {
	if sent {
		return StatusSent
	}
	return StatusNoConnections
}
