package detector

import (
	"sync"
	"time"
)

// Snapshot is a copy of the sticky detection state.
type Snapshot struct {
	LastGame   string    `json:"last_game,omitempty"`
	Confidence float64   `json:"confidence"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// State holds the most recent confident detection. One State is shared by
// every caller of a Detector; updates are last-writer-wins.
type State struct {
	mu   sync.RWMutex
	last Snapshot
	now  func() time.Time
}

// NewState creates an empty State with no last game.
func NewState() *State {
	return &State{now: time.Now}
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Update records game as the last detected game.
func (s *State) Update(game string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = Snapshot{
		LastGame:   game,
		Confidence: ClampConfidence(confidence),
		UpdatedAt:  s.now(),
	}
}

// LastGame returns the last detected game, or UnknownGame.
func (s *State) LastGame() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last.LastGame == "" {
		return UnknownGame
	}
	return s.last.LastGame
}

// Reset forgets the last detected game.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = Snapshot{}
}
