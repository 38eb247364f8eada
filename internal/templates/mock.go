package templates

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockScorer is a test implementation of the Scorer interface.
// Scores and errors are keyed by template name.
type MockScorer struct {
	scores map[string]float64
	errs   map[string]error
	calls  []string
	mu     sync.Mutex
}

// NewMockScorer creates a new MockScorer. Unknown templates score 0.
func NewMockScorer() *MockScorer {
	return &MockScorer{
		scores: make(map[string]float64),
		errs:   make(map[string]error),
	}
}

// SetScore sets the score returned for the named template.
func (m *MockScorer) SetScore(name string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[name] = score
}

// SetError sets the error returned for the named template.
func (m *MockScorer) SetError(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[name] = err
}

// Score returns the pre-configured score or error for tmpl.
func (m *MockScorer) Score(frame gocv.Mat, tmpl Template) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, tmpl.Name)
	if err := m.errs[tmpl.Name]; err != nil {
		return 0, err
	}
	return m.scores[tmpl.Name], nil
}

// Calls returns the template names scored so far, in call order.
func (m *MockScorer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
