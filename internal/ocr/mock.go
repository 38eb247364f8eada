package ocr

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockExtractor is a test implementation of the TextExtractor interface.
// It allows tests to control the recognized text.
type MockExtractor struct {
	text  string
	err   error
	calls int
	mu    sync.Mutex
}

// NewMockExtractor creates a new MockExtractor returning text.
func NewMockExtractor(text string) *MockExtractor {
	return &MockExtractor{text: text}
}

// SetText sets the text that will be returned by Extract.
func (m *MockExtractor) SetText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

// SetError sets the engine error that will be returned by Extract.
func (m *MockExtractor) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Extract returns the pre-configured text or error.
func (m *MockExtractor) Extract(img gocv.Mat) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", &EngineError{Op: "recognize", Err: m.err}
	}
	return m.text, nil
}

// Calls returns how many times Extract was called.
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op for the mock extractor.
func (m *MockExtractor) Close() error {
	return nil
}
