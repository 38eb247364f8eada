// Package ocr wraps a text recognition engine behind the TextExtractor interface.
package ocr

import (
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// TextExtractor recognizes printable text in a binarized frame.
type TextExtractor interface {
	// Extract returns the recognized text. On engine failure it returns an
	// empty string and an *EngineError.
	Extract(img gocv.Mat) (string, error)

	// Close releases any resources held by the extractor.
	Close() error
}

// EngineError reports a failure inside the OCR engine.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Config holds options for the Tesseract extractor.
type Config struct {
	// Language is the Tesseract language code (default: "eng").
	Language string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{Language: "eng"}
}

// TesseractExtractor implements TextExtractor with Tesseract via gosseract.
// The engine treats each image as a single uniform block of text.
type TesseractExtractor struct {
	client *gosseract.Client
	mu     sync.Mutex
}

// NewTesseractExtractor creates a Tesseract-backed extractor.
func NewTesseractExtractor(config Config) (*TesseractExtractor, error) {
	client := gosseract.NewClient()

	lang := config.Language
	if lang == "" {
		lang = DefaultConfig().Language
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}

	return &TesseractExtractor{client: client}, nil
}

// Extract encodes img as PNG and runs recognition on it.
func (e *TesseractExtractor) Extract(img gocv.Mat) (text string, err error) {
	// cgo-side failures surface as panics in some engine builds; keep them
	// inside this boundary.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &EngineError{Op: "recognize", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return "", &EngineError{Op: "encode", Err: err}
	}
	defer buf.Close()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", &EngineError{Op: "set image", Err: err}
	}

	out, err := e.client.Text()
	if err != nil {
		return "", &EngineError{Op: "recognize", Err: err}
	}
	return out, nil
}

// Close shuts down the Tesseract client.
func (e *TesseractExtractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
