// Package detector decides which game is on screen by running the keyword,
// template and sticky fallback stages in priority order.
package detector

import (
	"errors"
	"fmt"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/ayusman/gamesight/internal/games"
	"github.com/ayusman/gamesight/internal/ocr"
	"github.com/ayusman/gamesight/internal/templates"
	"github.com/ayusman/gamesight/internal/vision"
)

// Preprocessor turns a raw image into working images.
type Preprocessor interface {
	Prepare(img gocv.Mat) (*vision.Frame, error)
}

// TemplateMatcher finds the first template over threshold in a gray frame.
type TemplateMatcher interface {
	Match(gray gocv.Mat) (templates.Match, bool)
}

// Config holds the collaborators of a Detector. Nil fields get defaults,
// except Extractor and Matcher: a nil Extractor reads no text and a nil
// Matcher never matches.
type Config struct {
	Preprocessor Preprocessor
	Extractor    ocr.TextExtractor
	Registry     *games.Registry
	Matcher      TemplateMatcher
	State        *State
	Logger       *slog.Logger
}

// Detector is the decision arbiter. It is safe for concurrent use.
type Detector struct {
	preprocessor Preprocessor
	extractor    ocr.TextExtractor
	registry     *games.Registry
	matcher      TemplateMatcher
	state        *State
	logger       *slog.Logger
}

// New creates a Detector from config.
func New(config Config) *Detector {
	d := &Detector{
		preprocessor: config.Preprocessor,
		extractor:    config.Extractor,
		registry:     config.Registry,
		matcher:      config.Matcher,
		state:        config.State,
		logger:       config.Logger,
	}
	if d.preprocessor == nil {
		d.preprocessor = vision.NewPreprocessor()
	}
	if d.registry == nil {
		d.registry = games.Default()
	}
	if d.state == nil {
		d.state = NewState()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// State returns the shared sticky state.
func (d *Detector) State() *State {
	return d.state
}

// Registry returns the game registry used for keyword matching.
func (d *Detector) Registry() *games.Registry {
	return d.registry
}

type stage int

const (
	stageKeyword stage = iota
	stageTemplate
	stageFallback
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageKeyword:
		return "keyword"
	case stageTemplate:
		return "template"
	case stageFallback:
		return "fallback"
	}
	return "done"
}

// outcome is what one stage reports. A stage either matched, did not match,
// or did not match because it failed.
type outcome struct {
	result  Result
	matched bool
	err     error
}

// Detect identifies the game in img. It never panics and always returns a
// well-formed Result; Method is MethodError when a stage failed and nothing
// else matched.
func (d *Detector) Detect(img gocv.Mat) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = d.failed(fmt.Errorf("detection panic: %v", r))
		}
	}()

	frame, err := d.preprocessor.Prepare(img)
	if err != nil {
		return d.failed(fmt.Errorf("preprocess: %w", err))
	}
	defer frame.Close()

	var errs []error
	for st := stageKeyword; st != stageDone; st++ {
		var out outcome
		switch st {
		case stageKeyword:
			out = d.tryKeyword(frame)
		case stageTemplate:
			out = d.tryTemplate(frame)
		case stageFallback:
			if len(errs) > 0 {
				return d.failed(errors.Join(errs...))
			}
			out = d.fallback()
		}

		if out.err != nil {
			d.logger.Warn("detection stage failed", "stage", st.String(), "error", out.err)
			errs = append(errs, out.err)
		}
		if out.matched {
			d.logger.Debug("game detected",
				"game", out.result.Game,
				"method", string(out.result.Method),
				"confidence", out.result.Confidence)
			return out.result.normalized()
		}
	}

	return d.fallback().result.normalized()
}

func (d *Detector) tryKeyword(frame *vision.Frame) outcome {
	if d.extractor == nil {
		return outcome{}
	}

	text, err := d.extractor.Extract(frame.Binary)
	if err != nil {
		return outcome{err: err}
	}

	m, ok := d.registry.MatchText(text)
	if !ok {
		return outcome{}
	}

	d.state.Update(m.Game, m.Confidence)
	return outcome{
		matched: true,
		result: Result{
			Game:       m.Game,
			Confidence: m.Confidence,
			Method:     MethodOCR,
			Match:      m.Keyword,
		},
	}
}

func (d *Detector) tryTemplate(frame *vision.Frame) outcome {
	if d.matcher == nil {
		return outcome{}
	}

	m, ok := d.matcher.Match(frame.Gray)
	if !ok {
		return outcome{}
	}

	d.state.Update(m.Game, m.Score)
	return outcome{
		matched: true,
		result: Result{
			Game:       m.Game,
			Confidence: m.Score,
			Method:     MethodTemplate,
			Template:   m.Template,
		},
	}
}

func (d *Detector) fallback() outcome {
	return outcome{
		matched: true,
		result: Result{
			Game:       d.state.LastGame(),
			Confidence: 0,
			Method:     MethodFallback,
		},
	}
}

func (d *Detector) failed(err error) Result {
	d.logger.Error("detection failed", "error", err)
	return Result{
		Game:       d.state.LastGame(),
		Confidence: 0,
		Method:     MethodError,
		Error:      err.Error(),
	}
}

// DetectWindowTitle matches title against the registry. It reports false
// when nothing matches, including for an empty title, and never falls back
// or changes State.
func (d *Detector) DetectWindowTitle(title string) (Result, bool) {
	m, ok := d.registry.MatchTitle(title)
	if !ok {
		return Result{}, false
	}
	return Result{
		Game:       m.Game,
		Confidence: m.Confidence,
		Method:     MethodWindowTitle,
		Match:      m.Keyword,
	}.normalized(), true
}
