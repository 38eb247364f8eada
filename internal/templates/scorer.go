package templates

import (
	"errors"
	"math"

	"gocv.io/x/gocv"
)

// Scoring errors.
var (
	ErrEmptyImage       = errors.New("templates: empty image")
	ErrTemplateTooLarge = errors.New("templates: template larger than frame")
	ErrTypeMismatch     = errors.New("templates: frame and template types differ")
)

// Scorer computes how well a template appears anywhere in a frame.
type Scorer interface {
	// Score returns the maximum normalized correlation of tmpl over frame.
	Score(frame gocv.Mat, tmpl Template) (float64, error)
}

// CorrelationScorer implements Scorer with OpenCV TM_CCOEFF_NORMED.
type CorrelationScorer struct{}

// NewCorrelationScorer creates a CorrelationScorer.
func NewCorrelationScorer() *CorrelationScorer {
	return &CorrelationScorer{}
}

// Score runs template matching and returns the global maximum of the score
// map. Shape problems are reported before OpenCV is called.
func (s *CorrelationScorer) Score(frame gocv.Mat, tmpl Template) (float64, error) {
	if frame.Empty() || tmpl.Image.Empty() {
		return 0, ErrEmptyImage
	}
	if tmpl.Image.Rows() > frame.Rows() || tmpl.Image.Cols() > frame.Cols() {
		return 0, ErrTemplateTooLarge
	}
	if tmpl.Image.Type() != frame.Type() {
		return 0, ErrTypeMismatch
	}

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(frame, tmpl.Image, &result, gocv.TmCcoeffNormed, mask)
	if result.Empty() {
		return 0, errors.New("templates: match produced no scores")
	}

	_, maxVal, _, _ := gocv.MinMaxLoc(result)
	score := float64(maxVal)

	// Flat templates have zero variance and correlate to NaN.
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, nil
	}
	return score, nil
}
