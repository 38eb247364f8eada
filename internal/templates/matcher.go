package templates

import (
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/ayusman/gamesight/internal/games"
)

// MatchThreshold is the score a template must exceed to be accepted.
const MatchThreshold = 0.85

// Match is an accepted template hit.
type Match struct {
	Game     string  // Registered game ID, or the template name if none applies
	Template string  // Name of the accepted template
	Score    float64 // Raw correlation score
}

// Matcher scores frames against a Library.
type Matcher struct {
	library   *Library
	scorer    Scorer
	registry  *games.Registry
	threshold float64
	logger    *slog.Logger
}

// NewMatcher creates a Matcher. registry maps template names to game IDs.
func NewMatcher(library *Library, scorer Scorer, registry *games.Registry, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		library:   library,
		scorer:    scorer,
		registry:  registry,
		threshold: MatchThreshold,
		logger:    logger,
	}
}

// Match returns the first template, in library order, whose score exceeds
// the threshold. Later templates are not scored once one is accepted, even if
// they would score higher. A template that fails to score counts as a miss.
func (m *Matcher) Match(gray gocv.Mat) (Match, bool) {
	if m.library.Len() == 0 {
		return Match{}, false
	}

	for _, tmpl := range m.library.templates {
		score, err := m.scorer.Score(gray, tmpl)
		if err != nil {
			m.logger.Warn("template match failed", "template", tmpl.Name, "error", err)
			continue
		}
		m.logger.Debug("template scored", "template", tmpl.Name, "score", score)

		if score > m.threshold {
			return Match{
				Game:     m.resolve(tmpl.Name),
				Template: tmpl.Name,
				Score:    score,
			}, true
		}
	}

	return Match{}, false
}

// Library returns the matcher's template library.
func (m *Matcher) Library() *Library {
	return m.library
}

func (m *Matcher) resolve(name string) string {
	if m.registry == nil {
		return name
	}
	return m.registry.ResolveName(name)
}
