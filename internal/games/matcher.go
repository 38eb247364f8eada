package games

import "strings"

// Confidence reported for a keyword hit, by text source.
const (
	OCRConfidence         = 0.95
	WindowTitleConfidence = 1.0
)

// Match is a keyword hit against the registry.
type Match struct {
	Game       string
	Keyword    string
	Confidence float64
}

// Match returns the first keyword hit in text, walking signatures in
// registration order and each signature's keywords in list order. The first
// keyword found as a substring wins; later signatures are not considered even
// if they appear earlier in the text.
func (r *Registry) Match(text string, confidence float64) (Match, bool) {
	if text == "" {
		return Match{}, false
	}
	for _, s := range r.signatures {
		for _, k := range s.Keywords {
			if strings.Contains(text, k) {
				return Match{Game: s.ID, Keyword: k, Confidence: confidence}, true
			}
		}
	}
	return Match{}, false
}

// MatchText lowercases recognized text and matches it with OCR confidence.
func (r *Registry) MatchText(text string) (Match, bool) {
	return r.Match(Normalize(text), OCRConfidence)
}

// MatchTitle lowercases a window title and matches it with window-title
// confidence. An empty title is a normal miss.
func (r *Registry) MatchTitle(title string) (Match, bool) {
	if strings.TrimSpace(title) == "" {
		return Match{}, false
	}
	return r.Match(Normalize(title), WindowTitleConfidence)
}
