package templates

import (
	"errors"
	"reflect"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/gamesight/internal/games"
)

func TestMatcher_FirstOverThreshold(t *testing.T) {
	lib := NewLibrary(
		Template{Name: "valorant_logo"},
		Template{Name: "fortnite_logo"},
	)
	scorer := NewMockScorer()
	scorer.SetScore("valorant_logo", 0.90)
	scorer.SetScore("fortnite_logo", 0.99)

	m := NewMatcher(lib, scorer, games.Default(), nil)
	match, ok := m.Match(gocv.Mat{})
	if !ok {
		t.Fatal("expected a template match")
	}

	if match.Template != "valorant_logo" {
		t.Errorf("template = %q, want valorant_logo", match.Template)
	}
	if match.Game != "valorant" {
		t.Errorf("game = %q, want valorant", match.Game)
	}
	if match.Score != 0.90 {
		t.Errorf("score = %f, want 0.90", match.Score)
	}
	if calls := scorer.Calls(); !reflect.DeepEqual(calls, []string{"valorant_logo"}) {
		t.Errorf("scored %v, want only the first template", calls)
	}
}

func TestMatcher_Threshold(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		wantOK bool
	}{
		{"above threshold", 0.86, true},
		{"exactly threshold", 0.85, false},
		{"below threshold", 0.5, false},
		{"negative correlation", -0.7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewMockScorer()
			scorer.SetScore("minecraft", tt.score)
			m := NewMatcher(NewLibrary(Template{Name: "minecraft"}), scorer, games.Default(), nil)

			_, ok := m.Match(gocv.Mat{})
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestMatcher_UnregisteredTemplateName(t *testing.T) {
	scorer := NewMockScorer()
	scorer.SetScore("apex_legends", 0.93)
	m := NewMatcher(NewLibrary(Template{Name: "apex_legends"}), scorer, games.Default(), nil)

	match, ok := m.Match(gocv.Mat{})
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Game != "apex_legends" {
		t.Errorf("game = %q, want raw template name", match.Game)
	}
}

func TestMatcher_ScoringFailureContinues(t *testing.T) {
	lib := NewLibrary(
		Template{Name: "huge_banner"},
		Template{Name: "cod_hud"},
	)
	scorer := NewMockScorer()
	scorer.SetError("huge_banner", ErrTemplateTooLarge)
	scorer.SetScore("cod_hud", 0.91)

	m := NewMatcher(lib, scorer, games.Default(), nil)
	match, ok := m.Match(gocv.Mat{})
	if !ok {
		t.Fatal("expected the second template to match")
	}
	if match.Game != "cod" || match.Template != "cod_hud" {
		t.Errorf("got %+v, want cod/cod_hud", match)
	}
}

func TestMatcher_AllFail(t *testing.T) {
	scorer := NewMockScorer()
	scorer.SetError("a", errors.New("boom"))
	scorer.SetError("b", errors.New("boom"))

	m := NewMatcher(NewLibrary(Template{Name: "a"}, Template{Name: "b"}), scorer, games.Default(), nil)
	if _, ok := m.Match(gocv.Mat{}); ok {
		t.Error("expected no match when every template fails")
	}
	if got := len(scorer.Calls()); got != 2 {
		t.Errorf("scored %d templates, want 2", got)
	}
}

func TestMatcher_EmptyLibrary(t *testing.T) {
	scorer := NewMockScorer()

	for _, lib := range []*Library{nil, NewLibrary()} {
		m := NewMatcher(lib, scorer, games.Default(), nil)
		if _, ok := m.Match(gocv.Mat{}); ok {
			t.Error("expected no match for an empty library")
		}
	}
	if calls := scorer.Calls(); len(calls) != 0 {
		t.Errorf("scorer called %d times, want 0", len(calls))
	}
}
