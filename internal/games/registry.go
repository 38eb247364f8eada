// Package games holds the ordered registry of game signatures and the keyword
// matcher used for both OCR text and window titles.
package games

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ErrEmptyRegistry is returned when a registry file defines no games.
var ErrEmptyRegistry = errors.New("games: registry has no signatures")

// Signature identifies a game by the keywords that may appear on screen or in
// a window title. Keywords are stored lowercase and checked in order.
type Signature struct {
	ID       string   `yaml:"id"`
	Keywords []string `yaml:"keywords"`
}

// Registry is an ordered list of signatures. Position is match priority:
// earlier signatures win over later ones.
type Registry struct {
	signatures []Signature
}

// NewRegistry builds a registry from signatures in priority order.
// IDs and keywords are lowercased and trimmed; blank keywords are dropped.
func NewRegistry(signatures []Signature) *Registry {
	r := &Registry{signatures: make([]Signature, 0, len(signatures))}
	for _, s := range signatures {
		id := Normalize(strings.TrimSpace(s.ID))
		if id == "" {
			continue
		}
		keywords := make([]string, 0, len(s.Keywords))
		for _, k := range s.Keywords {
			k = Normalize(strings.TrimSpace(k))
			if k != "" {
				keywords = append(keywords, k)
			}
		}
		r.signatures = append(r.signatures, Signature{ID: id, Keywords: keywords})
	}
	return r
}

// DefaultSignatures returns the built-in game list.
func DefaultSignatures() []Signature {
	return []Signature{
		{ID: "fortnite", Keywords: []string{"fortnite", "battle royale", "epic games"}},
		{ID: "valorant", Keywords: []string{"valorant", "riot games", "agent"}},
		{ID: "minecraft", Keywords: []string{"minecraft", "mojang"}},
		{ID: "league", Keywords: []string{"league of legends", "summoner's rift", "league"}},
		{ID: "cod", Keywords: []string{"call of duty", "warzone", "activision"}},
	}
}

// Default returns a registry of the built-in games.
func Default() *Registry {
	return NewRegistry(DefaultSignatures())
}

type registryFile struct {
	Games []Signature `yaml:"games"`
}

// LoadFile reads a YAML registry of the form:
//
//	games:
//	  - id: valorant
//	    keywords: [valorant, riot games]
//
// The order of entries in the file is preserved as match priority.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read games file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse games file: %w", err)
	}

	r := NewRegistry(file.Games)
	if r.Len() == 0 {
		return nil, ErrEmptyRegistry
	}
	return r, nil
}

// Signatures returns a copy of the registered signatures in priority order.
func (r *Registry) Signatures() []Signature {
	out := make([]Signature, len(r.signatures))
	for i, s := range r.signatures {
		out[i] = Signature{ID: s.ID, Keywords: append([]string(nil), s.Keywords...)}
	}
	return out
}

// Len returns the number of registered games.
func (r *Registry) Len() int {
	return len(r.signatures)
}

// ResolveName returns the first registered ID contained in name, or name itself.
// Template file names such as "valorant_logo" resolve to "valorant".
func (r *Registry) ResolveName(name string) string {
	for _, s := range r.signatures {
		if strings.Contains(name, s.ID) {
			return s.ID
		}
	}
	return name
}

// Normalize lowercases text for keyword comparison.
func Normalize(text string) string {
	// A Caser is stateful, so one is built per call.
	return cases.Lower(language.Und).String(text)
}
