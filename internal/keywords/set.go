// Package keywords implements whole-word keyword vocabularies on top of an
// Aho-Corasick automaton, so one pass over a text answers "which of these
// terms occur" regardless of vocabulary size.
package keywords

import (
	"strings"
	"sync"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Set is an immutable keyword vocabulary. Terms match on word boundaries:
// "ssc" matches "SSC CGL" but not "UPSSSC". Multi-word terms such as
// "admit card" match across any run of separators ("admit-card").
type Set struct {
	terms []string // original spelling, dictionary order

	// ahocorasick.Matcher keeps per-call state, so Match is serialised.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

// New builds a Set. Empty terms are ignored.
func New(terms ...string) *Set {
	s := &Set{}
	padded := make([]string, 0, len(terms))
	for _, t := range terms {
		n := strings.TrimSpace(Normalize(t))
		if n == "" {
			continue
		}
		s.terms = append(s.terms, t)
		padded = append(padded, " "+n+" ")
	}
	if len(padded) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(padded)
	}
	return s
}

// Normalize lowercases text, turns every non letter/digit rune into a space,
// collapses runs of spaces and pads the result with one space on each side.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + 2)
	sb.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			space = false
			continue
		}
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	if !space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// Contains reports whether any term occurs in text.
func (s *Set) Contains(text string) bool {
	return len(s.hits(text)) > 0
}

// Matches returns the terms found in text, in dictionary order.
func (s *Set) Matches(text string) []string {
	hits := s.hits(text)
	if len(hits) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(hits))
	for _, h := range hits {
		seen[h] = true
	}
	out := make([]string, 0, len(seen))
	for i, t := range s.terms {
		if seen[i] {
			out = append(out, t)
		}
	}
	return out
}

// Count returns how many distinct terms occur in text.
func (s *Set) Count(text string) int {
	return len(s.Matches(text))
}

// Len returns the number of terms in the vocabulary.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.terms)
}

func (s *Set) hits(text string) []int {
	if s == nil || s.matcher == nil || text == "" {
		return nil
	}
	norm := Normalize(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matcher.Match([]byte(norm))
}
