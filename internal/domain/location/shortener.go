// Package location turns full addresses and place names into the short
// display names used in suggested memos.
package location

import "strings"

// DefaultHomeNames are aliases that describe where the user lives.
// Trips ending at one of them read "back to" instead of "to".
var DefaultHomeNames = []string{"my house", "my old apartment"}

type airportRule struct {
	contains []string
	name     string
}

var airportRules = []airportRule{
	{contains: []string{"San Francisco International Airport", "San Francisco Airport"}, name: "the airport"},
	{contains: []string{"Newark Liberty International Airport"}, name: "EWR"},
	{contains: []string{"Boston Logan International"}, name: "Logan airport"},
}

// Shortener resolves places through the user's alias table and a few
// built-in airport names. It is read-only after construction.
type Shortener struct {
	aliases map[string]string
	homes   map[string]bool
}

// NewShortener builds a shortener. A nil homeNames uses DefaultHomeNames.
func NewShortener(aliases map[string]string, homeNames []string) *Shortener {
	if homeNames == nil {
		homeNames = DefaultHomeNames
	}
	s := &Shortener{
		aliases: make(map[string]string, len(aliases)),
		homes:   make(map[string]bool, len(homeNames)),
	}
	for k, v := range aliases {
		if v == "" {
			continue
		}
		s.aliases[k] = v
	}
	for _, h := range homeNames {
		s.homes[h] = true
	}
	return s
}

// Lookup returns the short name for place. isHome is true when the alias
// names one of the home locations. ok is false when nothing matched.
func (s *Shortener) Lookup(place string) (name string, isHome bool, ok bool) {
	if s != nil {
		if short, found := s.aliases[place]; found {
			return short, s.homes[short], true
		}
	}
	for _, rule := range airportRules {
		for _, needle := range rule.contains {
			if strings.Contains(place, needle) {
				return rule.name, false, true
			}
		}
	}
	return "", false, false
}

// ShortOr returns the short name for place, or fallback when there is none.
func (s *Shortener) ShortOr(place, fallback string) string {
	if name, _, ok := s.Lookup(place); ok {
		return name
	}
	return fallback
}

// FirstSegment returns place up to its first comma.
func FirstSegment(place string) string {
	if i := strings.Index(place, ","); i >= 0 {
		return strings.TrimSpace(place[:i])
	}
	return strings.TrimSpace(place)
}
