// Package jobs holds the provider-agnostic job listing model and the
// normalization helpers adapters use to build it.
package jobs

import "strings"

// Source identifies the provider a listing came from.
type Source string

const (
	SourceAdzuna     Source = "Adzuna"
	SourceJSearch    Source = "JSearch"
	SourceArbeitNow  Source = "ArbeitNow"
	SourceHeadHunter Source = "HeadHunter"
)

// MaxSnippetRunes bounds Listing.Description.
const MaxSnippetRunes = 500

// Listing is the canonical job listing every adapter produces.
type Listing struct {
	Source     Source
	ExternalID string
	Title      string
	Company    string
	Location   string
	Remote     bool
	// Salary is an annualized amount in the base currency; nil when not derivable.
	Salary      *float64
	URL         string
	Description string
	PostedAt    string
}

// Complete reports whether the listing carries the fields every listing must have.
func (l *Listing) Complete() bool {
	return l.Source != "" && strings.TrimSpace(l.URL) != ""
}

// Viable reports whether there is anything to match against.
func (l *Listing) Viable() bool {
	return strings.TrimSpace(l.Title) != "" || strings.TrimSpace(l.Description) != ""
}

// HasSalary reports whether a positive salary is known.
func (l *Listing) HasSalary() bool {
	return l.Salary != nil && *l.Salary > 0
}

// Snippet collapses whitespace and bounds s to MaxSnippetRunes.
func Snippet(s string) string {
	s = CollapseSpace(s)
	runes := []rune(s)
	if len(runes) <= MaxSnippetRunes {
		return s
	}
	return strings.TrimSpace(string(runes[:MaxSnippetRunes]))
}
