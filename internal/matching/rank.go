package matching

import (
	"sort"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

// TopK is the default number of ranked listings returned.
const TopK = 50

// Matched is a scored listing.
type Matched struct {
	Listing   jobs.Listing
	Score     int
	Breakdown map[string]int
}

// ScoreAll scores every listing, preserving order.
func ScoreAll(listings []jobs.Listing, p *profile.Profile) []Matched {
	matched := make([]Matched, 0, len(listings))
	for i := range listings {
		score, breakdown := Score(&listings[i], p)
		matched = append(matched, Matched{
			Listing:   listings[i],
			Score:     score,
			Breakdown: breakdown,
		})
	}
	return matched
}

// Rank sorts by descending score, keeping discovery order among equal scores,
// and keeps at most limit entries. A non-positive limit means TopK.
func Rank(matched []Matched, limit int) []Matched {
	if limit <= 0 {
		limit = TopK
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched
}
