package filtering

import (
	"context"

	"github.com/spigell/job-matcher/internal/jobs"
)

type dedupFilter struct {
	toggle
}

// NewDedup creates a filter that collapses listings sharing a fingerprint.
//
// The first listing seen for a fingerprint keeps its position. A later
// duplicate replaces it in that position only when it carries a salary and
// the current one does not.
func NewDedup() Filter {
	return &dedupFilter{}
}

func (f *dedupFilter) Name() string { return "dedup" }

func (f *dedupFilter) Apply(_ context.Context, _ Deps, listings []jobs.Listing) ([]jobs.Listing, Step, error) {
	initial := len(listings)
	kept := make([]jobs.Listing, 0, initial)
	slots := make(map[string]int, initial)

	for i := range listings {
		key := jobs.Fingerprint(&listings[i])
		slot, seen := slots[key]
		if !seen {
			slots[key] = len(kept)
			kept = append(kept, listings[i])
			continue
		}

		if !kept[slot].HasSalary() && listings[i].HasSalary() {
			kept[slot] = listings[i]
		}
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}
