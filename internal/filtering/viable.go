package filtering

import (
	"context"

	"github.com/spigell/job-matcher/internal/jobs"
)

type viableFilter struct {
	toggle
}

// NewViable creates a filter that drops listings without a source or URL and
// listings with neither a title nor a description.
func NewViable() Filter {
	return &viableFilter{}
}

func (f *viableFilter) Name() string { return "viable" }

func (f *viableFilter) Apply(_ context.Context, _ Deps, listings []jobs.Listing) ([]jobs.Listing, Step, error) {
	initial := len(listings)
	kept := make([]jobs.Listing, 0, initial)
	for i := range listings {
		if listings[i].Complete() && listings[i].Viable() {
			kept = append(kept, listings[i])
		}
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}
