package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/jobs"
)

type employersFilter struct {
	toggle
	employers []string
	keys      map[string]struct{}
}

// NewExcludedEmployers creates a filter that removes listings posted by the
// given employers. Names are compared ignoring case and punctuation.
func NewExcludedEmployers(employers []string) Filter {
	f := &employersFilter{keys: make(map[string]struct{}, len(employers))}
	for _, employer := range employers {
		key := jobs.NormalizeKey(employer)
		if key == "" {
			continue
		}
		if _, ok := f.keys[key]; ok {
			continue
		}
		f.keys[key] = struct{}{}
		f.employers = append(f.employers, strings.TrimSpace(employer))
	}
	return f
}

func (f *employersFilter) Name() string { return "employers" }

func (f *employersFilter) Apply(_ context.Context, deps Deps, listings []jobs.Listing) ([]jobs.Listing, Step, error) {
	initial := len(listings)
	if len(f.keys) == 0 {
		return listings, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make([]jobs.Listing, 0, initial)
	var excluded []string
	for i := range listings {
		if _, ok := f.keys[jobs.NormalizeKey(listings[i].Company)]; ok {
			excluded = append(excluded, listings[i].URL)
			continue
		}
		kept = append(kept, listings[i])
	}

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding listings by employers",
			zap.Strings("excluded_employers", f.employers),
			zap.Strings("excluded_listings", excluded),
			zap.Int("listings_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: len(kept)}, nil
}

func (f *employersFilter) Status() Status {
	details := map[string]string{}
	if len(f.employers) > 0 {
		details["employers"] = strings.Join(f.employers, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
