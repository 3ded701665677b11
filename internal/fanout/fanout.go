// Package fanout dispatches one profile to every provider adapter at once and
// gathers what comes back before the request deadline.
package fanout

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/providers"
)

// DefaultDeadline bounds a whole dispatch when none is configured.
const DefaultDeadline = 20 * time.Second

// Result holds one outcome per adapter, in adapter order.
type Result struct {
	Outcomes []providers.Outcome
	// Success is true when at least one adapter succeeded.
	Success bool
}

// Listings concatenates the listings of successful outcomes in adapter order.
func (r *Result) Listings() []jobs.Listing {
	var total int
	for i := range r.Outcomes {
		if r.Outcomes[i].Success {
			total += len(r.Outcomes[i].Listings)
		}
	}

	listings := make([]jobs.Listing, 0, total)
	for i := range r.Outcomes {
		if r.Outcomes[i].Success {
			listings = append(listings, r.Outcomes[i].Listings...)
		}
	}
	return listings
}

// Coordinator runs adapters concurrently.
type Coordinator struct {
	adapters []providers.Adapter
	deadline time.Duration
	logger   *zap.Logger
}

func New(adapters []providers.Adapter, deadline time.Duration, logger *zap.Logger) *Coordinator {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Coordinator{
		adapters: adapters,
		deadline: deadline,
		logger:   logger,
	}
}

// Sources lists the configured adapters.
func (c *Coordinator) Sources() []jobs.Source {
	sources := make([]jobs.Source, 0, len(c.adapters))
	for _, adapter := range c.adapters {
		sources = append(sources, adapter.Source())
	}
	return sources
}

type settled struct {
	index   int
	outcome providers.Outcome
}

// Dispatch sends p to every adapter and waits for all of them or for the
// deadline. Adapters still running at the deadline are cancelled, reported
// with providers.KindCancelled, and whatever they return later is discarded.
func (c *Coordinator) Dispatch(ctx context.Context, p *profile.Profile) *Result {
	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()

	outcomes := make([]providers.Outcome, len(c.adapters))
	done := make([]bool, len(c.adapters))
	// Buffered so that late adapters never block after the collector left.
	results := make(chan settled, len(c.adapters))

	var g errgroup.Group
	for i, adapter := range c.adapters {
		g.Go(func() error {
			results <- settled{index: i, outcome: c.fetch(ctx, adapter, p)}
			return nil
		})
	}

	pending := len(c.adapters)
collect:
	for pending > 0 {
		select {
		case r := <-results:
			outcomes[r.index] = r.outcome
			done[r.index] = true
			pending--
		case <-ctx.Done():
			break collect
		}
	}

	// Stragglers see a cancelled context; their results land in the buffer unread.
	cancel()
	go func() {
		_ = g.Wait()
		c.logger.Debug("all provider calls returned")
	}()

	result := &Result{Outcomes: outcomes}
	for i, adapter := range c.adapters {
		if !done[i] {
			outcomes[i] = providers.Cancelled(adapter.Source())
			c.logger.Warn("provider cancelled at deadline",
				zap.String("provider", string(adapter.Source())),
				zap.Duration("deadline", c.deadline),
			)
		}
		if outcomes[i].Success {
			result.Success = true
		}
	}

	return result
}

// fetch shields the coordinator from adapter panics.
func (c *Coordinator) fetch(ctx context.Context, adapter providers.Adapter, p *profile.Profile) (outcome providers.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("provider adapter panicked",
				zap.String("provider", string(adapter.Source())),
				zap.Any("panic", r),
			)
			outcome = providers.Panicked(adapter.Source(), r)
		}
	}()

	outcome = adapter.Fetch(ctx, p)
	outcome.Source = adapter.Source()
	return outcome
}
