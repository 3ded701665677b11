package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/providers"
)

type stubAdapter struct {
	source   jobs.Source
	listings []jobs.Listing
	err      error
	delay    time.Duration
	panicMsg string
	calls    int32
	seen     *profile.Profile
}

func (s *stubAdapter) Source() jobs.Source { return s.source }

func (s *stubAdapter) Fetch(ctx context.Context, p *profile.Profile) providers.Outcome {
	atomic.AddInt32(&s.calls, 1)
	s.seen = p

	if s.panicMsg != "" {
		panic(s.panicMsg)
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return providers.Failed(s.source, ctx.Err())
		}
	}

	if s.err != nil {
		return providers.Failed(s.source, s.err)
	}
	return providers.Succeeded(s.source, s.listings)
}

func listings(source jobs.Source, ids ...string) []jobs.Listing {
	out := make([]jobs.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, jobs.Listing{Source: source, ExternalID: id, Title: id, URL: "https://example.com/" + id})
	}
	return out
}

func TestDispatchAllSucceed(t *testing.T) {
	a := &stubAdapter{source: jobs.SourceAdzuna, listings: listings(jobs.SourceAdzuna, "a1", "a2")}
	b := &stubAdapter{source: jobs.SourceJSearch, listings: listings(jobs.SourceJSearch, "j1"), delay: 20 * time.Millisecond}
	c := &stubAdapter{source: jobs.SourceArbeitNow, listings: listings(jobs.SourceArbeitNow, "n1")}

	p := profile.New()
	p.AddSkill("Go")

	result := New([]providers.Adapter{a, b, c}, time.Second, zap.NewNop()).Dispatch(context.Background(), p)

	require.True(t, result.Success)
	require.Len(t, result.Outcomes, 3)

	ids := make([]string, 0, 4)
	for _, l := range result.Listings() {
		ids = append(ids, l.ExternalID)
	}
	assert.Equal(t, []string{"a1", "a2", "j1", "n1"}, ids, "listings keep adapter order")

	for _, stub := range []*stubAdapter{a, b, c} {
		assert.Same(t, p, stub.seen)
	}
}

func TestDispatchPartialFailure(t *testing.T) {
	a := &stubAdapter{source: jobs.SourceAdzuna, listings: listings(jobs.SourceAdzuna, "a1")}
	b := &stubAdapter{source: jobs.SourceJSearch, err: &providers.StatusError{Code: 500, Status: "500 Internal Server Error"}}
	c := &stubAdapter{source: jobs.SourceArbeitNow, listings: listings(jobs.SourceArbeitNow, "n1")}

	result := New([]providers.Adapter{a, b, c}, time.Second, zap.NewNop()).Dispatch(context.Background(), profile.New())

	require.True(t, result.Success)
	assert.False(t, result.Outcomes[1].Success)
	assert.Equal(t, providers.KindBadStatus, result.Outcomes[1].ErrorKind)
	assert.Len(t, result.Listings(), 2)
}

func TestDispatchTotalFailure(t *testing.T) {
	a := &stubAdapter{source: jobs.SourceAdzuna, err: providers.ErrMissingCredentials}
	b := &stubAdapter{source: jobs.SourceJSearch, err: errors.New("connection refused")}

	result := New([]providers.Adapter{a, b}, time.Second, zap.NewNop()).Dispatch(context.Background(), profile.New())

	assert.False(t, result.Success)
	assert.Empty(t, result.Listings())
	assert.Equal(t, providers.KindMissingCredentials, result.Outcomes[0].ErrorKind)
	assert.Equal(t, providers.KindTransport, result.Outcomes[1].ErrorKind)
}

func TestDispatchCancelsLateAdapters(t *testing.T) {
	fast := &stubAdapter{source: jobs.SourceAdzuna, listings: listings(jobs.SourceAdzuna, "a1")}
	slow := &stubAdapter{source: jobs.SourceJSearch, listings: listings(jobs.SourceJSearch, "late"), delay: 5 * time.Second}

	started := time.Now()
	result := New([]providers.Adapter{fast, slow}, 50*time.Millisecond, zap.NewNop()).Dispatch(context.Background(), profile.New())

	assert.Less(t, time.Since(started), 2*time.Second)
	require.True(t, result.Success)
	assert.Equal(t, providers.KindCancelled, result.Outcomes[1].ErrorKind)
	assert.Equal(t, jobs.SourceJSearch, result.Outcomes[1].Source)
	assert.Len(t, result.Listings(), 1)
}

func TestDispatchRecoversPanics(t *testing.T) {
	boom := &stubAdapter{source: jobs.SourceAdzuna, panicMsg: "boom"}
	ok := &stubAdapter{source: jobs.SourceArbeitNow, listings: listings(jobs.SourceArbeitNow, "n1")}

	result := New([]providers.Adapter{boom, ok}, time.Second, zap.NewNop()).Dispatch(context.Background(), profile.New())

	require.True(t, result.Success)
	assert.Equal(t, providers.KindInternal, result.Outcomes[0].ErrorKind)
	assert.ErrorIs(t, result.Outcomes[0].Err, providers.ErrPanic)
}

func TestDispatchWithoutAdapters(t *testing.T) {
	coordinator := New(nil, 0, nil)
	result := coordinator.Dispatch(context.Background(), profile.New())

	assert.False(t, result.Success)
	assert.Empty(t, result.Outcomes)
	assert.Empty(t, coordinator.Sources())
}
