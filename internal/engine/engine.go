// Package engine wires extraction, provider fan-out, filtering, scoring and
// ranking into a single match operation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/fanout"
	"github.com/spigell/job-matcher/internal/filtering"
	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/profile"
)

// ProfileExtractor turns a match request into a candidate profile.
type ProfileExtractor interface {
	Extract(ctx context.Context, in profile.Input) (*profile.Profile, error)
}

// Dispatcher queries every provider for a profile.
type Dispatcher interface {
	Dispatch(ctx context.Context, p *profile.Profile) *fanout.Result
}

// Request is one match request.
type Request struct {
	Document []byte
	MimeType string
	Filename string
	Query    string
	// UserID is set by an upstream authenticator. It is only logged.
	UserID string
}

// Job is a ranked listing as returned to callers.
type Job struct {
	Source     jobs.Source `json:"source"`
	Title      string      `json:"title"`
	Company    string      `json:"company"`
	Location   string      `json:"location"`
	MatchScore int         `json:"match_score"`
	Salary     *float64    `json:"salary"`
	URL        string      `json:"url"`
	Remote     bool        `json:"remote"`
	PostedAt   string      `json:"posted_at,omitempty"`
}

// Response is the result of a match.
type Response struct {
	Success    bool             `json:"success"`
	ResumeData *profile.Profile `json:"resume_data"`
	// TotalJobs counts listings after deduplication and before truncation.
	TotalJobs int   `json:"total_jobs"`
	Jobs      []Job `json:"jobs"`
}

type Engine struct {
	extractor  ProfileExtractor
	dispatcher Dispatcher
	filters    []filtering.Filter
	maxResults int
	logger     *zap.Logger
}

func New(extractor ProfileExtractor, dispatcher Dispatcher, filters []filtering.Filter, maxResults int, log *zap.Logger) *Engine {
	if maxResults <= 0 || maxResults > matching.TopK {
		maxResults = matching.TopK
	}
	if log == nil {
		log = zap.NewNop()
	}
	if filters == nil {
		filters = filtering.Default(nil)
	}

	return &Engine{
		extractor:  extractor,
		dispatcher: dispatcher,
		filters:    filters,
		maxResults: maxResults,
		logger:     log,
	}
}

// Match runs the whole pipeline. Only profile.ErrInput and
// profile.ErrExtraction are returned as errors; provider failures are
// reflected in Response.Success.
func (e *Engine) Match(ctx context.Context, req *Request) (*Response, error) {
	started := time.Now()
	log := logger.WithRequest(e.logger, "", req.UserID)

	p, err := e.extractor.Extract(ctx, profile.Input{
		Document: req.Document,
		MimeType: req.MimeType,
		Filename: req.Filename,
		Query:    req.Query,
	})
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrInput):
			metrics.MatchRequestsTotal.WithLabelValues(metrics.MatchInputError).Inc()
		case errors.Is(err, profile.ErrExtraction):
			metrics.MatchRequestsTotal.WithLabelValues(metrics.MatchExtractionError).Inc()
		}
		return nil, err
	}

	result := e.dispatcher.Dispatch(ctx, p)
	for _, outcome := range result.Outcomes {
		if !outcome.Success {
			log.Info("provider returned no listings",
				zap.String("provider", string(outcome.Source)),
				zap.String("kind", string(outcome.ErrorKind)),
			)
		}
	}

	listings, err := filtering.Run(ctx, filtering.Deps{Logger: log}, e.filters, result.Listings())
	if err != nil {
		return nil, fmt.Errorf("filter listings: %w", err)
	}

	ranked := matching.Rank(matching.ScoreAll(listings, p), e.maxResults)

	response := &Response{
		Success:    result.Success,
		ResumeData: p,
		TotalJobs:  len(listings),
		Jobs:       make([]Job, 0, len(ranked)),
	}
	for i := range ranked {
		response.Jobs = append(response.Jobs, toJob(&ranked[i]))
	}

	outcome := metrics.MatchSuccess
	if !response.Success {
		outcome = metrics.MatchDegraded
	}
	metrics.MatchRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.MatchDuration.Observe(time.Since(started).Seconds())

	log.Info("match finished",
		zap.Bool("success", response.Success),
		zap.Int("total_jobs", response.TotalJobs),
		zap.Int("returned_jobs", len(response.Jobs)),
		zap.Duration("took", time.Since(started)),
	)

	return response, nil
}

func toJob(m *matching.Matched) Job {
	return Job{
		Source:     m.Listing.Source,
		Title:      m.Listing.Title,
		Company:    m.Listing.Company,
		Location:   m.Listing.Location,
		MatchScore: m.Score,
		Salary:     m.Listing.Salary,
		URL:        m.Listing.URL,
		Remote:     m.Listing.Remote,
		PostedAt:   m.Listing.PostedAt,
	}
}
