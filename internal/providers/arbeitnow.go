package providers

import (
	"context"
	"strings"
	"time"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

const (
	ArbeitNowURL = "https://www.arbeitnow.com/api/job-board-api"

	defaultArbeitNowScan  = 50
	defaultArbeitNowLimit = 15
)

// ArbeitNowConfig configures the ArbeitNow adapter. The board has no search
// parameters, so listings are filtered locally by title keywords.
type ArbeitNowConfig struct {
	URL string
	// Scan is how many board entries are considered.
	Scan int
	// Limit caps the listings returned.
	Limit int
}

type arbeitNowResponse struct {
	Data []any `json:"data"`
}

type arbeitNowRecord struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Company     string   `json:"company_name"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Remote      bool     `json:"remote"`
	Tags        []string `json:"tags"`
	CreatedAt   int64    `json:"created_at"`
}

// ArbeitNow reads the public ArbeitNow job board.
type ArbeitNow struct {
	client
	cfg ArbeitNowConfig
}

var _ Adapter = (*ArbeitNow)(nil)

func NewArbeitNow(cfg ArbeitNowConfig, opts Options) *ArbeitNow {
	if cfg.URL == "" {
		cfg.URL = ArbeitNowURL
	}
	if cfg.Scan <= 0 {
		cfg.Scan = defaultArbeitNowScan
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultArbeitNowLimit
	}

	return &ArbeitNow{client: newClient(jobs.SourceArbeitNow, opts), cfg: cfg}
}

// Fetch implements Adapter.
func (a *ArbeitNow) Fetch(ctx context.Context, p *profile.Profile) Outcome {
	return a.run(ctx, func(ctx context.Context) ([]jobs.Listing, error) {
		return a.fetch(ctx, p)
	})
}

func (a *ArbeitNow) fetch(ctx context.Context, p *profile.Profile) ([]jobs.Listing, error) {
	var resp arbeitNowResponse
	if err := a.getJSON(ctx, a.cfg.URL, nil, nil, &resp); err != nil {
		return nil, err
	}

	data := resp.Data
	if len(data) > a.cfg.Scan {
		data = data[:a.cfg.Scan]
	}

	var records []arbeitNowRecord
	if err := decodeRecords(data, &records); err != nil {
		return nil, err
	}

	words := keywords(p)
	listings := make([]jobs.Listing, 0, a.cfg.Limit)
	for i := range records {
		if !titleMatches(records[i].Title, words) {
			continue
		}

		listing, ok := a.normalize(&records[i])
		if !ok {
			continue
		}

		listings = append(listings, listing)
		if len(listings) == a.cfg.Limit {
			break
		}
	}

	return listings, nil
}

func (a *ArbeitNow) normalize(r *arbeitNowRecord) (jobs.Listing, bool) {
	link := strings.TrimSpace(r.URL)
	if link == "" {
		return jobs.Listing{}, false
	}

	title := jobs.CollapseSpace(r.Title)
	location := jobs.CollapseSpace(r.Location)
	description := jobs.PlainText(r.Description)

	var posted string
	if r.CreatedAt > 0 {
		posted = time.Unix(r.CreatedAt, 0).UTC().Format(time.RFC3339)
	}

	return jobs.Listing{
		Source:      jobs.SourceArbeitNow,
		ExternalID:  strings.TrimSpace(r.Slug),
		Title:       title,
		Company:     jobs.CollapseSpace(r.Company),
		Location:    location,
		Remote:      r.Remote,
		URL:         link,
		Description: jobs.Snippet(description),
		PostedAt:    posted,
	}, true
}

// titleMatches reports whether the title contains any keyword. Without
// keywords every title matches.
func titleMatches(title string, words []string) bool {
	if len(words) == 0 {
		return true
	}
	title = strings.ToLower(title)
	for _, word := range words {
		if strings.Contains(title, word) {
			return true
		}
	}
	return false
}
