package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

const (
	JSearchURL = "https://api.openwebninja.com/jsearch/search"

	defaultJSearchCountry    = "us"
	defaultJSearchDatePosted = "month"
	defaultJSearchLimit      = 20
)

// JSearchConfig configures the JSearch adapter (served through OpenWebNinja).
type JSearchConfig struct {
	APIKey     string
	URL        string
	Country    string
	DatePosted string
	Limit      int
}

type jsearchResponse struct {
	Data []any `json:"data"`
}

type jsearchRecord struct {
	ID          string  `json:"job_id"`
	Title       string  `json:"job_title"`
	Employer    string  `json:"employer_name"`
	City        string  `json:"job_city"`
	State       string  `json:"job_state"`
	Country     string  `json:"job_country"`
	Description string  `json:"job_description"`
	ApplyLink   string  `json:"job_apply_link"`
	GoogleLink  string  `json:"job_google_link"`
	MinSalary   float64 `json:"job_min_salary"`
	MaxSalary   float64 `json:"job_max_salary"`
	Currency    string  `json:"job_salary_currency"`
	Period      string  `json:"job_salary_period"`
	IsRemote    *bool   `json:"job_is_remote"`
	PostedAt    string  `json:"job_posted_at_datetime_utc"`
}

// JSearch searches the JSearch aggregator.
type JSearch struct {
	client
	cfg JSearchConfig
}

var _ Adapter = (*JSearch)(nil)

func NewJSearch(cfg JSearchConfig, opts Options) *JSearch {
	if cfg.URL == "" {
		cfg.URL = JSearchURL
	}
	if cfg.Country == "" {
		cfg.Country = defaultJSearchCountry
	}
	if cfg.DatePosted == "" {
		cfg.DatePosted = defaultJSearchDatePosted
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultJSearchLimit
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	return &JSearch{client: newClient(jobs.SourceJSearch, opts), cfg: cfg}
}

// Fetch implements Adapter.
func (a *JSearch) Fetch(ctx context.Context, p *profile.Profile) Outcome {
	return a.run(ctx, func(ctx context.Context) ([]jobs.Listing, error) {
		return a.fetch(ctx, p)
	})
}

func (a *JSearch) fetch(ctx context.Context, p *profile.Profile) ([]jobs.Listing, error) {
	if a.cfg.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	query := searchTerm(p)
	if query == "" {
		query = fallbackRole
	}
	if where := searchLocation(p); where != "" {
		query += " " + where
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("page", "1")
	q.Set("num_pages", "1")
	q.Set("country", a.cfg.Country)
	q.Set("language", "en")
	q.Set("date_posted", a.cfg.DatePosted)
	if p != nil && p.RemotePreference {
		q.Set("remote_jobs_only", "true")
	}

	header := http.Header{}
	header.Set("x-api-key", a.cfg.APIKey)

	var resp jsearchResponse
	if err := a.getJSON(ctx, a.cfg.URL, q, header, &resp); err != nil {
		return nil, err
	}

	data := resp.Data
	if len(data) > a.cfg.Limit {
		data = data[:a.cfg.Limit]
	}

	var records []jsearchRecord
	if err := decodeRecords(data, &records); err != nil {
		return nil, err
	}

	listings := make([]jobs.Listing, 0, len(records))
	for i := range records {
		if listing, ok := a.normalize(&records[i]); ok {
			listings = append(listings, listing)
		}
	}

	return listings, nil
}

func (a *JSearch) normalize(r *jsearchRecord) (jobs.Listing, bool) {
	link := strings.TrimSpace(r.ApplyLink)
	if link == "" {
		link = strings.TrimSpace(r.GoogleLink)
	}
	if link == "" {
		return jobs.Listing{}, false
	}

	title := jobs.CollapseSpace(r.Title)
	location := joinNonEmpty(", ", r.City, r.State, r.Country)

	remote := jobs.DetectRemote(title, location, r.Description)
	if r.IsRemote != nil {
		remote = *r.IsRemote
	}

	currency := r.Currency
	if strings.TrimSpace(currency) == "" {
		currency = jobs.DefaultCurrency
	}

	return jobs.Listing{
		Source:      jobs.SourceJSearch,
		ExternalID:  strings.TrimSpace(r.ID),
		Title:       title,
		Company:     jobs.CollapseSpace(r.Employer),
		Location:    location,
		Remote:      remote,
		Salary:      a.salary.Annualize(r.MinSalary, r.MaxSalary, currency, jsearchPeriod(r.Period)),
		URL:         link,
		Description: jobs.Snippet(r.Description),
		PostedAt:    strings.TrimSpace(r.PostedAt),
	}, true
}

// jsearchPeriod treats a missing period as yearly, which is what JSearch
// documents for its salary estimates.
func jsearchPeriod(period string) jobs.Period {
	if strings.TrimSpace(period) == "" {
		return jobs.PeriodYear
	}
	return jobs.ParsePeriod(period)
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		if value = jobs.CollapseSpace(value); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, sep)
}
