package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

const (
	AdzunaURL  = "https://baskarm28-adzuna-v1.p.rapidapi.com/jobs/us/search/1"
	AdzunaHost = "baskarm28-adzuna-v1.p.rapidapi.com"

	defaultAdzunaResults = 20
)

// AdzunaConfig configures the Adzuna adapter (served through RapidAPI).
type AdzunaConfig struct {
	APIKey         string
	URL            string
	Host           string
	ResultsPerPage int
	// Currency of the country the URL searches in.
	Currency string
}

type adzunaResponse struct {
	Results []any `json:"results"`
}

type adzunaRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Description string  `json:"description"`
	RedirectURL string  `json:"redirect_url"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	Created     string  `json:"created"`
}

// Adzuna searches Adzuna listings. Salaries there are yearly.
type Adzuna struct {
	client
	cfg AdzunaConfig
}

var _ Adapter = (*Adzuna)(nil)

func NewAdzuna(cfg AdzunaConfig, opts Options) *Adzuna {
	if cfg.URL == "" {
		cfg.URL = AdzunaURL
	}
	if cfg.Host == "" {
		if u, err := url.Parse(cfg.URL); err == nil && u.Host != "" {
			cfg.Host = u.Host
		} else {
			cfg.Host = AdzunaHost
		}
	}
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = defaultAdzunaResults
	}
	if cfg.Currency == "" {
		cfg.Currency = jobs.DefaultCurrency
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	return &Adzuna{client: newClient(jobs.SourceAdzuna, opts), cfg: cfg}
}

// Fetch implements Adapter.
func (a *Adzuna) Fetch(ctx context.Context, p *profile.Profile) Outcome {
	return a.run(ctx, func(ctx context.Context) ([]jobs.Listing, error) {
		return a.fetch(ctx, p)
	})
}

func (a *Adzuna) fetch(ctx context.Context, p *profile.Profile) ([]jobs.Listing, error) {
	if a.cfg.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	term := searchTerm(p)
	if term == "" {
		term = fallbackRole
	}

	q := url.Values{}
	q.Set("what", term)
	q.Set("results_per_page", strconv.Itoa(a.cfg.ResultsPerPage))
	if where := searchLocation(p); where != "" {
		q.Set("where", where)
	}

	header := http.Header{}
	header.Set("x-rapidapi-key", a.cfg.APIKey)
	header.Set("x-rapidapi-host", a.cfg.Host)

	var resp adzunaResponse
	if err := a.getJSON(ctx, a.cfg.URL, q, header, &resp); err != nil {
		return nil, err
	}

	var records []adzunaRecord
	if err := decodeRecords(resp.Results, &records); err != nil {
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

func (a *Adzuna) normalize(r *adzunaRecord) (jobs.Listing, bool) {
	link := strings.TrimSpace(r.RedirectURL)
	if link == "" {
		return jobs.Listing{}, false
	}

	// Adzuna highlights search terms with markup inside titles.
	title := jobs.PlainText(r.Title)
	description := jobs.PlainText(r.Description)
	location := jobs.CollapseSpace(r.Location.DisplayName)

	return jobs.Listing{
		Source:      jobs.SourceAdzuna,
		ExternalID:  strings.TrimSpace(r.ID),
		Title:       title,
		Company:     jobs.CollapseSpace(r.Company.DisplayName),
		Location:    location,
		Remote:      jobs.DetectRemote(title, location, description),
		Salary:      a.salary.Annualize(r.SalaryMin, r.SalaryMax, a.cfg.Currency, jobs.PeriodYear),
		URL:         link,
		Description: jobs.Snippet(description),
		PostedAt:    strings.TrimSpace(r.Created),
	}, true
}
