package providers

import (
	"context"
	"strconv"
	"strings"

	"github.com/spigell/job-matcher/internal/headhunter"
	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

const headhunterCurrency = "RUB"

// HeadHunterConfig configures the HeadHunter adapter.
type HeadHunterConfig struct {
	URL       string
	UserAgent string
	PerPage   int
	Areas     []int
}

// HeadHunter queries the public hh.ru vacancy search. Salaries there are monthly.
type HeadHunter struct {
	client
	cfg HeadHunterConfig
	api *headhunter.Client
}

var _ Adapter = (*HeadHunter)(nil)

func NewHeadHunter(cfg HeadHunterConfig, opts Options) *HeadHunter {
	c := newClient(jobs.SourceHeadHunter, opts)

	api := headhunter.New(c.logger, c.http)
	if cfg.URL != "" {
		api.APIURL = strings.TrimRight(cfg.URL, "/")
	}
	if cfg.UserAgent != "" {
		api.UserAgent = cfg.UserAgent
	}

	return &HeadHunter{client: c, cfg: cfg, api: api}
}

// Fetch implements Adapter.
func (a *HeadHunter) Fetch(ctx context.Context, p *profile.Profile) Outcome {
	return a.run(ctx, func(ctx context.Context) ([]jobs.Listing, error) {
		return a.fetch(ctx, p)
	})
}

func (a *HeadHunter) fetch(ctx context.Context, p *profile.Profile) ([]jobs.Listing, error) {
	params := a.params(p)

	var vacancies *headhunter.Vacancies
	err := a.attempt(ctx, func(ctx context.Context) error {
		var err error
		vacancies, err = a.api.Search(ctx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	listings := make([]jobs.Listing, 0, vacancies.Len())
	for _, vacancy := range vacancies.Items {
		if listing, ok := a.normalize(vacancy); ok {
			listings = append(listings, listing)
		}
	}

	return listings, nil
}

func (a *HeadHunter) params(p *profile.Profile) *headhunter.SearchParams {
	text := searchTerm(p)
	if text == "" {
		text = fallbackRole
	}

	params := &headhunter.SearchParams{
		Text:    text,
		Areas:   a.cfg.Areas,
		OrderBy: "relevance",
	}
	if a.cfg.PerPage > 0 {
		params.PerPage = strconv.Itoa(a.cfg.PerPage)
	}
	if p != nil {
		params.Experience = headhunter.ExperienceFor(p.ExperienceYears)
		if p.RemotePreference {
			params.Schedules = []string{headhunter.ScheduleRemote}
		}
	}

	return params
}

func (a *HeadHunter) normalize(v *headhunter.Vacancy) (jobs.Listing, bool) {
	if v == nil {
		return jobs.Listing{}, false
	}
	link := strings.TrimSpace(v.AlternateURL)
	if link == "" {
		return jobs.Listing{}, false
	}

	title := jobs.CollapseSpace(v.Name)
	location := jobs.CollapseSpace(v.Area.Name)
	// Snippets carry <highlighttext> markup around matched words.
	description := jobs.PlainText(v.Summary())

	currency := v.Salary.Currency
	if strings.TrimSpace(currency) == "" {
		currency = headhunterCurrency
	}

	return jobs.Listing{
		Source:      jobs.SourceHeadHunter,
		ExternalID:  strings.TrimSpace(v.ID),
		Title:       title,
		Company:     jobs.CollapseSpace(v.Employer.Name),
		Location:    location,
		Remote:      v.Remote() || jobs.DetectRemote(title, location),
		Salary:      a.salary.Annualize(v.Salary.From, v.Salary.To, currency, jobs.PeriodMonth),
		URL:         link,
		Description: jobs.Snippet(description),
		PostedAt:    strings.TrimSpace(v.PublishedAt),
	}, true
}
