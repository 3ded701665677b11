package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

func testOptions() Options {
	return Options{
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		Salary:     jobs.NewSalaryNormalizer("USD", map[string]float64{"EUR": 1.1, "RUB": 0.01}),
		Logger:     zap.NewNop(),
	}
}

func goProfile() *profile.Profile {
	p := profile.New()
	p.AddRole("Backend Engineer")
	p.AddSkill("Go")
	p.AddSkill("Kubernetes")
	p.Location = "Berlin"
	return p
}

func jsonHandler(t *testing.T, body string, check func(r *http.Request)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestAdzunaFetch(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, `{
		"results": [
			{
				"id": 4242,
				"title": "<strong>Backend</strong> Engineer",
				"company": {"display_name": "Acme"},
				"location": {"display_name": "Berlin, Germany"},
				"description": "Go services, remote friendly",
				"redirect_url": "https://adzuna.example/4242",
				"salary_min": 90000,
				"salary_max": 120000,
				"created": "2025-01-02T00:00:00Z"
			},
			{"id": "7", "title": "No link", "redirect_url": ""}
		]
	}`, func(r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "adzuna.test", r.Header.Get("x-rapidapi-host"))
		assert.Equal(t, "Backend Engineer", r.URL.Query().Get("what"))
		assert.Equal(t, "Berlin", r.URL.Query().Get("where"))
		assert.Equal(t, "20", r.URL.Query().Get("results_per_page"))
	}))
	defer server.Close()

	adapter := NewAdzuna(AdzunaConfig{APIKey: "secret", URL: server.URL, Host: "adzuna.test"}, testOptions())
	outcome := adapter.Fetch(context.Background(), goProfile())

	require.True(t, outcome.Success, outcome.Err)
	assert.Equal(t, jobs.SourceAdzuna, outcome.Source)
	require.Len(t, outcome.Listings, 1)

	listing := outcome.Listings[0]
	assert.Equal(t, "4242", listing.ExternalID)
	assert.Equal(t, "Backend Engineer", listing.Title)
	assert.Equal(t, "Acme", listing.Company)
	assert.True(t, listing.Remote)
	require.NotNil(t, listing.Salary)
	assert.Equal(t, float64(120000), *listing.Salary)
}

func TestAdzunaMissingCredentials(t *testing.T) {
	adapter := NewAdzuna(AdzunaConfig{}, testOptions())
	outcome := adapter.Fetch(context.Background(), goProfile())

	assert.False(t, outcome.Success)
	assert.Equal(t, KindMissingCredentials, outcome.ErrorKind)
}

func TestAdzunaEmptyProfileSearchesFallbackRole(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, `{"results": []}`, func(r *http.Request) {
		assert.Equal(t, fallbackRole, r.URL.Query().Get("what"))
		assert.Empty(t, r.URL.Query().Get("where"))
	}))
	defer server.Close()

	adapter := NewAdzuna(AdzunaConfig{APIKey: "secret", URL: server.URL}, testOptions())
	outcome := adapter.Fetch(context.Background(), profile.New())

	require.True(t, outcome.Success, outcome.Err)
	assert.Equal(t, KindNone, outcome.ErrorKind)
	assert.Empty(t, outcome.Listings)
}

func TestJSearchFetch(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, `{
		"status": "OK",
		"data": [
			{
				"job_id": "js-1",
				"job_title": "Senior Go Developer",
				"employer_name": "Globex",
				"job_city": "Austin",
				"job_state": "TX",
				"job_country": "US",
				"job_description": "Kubernetes and Go",
				"job_apply_link": "",
				"job_google_link": "https://google.example/js-1",
				"job_min_salary": 60,
				"job_max_salary": null,
				"job_salary_currency": "USD",
				"job_salary_period": "HOUR",
				"job_is_remote": false,
				"job_posted_at_datetime_utc": "2025-02-01T00:00:00.000Z"
			},
			{
				"job_id": "js-2",
				"job_title": "Go Engineer (Remote)",
				"employer_name": "Initech",
				"job_apply_link": "https://apply.example/js-2",
				"job_min_salary": "5000",
				"job_salary_currency": "EUR",
				"job_salary_period": "MONTH",
				"job_is_remote": null
			}
		]
	}`, func(r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "Backend Engineer Berlin", r.URL.Query().Get("query"))
		assert.Equal(t, "us", r.URL.Query().Get("country"))
		assert.Equal(t, "month", r.URL.Query().Get("date_posted"))
		assert.Empty(t, r.URL.Query().Get("remote_jobs_only"))
	}))
	defer server.Close()

	adapter := NewJSearch(JSearchConfig{APIKey: "secret", URL: server.URL}, testOptions())
	outcome := adapter.Fetch(context.Background(), goProfile())

	require.True(t, outcome.Success, outcome.Err)
	require.Len(t, outcome.Listings, 2)

	first := outcome.Listings[0]
	assert.Equal(t, "Austin, TX, US", first.Location)
	assert.Equal(t, "https://google.example/js-1", first.URL)
	assert.False(t, first.Remote)
	require.NotNil(t, first.Salary)
	assert.Equal(t, float64(60*2080), *first.Salary)

	second := outcome.Listings[1]
	assert.True(t, second.Remote, "remote derived from the title when the flag is null")
	require.NotNil(t, second.Salary)
	assert.Equal(t, float64(66000), *second.Salary)
}

func TestJSearchRemotePreference(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, `{"data": []}`, func(r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("remote_jobs_only"))
		assert.Equal(t, fallbackRole, r.URL.Query().Get("query"))
	}))
	defer server.Close()

	p := profile.New()
	p.RemotePreference = true
	p.Location = "Remote"

	adapter := NewJSearch(JSearchConfig{APIKey: "secret", URL: server.URL}, testOptions())
	outcome := adapter.Fetch(context.Background(), p)

	require.True(t, outcome.Success)
	assert.NotNil(t, outcome.Listings)
	assert.Empty(t, outcome.Listings)
}

func TestArbeitNowFiltersByTitleKeywords(t *testing.T) {
	entries := make([]map[string]any, 0, 60)
	for i := 0; i < 60; i++ {
		title := fmt.Sprintf("Sales Manager %d", i)
		if i%2 == 0 {
			title = fmt.Sprintf("Go Developer %d", i)
		}
		entries = append(entries, map[string]any{
			"slug":         fmt.Sprintf("job-%d", i),
			"title":        title,
			"company_name": "Board GmbH",
			"location":     "Berlin",
			"description":  "<p>Build <b>services</b></p><p>with us</p>",
			"url":          fmt.Sprintf("https://arbeitnow.example/%d", i),
			"remote":       i == 0,
			"tags":         []string{"go"},
			"created_at":   1735689600,
		})
	}
	body, err := json.Marshal(map[string]any{"data": entries})
	require.NoError(t, err)

	server := httptest.NewServer(jsonHandler(t, string(body), nil))
	defer server.Close()

	adapter := NewArbeitNow(ArbeitNowConfig{URL: server.URL}, testOptions())
	outcome := adapter.Fetch(context.Background(), goProfile())

	require.True(t, outcome.Success, outcome.Err)
	require.Len(t, outcome.Listings, 15)
	for _, listing := range outcome.Listings {
		assert.Contains(t, listing.Title, "Go Developer")
	}

	first := outcome.Listings[0]
	assert.Equal(t, "job-0", first.ExternalID)
	assert.True(t, first.Remote)
	assert.Equal(t, "Build services with us", first.Description)
	assert.Equal(t, "2025-01-01T00:00:00Z", first.PostedAt)
	assert.Nil(t, first.Salary)
}

func TestArbeitNowScanWindow(t *testing.T) {
	entries := make([]map[string]any, 0, 10)
	for i := 0; i < 10; i++ {
		title := "Office Assistant"
		if i >= 5 {
			title = "Go Developer"
		}
		entries = append(entries, map[string]any{"title": title, "url": fmt.Sprintf("https://a.example/%d", i)})
	}
	body, err := json.Marshal(map[string]any{"data": entries})
	require.NoError(t, err)

	server := httptest.NewServer(jsonHandler(t, string(body), nil))
	defer server.Close()

	adapter := NewArbeitNow(ArbeitNowConfig{URL: server.URL, Scan: 5}, testOptions())
	outcome := adapter.Fetch(context.Background(), goProfile())

	require.True(t, outcome.Success)
	assert.Empty(t, outcome.Listings)
}

func TestArbeitNowTrustsExplicitRemoteFlag(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, `{"data": [
		{"slug": "office", "title": "Go Engineer (no remote)", "location": "Remote, Germany", "url": "https://a.example/1", "remote": false},
		{"slug": "home", "title": "Go Engineer", "location": "Berlin", "url": "https://a.example/2", "remote": true}
	]}`, nil))
	defer server.Close()

	outcome := NewArbeitNow(ArbeitNowConfig{URL: server.URL}, testOptions()).Fetch(context.Background(), goProfile())

	require.True(t, outcome.Success, outcome.Err)
	require.Len(t, outcome.Listings, 2)
	assert.False(t, outcome.Listings[0].Remote)
	assert.True(t, outcome.Listings[1].Remote)
}

func TestHeadHunterFetch(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, `{
		"found": 1, "pages": 1, "page": 0, "per_page": 20,
		"items": [{
			"id": "101",
			"name": "Backend Engineer (Go)",
			"area": {"id": "1", "name": "Moscow"},
			"salary": {"from": 250000, "to": 300000, "currency": "RUR"},
			"schedule": {"id": "fullDay"},
			"employer": {"id": "e1", "name": "Yandex"},
			"alternate_url": "https://hh.ru/vacancy/101",
			"snippet": {"requirement": "<highlighttext>Go</highlighttext> experience", "responsibility": null},
			"published_at": "2025-01-02T10:00:00+0300"
		}]
	}`, func(r *http.Request) {
		assert.Equal(t, "/vacancies", r.URL.Path)
		assert.Equal(t, "Backend Engineer", r.URL.Query().Get("text"))
		assert.Equal(t, "between3And6", r.URL.Query().Get("experience"))
	}))
	defer server.Close()

	p := goProfile()
	p.ExperienceYears = 4

	adapter := NewHeadHunter(HeadHunterConfig{URL: server.URL}, testOptions())
	outcome := adapter.Fetch(context.Background(), p)

	require.True(t, outcome.Success, outcome.Err)
	require.Len(t, outcome.Listings, 1)

	listing := outcome.Listings[0]
	assert.Equal(t, jobs.SourceHeadHunter, listing.Source)
	assert.Equal(t, "Go experience", listing.Description)
	assert.False(t, listing.Remote)
	require.NotNil(t, listing.Salary)
	assert.Equal(t, float64(36000), *listing.Salary)
}

func TestFetchStatusErrorsAreClassified(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindBadStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			outcome := NewArbeitNow(ArbeitNowConfig{URL: server.URL}, testOptions()).Fetch(context.Background(), goProfile())
			assert.False(t, outcome.Success)
			assert.Equal(t, tt.kind, outcome.ErrorKind)
		})
	}
}

func TestFetchMalformedPayload(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, `{"data": [`, nil))
	defer server.Close()

	outcome := NewArbeitNow(ArbeitNowConfig{URL: server.URL}, testOptions()).Fetch(context.Background(), goProfile())
	assert.False(t, outcome.Success)
	assert.Equal(t, KindBadPayload, outcome.ErrorKind)
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	opts := testOptions()
	opts.Timeout = 50 * time.Millisecond

	outcome := NewArbeitNow(ArbeitNowConfig{URL: server.URL}, opts).Fetch(context.Background(), goProfile())
	assert.False(t, outcome.Success)
	assert.Equal(t, KindTimeout, outcome.ErrorKind)
}

func TestFetchCancelledByCaller(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	outcome := NewArbeitNow(ArbeitNowConfig{URL: server.URL}, testOptions()).Fetch(ctx, goProfile())
	assert.False(t, outcome.Success)
	assert.Equal(t, KindCancelled, outcome.ErrorKind)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestTransportErrorIsRetriedOnce(t *testing.T) {
	original := wait
	wait = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { wait = original })

	server := httptest.NewServer(jsonHandler(t, `{"data": []}`, nil))
	defer server.Close()

	var calls int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("connection reset by peer")
		}
		return http.DefaultTransport.RoundTrip(r)
	})

	opts := testOptions()
	opts.HTTPClient = &http.Client{Transport: transport}

	outcome := NewArbeitNow(ArbeitNowConfig{URL: server.URL}, opts).Fetch(context.Background(), goProfile())
	require.True(t, outcome.Success, outcome.Err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStatusErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	outcome := NewArbeitNow(ArbeitNowConfig{URL: server.URL}, testOptions()).Fetch(context.Background(), goProfile())
	assert.Equal(t, KindBadStatus, outcome.ErrorKind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNone, Classify(nil))
	assert.Equal(t, KindMissingCredentials, Classify(fmt.Errorf("adzuna: %w", ErrMissingCredentials)))
	assert.Equal(t, KindCancelled, Classify(context.Canceled))
	assert.Equal(t, KindTimeout, Classify(context.DeadlineExceeded))
	assert.Equal(t, KindAuth, Classify(&StatusError{Code: http.StatusUnauthorized}))
	assert.Equal(t, KindBadPayload, Classify(&PayloadError{Err: errors.New("eof")}))
	assert.Equal(t, KindInternal, Panicked(jobs.SourceAdzuna, "boom").ErrorKind)
	assert.Equal(t, KindTransport, Classify(errors.New("dial tcp: connection refused")))
}
