// Package headhunter is a small client for the public HeadHunter (hh.ru)
// vacancy search API.
package headhunter

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "spigell/job-matcher (spigelly@gmail.com)"
	// One page is all the matcher asks for.
	perPage = "20"
)

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New creates a client. A nil httpClient gets a private one with a 10s timeout.
func New(logger *zap.Logger, httpClient *http.Client) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	return &Client{
		APIURL:     apiURL,
		HTTPClient: httpClient,
		logger:     logger,
		UserAgent:  userAgent,
	}
}

// Search returns the first page of vacancies matching params.
func (c *Client) Search(ctx context.Context, params *SearchParams) (*Vacancies, error) {
	return c.search(ctx, params)
}
