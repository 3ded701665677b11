package providers

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/utils"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 1
	retryBackoff      = 250 * time.Millisecond
	maxBodyBytes      = 8 << 20
	userAgent         = "spigell/job-matcher"
)

var wait = utils.WaitFor

// Options holds the settings every adapter shares.
type Options struct {
	// Timeout bounds a single Fetch, retries included.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a transport error.
	MaxRetries int
	// Rate is the allowed requests per second; zero disables limiting.
	Rate       float64
	HTTPClient *http.Client
	Salary     *jobs.SalaryNormalizer
	Logger     *zap.Logger
}

// client is the HTTP plumbing embedded by every adapter.
type client struct {
	source     jobs.Source
	http       *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	maxRetries int
	salary     *jobs.SalaryNormalizer
	logger     *zap.Logger
}

func newClient(source jobs.Source, opts Options) client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var limiter *rate.Limiter
	if opts.Rate > 0 {
		burst := int(opts.Rate)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}

	salary := opts.Salary
	if salary == nil {
		salary = jobs.NewSalaryNormalizer(jobs.DefaultCurrency, nil)
	}

	return client{
		source:     source,
		http:       httpClient,
		limiter:    limiter,
		timeout:    timeout,
		maxRetries: retries,
		salary:     salary,
		logger:     logger.WithProvider(opts.Logger, string(source)),
	}
}

// Source implements Adapter.
func (c *client) Source() jobs.Source {
	return c.source
}

// run executes one fetch under the per-call timeout and converts its result
// into an Outcome.
func (c *client) run(ctx context.Context, fetch func(ctx context.Context) ([]jobs.Listing, error)) Outcome {
	started := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	listings, err := fetch(callCtx)
	took := time.Since(started)

	if err != nil {
		// The caller giving up is a cancellation even when it surfaces as our own timeout.
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", context.Canceled, err)
		}
		outcome := Failed(c.source, err)
		metrics.ObserveProvider(string(c.source), string(outcome.ErrorKind), 0, took)
		c.logger.Warn("provider request failed",
			zap.String("kind", string(outcome.ErrorKind)),
			zap.Duration("took", took),
			zap.Error(err),
		)
		return outcome
	}

	metrics.ObserveProvider(string(c.source), metrics.StatusOK, len(listings), took)
	c.logger.Info("provider request finished",
		zap.Int("listings", len(listings)),
		zap.Duration("took", took),
	)

	return Succeeded(c.source, listings)
}

// attempt calls do, waiting on the rate limiter before each try and retrying
// transport errors while the context allows it.
func (c *client) attempt(ctx context.Context, do func(ctx context.Context) error) error {
	var err error
	for try := 0; try <= c.maxRetries; try++ {
		if try > 0 {
			if werr := wait(ctx, time.Duration(try)*retryBackoff); werr != nil {
				return err
			}
		}

		if c.limiter != nil {
			if lerr := c.limiter.Wait(ctx); lerr != nil {
				if err != nil {
					return err
				}
				return fmt.Errorf("rate limiter: %w", lerr)
			}
		}

		err = do(ctx)
		if err == nil || !retryable(ctx, err) {
			return err
		}

		c.logger.Debug("transient provider error", zap.Int("try", try+1), zap.Error(err))
	}

	return err
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch Classify(err) {
	case KindTransport, KindTimeout:
		return !errors.Is(err, context.DeadlineExceeded)
	default:
		return false
	}
}

// getJSON performs a GET request and decodes the JSON body into target.
func (c *client) getJSON(ctx context.Context, endpoint string, query url.Values, header http.Header, target any) error {
	return c.attempt(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		if len(query) > 0 {
			req.URL.RawQuery = query.Encode()
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "gzip")
		req.Header.Set("User-Agent", userAgent)
		for key, values := range header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}

		c.logger.Debug("make request", zap.String("url", req.URL.Redacted()))

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			return &StatusError{Code: resp.StatusCode, Status: resp.Status}
		}

		var body io.Reader = resp.Body
		if resp.Header.Get("Content-Encoding") == "gzip" {
			gzipReader, err := gzip.NewReader(resp.Body)
			if err != nil {
				return &PayloadError{Err: err}
			}
			defer gzipReader.Close()
			body = gzipReader
		}

		if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(target); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &PayloadError{Err: err}
		}

		return nil
	})
}

// decodeRecords converts loosely typed JSON records into typed structs.
// Providers disagree on whether numbers arrive as strings, so the decoding is weak.
func decodeRecords(items []any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(items); err != nil {
		return &PayloadError{Err: err}
	}

	return nil
}
