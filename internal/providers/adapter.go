// Package providers turns external job boards into a uniform stream of
// jobs.Listing values. Every adapter reports its result as an Outcome and
// never returns an error to its caller.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

// Adapter queries one provider for the given profile.
type Adapter interface {
	Source() jobs.Source
	Fetch(ctx context.Context, p *profile.Profile) Outcome
}

// ErrorKind classifies why a provider call produced no listings.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindMissingCredentials ErrorKind = "missing_credentials"
	KindTimeout            ErrorKind = "timeout"
	KindCancelled          ErrorKind = "cancelled"
	KindAuth               ErrorKind = "auth"
	KindRateLimited        ErrorKind = "rate_limited"
	KindBadStatus          ErrorKind = "bad_status"
	KindBadPayload         ErrorKind = "bad_payload"
	KindTransport          ErrorKind = "transport"
	KindInternal           ErrorKind = "internal"
)

var (
	// ErrMissingCredentials is reported when a provider needs an API key that is not configured.
	ErrMissingCredentials = errors.New("provider credentials are not configured")
	// ErrPanic wraps a recovered adapter panic.
	ErrPanic = errors.New("provider adapter panicked")
)

// Outcome is the result of one adapter call.
type Outcome struct {
	Source    jobs.Source
	Success   bool
	Listings  []jobs.Listing
	ErrorKind ErrorKind
	Err       error
}

// Succeeded builds a successful outcome. An empty listing set is still a success.
func Succeeded(source jobs.Source, listings []jobs.Listing) Outcome {
	if listings == nil {
		listings = []jobs.Listing{}
	}
	return Outcome{Source: source, Success: true, Listings: listings}
}

// Failed builds a failed outcome with a classified error kind.
func Failed(source jobs.Source, err error) Outcome {
	return Outcome{Source: source, ErrorKind: Classify(err), Err: err}
}

// Cancelled builds the outcome of an adapter abandoned at the request deadline.
func Cancelled(source jobs.Source) Outcome {
	return Outcome{Source: source, ErrorKind: KindCancelled, Err: context.Canceled}
}

// Panicked builds the outcome of an adapter that panicked.
func Panicked(source jobs.Source, recovered any) Outcome {
	return Outcome{
		Source:    source,
		ErrorKind: KindInternal,
		Err:       fmt.Errorf("%w: %v", ErrPanic, recovered),
	}
}

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

// StatusCode returns the HTTP status code.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// PayloadError is returned when a response body cannot be decoded.
type PayloadError struct {
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("malformed payload: %v", e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

type statusCoder interface {
	StatusCode() int
}

// Classify maps an adapter error onto an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		status  statusCoder
		payload *PayloadError
		syntax  *json.SyntaxError
		typeErr *json.UnmarshalTypeError
		netErr  net.Error
		decode  *mapstructure.Error
	)

	switch {
	case errors.Is(err, ErrMissingCredentials):
		return KindMissingCredentials
	case errors.Is(err, ErrPanic):
		return KindInternal
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &status):
		switch status.StatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuth
		case http.StatusTooManyRequests:
			return KindRateLimited
		default:
			return KindBadStatus
		}
	case errors.As(err, &payload), errors.As(err, &syntax), errors.As(err, &typeErr), errors.As(err, &decode):
		return KindBadPayload
	case errors.As(err, &netErr) && netErr.Timeout():
		return KindTimeout
	default:
		return KindTransport
	}
}
