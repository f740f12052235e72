// Package fetch executes outbound HTTP requests for the ingestion pipelines.
// Failures are terminal for the calling request: there are no retries
// anywhere, and the short cache TTLs upstream of this package bound the
// retry pressure generated by fresh caller requests.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrTimeout marks a fetch that exceeded its deadline.
	ErrTimeout = errors.New("upstream timeout")

	// ErrUpstream marks a non-2xx or otherwise broken upstream response.
	ErrUpstream = errors.New("upstream error")
)

// StatusError carries the HTTP status of a rejected upstream response so
// callers can branch on specific codes (quota, auth) without re-reading the
// response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d", e.Code)
}

// Do executes req through the circuit breaker and classifies failures.
// A tripped breaker, a transport error and a non-2xx status all surface as
// a single terminal error; the caller never retries.
func Do(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	if client == nil {
		return nil, errors.New("http client not configured")
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %w", ErrUpstream, &StatusError{Code: resp.StatusCode})
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open: %v", ErrUpstream, err)
		}
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if errors.Is(err, ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", ErrUpstream)
	}
	return resp, nil
}

// NewBreaker creates a circuit breaker with the settings shared by all
// upstream clients in this service.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

func isClientTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	var te timeouter
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}
