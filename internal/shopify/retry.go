package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrCartNotFound is returned when the remote system reports no cart for
// an identifier. An expired cart is a normal lifecycle outcome, not a
// transport failure, so callers match on this sentinel.
var ErrCartNotFound = errors.New("cart not found")

// HTTPError is a non-2xx response from the Storefront endpoint.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("shopify api error: status %d", e.Status)
}

// UserError is a domain-level failure the remote system attaches to an
// otherwise successful mutation (invalid password, sold-out variant).
// It carries the first user-facing message and is never retried.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// GraphQLError is a query-level error in a 200 response.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql errors: %v", e.Messages)
}

// retryClass decides how a failed attempt is handled.
type retryClass int

const (
	classFatal retryClass = iota
	classRetryLinear
	classRetryExponential
)

// Policy is the retry configuration shared by every Gateway operation:
// attempt ceiling, per-attempt timeout, and backoff shape per error class.
// Sleep is a seam for tests; nil means a real timer.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
	Sleep          func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		AttemptTimeout: 10 * time.Second,
	}
}

// classify maps an attempt error to its retry class:
// 429 backs off exponentially, 5xx linearly, any other HTTP status is
// fatal. Network-class failures and attempt timeouts back off linearly.
// GraphQL errors, a canceled caller, and an open breaker are fatal.
func classify(err error) retryClass {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.Status == 429:
			return classRetryExponential
		case httpErr.Status >= 500:
			return classRetryLinear
		default:
			return classFatal
		}
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return classFatal
	}
	if errors.Is(err, context.Canceled) {
		return classFatal
	}
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		return classFatal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return classRetryLinear
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return classRetryLinear
	}
	return classFatal
}

// delay returns the backoff before the next attempt. attempt is 1-based,
// so exponential waits double from 2·base and linear grows from 1·base.
func (p Policy) delay(class retryClass, attempt int) time.Duration {
	if class == classRetryExponential {
		return p.BaseDelay * time.Duration(1<<attempt)
	}
	return p.BaseDelay * time.Duration(attempt)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
