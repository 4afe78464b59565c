package shopify

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected retryClass
	}{
		{"rate limited", &HTTPError{Status: 429}, classRetryExponential},
		{"server error", &HTTPError{Status: 500}, classRetryLinear},
		{"bad gateway", &HTTPError{Status: 502}, classRetryLinear},
		{"unauthorized", &HTTPError{Status: 401}, classFatal},
		{"not found", &HTTPError{Status: 404}, classFatal},
		{"wrapped http error", fmt.Errorf("get cart: %w", &HTTPError{Status: 429}), classRetryExponential},
		{"breaker open", gobreaker.ErrOpenState, classFatal},
		{"breaker half open", gobreaker.ErrTooManyRequests, classFatal},
		{"caller canceled", context.Canceled, classFatal},
		{"graphql error", &GraphQLError{Messages: []string{"bad query"}}, classFatal},
		{"attempt timeout", context.DeadlineExceeded, classRetryLinear},
		{"network error", &url.Error{Op: "Post", URL: "https://example.com", Err: fmt.Errorf("connection refused")}, classRetryLinear},
		{"unknown error", fmt.Errorf("something else"), classFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify(tt.err))
		})
	}
}

func TestDelay_ExponentialDoubles(t *testing.T) {
	p := Policy{BaseDelay: time.Second}

	first := p.delay(classRetryExponential, 1)
	second := p.delay(classRetryExponential, 2)

	assert.Equal(t, 2*time.Second, first)
	assert.Equal(t, 4*time.Second, second)
	assert.Greater(t, second, first)
}

func TestDelay_LinearGrows(t *testing.T) {
	p := Policy{BaseDelay: time.Second}

	assert.Equal(t, time.Second, p.delay(classRetryLinear, 1))
	assert.Equal(t, 2*time.Second, p.delay(classRetryLinear, 2))
}

func TestSleep_CanceledContext(t *testing.T) {
	p := Policy{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
