// Package retry provides bounded retry with exponential backoff for
// outbound network calls. The same policy is applied at every boundary
// where the process leaves its own address space: the document source,
// delegate agent invocations, and the notification sink.
package retry

import (
	"bytes"
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// Policy parameterizes the retry behavior of a wrapped call.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// BackoffBase is the multiplier applied to the delay after each
	// failed attempt.
	BackoffBase float64

	// RetryableStatuses is the set of HTTP status codes that are
	// considered transient. Any other non-2xx status fails immediately.
	RetryableStatuses map[int]bool
}

// DefaultPolicy returns the retry policy used across the service:
// 5 attempts, 1s initial delay, base-2 exponential backoff, retrying on
// 429, 500, 503 and 504.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		BackoffBase:  2,
		RetryableStatuses: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
}

// delay returns the backoff delay before retry attempt n (0-indexed over
// retries, so n=0 is the delay after the first failure).
func (p Policy) delay(n int) time.Duration {
	base := p.BackoffBase
	if base <= 0 {
		base = 2
	}
	d := float64(p.InitialDelay) * math.Pow(base, float64(n))
	return time.Duration(d)
}

// normalized returns the policy with zero values replaced by sane minimums.
func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 1 * time.Second
	}
	return p
}

// Do invokes fn until it succeeds, the attempt budget is exhausted, or the
// context is done. fn reports whether its failure is transient; permanent
// failures are returned without further attempts.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) (transient bool, err error)) error {
	policy = policy.normalized()

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(policy.delay(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		transient, err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !transient {
			return err
		}
	}
	return lastErr
}

// Transport is an http.RoundTripper that retries requests whose responses
// carry a transient status code. Transport errors (connection refused,
// timeout) are also retried within the attempt budget.
type Transport struct {
	next   http.RoundTripper
	policy Policy
}

// NewTransport wraps next with retry behavior. A nil next uses
// http.DefaultTransport.
func NewTransport(next http.RoundTripper, policy Policy) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{next: next, policy: policy.normalized()}
}

// RoundTrip implements http.RoundTripper. The request body, if any, is
// buffered once so it can be replayed on each attempt.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	var (
		resp    *http.Response
		lastErr error
	)

	for attempt := 0; attempt < t.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(t.policy.delay(attempt - 1))
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}
		}

		attemptReq := req.Clone(req.Context())
		if body != nil {
			attemptReq.Body = io.NopCloser(bytes.NewReader(body))
			attemptReq.ContentLength = int64(len(body))
		}

		resp, lastErr = t.next.RoundTrip(attemptReq)
		if lastErr != nil {
			continue
		}

		if !t.policy.RetryableStatuses[resp.StatusCode] {
			return resp, nil
		}

		// Budget exhausted: surface the transient response to the caller.
		if attempt == t.policy.MaxAttempts-1 {
			return resp, nil
		}

		// Transient status: drain and close so the connection can be
		// reused, then retry.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	return nil, lastErr
}
