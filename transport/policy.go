package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// FailurePolicy decides which exchange outcomes are transport failures.
//
// Classify receives the outcome of one exchange: either a response (err is
// nil) or the error returned by the HTTP client (resp is nil). A non-nil
// result aborts the call and resets the adapter's connection handle.
type FailurePolicy interface {
	Classify(ctx context.Context, resp *Response, err error) *Error
}

// FailurePolicyFunc adapts a function to FailurePolicy.
type FailurePolicyFunc func(ctx context.Context, resp *Response, err error) *Error

// Classify implements FailurePolicy.
func (f FailurePolicyFunc) Classify(ctx context.Context, resp *Response, err error) *Error {
	return f(ctx, resp, err)
}

// DefaultPolicy fails on every exchange error and passes every HTTP status
// through to the caller, including 404.
type DefaultPolicy struct{}

// Classify implements FailurePolicy.
func (DefaultPolicy) Classify(ctx context.Context, _ *Response, err error) *Error {
	if err == nil {
		return nil
	}
	return classifyExchangeError(ctx, err)
}

// StrictPolicy additionally fails on 4xx/5xx statuses, except 404 which is
// still passed through so callers can read the proxy's error body.
type StrictPolicy struct{}

// Classify implements FailurePolicy.
func (StrictPolicy) Classify(ctx context.Context, resp *Response, err error) *Error {
	if err != nil {
		return classifyExchangeError(ctx, err)
	}
	if resp == nil || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return ClassifyStatusCode(resp.StatusCode, resp.Body)
}

func classifyExchangeError(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}
