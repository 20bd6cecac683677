package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/kaproxy-go/logger"
)

// Adapter performs one HTTP exchange per call over a lazily created,
// reusable connection handle.
type Adapter struct {
	config Config
	policy FailurePolicy
	log    *logger.Logger

	mu         sync.Mutex
	httpClient *http.Client
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithFailurePolicy replaces the DefaultPolicy.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(a *Adapter) {
		if p != nil {
			a.policy = p
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates a new adapter. No connection is established until the first
// Execute call.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		config: cfg,
		policy: DefaultPolicy{},
		log:    logger.WithComponent("kaproxy.transport"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Execute sends one request and returns the literal status code and full
// body. A failure classified by the policy resets the connection handle.
func (a *Adapter) Execute(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = a.config.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := a.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := a.acquire().Do(httpReq)
	if err != nil {
		return nil, a.fail(ctx, req, nil, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, a.fail(ctx, req, nil, fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}

	a.log.Debug("proxy exchange", logger.Fields(
		"method", req.Method,
		"path", req.Path,
		logger.FieldStatusCode, result.StatusCode,
		logger.FieldRequestID, result.RequestID(),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))

	if classErr := a.policy.Classify(ctx, result, nil); classErr != nil {
		a.reset()
		return result, classErr
	}
	return result, nil
}

// Close releases the connection handle. The adapter stays usable: the next
// Execute establishes a new handle.
func (a *Adapter) Close() error {
	a.reset()
	return nil
}

// Connected reports whether a connection handle is currently held.
func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.httpClient != nil
}

// GetConfig returns the adapter's configuration.
func (a *Adapter) GetConfig() Config {
	return a.config
}

// fail classifies an exchange error, resets the handle, and returns the
// classified error.
func (a *Adapter) fail(ctx context.Context, req Request, resp *Response, err error) error {
	redactURL(err)
	classErr := a.policy.Classify(ctx, resp, err)
	if classErr == nil {
		classErr = NewConnectionError(err)
	}
	a.reset()
	a.log.Warn("proxy exchange failed, connection reset", logger.Fields(
		"method", req.Method,
		"path", req.Path,
		"code", classErr.Code.String(),
		logger.FieldError, err.Error(),
	))
	return classErr
}

// redactURL strips the query from a *url.Error so credentials carried as
// query parameters never reach error messages or logs.
func redactURL(err error) {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return
	}
	if u, perr := url.Parse(ue.URL); perr == nil {
		u.RawQuery = ""
		u.User = nil
		ue.URL = u.String()
	} else {
		ue.URL = ""
	}
}

// acquire returns the current handle, creating it if absent.
func (a *Adapter) acquire() *http.Client {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.httpClient == nil {
		a.httpClient = a.newHTTPClient()
	}
	return a.httpClient
}

// reset drops the current handle and closes its idle connections.
func (a *Adapter) reset() {
	a.mu.Lock()
	c := a.httpClient
	a.httpClient = nil
	a.mu.Unlock()
	if c != nil {
		c.CloseIdleConnections()
	}
}

func (a *Adapter) newHTTPClient() *http.Client {
	rt := http.DefaultTransport.(*http.Transport).Clone()
	rt.DialContext = (&net.Dialer{
		Timeout:   a.config.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	if a.config.TLS != nil {
		rt.TLSClientConfig = a.config.TLS.Clone()
	}
	// The request context carries the overall deadline.
	return &http.Client{Transport: rt}
}

// buildRequest constructs an *http.Request from the adapter config and request.
func (a *Adapter) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := strings.TrimRight(a.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewRequestError(fmt.Sprintf("encode body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, NewRequestError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	a.config.Auth.apply(httpReq)

	return httpReq, nil
}

// encodeBody converts a body value into an io.Reader and content type.
// Empty bodies are not sent.
func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case url.Values:
		if len(v) == 0 {
			return nil, "", nil
		}
		return strings.NewReader(v.Encode()), "application/x-www-form-urlencoded", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		if len(v) == 0 {
			return nil, "", nil
		}
		return bytes.NewReader(v), "", nil
	case string:
		if v == "" {
			return nil, "", nil
		}
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
