package transport

import "time"

// Request describes one outbound exchange with the proxy.
type Request struct {
	// Method is the HTTP method (GET, POST, ...).
	Method string
	// Path is appended to the adapter's BaseURL with a single separating slash.
	Path string
	// Headers are request-specific headers (merged with adapter defaults).
	Headers map[string]string
	// Query are URL query parameters. Omitted from the URL when empty.
	Query map[string]string
	// Body is the request body. Accepts url.Values (form encoded), io.Reader,
	// []byte, string, or any value that will be JSON-encoded. Nil sends no body.
	Body any
	// Timeout bounds the whole exchange. Zero uses the adapter default.
	Timeout time.Duration
}

// Response is the raw result of an exchange.
type Response struct {
	// StatusCode is the literal HTTP status code.
	StatusCode int
	// Headers are the response headers, canonicalized and single-valued.
	Headers map[string]string
	// Body is the full response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// RequestID returns the X-Request-Id header set by the proxy, if any.
func (r *Response) RequestID() string {
	return r.Headers["X-Request-Id"]
}
