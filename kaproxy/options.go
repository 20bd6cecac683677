package kaproxy

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/kbukum/kaproxy-go/logger"
	"github.com/kbukum/kaproxy-go/observability"
	"github.com/kbukum/kaproxy-go/transport"
)

// Transport performs one HTTP exchange against the proxy. *transport.Adapter
// is the default implementation.
type Transport interface {
	Execute(ctx context.Context, req transport.Request) (*transport.Response, error)
	Close() error
}

type options struct {
	log            *logger.Logger
	metrics        *observability.Metrics
	transport      Transport
	policy         transport.FailurePolicy
	connectTimeout time.Duration
	tls            *tls.Config
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the client logger. Defaults to the global logger under
// component "kaproxy".
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records call metrics. Metrics are skipped when unset.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTransport replaces the HTTP transport. The client then neither sets
// the token header nor the connect timeout; the transport owns both.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithFailurePolicy decides which exchange outcomes are transport failures.
func WithFailurePolicy(p transport.FailurePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithConnectTimeout bounds connection establishment. Defaults to 1500ms.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connectTimeout = d }
}

// WithTLSConfig sets a pre-built TLS configuration used for https proxies.
// Nil keeps the system defaults.
func WithTLSConfig(c *tls.Config) Option {
	return func(o *options) { o.tls = c }
}
