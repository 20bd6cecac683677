package kaproxytest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/kbukum/kaproxy-go/component"
	"github.com/kbukum/kaproxy-go/logger"
	"github.com/kbukum/kaproxy-go/server"
	"github.com/kbukum/kaproxy-go/server/middleware"
)

// NoMessageError is the error text older proxies return instead of 204.
const NoMessageError = "No message in broker"

// Config configures a fake proxy.
type Config struct {
	Server server.Config `yaml:"server" mapstructure:"server"`
	// Tokens lists the accepted tokens. Empty accepts any request.
	Tokens []string `yaml:"tokens" mapstructure:"tokens"`
	// Partitions per topic. Defaults to 4.
	Partitions int `yaml:"partitions" mapstructure:"partitions" validate:"gte=0"`
	// Topics restricts the known topics; others answer 404. Empty accepts
	// every topic.
	Topics []string `yaml:"topics" mapstructure:"topics"`
	// EmptyAsError answers an empty consume with 200 and NoMessageError
	// instead of 204.
	EmptyAsError bool `yaml:"empty_as_error" mapstructure:"empty_as_error"`
	// LegacyFields capitalizes produce response keys.
	LegacyFields bool `yaml:"legacy_fields" mapstructure:"legacy_fields"`
	// Base64Values sends consumed values base64 encoded.
	Base64Values bool `yaml:"base64_values" mapstructure:"base64_values"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Partitions == 0 {
		c.Partitions = 4
	}
	c.Server.ApplyDefaults()
}

// Option customizes a Proxy.
type Option func(*Config)

// WithTokens sets the accepted tokens.
func WithTokens(tokens ...string) Option {
	return func(c *Config) { c.Tokens = tokens }
}

// WithPartitions sets the number of partitions per topic.
func WithPartitions(n int) Option {
	return func(c *Config) { c.Partitions = n }
}

// WithTopics restricts the known topics.
func WithTopics(topics ...string) Option {
	return func(c *Config) { c.Topics = topics }
}

// WithEmptyAsError reports an empty consume as a NoMessageError body.
func WithEmptyAsError() Option {
	return func(c *Config) { c.EmptyAsError = true }
}

// WithLegacyFields capitalizes produce response keys.
func WithLegacyFields() Option {
	return func(c *Config) { c.LegacyFields = true }
}

// WithBase64Values base64-encodes consumed values.
func WithBase64Values() Option {
	return func(c *Config) { c.Base64Values = true }
}

// WithServerConfig sets the listen configuration.
func WithServerConfig(cfg server.Config) Option {
	return func(c *Config) { c.Server = cfg }
}

type injectedFailure struct {
	status  int
	message string
}

// Proxy is a running fake proxy. It implements component.Component.
type Proxy struct {
	cfg    Config
	broker *Broker
	srv    *server.Server
	log    *logger.Logger
	topics map[string]bool

	mu      sync.Mutex
	failure *injectedFailure
}

var (
	_ component.Component   = (*Proxy)(nil)
	_ component.Describable = (*Proxy)(nil)
)

// New creates a fake proxy from cfg. Call Start to serve it.
func New(cfg Config, log *logger.Logger) *Proxy {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	p := &Proxy{
		cfg:    cfg,
		broker: NewBroker(cfg.Partitions),
		srv:    server.New(cfg.Server, log),
		log:    log.WithComponent("kaproxy-fake"),
	}
	if len(cfg.Topics) > 0 {
		p.topics = make(map[string]bool, len(cfg.Topics))
		for _, t := range cfg.Topics {
			p.topics[t] = true
		}
	}

	p.srv.ApplyDefaults("kaproxy-fake", func(ctx context.Context) []component.Health {
		return []component.Health{p.Health(ctx)}
	})
	p.routes()
	return p
}

// NewTestProxy starts a fake proxy on an ephemeral port and stops it when
// the test ends.
func NewTestProxy(tb testing.TB, opts ...Option) *Proxy {
	tb.Helper()
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.Server.Port = 0

	p := New(cfg, logger.Nop())
	if err := p.Start(context.Background()); err != nil {
		tb.Fatalf("kaproxytest: start: %v", err)
	}
	tb.Cleanup(func() { _ = p.Stop(context.Background()) })
	return p
}

func (p *Proxy) routes() {
	engine := p.srv.GinEngine()
	engine.UseRawPath = true
	engine.UnescapePathValues = true

	api := engine.Group("/")
	api.Use(middleware.Auth(middleware.AuthConfig{
		Tokens:     p.cfg.Tokens,
		QueryParam: "token",
	}))
	api.Use(p.injectFailure)
	api.POST("/topic/:topic", p.handleProduce)
	api.GET("/group/:group/topic/:topic", p.handleConsume)
}

// Name implements component.Component.
func (p *Proxy) Name() string { return "kaproxy-fake" }

// Start binds the listener and serves in the background.
func (p *Proxy) Start(ctx context.Context) error {
	return p.srv.Start(ctx)
}

// Stop shuts the server down.
func (p *Proxy) Stop(ctx context.Context) error {
	return p.srv.Stop(ctx)
}

// Health reports healthy while the proxy is listening.
func (p *Proxy) Health(ctx context.Context) component.Health {
	h := component.Health{Name: p.Name(), Status: component.StatusHealthy}
	if !p.srv.Listening() {
		h.Status = component.StatusUnhealthy
		h.Message = "not listening"
	}
	return h
}

// Describe implements component.Describable.
func (p *Proxy) Describe() component.Description {
	return component.Description{
		Name:    "kaproxy fake",
		Type:    "server",
		Details: fmt.Sprintf("%s partitions=%d", p.URL(), p.cfg.Partitions),
	}
}

// URL returns the proxy base URL.
func (p *Proxy) URL() string {
	return p.srv.URL()
}

// Broker returns the backing broker for seeding and inspection.
func (p *Proxy) Broker() *Broker {
	return p.broker
}

// FailNext makes the next produce or consume request answer status with
// {"error": message}.
func (p *Proxy) FailNext(status int, message string) {
	p.mu.Lock()
	p.failure = &injectedFailure{status: status, message: message}
	p.mu.Unlock()
}

func (p *Proxy) takeFailure() *injectedFailure {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.failure
	p.failure = nil
	return f
}
