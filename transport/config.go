package transport

import (
	"crypto/tls"
	"time"

	"github.com/kbukum/kaproxy-go/validation"
)

const (
	// DefaultConnectTimeout bounds connection establishment regardless of the
	// request deadline.
	DefaultConnectTimeout = 1500 * time.Millisecond
	defaultTimeout        = 30 * time.Second
)

// Config configures the transport adapter.
type Config struct {
	// Name identifies the adapter in logs.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the proxy address every request path is appended to.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// ConnectTimeout bounds TCP connection establishment. Defaults to 1500ms.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`

	// Timeout is used for requests that do not carry their own. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth configures authentication applied to all requests.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// TLS configures https connections. Nil uses the system defaults.
	TLS *tls.Config `yaml:"-" mapstructure:"-"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "kaproxy"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return validation.New().
		Required("base_url", c.BaseURL).
		MinDuration("connect_timeout", c.ConnectTimeout, time.Millisecond).
		MinDuration("timeout", c.Timeout, time.Millisecond).
		Validate()
}
