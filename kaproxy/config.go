package kaproxy

import (
	"net/url"
	"strings"
	"time"

	"github.com/kbukum/kaproxy-go/errors"
	"github.com/kbukum/kaproxy-go/transport"
	"github.com/kbukum/kaproxy-go/validation"
)

// Config configures a Client loaded from a config file or environment.
type Config struct {
	// Address is the proxy base URL, e.g. "http://127.0.0.1:8080". A missing
	// scheme defaults to http.
	Address string `yaml:"address" mapstructure:"address" validate:"required"`
	// Token is the secret granting access to the proxy's groups and topics.
	Token string `yaml:"token" mapstructure:"token"`
	// ConnectTimeout bounds connection establishment. Defaults to 1500ms.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"gte=0"`
	// StrictStatus fails calls on 4xx/5xx statuses other than 404 as
	// transport errors instead of reading the proxy's error body.
	StrictStatus bool `yaml:"strict_status" mapstructure:"strict_status"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	c.Address = strings.TrimSpace(c.Address)
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = transport.DefaultConnectTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	_, err := normalizeAddress(c.Address)
	return err
}

// normalizeAddress prepends http:// when the address has no scheme and
// checks that a host is present.
func normalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", errors.InvalidConfig("address: is required")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", errors.InvalidConfig("address: " + err.Error()).WithCause(err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.InvalidConfig("address: scheme must be http or https")
	}
	if u.Host == "" {
		return "", errors.InvalidConfig("address: missing host")
	}
	return strings.TrimRight(addr, "/"), nil
}
