package server

import (
	"time"

	"github.com/kbukum/kaproxy-go/validation"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	// Port 0 binds an ephemeral port; see Server.Addr for the bound address.
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// ApplyDefaults sets default values for unset fields. WriteTimeout must stay
// above the longest blocking timeout served.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.New().
		Custom(c.Port >= 0 && c.Port <= 65535, "server.port", "must be between 0 and 65535").
		MinDuration("server.read_timeout", c.ReadTimeout, 0).
		MinDuration("server.write_timeout", c.WriteTimeout, 0).
		MinDuration("server.idle_timeout", c.IdleTimeout, 0).
		Validate()
}
