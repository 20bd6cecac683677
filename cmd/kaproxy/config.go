package main

import (
	"github.com/kbukum/kaproxy-go/config"
	"github.com/kbukum/kaproxy-go/kaproxy"
	"github.com/kbukum/kaproxy-go/kaproxytest"
	"github.com/kbukum/kaproxy-go/observability"
	"github.com/kbukum/kaproxy-go/util"
	"github.com/kbukum/kaproxy-go/validation"
	"github.com/kbukum/kaproxy-go/version"
)

const (
	serviceName    = "kaproxy"
	defaultAddress = "http://127.0.0.1:8080"
)

// CLIConfig is the kaproxy command configuration, loaded from config.yml,
// .env and KAPROXY_* variables.
type CLIConfig struct {
	config.ServiceConfig `mapstructure:",squash"`

	Proxy     kaproxy.Config     `yaml:"proxy" mapstructure:"proxy"`
	Fake      kaproxytest.Config `yaml:"fake" mapstructure:"fake"`
	Telemetry TelemetryConfig    `yaml:"telemetry" mapstructure:"telemetry"`
}

// TelemetryConfig switches OTLP export of client spans and metrics.
type TelemetryConfig struct {
	Enabled bool                       `yaml:"enabled" mapstructure:"enabled"`
	Tracer  observability.TracerConfig `yaml:"tracer" mapstructure:"tracer"`
	Meter   observability.MeterConfig  `yaml:"meter" mapstructure:"meter"`
}

// ApplyDefaults fills in zero-value fields.
func (c *CLIConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()

	if c.Proxy.Address == "" {
		c.Proxy.Address = defaultAddress
	}
	c.Proxy.ApplyDefaults()
	c.Fake.ApplyDefaults()
	c.Telemetry.applyDefaults(c.Name, c.Version, c.Environment)
}

// Validate checks the configuration.
func (c *CLIConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Fake.Server.Validate(); err != nil {
		return err
	}
	if !c.Telemetry.Enabled {
		return nil
	}
	return validation.New().
		Required("telemetry.tracer.endpoint", c.Telemetry.Tracer.Endpoint).
		Required("telemetry.meter.endpoint", c.Telemetry.Meter.Endpoint).
		Custom(c.Telemetry.Tracer.SampleRate >= 0 && c.Telemetry.Tracer.SampleRate <= 1,
			"telemetry.tracer.sample_rate", "must be between 0 and 1").
		Validate()
}

func (t *TelemetryConfig) applyDefaults(name, ver, env string) {
	tracer := observability.DefaultTracerConfig(name)
	t.Tracer.ServiceName = util.Coalesce(t.Tracer.ServiceName, name)
	t.Tracer.ServiceVersion = util.Coalesce(t.Tracer.ServiceVersion, ver)
	t.Tracer.Environment = util.Coalesce(t.Tracer.Environment, env)
	if t.Tracer.Endpoint == "" {
		t.Tracer.Endpoint = tracer.Endpoint
		t.Tracer.Insecure = tracer.Insecure
	}
	t.Tracer.SampleRate = util.Coalesce(t.Tracer.SampleRate, tracer.SampleRate)

	meter := observability.DefaultMeterConfig(name)
	t.Meter.ServiceName = util.Coalesce(t.Meter.ServiceName, name)
	t.Meter.ServiceVersion = util.Coalesce(t.Meter.ServiceVersion, ver)
	t.Meter.Environment = util.Coalesce(t.Meter.Environment, env)
	if t.Meter.Endpoint == "" {
		t.Meter.Endpoint = meter.Endpoint
		t.Meter.Insecure = meter.Insecure
	}
	t.Meter.Interval = util.Coalesce(t.Meter.Interval, meter.Interval)
}
