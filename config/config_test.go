package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/kaproxy-go/errors"
)

type proxySection struct {
	Address        string        `mapstructure:"address"`
	Token          string        `mapstructure:"token"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Proxy         proxySection `mapstructure:"proxy"`
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "kaproxy"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.ServiceName != "kaproxy" {
			t.Errorf("expected logging service name to follow name, got %q", cfg.Logging.ServiceName)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected level info, got %q", cfg.Logging.Level)
		}
	})

	t.Run("debug raises the default level", func(t *testing.T) {
		cfg := ServiceConfig{Name: "kaproxy", Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected level debug, got %q", cfg.Logging.Level)
		}
	})

	t.Run("explicit level wins over debug", func(t *testing.T) {
		cfg := ServiceConfig{Name: "kaproxy", Debug: true}
		cfg.Logging.Level = "warn"
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "warn" {
			t.Errorf("expected level warn, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func() ServiceConfig {
		c := ServiceConfig{Name: "kaproxy"}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*ServiceConfig)
		errMsg string
	}{
		{"valid", func(*ServiceConfig) {}, ""},
		{"missing name", func(c *ServiceConfig) { c.Name = "" }, "name: is required"},
		{"invalid environment", func(c *ServiceConfig) { c.Environment = "qa" }, "environment: must be one of"},
		{"invalid log format", func(c *ServiceConfig) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: kaproxy
environment: staging
logging:
  level: debug
  format: json
proxy:
  address: http://127.0.0.1:8080
  connect_timeout: 2s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("kaproxy", &cfg, WithConfigFile(configPath), WithEnvPrefix("KAPROXY_TEST_YAML_")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "kaproxy" || cfg.Environment != "staging" {
		t.Errorf("unexpected service section: %+v", cfg.ServiceConfig)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json log format, got %q", cfg.Logging.Format)
	}
	if cfg.Proxy.Address != "http://127.0.0.1:8080" {
		t.Errorf("expected proxy address, got %q", cfg.Proxy.Address)
	}
	if cfg.Proxy.ConnectTimeout != 2*time.Second {
		t.Errorf("expected connect timeout 2s, got %v", cfg.Proxy.ConnectTimeout)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("proxy:\n  address: http://file:8080\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("KAPROXY_PROXY_ADDRESS", "http://env:9090")
	t.Setenv("KAPROXY_PROXY_TOKEN", "from-env")
	t.Setenv("KAPROXY_PROXY_CONNECT_TIMEOUT", "750ms")

	var cfg testConfig
	if err := LoadConfig("kaproxy", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Proxy.Address != "http://env:9090" {
		t.Errorf("expected env address, got %q", cfg.Proxy.Address)
	}
	if cfg.Proxy.Token != "from-env" {
		t.Errorf("expected env token, got %q", cfg.Proxy.Token)
	}
	if cfg.Proxy.ConnectTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v", cfg.Proxy.ConnectTimeout)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("KAPROXYENV_PROXY_TOKEN=dotenv-token\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("KAPROXYENV_PROXY_TOKEN") })

	var cfg testConfig
	err := LoadConfig("kaproxyenv", &cfg,
		WithConfigFile(filepath.Join(dir, "missing.yml")),
		WithEnvFile(envPath),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Proxy.Token != "dotenv-token" {
		t.Errorf("expected token from .env, got %q", cfg.Proxy.Token)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("proxy: [unterminated"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	err := LoadConfig("kaproxy", &cfg, WithConfigFile(configPath))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]bool
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "cmd directory first",
			files:      map[string]bool{"./cmd/kaproxy/config.yml": true, "./config.yml": true},
			wantConfig: "./cmd/kaproxy/config.yml",
		},
		{
			name:       "yaml extension",
			files:      map[string]bool{"./config/config.yaml": true},
			wantConfig: "./config/config.yaml",
		},
		{
			name:    "service env file preferred",
			files:   map[string]bool{"./.env": true, "./config/.env.kaproxy": true},
			wantEnv: "./config/.env.kaproxy",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &Resolver{FileSystem: &mockFS{files: tc.files}}
			got := r.ResolveFiles("kaproxy", LoaderConfig{})
			if got.ConfigFile != tc.wantConfig {
				t.Errorf("config = %q, want %q", got.ConfigFile, tc.wantConfig)
			}
			if got.EnvFile != tc.wantEnv {
				t.Errorf("env = %q, want %q", got.EnvFile, tc.wantEnv)
			}
		})
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	r := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}}}
	got := r.ResolveFiles("kaproxy", LoaderConfig{ConfigFile: "/etc/kaproxy.yml", EnvFile: "/etc/kaproxy.env"})
	if got.ConfigFile != "/etc/kaproxy.yml" || got.EnvFile != "/etc/kaproxy.env" {
		t.Errorf("explicit paths should win, got %+v", got)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("PROXY_CONNECT_TIMEOUT")
	want := map[string]bool{
		"proxy_connect_timeout": true,
		"proxy.connect.timeout": true,
		"proxy.connect_timeout": true,
		"proxy_connect.timeout": true,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d variants, got %v", len(want), got)
	}
	for _, v := range got {
		if !want[v] {
			t.Errorf("unexpected variant %q", v)
		}
	}
	if got := envKeyVariants("DEBUG"); len(got) != 1 || got[0] != "debug" {
		t.Errorf("single-part key: got %v", got)
	}
}

func TestEnvPrefix(t *testing.T) {
	if got := envPrefix("kaproxy-cli"); got != "KAPROXY_CLI_" {
		t.Errorf("got %q", got)
	}
}
