// Package config loads service configuration from YAML files, .env files and
// environment variables.
//
// Files are searched in ./cmd/<service>/, ./config/ and the working
// directory. Environment variables carry the service prefix and map onto
// nested keys:
//
//	KAPROXY_PROXY_ADDRESS=http://127.0.0.1:8080  ->  proxy.address
//	KAPROXY_LOGGING_LEVEL=debug                  ->  logging.level
//
// Usage:
//
//	var cfg CLIConfig
//	if err := config.LoadConfig("kaproxy", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
