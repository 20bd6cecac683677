// Package logger provides structured logging for the kaproxy client and its
// tooling using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("kaproxy")
//	log.Info("message produced", logger.Fields("topic", "orders", "offset", 42))
package logger
