// Package validation validates configuration structs for the kaproxy client
// and its tooling.
//
// It supports struct tag validation (using the validator library) and
// programmatic validation with error collection. Both produce an
// *errors.AppError with code INVALID_CONFIG and per-field details.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Address string `validate:"required,http_url"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("address", cfg.Address).MinDuration("connect_timeout", cfg.ConnectTimeout, time.Millisecond)
//	err := v.Validate()
package validation
