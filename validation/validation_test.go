package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/kaproxy-go/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("address", "")
	if !v.HasErrors() {
		t.Error("expected error for empty string")
	}

	v2 := New()
	v2.Required("address", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only string")
	}

	v3 := New()
	v3.Required("address", "http://127.0.0.1:8080")
	if v3.HasErrors() {
		t.Error("expected no error for non-empty string")
	}
}

func TestValidatorMinDuration(t *testing.T) {
	v := New()
	v.MinDuration("connect_timeout", 0, time.Millisecond)
	if !v.HasErrors() {
		t.Error("expected error for zero duration")
	}

	v2 := New()
	v2.MinDuration("connect_timeout", 1500*time.Millisecond, time.Millisecond)
	if v2.HasErrors() {
		t.Error("expected no error")
	}
}

func TestValidatorMin(t *testing.T) {
	v := New().Min("partitions", 0, 1)
	if !v.HasErrors() {
		t.Error("expected error for 0 < 1")
	}
	if New().Min("partitions", 4, 1).HasErrors() {
		t.Error("expected no error for 4 >= 1")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"hash", "random"}

	if New().OneOf("partitioner", "hash", allowed).HasErrors() {
		t.Error("expected no error for allowed value")
	}
	if !New().OneOf("partitioner", "roundrobin", allowed).HasErrors() {
		t.Error("expected error for disallowed value")
	}
	if New().OneOf("partitioner", "", allowed).HasErrors() {
		t.Error("empty value should be skipped")
	}
}

func TestValidatorCustom(t *testing.T) {
	if !New().Custom(false, "field", "custom error").HasErrors() {
		t.Error("expected error when condition is false")
	}
	if New().Custom(true, "field", "ok").HasErrors() {
		t.Error("expected no error when condition is true")
	}
}

func TestValidatorValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	v := New()
	v.Required("address", "")
	v.MinDuration("connect_timeout", -1, 0)
	err := v.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
	if !strings.Contains(err.Error(), "address: is required") {
		t.Errorf("expected address message, got %q", err.Error())
	}
	if len(v.Errors()) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(v.Errors()))
	}
}

type proxySection struct {
	Address string `mapstructure:"address" validate:"required,http_url"`
	Token   string `mapstructure:"token"`
}

type testConfig struct {
	Proxy       proxySection `mapstructure:"proxy"`
	Partitioner string       `mapstructure:"partitioner" validate:"omitempty,oneof=hash random"`
	Retries     int          `validate:"gte=0"`
}

func TestStructValidateValid(t *testing.T) {
	cfg := testConfig{Proxy: proxySection{Address: "http://127.0.0.1:8080"}, Partitioner: "random"}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	cfg := testConfig{Proxy: proxySection{Address: "not a url"}, Partitioner: "sticky", Retries: -1}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %s", appErr.Code)
	}
	for _, want := range []string{"proxy.address", "partitioner", "retries"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in message %q", want, appErr.Message)
		}
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %v", appErr.Details["fields"])
	}
}

func TestStructValidateMissingAddress(t *testing.T) {
	err := Validate(testConfig{})
	if err == nil || !strings.Contains(err.Error(), "proxy.address: is required") {
		t.Errorf("expected missing address error, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("ConnectTimeout"); got != "connect_timeout" {
		t.Errorf("got %q", got)
	}
}
