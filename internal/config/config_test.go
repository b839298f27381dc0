package config

import (
	"testing"
	"time"
)

func TestValidateRequiresJWTSecretOutsideDev(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET in production")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAllowsDevWithoutSecret(t *testing.T) {
	cfg := &Config{Env: "development"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownEnv(t *testing.T) {
	cfg := &Config{Env: "qa", JWTSecret: "secret"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown ENV")
	}
}

func TestLookupTimeout(t *testing.T) {
	cfg := &Config{LookupTimeoutMS: 250}
	if got := cfg.LookupTimeout(); got != 250*time.Millisecond {
		t.Fatalf("LookupTimeout = %v, want 250ms", got)
	}

	cfg.LookupTimeoutMS = 0
	if got := cfg.LookupTimeout(); got != 5*time.Second {
		t.Fatalf("LookupTimeout default = %v, want 5s", got)
	}
}
