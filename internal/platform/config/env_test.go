package config

import "testing"

type testEnv struct {
	Addr string `env:"STAFFDESK_TEST_ADDR" envDefault:"localhost:9999"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testEnv
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "localhost:9999" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
}

func TestParseEnvOverride(t *testing.T) {
	t.Setenv("STAFFDESK_TEST_ADDR", "localhost:1234")
	var cfg testEnv
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "localhost:1234" {
		t.Fatalf("expected override addr, got %q", cfg.Addr)
	}
}
