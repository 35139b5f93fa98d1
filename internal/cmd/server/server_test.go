package server

import (
	"flag"
	"testing"
	"time"
)

func lookupFrom(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != defaultHTTPAddr {
		t.Fatalf("expected default addr, got %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != defaultDBPath {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.SessionIdleTimeout != 0 {
		t.Fatalf("expected zero idle timeout, got %v", cfg.SessionIdleTimeout)
	}
}

func TestParseConfigEnvFallback(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, lookupFrom(map[string]string{
		"STAFFDESK_HTTP_ADDR":            "0.0.0.0:9000",
		"STAFFDESK_DB_PATH":              "/data/staffdesk.db",
		"STAFFDESK_SESSION_IDLE_TIMEOUT": "45m",
	}))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:9000" {
		t.Fatalf("expected env addr, got %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "/data/staffdesk.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.SessionIdleTimeout != 45*time.Minute {
		t.Fatalf("expected 45m idle timeout, got %v", cfg.SessionIdleTimeout)
	}
}

func TestParseConfigFlagOverridesEnv(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "127.0.0.1:7000"}, lookupFrom(map[string]string{
		"STAFFDESK_HTTP_ADDR": "0.0.0.0:9000",
	}))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:7000" {
		t.Fatalf("expected flag addr, got %q", cfg.HTTPAddr)
	}
}

func TestParseConfigRejectsBadTimeout(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil, lookupFrom(map[string]string{
		"STAFFDESK_SESSION_IDLE_TIMEOUT": "soon",
	})); err == nil {
		t.Fatal("expected error for malformed timeout")
	}
}
