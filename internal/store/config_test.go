package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	p := writeConfig(t, `
mode: MOCK
universe:
  - rb2611
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.PollSeconds != 15 {
		t.Errorf("Expected default poll_seconds 15, got %d", cfg.PollSeconds)
	}
	if cfg.Timeouts.ConnectSeconds != 30 {
		t.Errorf("Expected default connect timeout 30s, got %d", cfg.Timeouts.ConnectSeconds)
	}
	if cfg.Timeouts.LoginSeconds != 10 {
		t.Errorf("Expected default login timeout 10s, got %d", cfg.Timeouts.LoginSeconds)
	}
	if cfg.Query.MinIntervalMillis != 1000 {
		t.Errorf("Expected default query interval 1000ms, got %d", cfg.Query.MinIntervalMillis)
	}
	if cfg.Reconnect.MaxAttempts != 5 {
		t.Errorf("Expected default max attempts 5, got %d", cfg.Reconnect.MaxAttempts)
	}
	if cfg.Reconnect.BaseDelaySeconds != 1 || cfg.Reconnect.MaxDelaySeconds != 60 {
		t.Errorf("Expected default backoff 1s..60s, got %d..%d",
			cfg.Reconnect.BaseDelaySeconds, cfg.Reconnect.MaxDelaySeconds)
	}
}

func TestLoadConfigInvalidMode(t *testing.T) {
	p := writeConfig(t, `
mode: SANDBOX
universe:
  - rb2611
`)
	if _, err := LoadConfig(p); err == nil || !strings.Contains(err.Error(), "mode") {
		t.Errorf("Expected mode validation error, got %v", err)
	}
}

func TestLoadConfigEmptyUniverse(t *testing.T) {
	p := writeConfig(t, `
mode: MOCK
universe: []
`)
	if _, err := LoadConfig(p); err == nil || !strings.Contains(err.Error(), "universe") {
		t.Errorf("Expected universe validation error, got %v", err)
	}
}

func TestLiveModeRequiresCredentials(t *testing.T) {
	p := writeConfig(t, `
mode: LIVE
universe:
  - rb2611
gateway:
  md_address: ws://host:9010/md
  td_address: ws://host:9011/td
  broker_id: "9999"
  user_id: "100001"
`)
	t.Setenv("GATEWAY_PASSWORD", "")
	if _, err := LoadConfig(p); err == nil || !strings.Contains(err.Error(), "GATEWAY_PASSWORD") {
		t.Errorf("Expected password requirement, got %v", err)
	}

	t.Setenv("GATEWAY_PASSWORD", "secret")
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Password() != "secret" {
		t.Error("Expected password from environment")
	}
}

func TestLiveModeRequiresAddresses(t *testing.T) {
	p := writeConfig(t, `
mode: LIVE
universe:
  - rb2611
gateway:
  broker_id: "9999"
  user_id: "100001"
`)
	t.Setenv("GATEWAY_PASSWORD", "secret")
	if _, err := LoadConfig(p); err == nil || !strings.Contains(err.Error(), "address") {
		t.Errorf("Expected address validation error, got %v", err)
	}
}
