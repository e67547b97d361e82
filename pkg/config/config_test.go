package config

import (
	"testing"
	"time"
)

func TestWriteTimeoutCoversProvisioningBudget(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{ReadTimeout: 30 * time.Second},
		Graph:  GraphConfig{ProvisionTimeout: 10 * time.Minute},
	}

	got := cfg.WriteTimeout()
	if got <= cfg.Graph.ProvisionTimeout {
		t.Fatalf("write timeout %v does not cover provision timeout %v", got, cfg.Graph.ProvisionTimeout)
	}
	if got != 10*time.Minute+30*time.Second {
		t.Fatalf("expected 10m30s, got %v", got)
	}
}

func TestWriteTimeoutKeepsDoubledReadTimeoutWhenLarger(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{ReadTimeout: 10 * time.Minute},
		Graph:  GraphConfig{ProvisionTimeout: 5 * time.Minute},
	}

	if got := cfg.WriteTimeout(); got != 20*time.Minute {
		t.Fatalf("expected 20m, got %v", got)
	}
}

func TestGraphConfigMissing(t *testing.T) {
	cfg := &GraphConfig{TenantID: "contoso.onmicrosoft.com"}

	if cfg.Configured() {
		t.Fatal("expected unconfigured")
	}
	missing := cfg.Missing()
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing settings, got %d", len(missing))
	}
	if missing[0] != "graph.client_id" || missing[1] != "graph.client_secret" {
		t.Fatalf("unexpected missing settings: %v", missing)
	}
}
