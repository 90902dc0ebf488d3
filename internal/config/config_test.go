package config

import (
	"context"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Port)
	}
	if cfg.ReconcileInterval != 5*time.Second {
		t.Errorf("interval = %s, want 5s", cfg.ReconcileInterval)
	}
	if cfg.ReconcileDeadline != 120*time.Second {
		t.Errorf("deadline = %s, want 120s", cfg.ReconcileDeadline)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RECONCILE_INTERVAL", "250ms")
	t.Setenv("WORKER_COUNT", "4")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.ReconcileInterval != 250*time.Millisecond || cfg.WorkerCount != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("RECONCILE_DEADLINE", "0s")
	if _, err := Load(context.Background()); err == nil {
		t.Error("zero deadline accepted")
	}
}
