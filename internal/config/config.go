package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the environment-driven server configuration.
type Config struct {
	Port string `env:"SERVER_PORT, default=8080"`
	Env  string `env:"ENVIRONMENT, default=development"`

	// Reconciliation loop tuning.
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL, default=5s"`
	ReconcileDeadline time.Duration `env:"RECONCILE_DEADLINE, default=120s"`

	// Async transfer pool.
	WorkerCount int `env:"WORKER_COUNT, default=10"`
	QueueSize   int `env:"QUEUE_SIZE, default=100"`
}

func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.ReconcileInterval <= 0 || cfg.ReconcileDeadline <= 0 {
		return nil, fmt.Errorf("config: reconcile interval and deadline must be positive")
	}
	return &cfg, nil
}
