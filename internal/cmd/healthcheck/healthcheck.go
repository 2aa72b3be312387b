// Package healthcheck checks a crowdfund node over gRPC health.
package healthcheck

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/louisbranch/crowdfund/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/crowdfund/internal/platform/grpc"
	"github.com/louisbranch/crowdfund/internal/platform/timeouts"
)

// Config holds health check configuration.
type Config struct {
	Addr    string        `env:"CROWDFUND_NODE_ADDR" envDefault:"localhost:8090"`
	Timeout time.Duration `env:"CROWDFUND_HEALTHCHECK_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The node gRPC address")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "How long to wait for SERVING")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run waits until the node reports SERVING or the timeout passes.
func Run(ctx context.Context, cfg Config) error {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.GRPCDial
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceHealthcheck, func(ctx context.Context) error {
		if err := platformgrpc.CheckHealth(ctx, cfg.Addr, platformgrpc.NodeHealthService, timeout, log.Printf); err != nil {
			return fmt.Errorf("node %s unhealthy: %w", cfg.Addr, err)
		}
		return nil
	})
}
