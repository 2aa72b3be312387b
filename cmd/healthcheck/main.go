// Package main checks a crowdfund node and exits non-zero when it is unhealthy.
package main

import (
	"context"
	"flag"
	"os"

	healthcheckcmd "github.com/louisbranch/crowdfund/internal/cmd/healthcheck"
	"github.com/louisbranch/crowdfund/internal/platform/config"
)

func main() {
	cfg, err := healthcheckcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	config.ExitOnError("parse flags", err)
	config.ExitOnError("healthcheck", healthcheckcmd.Run(context.Background(), cfg))
}
