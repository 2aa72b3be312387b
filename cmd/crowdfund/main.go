// Package main starts the crowdfund node process.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	crowdfundcmd "github.com/louisbranch/crowdfund/internal/cmd/crowdfund"
	"github.com/louisbranch/crowdfund/internal/platform/config"
)

func main() {
	cfg, err := crowdfundcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	config.ExitOnError("parse flags", err)
	log.SetPrefix("[CROWDFUND] ")
	if cfg.MCPTransport == "stdio" {
		// stdout carries the MCP stream
		log.SetOutput(os.Stderr)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := crowdfundcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
