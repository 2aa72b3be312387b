// Package crowdfund parses node flags and launches the crowdfund node.
package crowdfund

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	entrypoint "github.com/louisbranch/crowdfund/internal/platform/cmd"
	server "github.com/louisbranch/crowdfund/internal/services/ledger/app"
)

// DefaultProgramID is the address the crowdfund program is registered at
// unless configured otherwise.
const DefaultProgramID = "5Gbm8uSMg1i6Agj9NqcccywoCKPEiVvBWRC2RVUsDjHL"

// Config holds node command configuration.
type Config struct {
	Port         int    `env:"CROWDFUND_NODE_PORT" envDefault:"8090"`
	Addr         string `env:"CROWDFUND_NODE_ADDR"`
	DBPath       string `env:"CROWDFUND_DB_PATH" envDefault:"data/crowdfund.db"`
	ProgramID    string `env:"CROWDFUND_PROGRAM_ID" envDefault:"5Gbm8uSMg1i6Agj9NqcccywoCKPEiVvBWRC2RVUsDjHL"`
	MCPTransport string `env:"CROWDFUND_MCP_TRANSPORT" envDefault:"none"`
	MCPHTTPAddr  string `env:"CROWDFUND_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The node gRPC port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The node gRPC listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The ledger SQLite database path")
	fs.StringVar(&cfg.ProgramID, "program-id", cfg.ProgramID, "The crowdfund program address")
	fs.StringVar(&cfg.MCPTransport, "mcp", cfg.MCPTransport, "MCP transport: none, stdio, or http")
	fs.StringVar(&cfg.MCPHTTPAddr, "mcp-http-addr", cfg.MCPHTTPAddr, "The MCP streamable HTTP listen address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options converts the command configuration into node options.
func (c Config) Options() (server.Options, error) {
	programID, err := solana.PublicKeyFromBase58(strings.TrimSpace(c.ProgramID))
	if err != nil {
		return server.Options{}, fmt.Errorf("parse program id: %w", err)
	}
	addr := strings.TrimSpace(c.Addr)
	if addr == "" {
		addr = fmt.Sprintf(":%d", c.Port)
	}
	return server.Options{
		Addr:         addr,
		DBPath:       c.DBPath,
		ProgramID:    programID,
		MCPTransport: c.MCPTransport,
		MCPHTTPAddr:  c.MCPHTTPAddr,
	}, nil
}

// Run starts the crowdfund node.
func Run(ctx context.Context, cfg Config) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceNode, func(ctx context.Context) error {
		return server.Run(ctx, opts)
	})
}
