// Package server wires the crowdfund node: ledger storage, the program
// registry, gRPC (health and ledger reads), and the MCP tool surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	platformgrpc "github.com/louisbranch/crowdfund/internal/platform/grpc"
	"github.com/louisbranch/crowdfund/internal/services/ledger"
	ledgergrpc "github.com/louisbranch/crowdfund/internal/services/ledger/api/grpc/ledger"
	ledgersqlite "github.com/louisbranch/crowdfund/internal/services/ledger/storage/sqlite"
	"github.com/louisbranch/crowdfund/internal/services/mcp/domain"
	mcpservice "github.com/louisbranch/crowdfund/internal/services/mcp/service"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
	"github.com/louisbranch/crowdfund/internal/services/program/processor"
)

// HealthService is the gRPC health service name reported by the node.
const HealthService = platformgrpc.NodeHealthService

// MCP transports.
const (
	TransportNone  = "none"
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Options configures a node.
type Options struct {
	// Addr is the gRPC listen address.
	Addr      string
	DBPath    string
	ProgramID solana.PublicKey
	// MCPTransport selects how tools are exposed: none, stdio, or http.
	MCPTransport string
	MCPHTTPAddr  string
}

// Server hosts the ledger, its gRPC endpoints, and MCP.
type Server struct {
	listener    net.Listener
	grpcServer  *grpc.Server
	health      *health.Server
	store       *ledgersqlite.Store
	bank        *ledger.Bank
	mcp         *mcpservice.Server
	transport   string
	mcpListener net.Listener
}

// New opens storage, registers the crowdfund program, and binds listeners.
func New(ctx context.Context, opts Options) (*Server, error) {
	transport := strings.TrimSpace(opts.MCPTransport)
	if transport == "" {
		transport = TransportNone
	}
	switch transport {
	case TransportNone, TransportStdio, TransportHTTP:
	default:
		return nil, fmt.Errorf("mcp transport %q is not supported", transport)
	}
	if opts.ProgramID.IsZero() {
		return nil, errors.New("program id is required")
	}
	dbPath := strings.TrimSpace(opts.DBPath)
	if dbPath == "" {
		dbPath = filepath.Join("data", "crowdfund.db")
	}

	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", opts.Addr, err)
	}
	s := &Server{listener: listener, transport: transport}

	s.store, err = openLedgerStore(dbPath)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.bank, err = ledger.New(ctx, s.store, map[solana.PublicKey]entrypoint.Program{
		opts.ProgramID: processor.New(),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("start ledger: %w", err)
	}
	if transport != TransportNone {
		s.mcp, err = mcpservice.New(domain.NewEnv(s.bank, opts.ProgramID))
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	if transport == TransportHTTP {
		addr := opts.MCPHTTPAddr
		if addr == "" {
			addr = "localhost:8081"
		}
		s.mcpListener, err = net.Listen("tcp", addr)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("listen on %s: %w", addr, err)
		}
	}

	s.grpcServer = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(platformgrpc.ErrorInterceptor()),
	)
	s.health = health.NewServer()
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)
	ledgergrpc.Register(s.grpcServer, ledgergrpc.NewLedgerService(s.bank))
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ledgergrpc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	log.Printf("crowdfund program %s registered", opts.ProgramID)
	return s, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// MCPAddr returns the MCP HTTP listener address, empty unless serving HTTP.
func (s *Server) MCPAddr() string {
	if s == nil || s.mcpListener == nil {
		return ""
	}
	return s.mcpListener.Addr().String()
}

// Bank returns the ledger the node executes against.
func (s *Server) Bank() *ledger.Bank {
	return s.bank
}

// Run creates and serves a node until context cancellation.
func Run(ctx context.Context, opts Options) error {
	server, err := New(ctx, opts)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs gRPC and MCP until ctx ends. With the stdio transport the node
// also stops when the MCP client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("crowdfund node listening at %v", s.listener.Addr())
	grpcErr := make(chan error, 1)
	go func() {
		grpcErr <- s.grpcServer.Serve(s.listener)
	}()

	mcpErr := make(chan error, 1)
	switch s.transport {
	case TransportStdio:
		go func() { mcpErr <- s.mcp.Serve(ctx) }()
	case TransportHTTP:
		go func() { mcpErr <- s.mcp.ServeHTTP(ctx, s.mcpListener) }()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-grpcErr:
		if errors.Is(err, grpc.ErrServerStopped) {
			err = nil
		}
		if err != nil {
			err = fmt.Errorf("serve gRPC: %w", err)
		}
	case err = <-mcpErr:
		if err == nil {
			log.Printf("MCP session ended")
		}
	}

	cancel()
	if s.health != nil {
		s.health.Shutdown()
	}
	s.grpcServer.GracefulStop()
	return err
}

// Close releases node resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.mcpListener != nil {
		_ = s.mcpListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close ledger store: %v", err)
		}
		s.store = nil
	}
}

func openLedgerStore(path string) (*ledgersqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := ledgersqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger sqlite store: %w", err)
	}
	return store, nil
}
