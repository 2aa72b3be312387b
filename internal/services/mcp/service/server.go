package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/crowdfund/internal/platform/timeouts"
	"github.com/louisbranch/crowdfund/internal/services/mcp/domain"
)

const (
	serverName    = "crowdfund-mcp"
	serverVersion = "0.1.0"
)

// Server exposes the crowdfund tools to MCP clients.
type Server struct {
	mcpServer *mcp.Server
}

// New registers every crowdfund tool against env.
func New(env *domain.Env) (*Server, error) {
	if env == nil || env.Ledger == nil {
		return nil, errors.New("mcp environment requires a ledger")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, domain.CampaignCreateTool(), domain.CampaignCreateHandler(env))
	mcp.AddTool(mcpServer, domain.ContributeTool(), domain.ContributeHandler(env))
	mcp.AddTool(mcpServer, domain.WithdrawTool(), domain.WithdrawHandler(env))
	mcp.AddTool(mcpServer, domain.RefundTool(), domain.RefundHandler(env))
	mcp.AddTool(mcpServer, domain.ResolveTool(), domain.ResolveHandler(env))
	mcp.AddTool(mcpServer, domain.ContributionCloseTool(), domain.ContributionCloseHandler(env))
	mcp.AddTool(mcpServer, domain.CampaignCloseTool(), domain.CampaignCloseHandler(env))
	mcp.AddTool(mcpServer, domain.CampaignGetTool(), domain.CampaignGetHandler(env))
	mcp.AddTool(mcpServer, domain.CampaignListTool(), domain.CampaignListHandler(env))
	mcp.AddTool(mcpServer, domain.ContributionGetTool(), domain.ContributionGetHandler(env))
	mcp.AddTool(mcpServer, domain.AirdropTool(), domain.AirdropHandler(env))
	mcp.AddTool(mcpServer, domain.BalanceTool(), domain.BalanceHandler(env))
	mcp.AddTool(mcpServer, domain.TransactionGetTool(), domain.TransactionGetHandler(env))
	mcp.AddTool(mcpServer, domain.KeypairTool(), domain.KeypairHandler())

	return &Server{mcpServer: mcpServer}, nil
}

// Serve runs the server on stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// ServeHTTP serves streamable HTTP on listener at /mcp until ctx ends.
func (s *Server) ServeHTTP(ctx context.Context, listener net.Listener) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.Handler())
	mux.HandleFunc("/mcp/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	httpServer := &http.Server{Handler: mux, ReadHeaderTimeout: timeouts.ReadHeader}

	log.Printf("MCP HTTP server listening at %v", listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown MCP HTTP: %w", err)
		}
		return nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP HTTP: %w", err)
	}
}
