// Package grpc holds the gRPC plumbing shared by the node and its health checks.
package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// NodeHealthService is the health service name registered by a crowdfund node.
const NodeHealthService = "crowdfund.v1.Node"

// CheckStep names the part of a health check that failed.
type CheckStep string

const (
	CheckStepConnect CheckStep = "connect"
	CheckStepHealth  CheckStep = "health"
)

// HealthError wraps a health check failure with the step it happened in.
type HealthError struct {
	Step CheckStep
	Addr string
	Err  error
}

func (e *HealthError) Error() string {
	return fmt.Sprintf("health check %s: %s: %v", e.Addr, e.Step, e.Err)
}

func (e *HealthError) Unwrap() error {
	return e.Err
}

// ClientOptions returns the dial options used for node clients. Outbound
// calls carry trace context when a TracerProvider is registered.
func ClientOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// CheckHealth connects to addr and polls service until it reports SERVING, the
// timeout passes, or ctx ends.
func CheckHealth(ctx context.Context, addr, service string, timeout time.Duration, logf func(string, ...any)) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := gogrpc.NewClient(addr, ClientOptions()...)
	if err != nil {
		return &HealthError{Step: CheckStepConnect, Addr: addr, Err: err}
	}
	defer conn.Close()

	if err := WaitServing(ctx, conn, service, logf); err != nil {
		return &HealthError{Step: CheckStepHealth, Addr: addr, Err: err}
	}
	return nil
}

// WaitServing blocks until service reports SERVING on conn or ctx ends.
func WaitServing(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	backoff := 100 * time.Millisecond
	for {
		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		switch {
		case err != nil:
			logf("waiting for %q: %v", service, err)
		case resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING:
			logf("%q is SERVING", service)
			return nil
		default:
			logf("waiting for %q: status %s", service, resp.GetStatus())
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for %q: %w", service, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, time.Second)
	}
}
