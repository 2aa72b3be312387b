package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type healthNode struct {
	addr   string
	health *health.Server
}

func startHealthNode(t *testing.T, status grpc_health_v1.HealthCheckResponse_ServingStatus) *healthNode {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := gogrpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, hs)
	hs.SetServingStatus(NodeHealthService, status)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Serve(listener)
	}()
	t.Cleanup(func() {
		server.Stop()
		<-done
	})
	return &healthNode{addr: listener.Addr().String(), health: hs}
}

func TestCheckHealthServing(t *testing.T) {
	node := startHealthNode(t, grpc_health_v1.HealthCheckResponse_SERVING)

	if err := CheckHealth(context.Background(), node.addr, NodeHealthService, 2*time.Second, t.Logf); err != nil {
		t.Fatalf("check health: %v", err)
	}
}

func TestCheckHealthWaitsForServing(t *testing.T) {
	node := startHealthNode(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	go func() {
		time.Sleep(200 * time.Millisecond)
		node.health.SetServingStatus(NodeHealthService, grpc_health_v1.HealthCheckResponse_SERVING)
	}()

	if err := CheckHealth(context.Background(), node.addr, NodeHealthService, 3*time.Second, nil); err != nil {
		t.Fatalf("check health after transition: %v", err)
	}
}

func TestCheckHealthTimeoutReportsHealthStep(t *testing.T) {
	node := startHealthNode(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	start := time.Now()
	err := CheckHealth(context.Background(), node.addr, NodeHealthService, 200*time.Millisecond, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("check took %v, want it bounded by the timeout", elapsed)
	}
	var healthErr *HealthError
	if !errors.As(err, &healthErr) {
		t.Fatalf("error = %T, want *HealthError", err)
	}
	if healthErr.Step != CheckStepHealth {
		t.Fatalf("step = %s, want %s", healthErr.Step, CheckStepHealth)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}

func TestCheckHealthUnknownService(t *testing.T) {
	node := startHealthNode(t, grpc_health_v1.HealthCheckResponse_SERVING)

	if err := CheckHealth(context.Background(), node.addr, "crowdfund.v1.Missing", 300*time.Millisecond, nil); err == nil {
		t.Fatal("expected unknown service to never serve")
	}
}

func TestWaitServingRequiresConn(t *testing.T) {
	if err := WaitServing(context.Background(), nil, NodeHealthService, nil); err == nil {
		t.Fatal("expected error for nil connection")
	}
}
