package grpc

import (
	"context"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "domain", err: apperrors.New(apperrors.CodeCampaignClosed, "campaign is closed"), want: codes.FailedPrecondition},
		{name: "wrapped domain", err: fmt.Errorf("withdraw: %w", apperrors.New(apperrors.CodeNotAuthorized, "not owner")), want: codes.PermissionDenied},
		{name: "status", err: status.Error(codes.NotFound, "unknown service"), want: codes.NotFound},
		{name: "plain", err: fmt.Errorf("disk full"), want: codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := status.Code(StatusError(tt.err))
			if got != tt.want {
				t.Fatalf("code = %s, want %s", got, tt.want)
			}
		})
	}
	if StatusError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestErrorInterceptorAttachesReason(t *testing.T) {
	interceptor := ErrorInterceptor()
	info := &gogrpc.UnaryServerInfo{FullMethod: "/crowdfund.v1.Node/Test"}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, apperrors.New(apperrors.CodeAlreadyRefunded, "contribution already refunded")
	})
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected status error, got %v", err)
	}
	if st.Code() != codes.AlreadyExists {
		t.Fatalf("code = %s, want %s", st.Code(), codes.AlreadyExists)
	}
	var reason string
	for _, detail := range st.Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok {
			reason = info.GetReason()
		}
	}
	if reason != string(apperrors.CodeAlreadyRefunded) {
		t.Fatalf("reason = %q, want %q", reason, apperrors.CodeAlreadyRefunded)
	}

	resp, err := interceptor(context.Background(), "req", info, func(_ context.Context, req any) (any, error) {
		return req, nil
	})
	if err != nil || resp != "req" {
		t.Fatalf("passthrough = %v, %v", resp, err)
	}
}
