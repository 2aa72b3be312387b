package grpc

import (
	"context"
	"errors"
	"log"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
)

// StatusError converts err into a gRPC status error. Domain errors keep their
// code as ErrorInfo; existing statuses pass through; anything else is Internal.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.ToGRPCStatus()
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Internal, "an unexpected error occurred")
}

// ErrorInterceptor applies StatusError to every unary response.
func ErrorInterceptor() gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			if _, ok := status.FromError(err); !ok {
				log.Printf("%s: %v", info.FullMethod, err)
			}
			return resp, StatusError(err)
		}
		return resp, nil
	}
}
