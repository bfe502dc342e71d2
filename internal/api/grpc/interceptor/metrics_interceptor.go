package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/metrics"
)

// Metrics records handler latency per method and status code.
func Metrics() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		metrics.RPCLatency.WithLabelValues(info.FullMethod, code.String()).Observe(time.Since(start).Seconds())
		logger.Debug("RPC handled", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
		return resp, err
	}
}
