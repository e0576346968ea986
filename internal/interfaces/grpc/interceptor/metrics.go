package interceptor

import (
	"context"
	"time"

	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryMetricsInterceptor는 gRPC unary 요청의 메트릭을 수집합니다
func UnaryMetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		statusCode := status.Code(err).String()

		m.RecordGRPCRequest(info.FullMethod, statusCode, duration)

		return resp, err
	}
}

// StreamMetricsInterceptor는 gRPC stream 요청의 메트릭을 수집합니다
func StreamMetricsInterceptor(m *metrics.Metrics) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()

		err := handler(srv, ss)

		duration := time.Since(start)
		statusCode := status.Code(err).String()

		m.RecordGRPCRequest(info.FullMethod, statusCode, duration)

		return err
	}
}
