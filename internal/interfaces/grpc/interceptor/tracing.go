package interceptor

import (
	"context"
	"strings"

	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthServiceAttribute는 health 요청이 조회한 서비스 이름 속성 키입니다
const HealthServiceAttribute = "rpc.health.service"

// UnaryTracingInterceptor는 gRPC unary 요청에 분산 추적을 추가합니다
// health Check 요청은 조회 대상 서비스를 span에 기록합니다
func UnaryTracingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx, span := startRPCSpan(ctx, info.FullMethod, trace.WithAttributes(healthAttributes(req)...))
		defer span.End()

		resp, err := handler(ctx, req)
		if hc, ok := resp.(*healthpb.HealthCheckResponse); ok {
			span.SetAttributes(attribute.String("rpc.health.status", hc.GetStatus().String()))
		}
		finishRPCSpan(span, err)
		return resp, err
	}
}

// StreamTracingInterceptor는 gRPC stream 요청에 분산 추적을 추가합니다
func StreamTracingInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, span := startRPCSpan(ss.Context(), info.FullMethod, trace.WithAttributes(
			attribute.Bool("rpc.grpc.is_client_stream", info.IsClientStream),
			attribute.Bool("rpc.grpc.is_server_stream", info.IsServerStream),
		))
		defer span.End()

		err := handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
		finishRPCSpan(span, err)
		return err
	}
}

func startRPCSpan(ctx context.Context, fullMethod string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	service, method := splitMethod(fullMethod)
	opts = append(opts,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rpc.system", "grpc"),
			attribute.String("rpc.service", service),
			attribute.String("rpc.method", method),
		),
	)

	ctx, span := tracing.StartSpan(ctx, fullMethod, opts...)
	ctx = logger.WithFields(ctx,
		logger.TraceID(tracing.GetTraceID(ctx)),
		logger.SpanID(tracing.GetSpanID(ctx)),
	)
	return ctx, span
}

func finishRPCSpan(span trace.Span, err error) {
	st := status.Convert(err)
	span.SetAttributes(attribute.String("rpc.grpc.status_code", st.Code().String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, st.Message())
		return
	}
	span.SetStatus(otelcodes.Ok, "")
}

// healthAttributes는 health 요청의 대상 서비스를 속성으로 반환합니다
// 빈 서비스 이름은 서버 전체 상태를 뜻합니다
func healthAttributes(req interface{}) []attribute.KeyValue {
	hc, ok := req.(*healthpb.HealthCheckRequest)
	if !ok {
		return nil
	}
	service := hc.GetService()
	if service == "" {
		service = "server"
	}
	return []attribute.KeyValue{attribute.String(HealthServiceAttribute, service)}
}

// splitMethod는 "/grpc.health.v1.Health/Check"를 서비스와 메서드로 나눕니다
func splitMethod(fullMethod string) (service, method string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[:i], fullMethod[i+1:]
	}
	return fullMethod, ""
}
