// Package server는 오케스트레이터용 gRPC health 서버를 제공합니다
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/YouSangSon/tour-service/internal/interfaces/grpc/interceptor"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName은 health 상태를 보고하는 서비스 이름입니다
const ServiceName = "tour.TourService"

const defaultProbeInterval = 10 * time.Second

// ReadinessProbe는 핵심 의존성 준비 상태를 확인합니다
// 실패 시 실패한 의존성 이름을 반환합니다
type ReadinessProbe interface {
	ReadyCheck(ctx context.Context) (string, error)
}

// Config는 gRPC 서버 설정입니다
type Config struct {
	Address          string
	ProbeInterval    time.Duration
	EnableReflection bool
}

// Server는 readiness를 health 서비스로 노출하는 gRPC 서버입니다
type Server struct {
	cfg    Config
	grpc   *grpc.Server
	health *health.Server
	probe  ReadinessProbe
}

// New는 interceptor 체인과 health 서비스를 등록한 Server를 생성합니다
// m이 nil이면 메트릭 interceptor를 생략합니다
func New(cfg Config, probe ReadinessProbe, m *metrics.Metrics) *Server {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = defaultProbeInterval
	}

	unary := []grpc.UnaryServerInterceptor{
		interceptor.UnaryRecoveryInterceptor(),
		interceptor.UnaryLoggingInterceptor(),
		interceptor.UnaryTracingInterceptor(),
		interceptor.UnaryErrorInterceptor(),
	}
	stream := []grpc.StreamServerInterceptor{
		interceptor.StreamRecoveryInterceptor(),
		interceptor.StreamLoggingInterceptor(),
		interceptor.StreamTracingInterceptor(),
	}
	if m != nil {
		unary = append(unary, interceptor.UnaryMetricsInterceptor(m))
		stream = append(stream, interceptor.StreamMetricsInterceptor(m))
	}

	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	if cfg.EnableReflection {
		reflection.Register(gs)
	}

	return &Server{cfg: cfg, grpc: gs, health: hs, probe: probe}
}

// Probe는 readiness를 한 번 확인하고 health 상태에 반영합니다
func (s *Server) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if name, err := s.probe.ReadyCheck(ctx); err != nil {
		logger.Warn(ctx, "readiness probe failed",
			logger.Component(name),
			zap.Error(err),
		)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return st
}

// Watch는 ctx가 끝날 때까지 주기적으로 readiness를 반영합니다
func (s *Server) Watch(ctx context.Context) {
	s.Probe(ctx)

	ticker := time.NewTicker(s.cfg.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Serve는 리스너를 열고 요청을 처리합니다
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	return s.ServeListener(lis)
}

// ServeListener는 주어진 리스너로 요청을 처리합니다
func (s *Server) ServeListener(lis net.Listener) error {
	logger.Info(context.Background(), "gRPC health server listening", zap.String("address", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Shutdown은 모든 서비스를 NOT_SERVING으로 바꾸고 서버를 정상 종료합니다
// ctx가 먼저 만료되면 강제로 종료합니다
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
}
