package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/nikkisuraj26/cafe54-timecard/internal/core/health"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StorageService はストレージ状態を公開する gRPC ヘルスのサービス名です。
const StorageService = "timecard.storage"

const defaultPollInterval = 5 * time.Second

// HealthServer は grpc.health.v1.Health を公開する gRPC サーバーです。
type HealthServer struct {
	listenAddr string
	grpcServer *grpc.Server
	status     *grpchealth.Server
	checker    health.Checker
	interval   time.Duration
	log        logger.Logger
}

// NewHealthServer は gRPC ヘルスサーバーを構築します。interval ごとに checker を呼んで状態を更新します。
func NewHealthServer(listenAddr string, checker health.Checker, interval time.Duration, l logger.Logger, opts ...grpc.ServerOption) *HealthServer {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if l == nil {
		l = logger.Nop()
	}

	srv := grpc.NewServer(opts...)
	status := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, status)
	status.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	status.SetServingStatus(StorageService, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		listenAddr: listenAddr,
		grpcServer: srv,
		status:     status,
		checker:    checker,
		interval:   interval,
		log:        l,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *HealthServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	s.refresh(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.status.Shutdown()
				s.grpcServer.GracefulStop()
				return
			case <-ticker.C:
				s.refresh(ctx)
			}
		}
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}
	return nil
}

// GracefulStop はサーバーを安全に停止します。
func (s *HealthServer) GracefulStop() {
	s.grpcServer.GracefulStop()
}

func (s *HealthServer) refresh(ctx context.Context) {
	report, err := s.checker.Check(ctx)
	if err != nil {
		s.log.Warn(ctx, "health check failed", logger.Error(err))
		s.status.SetServingStatus(StorageService, healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if report.Serving() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.status.SetServingStatus(StorageService, status)
}
