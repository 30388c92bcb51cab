// Package server поднимает gRPC-сервер payment-processor со стандартным
// сервисом grpc.health.v1, по которому оркестратор проверяет живость воркера.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName имя сервиса в ответах health-проверки.
const ServiceName = "equigest.PaymentProcessor"

// HealthServer gRPC-сервер с health-сервисом.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	log    *slog.Logger
}

// NewHealthServer создаёт сервер в состоянии NOT_SERVING.
func NewHealthServer(log *slog.Logger) *HealthServer {
	srv := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)

	s := &HealthServer{srv: srv, health: h, log: log}
	s.SetServing(false)
	return s
}

// SetServing переключает статус и для общего сервиса "", и для ServiceName.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve обслуживает lis до отмены ctx, затем останавливается, дождавшись активных вызовов.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	const op = "grpc.server.Serve"

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health server starting", slog.String("address", lis.Addr().String()))
		errCh <- s.srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		s.health.Shutdown()
		s.srv.GracefulStop()
		<-errCh
		return nil
	}
}
