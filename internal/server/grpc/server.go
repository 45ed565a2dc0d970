// Package grpc exposes the standard gRPC health service so orchestrators can
// check the vault without touching the HTTP API.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/cuivault/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// VaultServiceName is the health service name reported for the vault API.
const VaultServiceName = "cuivault.v1.Vault"

// HealthServer exposes the standard gRPC health service for the vault so
// orchestrators can check readiness without touching the HTTP API.
type HealthServer struct {
	address string
	logger  logging.Logger
	health  *health.Server
}

// NewHealthServer starts in NOT_SERVING; call SetServing once the HTTP
// listener is up.
func NewHealthServer(address string, l logging.Logger) *HealthServer {
	s := &HealthServer{
		address: address,
		logger:  l.With("module", "grpc_health"),
		health:  health.NewServer(),
	}
	s.SetServing(false)
	return s
}

// SetServing flips the reported status of the overall server and of the
// vault service.
func (s *HealthServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(VaultServiceName, st)
}

// Run listens on the configured address and serves until ctx is done.
func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
