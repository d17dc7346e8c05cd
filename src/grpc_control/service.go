package grpc_control

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// BackendService is the health service name that tracks the trade backend.
const BackendService = "dashboard.backend"

// probeRequest is cheap on the backend and needs no parameters.
var probeRequest = models.MRequest{Method: http.MethodGet, Path: "/api/summary/trades-by-fund"}

// -----------------------------------------------------------------------------

// ControlService serves the standard gRPC health protocol. The overall
// service is SERVING while the dashboard runs; BackendService follows the
// probe loop.
type ControlService struct {
	Config *models.MConfig
	Logger *logger.Logger
	Client interfaces.IBackendClient
	Health *health.Server

	server *grpc.Server
}

// NewControlService creates a new instance of ControlService
func NewControlService(cfg *models.MConfig, log *logger.Logger, client interfaces.IBackendClient) *ControlService {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(BackendService, healthpb.HealthCheckResponse_UNKNOWN)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	return &ControlService{
		Config: cfg,
		Logger: log,
		Client: client,
		Health: hs,
		server: server,
	}
}

// -----------------------------------------------------------------------------

// Serve listens on grpc_host:grpc_port until Stop.
func (s *ControlService) Serve() error {
	port := s.Config.GrpcPort
	if port == 0 {
		port = 50051 // Default fallback
	}
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.Config.GrpcHost, port))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *ControlService) ServeListener(lis net.Listener) error {
	s.Logger.Info("Starting gRPC health server on %s", lis.Addr())
	return s.server.Serve(lis)
}

// Stop marks everything NOT_SERVING and stops the server.
func (s *ControlService) Stop() {
	s.Health.Shutdown()
	s.server.GracefulStop()
}

// -----------------------------------------------------------------------------

// RunProbe checks the backend every interval until ctx is done.
func (s *ControlService) RunProbe(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

// Probe sends one request and records the backend status.
func (s *ControlService) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	timeout := time.Duration(s.Config.Network.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := s.Client.Send(pctx, probeRequest)
	status := healthpb.HealthCheckResponse_SERVING
	if !reachable(err) {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.Logger.Warning("gRPC: backend probe failed: %v", err)
	}

	s.Health.SetServingStatus(BackendService, status)
	return status
}

// reachable treats any answer short of a network failure or a 5xx as a
// live backend; an expired session still means the backend is up.
func reachable(err error) bool {
	if err == nil {
		return true
	}
	de := helpers.AsDashboardError(err)
	switch de.Kind {
	case helpers.KindAuth, helpers.KindValidation:
		return true
	case helpers.KindTransport:
		return de.StatusCode != 0 && de.StatusCode < http.StatusInternalServerError
	}
	return true
}
