// Package grpc exposes the standard gRPC health service backed by the product store.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/JobsonDeveloper/Product-Microservice/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the name clients may ask about besides the empty server-wide name.
const ServiceName = "product"

const defaultPingTimeout = 2 * time.Second

// Pinger reports whether the product store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer answers Check with the store reachability.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	store   Pinger
	timeout time.Duration
	logger  *slog.Logger
}

func NewHealthServer(store Pinger, logger *slog.Logger) *HealthServer {
	return &HealthServer{
		store:   store,
		timeout: defaultPingTimeout,
		logger:  logger.With("component", "grpc"),
	}
}

// Register attaches the health service to s.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h)
}

func (h *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "Store ping failed", logger.ErrAttr(err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
