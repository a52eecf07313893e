package obs

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealth serves the standard grpc.health.v1 service so orchestrators that
// speak gRPC can check the process. Readiness mirrors the HTTP /readyz check.
type GRPCHealth struct {
	Server *grpc.Server
	Logger *slog.Logger
	// Service is reported alongside the overall "" entry.
	Service string

	health *health.Server
}

func NewGRPCHealth(service string, logger *slog.Logger) *GRPCHealth {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	g := &GRPCHealth{Server: srv, Logger: logger, Service: service, health: h}
	g.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return g
}

func (g *GRPCHealth) set(status healthpb.HealthCheckResponse_ServingStatus) {
	g.health.SetServingStatus("", status)
	if g.Service != "" {
		g.health.SetServingStatus(g.Service, status)
	}
}

// Check runs ready once and publishes the result.
func (g *GRPCHealth) Check(ctx context.Context, ready func(ctx context.Context) error) {
	status := healthpb.HealthCheckResponse_SERVING
	if ready != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := ready(ctx)
		cancel()
		if err != nil {
			g.Logger.Warn("readiness check failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	g.set(status)
}

// Watch repeats Check every interval until ctx is done, then marks the
// process as not serving.
func (g *GRPCHealth) Watch(ctx context.Context, interval time.Duration, ready func(ctx context.Context) error) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	g.Check(ctx, ready)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			g.health.Shutdown()
			return
		case <-ticker.C:
			g.Check(ctx, ready)
		}
	}
}

// Serve blocks until the server stops. A graceful stop is not an error.
func (g *GRPCHealth) Serve(lis net.Listener) error {
	if err := g.Server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (g *GRPCHealth) Stop() {
	g.health.Shutdown()
	g.Server.GracefulStop()
}
