// Package grpc serves the standard gRPC health protocol for the service.
// The overall status follows a periodic ping of the user directory.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	// ServiceName is reported alongside the overall ("") status.
	ServiceName = "microauth.Auth"

	defaultPingInterval = 10 * time.Second
	pingTimeout         = 3 * time.Second
)

// Pinger reports whether the user directory is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthServer struct {
	address  string
	pinger   Pinger
	logger   logging.Logger
	interval time.Duration
	health   *health.Server
	started  chan net.Addr
}

func NewHealthServer(a string, l logging.Logger, p Pinger) *HealthServer {
	return &HealthServer{
		address:  a,
		pinger:   p,
		logger:   l.With("module", "grpc_health"),
		interval: defaultPingInterval,
		health:   health.NewServer(),
		started:  make(chan net.Addr, 1),
	}
}

// WithInterval sets how often the directory is pinged.
func (s *HealthServer) WithInterval(d time.Duration) *HealthServer {
	s.interval = d
	return s
}

// Started yields the bound address once the listener is open.
func (s *HealthServer) Started() <-chan net.Addr {
	return s.started
}

func (s *HealthServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// check pings the directory once and publishes the result.
func (s *HealthServer) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "directory ping failed", "error", err)
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	return s.serve(ctx, func() (net.Listener, error) { return net.Listen("tcp", s.address) })
}

func (s *HealthServer) serve(ctx context.Context, listen func() (net.Listener, error)) error {
	lis, err := listen()
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.check(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.watch(ctx)
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", lis.Addr().String())
	s.started <- lis.Addr()

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-done
	return nil
}
