package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/tripsaga/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	log        *slog.Logger
}

func NewServers(handler http.Handler, log *slog.Logger) *Servers {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run starts the HTTP API and the gRPC health service and blocks until ctx is
// cancelled or a server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, log *slog.Logger) error {
	httpLis, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		return fmt.Errorf("listen HTTP %s: %w", cfg.HTTP.Address, err)
	}

	var grpcLis net.Listener
	if cfg.GRPC.Address != "" {
		grpcLis, err = net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
		}
	}

	return NewServers(handler, log).Serve(ctx, httpLis, grpcLis)
}

// Serve takes ownership of the listeners. grpcLis may be nil to skip the
// health service.
func (s *Servers) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	errCh := make(chan error, 2)

	if grpcLis != nil {
		go func() { errCh <- s.grpcServer.Serve(grpcLis) }()
		s.log.InfoContext(ctx, "grpc health server listening", "address", grpcLis.Addr().String())
	}
	go func() {
		if err := s.httpServer.Serve(httpLis); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.InfoContext(ctx, "http server listening", "address", httpLis.Addr().String())
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	select {
	case err := <-errCh:
		s.health.Shutdown()
		s.grpcServer.Stop()
		_ = s.httpServer.Close()
		return err
	case <-ctx.Done():
		s.health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
