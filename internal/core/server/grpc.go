// Package server provides gRPC server lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/solatis/subordinate/internal/core/api"
	"github.com/solatis/subordinate/internal/core/auth"
	"github.com/solatis/subordinate/internal/core/config"
)

// shutdownTimeout bounds GracefulStop before connections are closed hard.
const shutdownTimeout = 30 * time.Second

// GRPCServer manages gRPC server lifecycle.
type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	config   config.ServerConfig
	log      zerolog.Logger
}

// NewGRPCServer creates the server with its interceptor chain (timeout,
// logging, authentication) and registers the rule API and health service.
func NewGRPCServer(cfg config.ServerConfig, service api.SubordinateAPIServer, authenticator *auth.Authenticator, log zerolog.Logger) (*GRPCServer, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}

	log = log.With().Str("component", "grpc").Logger()
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			timeoutInterceptor(cfg.RequestTimeout),
			loggingInterceptor(log),
			authenticator.UnaryInterceptor(),
		),
	}
	if cfg.MaxConnections > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(cfg.MaxConnections)))
	}

	server := grpc.NewServer(opts...)
	api.Register(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
		log:    log,
	}, nil
}

// Start binds the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := s.config.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(listener)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.log.Info().Msg("shutting down")
		if err := s.Shutdown(context.Background()); err != nil {
			return err
		}
		if err := <-errChan; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	}
}

// Serve serves on an existing listener until Shutdown.
func (s *GRPCServer) Serve(listener net.Listener) error {
	s.listener = listener
	s.log.Info().Str("address", listener.Addr().String()).Msg("serving")
	return s.server.Serve(listener)
}

// Shutdown marks the server not serving and stops it gracefully, forcing
// a stop when ctx ends or after 30 seconds.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-timer.C:
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}

// timeoutInterceptor applies the request deadline unless the caller set
// an earlier one.
func timeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if timeout <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}

// loggingInterceptor logs every call with its status code and duration.
func loggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		ev := log.Debug()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("rpc")
		return resp, err
	}
}
