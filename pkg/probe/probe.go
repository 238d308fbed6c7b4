package probe

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Option func(*Options)

type Options struct {
	port          int
	logger        *zap.Logger
	reflection    bool
	enableLogging bool
	services      []string
}

// WithPort sets the listening port. Zero picks a free port.
func WithPort(port int) Option {
	return func(o *Options) {
		o.port = port
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func WithReflection(enabled bool) Option {
	return func(o *Options) {
		o.reflection = enabled
	}
}

// WithLogging logs every health check through LoggingInterceptor.
func WithLogging(enabled bool) Option {
	return func(o *Options) {
		o.enableLogging = enabled
	}
}

// WithServices names components reported alongside the overall status.
// They start NOT_SERVING.
func WithServices(names ...string) Option {
	return func(o *Options) {
		o.services = append(o.services, names...)
	}
}

// Server answers grpc.health.v1 checks for orchestrators.
type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server
}

// New creates a new probe server using the builder options.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:   50051,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.port < 0 || options.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", options.port)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", options.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var serverOpts []grpc.ServerOption
	if options.enableLogging {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(LoggingInterceptor(logger)))
	}

	grpcServer := grpc.NewServer(serverOpts...)

	if options.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range options.services {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	return &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		logger:       logger.Named("probe"),
		healthServer: healthServer,
	}, nil
}

// SetServing flips a named component between SERVING and NOT_SERVING.
func (s *Server) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.healthServer.SetServingStatus(service, status)
	s.logger.Info("updated service health",
		zap.String("service", service),
		zap.String("status", status.String()))
}

// Serve blocks until the server stops.
func (s *Server) Serve() error {
	s.logger.Info("probe server starting", zap.String("addr", s.lis.Addr().String()))

	if err := s.grpcServer.Serve(s.lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("serve probe: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server with a timeout context.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("probe server shutting down")

	s.healthServer.Shutdown()

	done := make(chan struct{})

	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("probe server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
