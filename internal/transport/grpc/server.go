// Package grpc — gRPC-эндпоинт сервиса: стандартный grpc.health.v1,
// статус которого следует за доступностью MongoDB.
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pribylovaa/poem-comments/pkg/interceptors"
)

// ServiceName — имя сервиса в ответах health (помимо общего "").
const ServiceName = "poem.comments.v1.Comments"

// Pinger — проверка доступности хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options — параметры сборки сервера.
type Options struct {
	// Timeout — дедлайн на unary-вызов, если клиент его не задал.
	Timeout time.Duration
	// ProbeInterval — период проверки хранилища; <=0 — статус не обновляется.
	ProbeInterval time.Duration
	// Registerer — куда регистрировать gRPC-метрики; nil — без метрик.
	Registerer prometheus.Registerer
	// Reflection включает reflection API (для grpcurl в local/dev).
	Reflection bool
}

// Server — gRPC-сервер с health-сервисом.
type Server struct {
	log      *slog.Logger
	srv      *grpc.Server
	health   *health.Server
	pinger   Pinger
	interval time.Duration
}

// New собирает gRPC-сервер: recover -> logging -> timeout -> prometheus.
func New(log *slog.Logger, pinger Pinger, opts Options) *Server {
	unary := []grpc.UnaryServerInterceptor{
		interceptors.Recover(log),
		interceptors.UnaryLoggingInterceptor(log),
		interceptors.WithTimeout(opts.Timeout),
	}
	var stream []grpc.StreamServerInterceptor

	var sm *grpc_prometheus.ServerMetrics
	if opts.Registerer != nil {
		sm = grpc_prometheus.NewServerMetrics()
		sm.EnableHandlingTimeHistogram()
		opts.Registerer.MustRegister(sm)

		unary = append(unary, sm.UnaryServerInterceptor())
		stream = append(stream, sm.StreamServerInterceptor())
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	if opts.Reflection {
		reflection.Register(srv)
	}

	if sm != nil {
		sm.InitializeMetrics(srv)
	}

	// До первой проверки считаем, что не готовы.
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		log:      log,
		srv:      srv,
		health:   hs,
		pinger:   pinger,
		interval: opts.ProbeInterval,
	}
}

// Serve блокируется до остановки сервера.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Run проверяет хранилище сразу и затем каждые interval, пока ctx жив.
func (s *Server) Run(ctx context.Context) {
	s.Probe(ctx)

	if s.interval <= 0 {
		return
	}

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Probe(ctx)
		}
	}
}

// Probe выставляет статус health по результату одного Ping.
func (s *Server) Probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.pinger.Ping(pctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.log.Warn("health_probe_failed", slog.String("err", err.Error()))
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Shutdown переводит health в NOT_SERVING и останавливает сервер;
// если ctx истёк раньше GracefulStop — останавливает принудительно.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("grpc_force_stop")
		s.srv.Stop()
		<-done
	}
}
