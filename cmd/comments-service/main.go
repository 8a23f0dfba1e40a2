package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/poem-comments/internal/config"
	"github.com/pribylovaa/poem-comments/internal/content"
	commentshttp "github.com/pribylovaa/poem-comments/internal/http"
	"github.com/pribylovaa/poem-comments/internal/metrics"
	"github.com/pribylovaa/poem-comments/internal/service"
	csmongo "github.com/pribylovaa/poem-comments/internal/storage/mongo"
	commentsgrpc "github.com/pribylovaa/poem-comments/internal/transport/grpc"
	"github.com/pribylovaa/poem-comments/pkg/redact"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting comments-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("mongo_connecting", slog.String("url", redact.URL(cfg.DB.URL)))

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := csmongo.New(dbCtx, cfg)
	dbCancel()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()
	log.Info("mongo_connected")

	checker, closeChecker, err := newChecker(cfg, store, log)
	if err != nil {
		return err
	}
	defer closeChecker()

	reg := prometheus.DefaultRegisterer
	m := metrics.New(reg)
	store.WithMetrics(m)

	svc := service.New(store, checker, *cfg, m)
	log.Info("service_initialized")

	httpSrv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: commentshttp.NewRouter(svc, commentshttp.Options{
			Logger:   log,
			Timeout:  cfg.Timeouts.Service,
			Metrics:  m,
			Gatherer: prometheus.DefaultGatherer,
			Pinger:   store,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := commentsgrpc.New(log, store, commentsgrpc.Options{
		Timeout:       cfg.Timeouts.Service,
		ProbeInterval: cfg.GRPC.ProbeInterval,
		Registerer:    reg,
		Reflection:    cfg.Env == envLocal || cfg.Env == envDev,
	})

	lis, err := net.Listen("tcp", cfg.GRPC.Addr())
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)

	go func() {
		log.Info("http_listen_start", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		log.Info("grpc_listen_start", slog.String("addr", cfg.GRPC.Addr()))
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	probeCtx, probeCancel := context.WithCancel(ctx)
	defer probeCancel()
	go grpcSrv.Run(probeCtx)

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-errCh:
		log.Error("serve_failed", slog.String("err", serveErr.Error()))
	}

	probeCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	grpcSrv.Shutdown(shutdownCtx)
	log.Info("grpc_stopped")

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_failed", slog.String("err", err.Error()))
	}

	return serveErr
}

// newChecker собирает проверку существования цели:
// skip_check -> всегда true; иначе MongoDB, опционально за Redis-кэшем.
func newChecker(cfg *config.Config, store *csmongo.Mongo, log *slog.Logger) (content.Checker, func(), error) {
	if cfg.Content.SkipCheck {
		log.Warn("target existence check disabled")
		return content.Permissive{}, func() {}, nil
	}

	if cfg.Cache.RedisURL == "" {
		return store, func() {}, nil
	}

	cached, err := content.NewRedisCache(cfg.Cache.RedisURL, store, content.Options{
		Prefix:      cfg.Cache.Prefix,
		PositiveTTL: cfg.Cache.PositiveTTL,
		NegativeTTL: cfg.Cache.NegativeTTL,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("redis_connected", slog.String("url", redact.URL(cfg.Cache.RedisURL)))

	return cached, func() { _ = cached.Close() }, nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
