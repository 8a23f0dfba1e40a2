package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/poem-comments/internal/http/handlers"
	"github.com/pribylovaa/poem-comments/internal/http/middleware"
	"github.com/pribylovaa/poem-comments/internal/metrics"
	"github.com/pribylovaa/poem-comments/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.

	// Metrics — счётчики HTTP; nil отключает мидлвар метрик.
	Metrics *metrics.Metrics
	// Gatherer — источник для /metrics; nil — эндпоинт не регистрируется.
	Gatherer prometheus.Gatherer
	// Pinger — проверка хранилища для /healthz.
	Pinger handlers.Pinger
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
// Ops-эндпоинты (/livez, /healthz, /metrics) всегда на корне и без таймаута.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Metrics),
	)

	h := handlers.New(svc, opts.Pinger)

	root.Get("/livez", h.Livez)
	root.Get("/healthz", h.Healthz)
	if opts.Gatherer != nil {
		root.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	api := chi.NewRouter()
	api.Use(middleware.Timeout(opts.Timeout))
	registerRoutes(api, h)

	if opts.BasePath != "" {
		root.Mount(opts.BasePath, api)
		return root
	}

	root.Mount("/", api)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Post("/comments", h.CreateComment)
	r.Get("/comments", h.ListComments)
	r.Get("/comments/count", h.CountComments)
	r.Get("/comments/hot", h.HotComments)
	r.Get("/comments/latest", h.LatestComments)
	r.Get("/comments/audit", h.AuditComments)
	r.Get("/comments/{id}", h.GetComment)
	r.Delete("/comments/{id}", h.DeleteComment)
	r.Post("/comments/{id}/like", h.LikeComment)
	r.Delete("/comments/{id}/like", h.UnlikeComment)

	r.Get("/users/{userId}/comments", h.UserComments)
}
