package middleware

import (
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/poem-comments/internal/errors"
	"github.com/pribylovaa/poem-comments/internal/service"
	logctx "github.com/pribylovaa/poem-comments/pkg/log"
)

// Recover перехватывает panic и отвечает 500/internal в общем конверте.
// Детали паники не уходят клиенту, только в лог.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logctx.From(r.Context()).
						LogAttrs(r.Context(), slog.LevelError, "panic",
							slog.String("path", r.URL.Path),
							slog.Any("reason", rec),
						)
					apierrors.WriteError(w, r, service.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
