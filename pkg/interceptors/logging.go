package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/poem-comments/pkg/log"
)

// RequestIDKey — ключ metadata с идентификатором запроса (тот же, что X-Request-Id в HTTP).
const RequestIDKey = "x-request-id"

// UnaryLoggingInterceptor логирует unary-вызовы и кладёт обогащённый логгер в контекст.
//
//   - request_id берётся из metadata x-request-id, иначе генерируется UUID,
//     и возвращается клиенту в заголовке ответа;
//   - к логгеру добавляются method и peer ("-", если peer неизвестен);
//   - после handler пишется одна запись msg="grpc" с code и dur;
//     уровень зависит от кода (levelFor).
//
// Если base == nil, используется slog.Default().
func UnaryLoggingInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		rid := requestID(ctx)
		// Вне реального транспорта (unit-тесты) SetHeader вернёт ошибку — это не критично.
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, rid))

		peerStr := "-"
		if p, ok := peer.FromContext(ctx); ok && p != nil && p.Addr != nil {
			peerStr = p.Addr.String()
		}

		l := base.With(
			slog.String("request_id", rid),
			slog.String("method", info.FullMethod),
			slog.String("peer", peerStr),
		)

		resp, err := handler(log.Into(ctx, l), req)

		code := status.Code(err)
		l.Log(ctx, levelFor(code), "grpc",
			slog.String("code", code.String()),
			slog.Duration("dur", time.Since(start)),
		)

		return resp, err
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDKey); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}

	return uuid.NewString()
}

// levelFor: сбои сервера — Error, ошибки клиента — Warn, OK — Info.
func levelFor(c codes.Code) slog.Level {
	switch c {
	case codes.OK:
		return slog.LevelInfo
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable, codes.Unimplemented:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
