// interceptors — серверные gRPC-интерсепторы: таймаут, восстановление после паник, логирование.
package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

// WithTimeout навешивает таймаут d на контекст запроса, если дедлайна ещё нет.
//
//  1. d <= 0 — handler вызывается с исходным контекстом;
//  2. дедлайн уже задан — не переопределяется;
//  3. иначе — context.WithTimeout(ctx, d) с гарантированным cancel().
//
// По истечении дедлайна handler обычно возвращает context.DeadlineExceeded,
// gRPC-рантайм транслирует это в codes.DeadlineExceeded.
func WithTimeout(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if d <= 0 {
			return handler(ctx, req)
		}

		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}

		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		return handler(ctx, req)
	}
}
