package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
)

// Timeout ограничивает время обработки запроса бюджетом сервиса (timeouts.service).
// Уже заданный deadline не переопределяется, d <= 0 отключает ограничение.
//
// Если бюджет исчерпан, а обработчик так ничего и не ответил, клиент получает
// 500 INTERNAL_SERVER_ERROR в формате конверта, а не пустой 200.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.status != 0 || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return
			}

			log.From(ctx).Warn("request_timeout",
				slog.String("request", response.Request(r)),
				slog.Duration("budget", d),
			)
			response.Internal(sw, r)
		})
	}
}
