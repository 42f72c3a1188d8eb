package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
)

// ErrorReporter получает внутреннюю ошибку запроса (например, для письма операторам).
type ErrorReporter func(r *http.Request, err error)

// Recover перехватывает panic и отвечает 500 INTERNAL_SERVER_ERROR.
// Детали паники не утекают на клиент.
func Recover(report ErrorReporter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Штатный обрыв соединения пробрасываем серверу.
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.From(r.Context()).
					LogAttrs(r.Context(), slog.LevelError, "panic",
						slog.String("path", r.URL.Path),
						slog.Any("reason", rec),
					)

				if report != nil {
					report(r, fmt.Errorf("panic: %v", rec))
				}

				response.Internal(w, r)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
