package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
)

// HeaderAccessToken — заголовок с access-токеном.
const HeaderAccessToken = "X-Access-Token"

// Authenticator проверяет access-токен.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Identity, error)
}

type identityKey struct{}

// IdentityFrom возвращает личность, привязанную к запросу, или nil.
func IdentityFrom(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(identityKey{}).(*models.Identity)
	return id
}

// WithIdentity кладёт личность в контекст.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// Authenticate требует действительный access-токен.
// При отказе запрос завершается ответом 401/500 в формате конверта;
// 5xx логируется как ошибка и уходит в report.
func Authenticate(a Authenticator, report ErrorReporter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r.Context(), r.Header.Get(HeaderAccessToken))
			if err != nil {
				status := response.Error(w, r, err)
				if status < http.StatusInternalServerError {
					log.From(r.Context()).Debug("auth_denied",
						slog.Int("status", status),
						slog.String("err", err.Error()),
					)
					return
				}

				log.From(r.Context()).Error("auth_internal_error",
					slog.String("request", response.Request(r)),
					slog.String("err", err.Error()),
				)
				if report != nil {
					report(r, err)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(bind(r.Context(), id)))
		})
	}
}

// SoftAuthenticate не прерывает запрос: при отказе личность остаётся nil.
func SoftAuthenticate(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAccessToken)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := a.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(bind(r.Context(), id)))
		})
	}
}

func bind(ctx context.Context, id *models.Identity) context.Context {
	ctx = log.With(ctx, slog.String("user_id", id.UserID.String()))
	return WithIdentity(ctx, id)
}
