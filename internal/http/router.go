// Package http собирает публичный HTTP API сервиса.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-blog-auth/internal/http/handlers"
	"github.com/pribylovaa/go-blog-auth/internal/http/middleware"
	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/metrics"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics // может быть nil
	Timeout  time.Duration
	BasePath string // например, "/api/v1"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.Service, opts Options) http.Handler {
	h := handlers.New(svc)

	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.RequestID(),          // X-Request-Id до логирования
		middleware.Logging(opts.Logger), // request-scoped логгер в контексте
		middleware.Recover(h.ReportError),
		middleware.Metrics(opts.Metrics),
		middleware.Timeout(opts.Timeout),
	)

	root.NotFound(response.NotFound)
	root.MethodNotAllowed(response.NotFound)

	if opts.BasePath != "" && opts.BasePath != "/" {
		sub := chi.NewRouter()
		sub.NotFound(response.NotFound)
		sub.MethodNotAllowed(response.NotFound)
		registerRoutes(sub, h, svc)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, svc)
	return root
}

// registerRoutes — единая точка регистрации всех эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, auth middleware.Authenticator) {
	guard := r.With(middleware.Authenticate(auth, h.ReportError))

	r.With(middleware.SoftAuthenticate(auth)).Get("/", h.Index)

	// сессии
	r.Post("/registration", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh-tokens", h.Refresh)
	guard.Post("/logout", h.Logout)
	guard.Get("/logout/all", h.LogoutAll)
	guard.Patch("/change-password", h.ChangePassword)

	// восстановление
	r.Post("/account-recovery/send-email", h.SendAccountRecovery)
	r.Post("/account-recovery/verify-code", h.VerifyAccountRecovery)
	r.Post("/password-recovery/send-email", h.SendPasswordRecovery)
	r.Post("/password-recovery/submit-password", h.SubmitPasswordRecovery)

	// e-mail
	guard.Get("/verify-email", h.SendEmailVerification)
	r.Post("/verify-email", h.VerifyEmail)
	guard.Post("/change-email/send-link", h.SendEmailChange)
	r.Post("/change-email/verify-code", h.VerifyEmailChange)

	// учётная запись
	guard.Get("/account", h.Account)
	guard.Patch("/account", h.UpdateAccount)
	guard.Delete("/account", h.DeleteAccount)
}
