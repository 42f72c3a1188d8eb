// Package handlers содержит HTTP-обработчики публичного API.
// Каждый обработчик разбирает тело запроса, вызывает сервис и пишет конверт ответа.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-auth/internal/http/middleware"
	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/service"
)

// maxBodyBytes — предел размера тела запроса.
const maxBodyBytes = 1 << 20

// Service — операции, которые вызывают обработчики.
type Service interface {
	middleware.Authenticator

	Register(ctx context.Context, in service.RegisterInput) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) (*models.Session, error)

	SendAccountRecovery(ctx context.Context, email string) error
	VerifyAccountRecovery(ctx context.Context, code string) error
	SendPasswordRecovery(ctx context.Context, email string) error
	SubmitPasswordRecovery(ctx context.Context, code, newPassword string) error

	SendEmailVerification(ctx context.Context, user *models.User) error
	VerifyEmail(ctx context.Context, code string) error
	SendEmailChange(ctx context.Context, user *models.User, newEmail string) error
	VerifyEmailChange(ctx context.Context, code string) error

	UpdateAccount(ctx context.Context, user *models.User, firstName, lastName, about string) (*models.User, error)
	DeleteAccount(ctx context.Context, user *models.User) error

	NotifyInternalError(ctx context.Context, request string, err error)
}

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	svc Service
}

func New(svc Service) *Handlers {
	return &Handlers{svc: svc}
}

// fail пишет ответ по ошибке сервиса. Внутренние ошибки логируются
// и уходят операторам; клиент получает только 500 INTERNAL_SERVER_ERROR.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := response.Error(w, r, err)
	if status < http.StatusInternalServerError {
		return
	}

	log.From(r.Context()).Error("internal_error",
		slog.String("request", response.Request(r)),
		slog.String("err", err.Error()),
	)
	h.svc.NotifyInternalError(r.Context(), response.Request(r), err)
}

// ReportError — ErrorReporter для middleware.Recover и middleware.Authenticate.
func (h *Handlers) ReportError(r *http.Request, err error) {
	h.svc.NotifyInternalError(r.Context(), response.Request(r), err)
}

// identity возвращает личность, привязанную middleware.Authenticate.
func identity(r *http.Request) *models.Identity {
	return middleware.IdentityFrom(r.Context())
}

// field — описание ожидаемого строкового поля тела запроса.
type field struct {
	name     string
	optional bool
}

func required(names ...string) []field {
	out := make([]field, 0, len(names))
	for _, n := range names {
		out = append(out, field{name: n})
	}
	return out
}

// readFields разбирает JSON-объект и достаёт строковые поля.
//   - отсутствующее или пустое обязательное поле попадает в missing;
//   - поле не строкового типа попадает в invalid;
//   - необязательное отсутствующее поле равно "".
//
// При ошибке ответ уже записан и ok == false.
func readFields(w http.ResponseWriter, r *http.Request, fields []field) (map[string]string, bool) {
	raw := map[string]json.RawMessage{}

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		response.InvalidData(w, r, nil)
		return nil, false
	}

	out := make(map[string]string, len(fields))
	var missing, invalid []string

	for _, f := range fields {
		v, ok := raw[f.name]
		if !ok || string(v) == "null" {
			if !f.optional {
				missing = append(missing, f.name)
			}
			continue
		}

		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			invalid = append(invalid, f.name)
			continue
		}

		if strings.TrimSpace(s) == "" && !f.optional {
			missing = append(missing, f.name)
			continue
		}

		out[f.name] = s
	}

	if len(missing) > 0 {
		response.MissingData(w, r, missing)
		return nil, false
	}

	if len(invalid) > 0 {
		response.InvalidData(w, r, invalid)
		return nil, false
	}

	return out, true
}

// passwordsFit проверяет, что пароли укладываются в предел bcrypt.
// Иначе пишет 400 INVALID_DATA со списком полей и возвращает false.
func passwordsFit(w http.ResponseWriter, r *http.Request, in map[string]string, names ...string) bool {
	var invalid []string
	for _, n := range names {
		if len(in[n]) > service.MaxPasswordBytes {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		response.InvalidData(w, r, invalid)
		return false
	}

	return true
}

type tokensView struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type sessionView struct {
	Role   string     `json:"role"`
	Tokens tokensView `json:"tokens"`
}

func viewSession(s *models.Session) sessionView {
	return sessionView{
		Role:   s.Role,
		Tokens: tokensView{Access: s.Tokens.Access, Refresh: s.Tokens.Refresh},
	}
}
