package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-auth/internal/config"
	"github.com/pribylovaa/go-blog-auth/internal/http/middleware"
	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/service"
	"github.com/pribylovaa/go-blog-auth/internal/storage/memory"
)

const base = "/api/v1"

type mailbox struct {
	mu   sync.Mutex
	html []string
}

func (m *mailbox) Send(_ context.Context, _, _, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.html = append(m.html, html)
	return nil
}

func (m *mailbox) code(t *testing.T, page string) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	require.NotEmpty(t, m.html)
	match := regexp.MustCompile(`/` + page + `/([0-9A-Za-z]{32})`).FindStringSubmatch(m.html[len(m.html)-1])
	require.Len(t, match, 2)

	return match[1]
}

type apiEnv struct {
	h    http.Handler
	svc  *service.Service
	mail *mailbox
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()

	cfg := &config.Config{
		Env: "test",
		Auth: config.AuthConfig{
			AccessSecret:    "access-http-secret",
			RefreshSecret:   "refresh-http-secret",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
			Issuer:          "blog-auth",
			MaxFailedLogins: 3,
			PasswordCost:    4,
			ImageCost:       4,
		},
		Mail: config.MailConfig{FrontendURL: "http://front.test"},
	}

	mb := &mailbox{}
	svc := service.New(memory.New(), mb, cfg)

	return &apiEnv{
		h:    NewRouter(svc, Options{BasePath: base, Timeout: 5 * time.Second}),
		svc:  svc,
		mail: mb,
	}
}

type reply struct {
	Status int
	Env    response.Envelope
	Data   map[string]any
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) reply {
	t.Helper()

	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, base+path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.HeaderAccessToken, token)
	}

	rr := httptest.NewRecorder()
	e.h.ServeHTTP(rr, req)

	var out struct {
		response.Envelope
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	require.Equal(t, rr.Code, out.Status)

	return reply{Status: rr.Code, Env: out.Envelope, Data: out.Data}
}

func tokensOf(t *testing.T, r reply) (string, string) {
	t.Helper()

	tokens, ok := r.Data["tokens"].(map[string]any)
	require.True(t, ok, "no tokens in %v", r.Data)

	return tokens["access"].(string), tokens["refresh"].(string)
}

func (e *apiEnv) register(t *testing.T, email, password string) (string, string) {
	t.Helper()

	r := e.do(t, http.MethodPost, "/registration", "", map[string]string{
		"email": email, "password": password, "firstName": "Ann", "lastName": "Lee",
	})
	require.Equal(t, http.StatusOK, r.Status, r.Env.Info)
	require.Equal(t, "user", r.Data["role"])

	return tokensOf(t, r)
}

func TestAPI_Envelope(t *testing.T) {
	t.Parallel()

	api := newAPI(t)

	r := api.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	require.Equal(t, response.InfoOK, r.Env.Info)
	require.Equal(t, "NO_ADDITIONAL_INFORMATION", r.Env.Misc)
	require.Equal(t, base+"/ [GET]", r.Env.Request)
	require.Nil(t, r.Data)

	r = api.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, r.Status)
	require.Equal(t, response.InfoResourceNotFound, r.Env.Info)

	r = api.do(t, http.MethodDelete, "/login", "", nil)
	require.Equal(t, http.StatusNotFound, r.Status)
}

func TestAPI_Validation(t *testing.T) {
	t.Parallel()

	api := newAPI(t)

	tests := []struct {
		name string
		body any
		info string
		key  string
		want []any
	}{
		{"empty_body", nil, response.InfoMissingData, "missing", []any{"email", "password"}},
		{"blank_field", map[string]any{"email": "  ", "password": "x"}, response.InfoMissingData, "missing", []any{"email"}},
		{"non_string", map[string]any{"email": "a@b.c", "password": 42}, response.InfoInvalidData, "invalid", []any{"password"}},
		{"malformed_json", "{", response.InfoInvalidData, "", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := api.do(t, http.MethodPost, "/login", "", tt.body)
			require.Equal(t, http.StatusBadRequest, r.Status)
			require.Equal(t, tt.info, r.Env.Info)
			if tt.key != "" {
				require.Equal(t, tt.want, r.Data[tt.key])
			}
		})
	}

	r := api.do(t, http.MethodPost, "/registration", "", map[string]string{
		"email": "bad", "password": "x", "firstName": "A", "lastName": "B",
	})
	require.Equal(t, http.StatusBadRequest, r.Status)
	require.Equal(t, []any{"email"}, r.Data["invalid"])
}

func TestAPI_SessionLifecycle(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	access, refresh := api.register(t, "u@test.com", "pw1")

	r := api.do(t, http.MethodPost, "/registration", "", map[string]string{
		"email": "u@test.com", "password": "x", "firstName": "A", "lastName": "B",
	})
	require.Equal(t, http.StatusForbidden, r.Status)
	require.Equal(t, response.InfoEmailAlreadyInUse, r.Env.Info)

	r = api.do(t, http.MethodGet, "/", access, nil)
	require.Equal(t, "user", r.Data["role"])
	require.NotEmpty(t, r.Data["id"])

	r = api.do(t, http.MethodGet, "/account", "", nil)
	require.Equal(t, http.StatusUnauthorized, r.Status)
	require.Equal(t, response.InfoMissingToken, r.Env.Info)

	r = api.do(t, http.MethodGet, "/account", "garbage", nil)
	require.Equal(t, response.InfoInvalidToken, r.Env.Info)

	r = api.do(t, http.MethodGet, "/account", access, nil)
	require.Equal(t, http.StatusOK, r.Status)
	require.Equal(t, "u@test.com", r.Data["email"])
	require.Equal(t, false, r.Data["emailIsVerified"])
	require.Equal(t, "", r.Data["about"])

	// Refresh одноразовый.
	r = api.do(t, http.MethodPost, "/refresh-tokens", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, r.Status)
	_, refresh2 := tokensOf(t, r)

	r = api.do(t, http.MethodPost, "/refresh-tokens", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusUnauthorized, r.Status)
	require.Equal(t, response.InfoAccessDenied, r.Env.Info)

	// Смена пароля отзывает всё выданное ранее.
	r = api.do(t, http.MethodPatch, "/change-password", access, map[string]string{"oldPassword": "bad", "newPassword": "pw2"})
	require.Equal(t, http.StatusBadRequest, r.Status)
	require.Equal(t, response.InfoOldPasswordIsInvalid, r.Env.Info)

	r = api.do(t, http.MethodPatch, "/change-password", access, map[string]string{"oldPassword": "pw1", "newPassword": "pw2"})
	require.Equal(t, http.StatusOK, r.Status)
	require.NotContains(t, r.Data, "role")
	access3, _ := tokensOf(t, r)

	r = api.do(t, http.MethodGet, "/account", access, nil)
	require.Equal(t, response.InfoInvalidToken, r.Env.Info)
	r = api.do(t, http.MethodPost, "/refresh-tokens", "", map[string]string{"refreshToken": refresh2})
	require.Equal(t, response.InfoAccessDenied, r.Env.Info)

	r = api.do(t, http.MethodGet, "/logout/all", access3, nil)
	require.Equal(t, http.StatusOK, r.Status)
	r = api.do(t, http.MethodGet, "/account", access3, nil)
	require.Equal(t, response.InfoInvalidToken, r.Env.Info)

	r = api.do(t, http.MethodPost, "/login", "", map[string]string{"email": "u@test.com", "password": "pw2"})
	require.Equal(t, http.StatusOK, r.Status)
	access4, refresh4 := tokensOf(t, r)

	r = api.do(t, http.MethodPost, "/logout", access4, map[string]string{"refreshToken": refresh4})
	require.Equal(t, http.StatusOK, r.Status)
	r = api.do(t, http.MethodPost, "/refresh-tokens", "", map[string]string{"refreshToken": refresh4})
	require.Equal(t, response.InfoAccessDenied, r.Env.Info)
}

func TestAPI_LockoutAndAccountRecovery(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	api.register(t, "lock@test.com", "pw")

	for i := 0; i < 3; i++ {
		r := api.do(t, http.MethodPost, "/login", "", map[string]string{"email": "lock@test.com", "password": "wrong"})
		require.Equal(t, response.InfoAccessDenied, r.Env.Info)
	}

	r := api.do(t, http.MethodPost, "/login", "", map[string]string{"email": "lock@test.com", "password": "pw"})
	require.Equal(t, http.StatusForbidden, r.Status)
	require.Equal(t, response.InfoAccountIsBlocked, r.Env.Info)

	r = api.do(t, http.MethodPost, "/account-recovery/send-email", "", map[string]string{"email": "lock@test.com"})
	require.Equal(t, http.StatusOK, r.Status)
	api.svc.Wait()
	code := api.mail.code(t, "account-recovery")

	r = api.do(t, http.MethodPost, "/account-recovery/verify-code", "", map[string]string{"code": "x"})
	require.Equal(t, http.StatusBadRequest, r.Status)
	require.Equal(t, response.InfoInvalidRecoveryCode, r.Env.Info)

	r = api.do(t, http.MethodPost, "/account-recovery/verify-code", "", map[string]string{"code": code})
	require.Equal(t, http.StatusOK, r.Status)

	r = api.do(t, http.MethodPost, "/login", "", map[string]string{"email": "lock@test.com", "password": "pw"})
	require.Equal(t, http.StatusOK, r.Status)
}

func TestAPI_PasswordRecovery(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	api.register(t, "pr@test.com", "old")

	r := api.do(t, http.MethodPost, "/password-recovery/send-email", "", map[string]string{"email": "ghost@test.com"})
	require.Equal(t, http.StatusUnauthorized, r.Status)

	r = api.do(t, http.MethodPost, "/password-recovery/send-email", "", map[string]string{"email": "pr@test.com"})
	require.Equal(t, http.StatusOK, r.Status)
	api.svc.Wait()
	code := api.mail.code(t, "password-recovery")

	r = api.do(t, http.MethodPost, "/password-recovery/submit-password", "", map[string]string{"code": code})
	require.Equal(t, response.InfoMissingData, r.Env.Info)
	require.Equal(t, []any{"newPassword"}, r.Data["missing"])

	r = api.do(t, http.MethodPost, "/password-recovery/submit-password", "", map[string]string{"code": code, "newPassword": "new"})
	require.Equal(t, http.StatusOK, r.Status)

	r = api.do(t, http.MethodPost, "/login", "", map[string]string{"email": "pr@test.com", "password": "new"})
	require.Equal(t, http.StatusOK, r.Status)
}

func TestAPI_PasswordLengthLimit(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	long := strings.Repeat("p", service.MaxPasswordBytes+1)

	r := api.do(t, http.MethodPost, "/registration", "", map[string]string{
		"email": "cap@test.com", "password": long, "firstName": "A", "lastName": "B",
	})
	require.Equal(t, http.StatusBadRequest, r.Status)
	require.Equal(t, response.InfoInvalidData, r.Env.Info)
	require.Equal(t, []any{"password"}, r.Data["invalid"])

	// Отказ не оставил пользователя: адрес свободен.
	access, refresh := api.register(t, "cap@test.com", "pw1")

	r = api.do(t, http.MethodPatch, "/change-password", access, map[string]string{
		"oldPassword": "pw1", "newPassword": long,
	})
	require.Equal(t, http.StatusBadRequest, r.Status)
	require.Equal(t, []any{"newPassword"}, r.Data["invalid"])

	// Сессии не тронуты.
	r = api.do(t, http.MethodGet, "/account", access, nil)
	require.Equal(t, http.StatusOK, r.Status)

	r = api.do(t, http.MethodPost, "/password-recovery/send-email", "", map[string]string{"email": "cap@test.com"})
	require.Equal(t, http.StatusOK, r.Status)
	api.svc.Wait()
	code := api.mail.code(t, "password-recovery")

	r = api.do(t, http.MethodPost, "/password-recovery/submit-password", "", map[string]string{"code": code, "newPassword": long})
	require.Equal(t, http.StatusBadRequest, r.Status)
	require.Equal(t, []any{"newPassword"}, r.Data["invalid"])

	r = api.do(t, http.MethodPost, "/refresh-tokens", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, r.Status)

	r = api.do(t, http.MethodPost, "/password-recovery/submit-password", "", map[string]string{"code": code, "newPassword": "pw2"})
	require.Equal(t, http.StatusOK, r.Status)
}

func TestAPI_EmailVerificationAndChange(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	access, _ := api.register(t, "e@test.com", "pw")
	api.register(t, "other@test.com", "pw")

	r := api.do(t, http.MethodGet, "/verify-email", access, nil)
	require.Equal(t, http.StatusOK, r.Status)
	api.svc.Wait()
	code := api.mail.code(t, "verify-email")

	r = api.do(t, http.MethodPost, "/verify-email", "", map[string]string{"code": code})
	require.Equal(t, http.StatusOK, r.Status)

	r = api.do(t, http.MethodPost, "/verify-email", "", map[string]string{"code": code})
	require.Equal(t, http.StatusForbidden, r.Status)
	require.Equal(t, response.InfoInvalidVerificationCode, r.Env.Info)

	r = api.do(t, http.MethodGet, "/verify-email", access, nil)
	require.Equal(t, http.StatusBadRequest, r.Status)
	require.Equal(t, response.InfoEmailAlreadyVerified, r.Env.Info)

	r = api.do(t, http.MethodPost, "/change-email/send-link", access, map[string]string{"newEmail": "other@test.com"})
	require.Equal(t, http.StatusForbidden, r.Status)
	require.Equal(t, response.InfoEmailAlreadyInUse, r.Env.Info)

	r = api.do(t, http.MethodPost, "/change-email/send-link", access, map[string]string{"newEmail": "nope"})
	require.Equal(t, []any{"newEmail"}, r.Data["invalid"])

	r = api.do(t, http.MethodPost, "/change-email/send-link", access, map[string]string{"newEmail": "fresh@test.com"})
	require.Equal(t, http.StatusOK, r.Status)
	api.svc.Wait()
	code = api.mail.code(t, "change-email")

	r = api.do(t, http.MethodPost, "/change-email/verify-code", "", map[string]string{"code": code})
	require.Equal(t, http.StatusOK, r.Status)

	r = api.do(t, http.MethodGet, "/account", access, nil)
	require.Equal(t, "fresh@test.com", r.Data["email"])
	require.Equal(t, true, r.Data["emailIsVerified"])
}

func TestAPI_AccountUpdateAndDelete(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	access, _ := api.register(t, "acc@test.com", "pw")

	r := api.do(t, http.MethodPatch, "/account", access, map[string]string{"firstName": "Bob"})
	require.Equal(t, response.InfoMissingData, r.Env.Info)
	require.Equal(t, []any{"lastName"}, r.Data["missing"])

	r = api.do(t, http.MethodPatch, "/account", access, map[string]string{"firstName": "Bob", "lastName": "Ray", "about": "hi"})
	require.Equal(t, http.StatusOK, r.Status)
	require.Equal(t, "Bob", r.Data["firstName"])
	require.Equal(t, "hi", r.Data["about"])

	r = api.do(t, http.MethodDelete, "/account", access, nil)
	require.Equal(t, http.StatusOK, r.Status)

	r = api.do(t, http.MethodGet, "/account", access, nil)
	require.Equal(t, http.StatusUnauthorized, r.Status)
	require.Equal(t, response.InfoAccessDenied, r.Env.Info)
}
