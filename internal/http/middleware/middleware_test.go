package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/metrics"
	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/service"
)

// capHandler — тестовый slog.Handler, который:
//   - аккумулирует базовые attrs, приходящие через Logger.With(...);
//   - собирает attrs последней записи в map[string]any.
type capHandler struct {
	mu      sync.Mutex
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) response.Envelope {
	t.Helper()

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

// stubAuth — Authenticator с фиксированным ответом.
type stubAuth struct {
	id     *models.Identity
	err    error
	tokens []string
}

func (a *stubAuth) Authenticate(_ context.Context, token string) (*models.Identity, error) {
	a.tokens = append(a.tokens, token)
	return a.id, a.err
}

func TestChain_Order(t *testing.T) {
	order := []string{}

	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-begin")
				next.ServeHTTP(w, r)
				order = append(order, name+"-end")
			})
		}
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	Chain(final, mw("m1"), mw("m2")).ServeHTTP(rr, makeReq("/chain"))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	t.Parallel()

	var seenHeader, seenCtx string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenHeader = r.Header.Get(HeaderRequestID)
		seenCtx = RequestIDFrom(r.Context())
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, makeReq("/rid"))

	respID := rr.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(respID)
	require.NoError(t, err)
	require.Equal(t, respID, seenHeader)
	require.Equal(t, respID, seenCtx)
}

func TestRequestID_UseExisting(t *testing.T) {
	t.Parallel()

	const given = "abc123-existing-id"
	var seenCtx string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCtx = RequestIDFrom(r.Context())
	})

	rr := httptest.NewRecorder()
	req := makeReq("/rid2")
	req.Header.Set(HeaderRequestID, given)
	Chain(h, RequestID()).ServeHTTP(rr, req)

	require.Equal(t, given, rr.Header().Get(HeaderRequestID))
	require.Equal(t, given, seenCtx)
}

func TestTimeout_SetsDeadline_WhenAbsent(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	Chain(h, Timeout(50*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), makeReq("/timeout"))
	require.True(t, hasDeadline)

	Chain(h, Timeout(0)).ServeHTTP(httptest.NewRecorder(), makeReq("/timeout"))
	require.False(t, hasDeadline)
}

func TestTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	t.Parallel()

	var childDL time.Time
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		childDL, _ = r.Context().Deadline()
	})

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	Chain(h, Timeout(time.Second)).ServeHTTP(httptest.NewRecorder(), makeReq("/timeout2").WithContext(parent))

	parentDL, _ := parent.Deadline()
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestTimeout_SilentHandlerGetsEnvelope(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	rr := httptest.NewRecorder()
	Chain(h, Timeout(10*time.Millisecond)).ServeHTTP(rr, makeReq("/slow"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	env := decodeEnvelope(t, rr)
	require.Equal(t, response.InfoInternalServerError, env.Info)
	require.Equal(t, "/slow [GET]", env.Request)
}

func TestTimeout_KeepsWrittenResponse(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
		<-r.Context().Done()
	})

	rr := httptest.NewRecorder()
	Chain(h, Timeout(10*time.Millisecond)).ServeHTTP(rr, makeReq("/late"))

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Zero(t, rr.Body.Len())
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	t.Parallel()

	var reported error
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	Chain(panicHandler, Recover(func(_ *http.Request, err error) { reported = err })).
		ServeHTTP(rr, makeReq("/panic"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	env := decodeEnvelope(t, rr)
	require.Equal(t, response.InfoInternalServerError, env.Info)
	require.Equal(t, "/panic [GET]", env.Request)
	require.ErrorContains(t, reported, "boom")
}

func TestRecover_RethrowsAbortHandler(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		Chain(h, Recover(nil)).ServeHTTP(httptest.NewRecorder(), makeReq("/abort"))
	})
}

func TestLogging_WritesRecord_WithStatusDurBytesAndRequestID(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	logger := slog.New(h)

	const rid = "rid-456"
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Без WriteHeader статус должен стать 200 после Write.
		_, _ = w.Write([]byte("0123456789"))
	})

	rr := httptest.NewRecorder()
	req := makeReq("/log")
	req.Header.Set(HeaderRequestID, rid)
	Chain(final, RequestID(), Logging(logger)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, h.count)
	require.Equal(t, "http", h.lastMsg)
	require.Equal(t, slog.LevelInfo, h.lastLvl)

	require.Equal(t, http.MethodGet, h.attrs["method"])
	require.Equal(t, "/log", h.attrs["path"])
	require.EqualValues(t, http.StatusOK, h.attrs["status"])
	require.EqualValues(t, 10, h.attrs["bytes"])
	require.Equal(t, rid, h.attrs["request_id"])
	require.Contains(t, h.attrs, "dur")
}

func TestLogging_ErrorLevelOn5xx(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Логгер запроса доступен обработчику.
		require.NotSame(t, slog.Default(), log.From(r.Context()))
		w.WriteHeader(http.StatusInternalServerError)
	})

	Chain(final, Logging(slog.New(h))).ServeHTTP(httptest.NewRecorder(), makeReq("/fail"))

	require.Equal(t, slog.LevelError, h.lastLvl)
}

func TestStatusWriter_CountsBytes_AndDefaultStatus200(t *testing.T) {
	t.Parallel()

	sw := newStatusWriter(httptest.NewRecorder())
	require.Equal(t, http.StatusOK, sw.Status())

	_, _ = sw.Write([]byte("abcd"))
	require.Equal(t, http.StatusOK, sw.status)
	require.Equal(t, 4, sw.count)

	// Повторная обёртка возвращает тот же writer.
	require.Same(t, sw, newStatusWriter(sw))
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), makeReq("/users/1"))
	r.ServeHTTP(httptest.NewRecorder(), makeReq("/users/2"))
	r.ServeHTTP(httptest.NewRecorder(), makeReq("/nowhere"))

	require.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, "/users/{id}", "204")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, routeUnmatched, "404")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
}

func TestAuthenticate_BindsIdentity(t *testing.T) {
	t.Parallel()

	want := &models.Identity{UserID: uuid.New(), Role: models.RoleUser}
	auth := &stubAuth{id: want}

	var got *models.Identity
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFrom(r.Context())
	})

	req := makeReq("/account")
	req.Header.Set(HeaderAccessToken, "tok")
	rr := httptest.NewRecorder()
	Chain(h, Authenticate(auth, nil)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Same(t, want, got)
	require.Equal(t, []string{"tok"}, auth.tokens)
}

func TestAuthenticate_Denials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
		info   string
	}{
		{service.ErrMissingToken, http.StatusUnauthorized, response.InfoMissingToken},
		{service.ErrInvalidToken, http.StatusUnauthorized, response.InfoInvalidToken},
		{service.ErrTokenExpired, http.StatusUnauthorized, response.InfoTokenExpired},
		{service.ErrAccessDenied, http.StatusUnauthorized, response.InfoAccessDenied},
		{errors.New("db down"), http.StatusInternalServerError, response.InfoInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.info, func(t *testing.T) {
			t.Parallel()

			called := false
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

			var reported error
			report := func(_ *http.Request, err error) { reported = err }

			rr := httptest.NewRecorder()
			Chain(h, Authenticate(&stubAuth{err: tt.err}, report)).ServeHTTP(rr, makeReq("/account"))

			require.False(t, called)
			require.Equal(t, tt.status, rr.Code)
			require.Equal(t, tt.info, decodeEnvelope(t, rr).Info)

			// Отказы 401 — штатные, операторов беспокоят только 5xx.
			if tt.status >= http.StatusInternalServerError {
				require.ErrorIs(t, reported, tt.err)
			} else {
				require.NoError(t, reported)
			}
		})
	}
}

func TestAuthenticate_InternalErrorLogged(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	storeDown := errors.New("store down")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	Chain(next, Logging(slog.New(h)), Authenticate(&stubAuth{err: storeDown}, nil)).
		ServeHTTP(rr, makeReq("/account"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	// Последняя запись — итог запроса; до неё была запись об ошибке проверки.
	require.Equal(t, 2, h.count)
	require.Equal(t, slog.LevelError, h.lastLvl)
}

func TestSoftAuthenticate_NeverBlocks(t *testing.T) {
	t.Parallel()

	var got *models.Identity
	calls := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		got = IdentityFrom(r.Context())
	})

	// Без токена Authenticator не вызывается.
	auth := &stubAuth{err: service.ErrInvalidToken}
	Chain(h, SoftAuthenticate(auth)).ServeHTTP(httptest.NewRecorder(), makeReq("/"))
	require.Nil(t, got)
	require.Empty(t, auth.tokens)

	req := makeReq("/")
	req.Header.Set(HeaderAccessToken, "bad")
	Chain(h, SoftAuthenticate(auth)).ServeHTTP(httptest.NewRecorder(), req)
	require.Nil(t, got)

	want := &models.Identity{UserID: uuid.New()}
	req = makeReq("/")
	req.Header.Set(HeaderAccessToken, "good")
	Chain(h, SoftAuthenticate(&stubAuth{id: want})).ServeHTTP(httptest.NewRecorder(), req)
	require.Same(t, want, got)
	require.Equal(t, 3, calls)
}
