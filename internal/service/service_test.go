package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-auth/internal/config"
	"github.com/pribylovaa/go-blog-auth/internal/storage/memory"
	"github.com/pribylovaa/go-blog-auth/mocks"
)

func testCfg() *config.Config {
	return &config.Config{
		Env: "test",
		Auth: config.AuthConfig{
			AccessSecret:    "access-unit-secret",
			RefreshSecret:   "refresh-unit-secret",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
			Issuer:          "blog-auth",
			MaxFailedLogins: 5,
			PasswordCost:    4,
			ImageCost:       4,
		},
		Mail: config.MailConfig{
			FrontendURL: "http://front.test",
			SendTimeout: time.Second,
		},
		Janitor: config.JanitorConfig{Retention: 3 * time.Hour},
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockMailer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	ml := mocks.NewMockMailer(ctrl)

	return New(st, ml, testCfg()), st, ml
}

// sentMail — письмо, перехваченное fakeMailer.
type sentMail struct {
	To      string
	Subject string
	HTML    string
}

// fakeMailer запоминает отправленные письма.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})

	return nil
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	require.NotEmpty(t, m.sent, "no mail sent")

	return m.sent[len(m.sent)-1]
}

// fakeClock — управляемые часы.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memEnv — сервис поверх хранилища в памяти.
type memEnv struct {
	svc   *Service
	st    *memory.Storage
	mail  *fakeMailer
	clock *fakeClock
}

func newMemEnv(t *testing.T) *memEnv {
	t.Helper()

	st := memory.New()
	ml := &fakeMailer{}
	clock := &fakeClock{now: time.Now().UTC()}

	svc := New(st, ml, testCfg())
	svc.now = clock.Now

	return &memEnv{svc: svc, st: st, mail: ml, clock: clock}
}

// codeFromMail достаёт код из ссылки последнего письма.
func (e *memEnv) codeFromMail(t *testing.T, page string) string {
	t.Helper()

	e.svc.Wait()

	re := regexp.MustCompile(`/` + page + `/([0-9A-Za-z]{32})`)
	m := re.FindStringSubmatch(e.mail.last(t).HTML)
	require.Len(t, m, 2, "no %s link in mail", page)

	return m[1]
}

func (e *memEnv) register(t *testing.T, email, password string) RegisterInput {
	t.Helper()

	in := RegisterInput{Email: email, Password: password, FirstName: "Ann", LastName: "Lee"}
	_, err := e.svc.Register(context.Background(), in)
	require.NoError(t, err)

	return in
}
