package mongo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

// testTimeout — общий дедлайн на операции с БД в тестах.
const testTimeout = 10 * time.Second

// TestMain запускает MongoDB в контейнере один раз на весь пакет.
// Каждый тест работает в собственной базе (см. mustNewStorage).
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	_ = os.Setenv("DATABASE_URL", fmt.Sprintf("mongodb://%s:%s", host, port.Port()))

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

// mustNewStorage подключается к отдельной тестовой БД и удаляет её по завершении теста.
func mustNewStorage(t *testing.T) *Storage {
	t.Helper()

	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("set GO_TEST_INTEGRATION=1 to run MongoDB integration tests")
	}

	base := strings.TrimRight(os.Getenv("DATABASE_URL"), "/")
	dbURL := base + "/auth_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	s, err := New(ctx, dbURL, time.Hour)
	require.NoError(t, err, "DATABASE_URL=%s", dbURL)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = s.db.Drop(ctx)
		_ = s.Close(ctx)
	})

	return s
}

func testCtx(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)

	return ctx
}

func newUser(email string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Ann",
		LastName:  "Lee",
		Role:      models.RoleUser,
		Status:    models.StatusActive,
		State:     models.StateActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDatabaseFromURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"mongodb://localhost:27017/auth", "auth"},
		{"mongodb://localhost:27017/auth?retryWrites=true", "auth"},
		{"mongodb://localhost:27017/", defaultDBName},
		{"mongodb://localhost:27017", defaultDBName},
		{"::bad::", defaultDBName},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, databaseFromURI(tt.in), tt.in)
	}
}

func TestNew_EmptyURL(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "", 0)
	require.Error(t, err)
}

func TestUsers_UniqueActiveEmail(t *testing.T) {
	s := mustNewStorage(t)
	ctx := testCtx(t)

	u := newUser("Mixed@Test.com")
	require.NoError(t, s.CreateUser(ctx, u))
	require.ErrorIs(t, s.CreateUser(ctx, newUser("mixed@test.com")), storage.ErrAlreadyExists)

	got, err := s.UserByEmail(ctx, "MIXED@test.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "mixed@test.com", got.Email)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.UserByID(ctx, u.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, s.CreateUser(ctx, newUser("mixed@test.com")))
}

func TestUsers_RegisterFailedLogin_Concurrent(t *testing.T) {
	s := mustNewStorage(t)
	ctx := testCtx(t)

	u := newUser("lock@test.com")
	require.NoError(t, s.CreateUser(ctx, u))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.RegisterFailedLogin(ctx, u.ID, 5)
		}()
	}
	wg.Wait()

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.FailedLoginAttempts)
	require.True(t, got.IsBlocked())

	require.NoError(t, s.UnblockUser(ctx, u.ID))
	got, err = s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.IsBlocked())
	require.Zero(t, got.FailedLoginAttempts)
}

func TestUsers_SetEmailAndProfile(t *testing.T) {
	s := mustNewStorage(t)
	ctx := testCtx(t)

	a, b := newUser("a@test.com"), newUser("b@test.com")
	require.NoError(t, s.CreateUser(ctx, a))
	require.NoError(t, s.CreateUser(ctx, b))

	require.ErrorIs(t, s.SetEmail(ctx, a.ID, "B@test.com"), storage.ErrAlreadyExists)
	require.NoError(t, s.SetEmail(ctx, a.ID, "c@test.com"))

	about := "hello"
	got, err := s.UpdateProfile(ctx, a.ID, models.ProfileUpdate{About: &about})
	require.NoError(t, err)
	require.Equal(t, "c@test.com", got.Email)
	require.True(t, got.EmailVerified)
	require.Equal(t, "hello", got.About)
	require.Equal(t, "Ann", got.FirstName)

	require.ErrorIs(t, s.MarkEmailVerified(ctx, uuid.New()), storage.ErrNotFound)
}

func TestAccessImage_RotationKeepsSingleActive(t *testing.T) {
	s := mustNewStorage(t)
	ctx := testCtx(t)
	uid := uuid.New()

	for _, img := range []string{"one", "two", "three"} {
		require.NoError(t, s.SetAccessImage(ctx, &models.AccessImage{ID: uuid.New(), UserID: uid, Image: img}))
	}

	n, err := s.images.CountDocuments(ctx, map[string]any{"user_id": uid.String(), "state": "active"})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := s.ActiveAccessImage(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, "three", got.Image)

	require.NoError(t, s.RevokeAccessImages(ctx, uid))
	_, err = s.ActiveAccessImage(ctx, uid)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRefreshToken_ConsumeExactlyOnce(t *testing.T) {
	s := mustNewStorage(t)
	ctx := testCtx(t)

	tok := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Image:     "img",
		Token:     "signed-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.SaveRefreshToken(ctx, tok))
	require.ErrorIs(t, s.SaveRefreshToken(ctx, &models.RefreshToken{ID: uuid.New(), UserID: tok.UserID, Token: tok.Token, ExpiresAt: tok.ExpiresAt}), storage.ErrAlreadyExists)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.ConsumeRefreshToken(ctx, tok.ID) == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins)
	_, err := s.RefreshTokenByToken(ctx, tok.Token)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCodesAndEmailChanges(t *testing.T) {
	s := mustNewStorage(t)
	ctx := testCtx(t)
	uid := uuid.New()

	c1 := &models.Code{ID: uuid.New(), UserID: uid, Purpose: models.PurposeEmailChange, Code: "c1", ExpiresAt: time.Now().Add(time.Hour)}
	c2 := &models.Code{ID: uuid.New(), UserID: uid, Purpose: models.PurposeEmailChange, Code: "c2", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.SetCode(ctx, c1))
	require.NoError(t, s.SetCode(ctx, c2))

	_, err := s.CodeByValue(ctx, models.PurposeEmailChange, "c1")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.CodeByValue(ctx, models.PurposeAccountRecovery, "c2")
	require.ErrorIs(t, err, storage.ErrNotFound)

	ch := &models.EmailChange{ID: uuid.New(), UserID: uid, CodeID: c2.ID, OldEmail: "old@test.com", NewEmail: "new@test.com"}
	require.NoError(t, s.SetEmailChange(ctx, ch))

	got, err := s.EmailChangeByCode(ctx, c2.ID)
	require.NoError(t, err)
	require.Equal(t, "new@test.com", got.NewEmail)

	require.NoError(t, s.ConsumeCode(ctx, c2.ID))
	require.ErrorIs(t, s.ConsumeCode(ctx, c2.ID), storage.ErrNotFound)

	require.NoError(t, s.RevokeEmailChanges(ctx, uid))
	_, err = s.EmailChangeByCode(ctx, c2.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteExpiredTokens(t *testing.T) {
	s := mustNewStorage(t)
	ctx := testCtx(t)
	uid := uuid.New()
	past := time.Now().Add(-time.Hour)

	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{ID: uuid.New(), UserID: uid, Token: "old", ExpiresAt: past}))
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{ID: uuid.New(), UserID: uid, Token: "fresh", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, s.SetCode(ctx, &models.Code{ID: uuid.New(), UserID: uid, Purpose: models.PurposePasswordRecovery, Code: "x", ExpiresAt: past}))

	require.NoError(t, s.DeleteExpiredTokens(ctx, time.Now()))

	_, err := s.RefreshTokenByToken(ctx, "old")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.RefreshTokenByToken(ctx, "fresh")
	require.NoError(t, err)
	_, err = s.CodeByValue(ctx, models.PurposePasswordRecovery, "x")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// ttlSeconds возвращает expireAfterSeconds TTL-индекса коллекции.
func ttlSeconds(t *testing.T, ctx context.Context, coll *mongodriver.Collection) int64 {
	t.Helper()

	cur, err := coll.Indexes().List(ctx)
	require.NoError(t, err)

	var specs []bson.M
	require.NoError(t, cur.All(ctx, &specs))

	for _, spec := range specs {
		if _, ok := spec["expireAfterSeconds"]; !ok {
			continue
		}
		switch v := spec["expireAfterSeconds"].(type) {
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}

	t.Fatalf("no ttl index on %s", coll.Name())
	return 0
}

func TestIndexes_TTLFollowsRetention(t *testing.T) {
	s := mustNewStorage(t)
	ctx := testCtx(t)

	// Истёкшие записи живут ещё retention, а не исчезают в момент истечения.
	require.EqualValues(t, 3600, ttlSeconds(t, ctx, s.refresh))
	require.EqualValues(t, 3600, ttlSeconds(t, ctx, s.codes))

	// Повторный запуск с другим сроком меняет существующий индекс.
	dbURL := strings.TrimRight(os.Getenv("DATABASE_URL"), "/") + "/" + s.db.Name()
	s2, err := New(ctx, dbURL, 2*time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.Close(context.Background()) })

	require.EqualValues(t, 7200, ttlSeconds(t, ctx, s2.refresh))
	require.EqualValues(t, 7200, ttlSeconds(t, ctx, s2.codes))
}
