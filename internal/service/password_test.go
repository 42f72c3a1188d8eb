package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

// longPassword не помещается в bcrypt.
var longPassword = strings.Repeat("p", MaxPasswordBytes+8)

func TestHashPassword_RejectsTooLong(t *testing.T) {
	t.Parallel()

	_, err := hashPassword(longPassword, 4)
	require.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = hashPassword(strings.Repeat("p", MaxPasswordBytes), 4)
	require.NoError(t, err)
}

func TestRegister_TooLongPasswordLeavesNoUser(t *testing.T) {
	t.Parallel()

	env := newMemEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, RegisterInput{Email: "long@test.com", Password: longPassword, FirstName: "A", LastName: "B"})
	require.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = env.st.UserByEmail(ctx, "long@test.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Адрес свободен, вход после нормальной регистрации работает.
	in := env.register(t, "long@test.com", "pw1")
	_, err = env.svc.Login(ctx, in.Email, in.Password)
	require.NoError(t, err)
}

func TestRegister_RollsBackOnStoreFailure(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	dbErr := errors.New("db down")

	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().SetPassword(gomock.Any(), gomock.Any()).Return(dbErr)
	st.EXPECT().SetAccessImage(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	st.EXPECT().RevokePasswords(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().RevokeAccessImages(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().DeleteUser(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "user@example.com", Password: "pw"})
	require.ErrorIs(t, err, dbErr)
}

func TestChangePassword_TooLongKeepsSessions(t *testing.T) {
	t.Parallel()

	env := newMemEnv(t)
	ctx := context.Background()

	in := env.register(t, "keep@test.com", "pw1")
	sess, err := env.svc.Login(ctx, in.Email, in.Password)
	require.NoError(t, err)

	id, err := env.svc.Authenticate(ctx, sess.Tokens.Access)
	require.NoError(t, err)

	_, err = env.svc.ChangePassword(ctx, id.User, "pw1", longPassword)
	require.ErrorIs(t, err, ErrPasswordTooLong)

	// Ни один образ не ротирован, пароль прежний.
	_, err = env.svc.Authenticate(ctx, sess.Tokens.Access)
	require.NoError(t, err)

	_, err = env.svc.Refresh(ctx, sess.Tokens.Refresh)
	require.NoError(t, err)

	_, err = env.svc.Login(ctx, in.Email, "pw1")
	require.NoError(t, err)
}

func TestSubmitPasswordRecovery_TooLongKeepsCodeAndSessions(t *testing.T) {
	t.Parallel()

	env := newMemEnv(t)
	ctx := context.Background()

	in := env.register(t, "forgot@test.com", "pw1")
	sess, err := env.svc.Login(ctx, in.Email, in.Password)
	require.NoError(t, err)

	require.NoError(t, env.svc.SendPasswordRecovery(ctx, in.Email))
	code := env.codeFromMail(t, "password-recovery")

	require.ErrorIs(t, env.svc.SubmitPasswordRecovery(ctx, code, longPassword), ErrPasswordTooLong)

	_, err = env.svc.Authenticate(ctx, sess.Tokens.Access)
	require.NoError(t, err)

	// Код не поглощён и срабатывает с допустимым паролем.
	require.NoError(t, env.svc.SubmitPasswordRecovery(ctx, code, "pw2"))

	_, err = env.svc.Login(ctx, in.Email, "pw2")
	require.NoError(t, err)
}
