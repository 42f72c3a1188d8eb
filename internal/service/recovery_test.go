package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// lockOut блокирует пользователя неудачными входами.
func lockOut(t *testing.T, env *memEnv, email string) {
	t.Helper()

	for i := 0; i < testCfg().Auth.MaxFailedLogins; i++ {
		_, _ = env.svc.Login(context.Background(), email, "definitely-wrong")
	}

	_, err := env.svc.Login(context.Background(), email, "definitely-wrong")
	require.ErrorIs(t, err, ErrAccountIsBlocked)
}

func TestAccountRecovery_Flow(t *testing.T) {
	t.Parallel()

	env := newMemEnv(t)
	ctx := context.Background()
	env.register(t, "blocked@test.com", "pw")

	// Незаблокированной записи письмо не положено.
	require.ErrorIs(t, env.svc.SendAccountRecovery(ctx, "blocked@test.com"), ErrAccessDenied)
	require.ErrorIs(t, env.svc.SendAccountRecovery(ctx, "nobody@test.com"), ErrAccessDenied)

	lockOut(t, env, "blocked@test.com")

	require.NoError(t, env.svc.SendAccountRecovery(ctx, "Blocked@test.com"))
	code := env.codeFromMail(t, "account-recovery")
	require.Equal(t, "blocked@test.com", env.mail.last(t).To)

	require.NoError(t, env.svc.VerifyAccountRecovery(ctx, code))

	u, err := env.st.UserByEmail(ctx, "blocked@test.com")
	require.NoError(t, err)
	require.False(t, u.IsBlocked())
	require.Zero(t, u.FailedLoginAttempts)

	// Код одноразовый.
	require.ErrorIs(t, env.svc.VerifyAccountRecovery(ctx, code), ErrInvalidRecoveryCode)

	_, err = env.svc.Login(ctx, "blocked@test.com", "pw")
	require.NoError(t, err)
}

func TestAccountRecovery_ResendInvalidatesPreviousCode(t *testing.T) {
	t.Parallel()

	env := newMemEnv(t)
	ctx := context.Background()
	env.register(t, "twice@test.com", "pw")
	lockOut(t, env, "twice@test.com")

	require.NoError(t, env.svc.SendAccountRecovery(ctx, "twice@test.com"))
	first := env.codeFromMail(t, "account-recovery")

	require.NoError(t, env.svc.SendAccountRecovery(ctx, "twice@test.com"))
	second := env.codeFromMail(t, "account-recovery")
	require.NotEqual(t, first, second)

	require.ErrorIs(t, env.svc.VerifyAccountRecovery(ctx, first), ErrInvalidRecoveryCode)
	require.NoError(t, env.svc.VerifyAccountRecovery(ctx, second))
}

func TestAccountRecovery_Expired(t *testing.T) {
	t.Parallel()

	env := newMemEnv(t)
	ctx := context.Background()
	env.register(t, "late@test.com", "pw")
	lockOut(t, env, "late@test.com")

	require.NoError(t, env.svc.SendAccountRecovery(ctx, "late@test.com"))
	code := env.codeFromMail(t, "account-recovery")

	env.clock.Advance(testCfg().Auth.CodeLifetime())

	require.ErrorIs(t, env.svc.VerifyAccountRecovery(ctx, code), ErrExpiredRecoveryCode)
	require.ErrorIs(t, env.svc.VerifyAccountRecovery(ctx, "unknown"), ErrInvalidRecoveryCode)
	require.ErrorIs(t, env.svc.VerifyAccountRecovery(ctx, ""), ErrInvalidRecoveryCode)
}

func TestPasswordRecovery_Flow(t *testing.T) {
	t.Parallel()

	env := newMemEnv(t)
	ctx := context.Background()
	env.register(t, "forgot@test.com", "old")

	sess, err := env.svc.Login(ctx, "forgot@test.com", "old")
	require.NoError(t, err)

	require.ErrorIs(t, env.svc.SendPasswordRecovery(ctx, "nobody@test.com"), ErrAccessDenied)
	require.NoError(t, env.svc.SendPasswordRecovery(ctx, "forgot@test.com"))
	code := env.codeFromMail(t, "password-recovery")

	require.NoError(t, env.svc.SubmitPasswordRecovery(ctx, code, "new"))
	require.ErrorIs(t, env.svc.SubmitPasswordRecovery(ctx, code, "newer"), ErrInvalidRecoveryCode)

	// Все выданные токены отозваны.
	_, err = env.svc.Authenticate(ctx, sess.Tokens.Access)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = env.svc.Refresh(ctx, sess.Tokens.Refresh)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.Login(ctx, "forgot@test.com", "old")
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = env.svc.Login(ctx, "forgot@test.com", "new")
	require.NoError(t, err)
}

func TestPasswordRecovery_DoesNotUnblock(t *testing.T) {
	t.Parallel()

	env := newMemEnv(t)
	ctx := context.Background()
	env.register(t, "stay@test.com", "old")
	lockOut(t, env, "stay@test.com")

	require.NoError(t, env.svc.SendPasswordRecovery(ctx, "stay@test.com"))
	code := env.codeFromMail(t, "password-recovery")
	require.NoError(t, env.svc.SubmitPasswordRecovery(ctx, code, "new"))

	_, err := env.svc.Login(ctx, "stay@test.com", "new")
	require.ErrorIs(t, err, ErrAccountIsBlocked)
}
