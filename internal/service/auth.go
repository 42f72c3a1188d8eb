package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/go-blog-auth/internal/metrics"
	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/redact"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
	"github.com/pribylovaa/go-blog-auth/internal/tokens"
)

// RegisterInput — данные регистрации.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register создаёт пользователя, его пароль, access-образ и первую refresh-сессию.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Session, error) {
	const op = "service.auth.Register"

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := hashPassword(in.Password, s.cfg.Auth.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailAlreadyInUse)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	user := &models.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      models.RoleUser,
		Status:    models.StatusActive,
		State:     models.StateActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailAlreadyInUse)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var image string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.setPassword(gctx, user.ID, hash)
	})
	g.Go(func() error {
		var err error
		image, err = s.rotateAccessImage(gctx, user.ID)
		return err
	})

	if err := g.Wait(); err != nil {
		s.rollbackRegistration(ctx, user.ID)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess, err := s.issueSession(ctx, user, image)
	if err != nil {
		s.rollbackRegistration(ctx, user.ID)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.event(metrics.EventRegister)
	log.From(ctx).Info("user_registered",
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(email)),
	)

	return sess, nil
}

// rollbackRegistration удаляет недосозданного пользователя, освобождая e-mail.
// Ошибка отката только логируется.
func (s *Service) rollbackRegistration(ctx context.Context, userID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.storage.RevokePasswords(gctx, userID) })
	g.Go(func() error {
		if err := s.storage.RevokeAccessImages(gctx, userID); err != nil {
			return err
		}
		return s.invalidateImage(gctx, userID)
	})

	err := g.Wait()
	if err == nil {
		err = s.storage.DeleteUser(ctx, userID)
	}
	if err != nil {
		log.From(ctx).Error("register_rollback_failed",
			slog.String("user_id", userID.String()),
			slog.String("err", err.Error()),
		)
	}
}

// Login выполняет вход по e-mail и паролю.
//
// Заблокированная учётная запись отклоняется до проверки пароля. Неверный пароль
// увеличивает счётчик неудачных попыток; при достижении лимита запись блокируется.
// Отсутствие записи пароля считается нарушением целостности: учётная запись блокируется.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	user, err := s.storage.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.event(metrics.EventLoginFailure)
			return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg = lg.With(slog.String("user_id", user.ID.String()))

	if user.IsBlocked() {
		s.event(metrics.EventLoginFailure)
		return nil, fmt.Errorf("%s: %w", op, ErrAccountIsBlocked)
	}

	pw, err := s.storage.ActivePassword(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		lg.Error("password_record_missing", slog.String("op", op))
		if err := s.storage.BlockUser(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s.event(metrics.EventLockout)
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	if !checkPassword(pw.Hash, password) {
		updated, err := s.storage.RegisterFailedLogin(ctx, user.ID, s.cfg.Auth.MaxFailedLogins)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s.event(metrics.EventLoginFailure)
		lg.Warn("login_failed", slog.Int("failed_attempts", updated.FailedLoginAttempts))

		if updated.IsBlocked() {
			s.event(metrics.EventLockout)
			lg.Warn("account_locked")
		}

		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	image, err := s.activeImage(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if image, err = s.rotateAccessImage(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	sess, err := s.issueSession(ctx, user, image)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.FailedLoginAttempts > 0 {
		if err := s.storage.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.event(metrics.EventLoginSuccess)
	lg.Info("login_success")

	return sess, nil
}

// Refresh обменивает refresh-токен на новую пару. Токен одноразовый:
// сессия поглощается атомарно, и преемника получает ровно один вызов.
// Access-образ при этом не меняется.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	const op = "service.auth.Refresh"

	lg := log.From(ctx)

	deny := func(reason string) error {
		s.event(metrics.EventRefreshDenied)
		lg.Warn("refresh_denied", slog.String("reason", reason))
		return fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	rec, err := s.storage.RefreshTokenByToken(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, deny("not_found")
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		image string
		user  *models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		image, err = s.activeImage(gctx, rec.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = s.storage.UserByID(gctx, rec.UserID)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, deny("owner_not_found")
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Срок из хранилища проверяется независимо от exp в самом токене.
	if rec.Expired(s.now()) {
		return nil, deny("expired")
	}

	claims, err := s.codec.Verify(tokens.PurposeRefresh, refreshToken)
	if err != nil {
		return nil, deny("invalid_token")
	}

	if claims.UserID != rec.UserID || subtle.ConstantTimeCompare([]byte(claims.Image), []byte(rec.Image)) != 1 {
		return nil, deny("claims_mismatch")
	}

	if err := s.storage.ConsumeRefreshToken(ctx, rec.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, deny("already_consumed")
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess, err := s.issueSession(ctx, user, image)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.event(metrics.EventRefresh)

	return sess, nil
}

// Logout отзывает одну refresh-сессию пользователя. Отсутствие сессии не ошибка.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	const op = "service.auth.Logout"

	if err := s.storage.RevokeRefreshToken(ctx, userID, hashToken(refreshToken)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.event(metrics.EventLogout)

	return nil
}

// LogoutAll ротирует access-образ и отзывает все refresh-сессии пользователя.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	const op = "service.auth.LogoutAll"

	if _, err := s.revokeSessions(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.event(metrics.EventLogoutAll)
	log.From(ctx).Info("logout_all", slog.String("user_id", userID.String()))

	return nil
}

// ChangePassword проверяет текущий пароль, сохраняет новый, ротирует оба образа,
// отзывает все refresh-сессии и выдаёт новую пару токенов.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) (*models.Session, error) {
	const op = "service.auth.ChangePassword"

	pw, err := s.storage.ActivePassword(ctx, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(pw.Hash, oldPassword) {
		return nil, fmt.Errorf("%s: %w", op, ErrOldPasswordIsInvalid)
	}

	hash, err := hashPassword(newPassword, s.cfg.Auth.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var image string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		image, err = s.revokeSessions(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		return s.setPassword(gctx, user.ID, hash)
	})
	g.Go(func() error {
		return s.storage.ResetFailedLogins(gctx, user.ID)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess, err := s.issueSession(ctx, user, image)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.event(metrics.EventPasswordChanged)
	log.From(ctx).Info("password_changed", slog.String("user_id", user.ID.String()))

	return sess, nil
}

// normalizeEmail проверяет формат e-mail, обрезает пробелы и приводит к нижнему регистру.
func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(email), nil
}
