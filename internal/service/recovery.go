package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/go-blog-auth/internal/mailer"
	"github.com/pribylovaa/go-blog-auth/internal/metrics"
	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/redact"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

// SendAccountRecovery отправляет ссылку разблокировки на e-mail заблокированной
// учётной записи. Для незаблокированной или неизвестной записи возвращается ErrAccessDenied.
func (s *Service) SendAccountRecovery(ctx context.Context, email string) error {
	const op = "service.recovery.SendAccountRecovery"

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsBlocked() {
		return fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	code, err := s.issueCode(ctx, user.ID, models.PurposeAccountRecovery)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	letter, err := mailer.AccountRecovery(s.cfg.Mail.FrontendURL, code.Code, fullName(user.FirstName, user.LastName))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.deliver(ctx, user.Email, letter)
	log.From(ctx).Info("account_recovery_sent",
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(user.Email)),
	)

	return nil
}

// VerifyAccountRecovery разблокирует учётную запись по коду и отзывает все её сессии.
func (s *Service) VerifyAccountRecovery(ctx context.Context, value string) error {
	const op = "service.recovery.VerifyAccountRecovery"

	code, err := s.lookupCode(ctx, models.PurposeAccountRecovery, value, ErrInvalidRecoveryCode, ErrExpiredRecoveryCode)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, code.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrAccessDenied)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsBlocked() {
		return fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	if err := s.consumeCode(ctx, code.ID, ErrInvalidRecoveryCode); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.revokeSessions(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		return s.storage.RevokeCodes(gctx, user.ID, models.PurposeAccountRecovery)
	})
	g.Go(func() error {
		return s.storage.UnblockUser(gctx, user.ID)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.event(metrics.EventAccountRecovery)
	log.From(ctx).Info("account_recovered", slog.String("user_id", user.ID.String()))

	return nil
}

// SendPasswordRecovery отправляет ссылку сброса пароля активному пользователю.
func (s *Service) SendPasswordRecovery(ctx context.Context, email string) error {
	const op = "service.recovery.SendPasswordRecovery"

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := s.issueCode(ctx, user.ID, models.PurposePasswordRecovery)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	letter, err := mailer.PasswordRecovery(s.cfg.Mail.FrontendURL, code.Code, fullName(user.FirstName, user.LastName))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.deliver(ctx, user.Email, letter)
	log.From(ctx).Info("password_recovery_sent", slog.String("user_id", user.ID.String()))

	return nil
}

// SubmitPasswordRecovery устанавливает новый пароль по коду, ротирует access-образ
// и отзывает все refresh-сессии. Статус блокировки не меняется.
func (s *Service) SubmitPasswordRecovery(ctx context.Context, value, newPassword string) error {
	const op = "service.recovery.SubmitPasswordRecovery"

	hash, err := hashPassword(newPassword, s.cfg.Auth.PasswordCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := s.lookupCode(ctx, models.PurposePasswordRecovery, value, ErrInvalidRecoveryCode, ErrExpiredRecoveryCode)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.storage.UserByID(ctx, code.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrAccessDenied)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.storage.ActivePassword(ctx, code.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrAccessDenied)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.consumeCode(ctx, code.ID, ErrInvalidRecoveryCode); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.revokeSessions(gctx, code.UserID)
		return err
	})
	g.Go(func() error {
		return s.storage.RevokeCodes(gctx, code.UserID, models.PurposePasswordRecovery)
	})
	g.Go(func() error {
		return s.setPassword(gctx, code.UserID, hash)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.event(metrics.EventPasswordReset)
	log.From(ctx).Info("password_reset", slog.String("user_id", code.UserID.String()))

	return nil
}

// userByEmail ищет активного пользователя; отсутствие записи даёт ErrAccessDenied.
func (s *Service) userByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.storage.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAccessDenied
		}

		return nil, err
	}

	return user, nil
}
