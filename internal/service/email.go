package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/go-blog-auth/internal/mailer"
	"github.com/pribylovaa/go-blog-auth/internal/metrics"
	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/redact"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

// SendEmailVerification отправляет ссылку подтверждения текущего e-mail пользователя.
func (s *Service) SendEmailVerification(ctx context.Context, user *models.User) error {
	const op = "service.email.SendEmailVerification"

	if user.EmailVerified {
		return fmt.Errorf("%s: %w", op, ErrEmailAlreadyVerified)
	}

	code, err := s.issueCode(ctx, user.ID, models.PurposeEmailVerification)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	letter, err := mailer.EmailVerification(s.cfg.Mail.FrontendURL, code.Code, fullName(user.FirstName, user.LastName))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.deliver(ctx, user.Email, letter)

	return nil
}

// VerifyEmail подтверждает e-mail по коду.
func (s *Service) VerifyEmail(ctx context.Context, value string) error {
	const op = "service.email.VerifyEmail"

	code, err := s.lookupCode(ctx, models.PurposeEmailVerification, value, ErrInvalidVerificationCode, ErrExpiredVerificationCode)
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

	if user.EmailVerified {
		return fmt.Errorf("%s: %w", op, ErrEmailAlreadyVerified)
	}

	if err := s.consumeCode(ctx, code.ID, ErrInvalidVerificationCode); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.MarkEmailVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.event(metrics.EventEmailVerified)
	log.From(ctx).Info("email_verified", slog.String("user_id", user.ID.String()))

	return nil
}

// SendEmailChange создаёт заявку на смену e-mail и отправляет ссылку на новый адрес.
// Предыдущие незавершённые заявки пользователя отзываются.
func (s *Service) SendEmailChange(ctx context.Context, user *models.User, newEmail string) error {
	const op = "service.email.SendEmailChange"

	email, err := normalizeEmail(newEmail)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	other, err := s.storage.UserByEmail(ctx, email)
	switch {
	case err == nil && other.ID != user.ID:
		return fmt.Errorf("%s: %w", op, ErrEmailAlreadyInUse)
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RevokeEmailChanges(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := s.issueCode(ctx, user.ID, models.PurposeEmailChange)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if err := s.storage.SetEmailChange(ctx, &models.EmailChange{
		ID:        uuid.New(),
		UserID:    user.ID,
		CodeID:    code.ID,
		OldEmail:  user.Email,
		NewEmail:  email,
		State:     models.StateActive,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	letter, err := mailer.EmailChange(s.cfg.Mail.FrontendURL, code.Code, fullName(user.FirstName, user.LastName))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.deliver(ctx, email, letter)
	log.From(ctx).Info("email_change_requested",
		slog.String("user_id", user.ID.String()),
		slog.String("new_email", redact.Email(email)),
	)

	return nil
}

// VerifyEmailChange применяет заявку на смену e-mail, связанную с кодом.
func (s *Service) VerifyEmailChange(ctx context.Context, value string) error {
	const op = "service.email.VerifyEmailChange"

	code, err := s.lookupCode(ctx, models.PurposeEmailChange, value, ErrInvalidVerificationCode, ErrExpiredVerificationCode)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var change *models.EmailChange

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.storage.UserByID(gctx, code.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAccessDenied
		}
		return err
	})
	g.Go(func() error {
		var err error
		change, err = s.storage.EmailChangeByCode(gctx, code.ID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrEmailRecordNotFound
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SetEmail(ctx, code.UserID, change.NewEmail); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("%s: %w", op, ErrEmailAlreadyInUse)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.consumeCode(ctx, code.ID, ErrInvalidVerificationCode); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RevokeEmailChanges(ctx, code.UserID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.event(metrics.EventEmailChanged)
	log.From(ctx).Info("email_changed",
		slog.String("user_id", code.UserID.String()),
		slog.String("old_email", redact.Email(change.OldEmail)),
		slog.String("new_email", redact.Email(change.NewEmail)),
	)

	return nil
}
