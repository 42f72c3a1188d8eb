package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

// UpdateAccount обновляет имя, фамилию и описание профиля.
func (s *Service) UpdateAccount(ctx context.Context, user *models.User, firstName, lastName, about string) (*models.User, error) {
	const op = "service.account.UpdateAccount"

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	updated, err := s.storage.UpdateProfile(ctx, user.ID, models.ProfileUpdate{
		FirstName: &firstName,
		LastName:  &lastName,
		About:     &about,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// DeleteAccount мягко удаляет учётную запись и отзывает все её секреты:
// пароль, access-образ, refresh-сессии, коды и заявки на смену e-mail.
func (s *Service) DeleteAccount(ctx context.Context, user *models.User) error {
	const op = "service.account.DeleteAccount"

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.storage.RevokePasswords(gctx, user.ID) })
	g.Go(func() error {
		if err := s.storage.RevokeAccessImages(gctx, user.ID); err != nil {
			return err
		}
		return s.invalidateImage(gctx, user.ID)
	})
	g.Go(func() error { return s.storage.RevokeRefreshTokens(gctx, user.ID) })
	g.Go(func() error { return s.storage.RevokeEmailChanges(gctx, user.ID) })
	for _, p := range []models.CodePurpose{
		models.PurposeAccountRecovery,
		models.PurposePasswordRecovery,
		models.PurposeEmailVerification,
		models.PurposeEmailChange,
	} {
		p := p
		g.Go(func() error { return s.storage.RevokeCodes(gctx, user.ID, p) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("account_deleted", slog.String("user_id", user.ID.String()))

	return nil
}

// Cleanup физически удаляет refresh-сессии и коды, истёкшие раньше, чем
// janitor.retention назад. Недавно истёкший код остаётся и даёт «код истёк».
func (s *Service) Cleanup(ctx context.Context) error {
	const op = "service.account.Cleanup"

	retention := s.cfg.Janitor.Retention
	if retention <= 0 {
		retention = storage.DefaultRetention
	}

	start := s.now()
	if err := s.storage.DeleteExpiredTokens(ctx, start.Add(-retention)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Debug("cleanup_done", slog.Duration("took", time.Since(start)))

	return nil
}
