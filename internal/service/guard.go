package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/go-blog-auth/internal/metrics"
	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
	"github.com/pribylovaa/go-blog-auth/internal/tokens"
)

// Authenticate проверяет access-токен и возвращает личность владельца.
//
// Последовательность проверок:
//   - пустой токен: ErrMissingToken;
//   - неверная подпись/формат: ErrInvalidToken, истёкший срок: ErrTokenExpired;
//   - активный образ или активный незаблокированный пользователь не найдены: ErrAccessDenied;
//   - образ в токене не совпадает с активным: ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.Identity, error) {
	id, err := s.authenticate(ctx, accessToken)
	if err != nil && !errors.Is(err, ErrMissingToken) {
		s.event(metrics.EventGuardDenied)
	}

	return id, err
}

func (s *Service) authenticate(ctx context.Context, accessToken string) (*models.Identity, error) {
	const op = "service.guard.Authenticate"

	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingToken)
	}

	claims, err := s.codec.Verify(tokens.PurposeAccess, accessToken)
	if err != nil {
		if errors.Is(err, tokens.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	var (
		image string
		user  *models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		image, err = s.activeImage(gctx, claims.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = s.storage.UserByID(gctx, claims.UserID)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.IsBlocked() {
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	if subtle.ConstantTimeCompare([]byte(image), []byte(claims.Image)) != 1 {
		log.From(ctx).Debug("access_image_mismatch",
			slog.String("op", op),
			slog.String("user_id", claims.UserID.String()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return &models.Identity{
		UserID: user.ID,
		Role:   user.Role,
		User:   user,
	}, nil
}
