package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
	"github.com/pribylovaa/go-blog-auth/internal/tokens"
)

// rotateAccessImage выпускает новый access-образ и делает его единственным активным.
// Все access-токены со старым образом перестают проходить проверку.
func (s *Service) rotateAccessImage(ctx context.Context, userID uuid.UUID) (string, error) {
	const op = "service.session.rotateAccessImage"

	image, err := generateImage(userID, s.now(), s.cfg.Auth.ImageCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	for attempt := 0; attempt < rotationAttempts; attempt++ {
		now := s.now()
		err = s.storage.SetAccessImage(ctx, &models.AccessImage{
			ID:        uuid.New(),
			UserID:    userID,
			Image:     image,
			State:     models.StateActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if !errors.Is(err, storage.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.publishImage(ctx, userID, image); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

// publishImage перезаписывает образ в кэше новым. Если записать не удалось,
// ключ удаляется; если не удалось и удалить, возвращается ошибка: старый образ
// в кэше не должен проходить проверку после успешной ротации.
func (s *Service) publishImage(ctx context.Context, userID uuid.UUID, image string) error {
	if s.images == nil {
		return nil
	}

	if err := s.images.Set(ctx, userID, image); err != nil {
		log.From(ctx).Warn("image_cache_set_failed",
			slog.String("user_id", userID.String()),
			slog.String("err", err.Error()),
		)
		return s.invalidateImage(ctx, userID)
	}

	// Параллельная ротация могла успеть записать более новый образ до нашего Set.
	rec, err := s.storage.ActiveAccessImage(ctx, userID)
	if err != nil || rec.Image != image {
		return s.invalidateImage(ctx, userID)
	}

	return nil
}

// setPassword сохраняет заранее посчитанный хэш пароля, отзывая предыдущий.
// Хэш считается до первых изменений состояния, чтобы отказ bcrypt ничего не ломал.
func (s *Service) setPassword(ctx context.Context, userID uuid.UUID, hash string) error {
	const op = "service.session.setPassword"

	var err error
	for attempt := 0; attempt < rotationAttempts; attempt++ {
		now := s.now()
		err = s.storage.SetPassword(ctx, &models.Password{
			ID:        uuid.New(),
			UserID:    userID,
			Hash:      hash,
			State:     models.StateActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if !errors.Is(err, storage.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// issueSession выпускает пару токенов с данным access-образом и новым refresh-образом
// и сохраняет refresh-сессию.
func (s *Service) issueSession(ctx context.Context, user *models.User, accessImage string) (*models.Session, error) {
	const (
		op          = "service.session.issueSession"
		maxAttempts = 3
	)

	lg := log.From(ctx)

	refreshImage, err := generateImage(user.ID, s.now(), s.cfg.Auth.ImageCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	access, accessExp, err := s.codec.Issue(tokens.PurposeAccess, user.ID, accessImage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		refresh, refreshExp, err := s.codec.Issue(tokens.PurposeRefresh, user.ID, refreshImage)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		now := s.now()
		err = s.storage.SaveRefreshToken(ctx, &models.RefreshToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			Image:     refreshImage,
			Token:     hashToken(refresh),
			ExpiresAt: refreshExp,
			State:     models.StateActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				// Строка токена уникальна за счёт jti, коллизия практически невозможна.
				continue
			}

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &models.Session{
			UserID: user.ID,
			Role:   user.Role,
			Tokens: models.TokenPair{
				Access:           access,
				Refresh:          refresh,
				AccessExpiresAt:  accessExp,
				RefreshExpiresAt: refreshExp,
			},
		}, nil
	}

	lg.Error("refresh_collision_exceeded", slog.String("op", op))

	return nil, fmt.Errorf("%s: %w", op, ErrRefreshTokenCollision)
}

// revokeSessions ротирует access-образ и отзывает все refresh-сессии пользователя.
// Записи независимы и выполняются параллельно. Возвращает новый access-образ.
func (s *Service) revokeSessions(ctx context.Context, userID uuid.UUID) (string, error) {
	const op = "service.session.revokeSessions"

	var image string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		image, err = s.rotateAccessImage(gctx, userID)
		return err
	})
	g.Go(func() error {
		return s.storage.RevokeRefreshTokens(gctx, userID)
	})

	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

// activeImage возвращает активный access-образ, сначала заглядывая в кэш.
func (s *Service) activeImage(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.images != nil {
		image, ok, err := s.images.Get(ctx, userID)
		if err != nil {
			log.From(ctx).Warn("image_cache_get_failed", slog.String("err", err.Error()))
		} else if ok {
			return image, nil
		}
	}

	rec, err := s.storage.ActiveAccessImage(ctx, userID)
	if err != nil {
		return "", err
	}

	// Заполнение только в пустой ключ: образ, записанный ротацией, не перетирается
	// прочитанным до неё.
	if s.images != nil {
		if _, err := s.images.SetIfAbsent(ctx, userID, rec.Image); err != nil {
			log.From(ctx).Warn("image_cache_fill_failed", slog.String("err", err.Error()))
		}
	}

	return rec.Image, nil
}

// invalidateImage удаляет образ пользователя из кэша.
func (s *Service) invalidateImage(ctx context.Context, userID uuid.UUID) error {
	if s.images == nil {
		return nil
	}

	if err := s.images.Invalidate(ctx, userID); err != nil {
		log.From(ctx).Error("image_cache_invalidate_failed",
			slog.String("user_id", userID.String()),
			slog.String("err", err.Error()),
		)
		return err
	}

	return nil
}

// event увеличивает счётчик события аутентификации.
func (s *Service) event(name string) {
	s.metrics.AuthEvent(name)
}
