package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

// issueCode выпускает новый одноразовый код назначения purpose,
// отзывая предыдущий активный код того же назначения.
func (s *Service) issueCode(ctx context.Context, userID uuid.UUID, purpose models.CodePurpose) (*models.Code, error) {
	const op = "service.codes.issueCode"

	value, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	code := &models.Code{
		UserID:    userID,
		Purpose:   purpose,
		Code:      value,
		ExpiresAt: now.Add(s.cfg.Auth.CodeLifetime()),
		State:     models.StateActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 0; attempt < rotationAttempts; attempt++ {
		code.ID = uuid.New()
		err = s.storage.SetCode(ctx, code)
		if !errors.Is(err, storage.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return code, nil
}

// lookupCode находит активный код и проверяет его срок.
// Ненайденный код даёт invalid, истёкший — expired.
func (s *Service) lookupCode(ctx context.Context, purpose models.CodePurpose, value string, invalid, expired error) (*models.Code, error) {
	if value == "" {
		return nil, invalid
	}

	code, err := s.storage.CodeByValue(ctx, purpose, value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, invalid
		}

		return nil, err
	}

	if code.Expired(s.now()) {
		return nil, expired
	}

	return code, nil
}

// consumeCode поглощает код; проигравший гонку получает invalid.
func (s *Service) consumeCode(ctx context.Context, id uuid.UUID, invalid error) error {
	if err := s.storage.ConsumeCode(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return invalid
		}

		return err
	}

	return nil
}
