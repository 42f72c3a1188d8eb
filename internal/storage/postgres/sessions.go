package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-auth/internal/models"
)

const active, revoked = string(models.StateActive), string(models.StateRevoked)

// ---- passwords ----

func (s *Storage) ActivePassword(ctx context.Context, userID uuid.UUID) (*models.Password, error) {
	const op = "storage.postgres.ActivePassword"

	query := `
		SELECT id, user_id, hash, state, created_at, updated_at
		FROM passwords
		WHERE user_id = $1 AND state = $2
	`

	var p models.Password
	err := s.db.QueryRow(ctx, query, userID, active).Scan(
		&p.ID, &p.UserID, &p.Hash, &p.State, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return &p, nil
}

func (s *Storage) SetPassword(ctx context.Context, p *models.Password) error {
	now := s.now()

	return s.rotate(ctx, "storage.postgres.SetPassword",
		`UPDATE passwords SET state = $2, updated_at = $3 WHERE user_id = $1 AND state = $4`,
		[]any{p.UserID, revoked, now, active},
		`INSERT INTO passwords(id, user_id, hash, state, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		[]any{p.ID, p.UserID, p.Hash, active, orNow(p.CreatedAt, now), orNow(p.UpdatedAt, now)},
	)
}

func (s *Storage) RevokePasswords(ctx context.Context, userID uuid.UUID) error {
	return s.exec(ctx, "storage.postgres.RevokePasswords",
		`UPDATE passwords SET state = $2, updated_at = $3 WHERE user_id = $1 AND state = $4`,
		userID, revoked, s.now(), active)
}

// ---- access images ----

func (s *Storage) ActiveAccessImage(ctx context.Context, userID uuid.UUID) (*models.AccessImage, error) {
	const op = "storage.postgres.ActiveAccessImage"

	query := `
		SELECT id, user_id, image, state, created_at, updated_at
		FROM access_images
		WHERE user_id = $1 AND state = $2
	`

	var img models.AccessImage
	err := s.db.QueryRow(ctx, query, userID, active).Scan(
		&img.ID, &img.UserID, &img.Image, &img.State, &img.CreatedAt, &img.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return &img, nil
}

func (s *Storage) SetAccessImage(ctx context.Context, img *models.AccessImage) error {
	now := s.now()

	return s.rotate(ctx, "storage.postgres.SetAccessImage",
		`UPDATE access_images SET state = $2, updated_at = $3 WHERE user_id = $1 AND state = $4`,
		[]any{img.UserID, revoked, now, active},
		`INSERT INTO access_images(id, user_id, image, state, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		[]any{img.ID, img.UserID, img.Image, active, orNow(img.CreatedAt, now), orNow(img.UpdatedAt, now)},
	)
}

func (s *Storage) RevokeAccessImages(ctx context.Context, userID uuid.UUID) error {
	return s.exec(ctx, "storage.postgres.RevokeAccessImages",
		`UPDATE access_images SET state = $2, updated_at = $3 WHERE user_id = $1 AND state = $4`,
		userID, revoked, s.now(), active)
}

// ---- refresh tokens ----

// SaveRefreshToken сохраняет новый refresh-токен в БД.
func (s *Storage) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	const op = "storage.postgres.SaveRefreshToken"

	now := s.now()
	query := `
		INSERT INTO refresh_tokens(id, user_id, image, token, expires_at, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	return s.exec(ctx, op, query,
		t.ID, t.UserID, t.Image, t.Token, t.ExpiresAt, active, orNow(t.CreatedAt, now), orNow(t.UpdatedAt, now),
	)
}

func (s *Storage) RefreshTokenByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const op = "storage.postgres.RefreshTokenByToken"

	query := `
		SELECT id, user_id, image, token, expires_at, state, created_at, updated_at
		FROM refresh_tokens
		WHERE token = $1 AND state = $2
	`

	var t models.RefreshToken
	err := s.db.QueryRow(ctx, query, token, active).Scan(
		&t.ID, &t.UserID, &t.Image, &t.Token, &t.ExpiresAt, &t.State, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return &t, nil
}

// ConsumeRefreshToken отзывает токен, только если он ещё активен.
func (s *Storage) ConsumeRefreshToken(ctx context.Context, id uuid.UUID) error {
	return s.execAffected(ctx, "storage.postgres.ConsumeRefreshToken",
		`UPDATE refresh_tokens SET state = $2, updated_at = $3 WHERE id = $1 AND state = $4`,
		id, revoked, s.now(), active)
}

func (s *Storage) RevokeRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.exec(ctx, "storage.postgres.RevokeRefreshToken",
		`UPDATE refresh_tokens SET state = $3, updated_at = $4 WHERE user_id = $1 AND token = $2 AND state = $5`,
		userID, token, revoked, s.now(), active)
}

func (s *Storage) RevokeRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return s.exec(ctx, "storage.postgres.RevokeRefreshTokens",
		`UPDATE refresh_tokens SET state = $2, updated_at = $3 WHERE user_id = $1 AND state = $4`,
		userID, revoked, s.now(), active)
}

// DeleteExpiredTokens удаляет refresh-токены и коды, истёкшие не позже before.
func (s *Storage) DeleteExpiredTokens(ctx context.Context, before time.Time) error {
	const op = "storage.postgres.DeleteExpiredTokens"

	if _, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, before); err != nil {
		return fmt.Errorf("%s: refresh tokens: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM codes WHERE expires_at <= $1`, before); err != nil {
		return fmt.Errorf("%s: codes: %w", op, err)
	}

	return nil
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}

	return t
}
