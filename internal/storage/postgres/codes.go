package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-auth/internal/models"
)

// ---- codes ----

func (s *Storage) SetCode(ctx context.Context, c *models.Code) error {
	now := s.now()

	return s.rotate(ctx, "storage.postgres.SetCode",
		`UPDATE codes SET state = $3, updated_at = $4 WHERE user_id = $1 AND purpose = $2 AND state = $5`,
		[]any{c.UserID, string(c.Purpose), revoked, now, active},
		`INSERT INTO codes(id, user_id, purpose, code, expires_at, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		[]any{c.ID, c.UserID, string(c.Purpose), c.Code, c.ExpiresAt, active, orNow(c.CreatedAt, now), orNow(c.UpdatedAt, now)},
	)
}

func (s *Storage) CodeByValue(ctx context.Context, purpose models.CodePurpose, code string) (*models.Code, error) {
	const op = "storage.postgres.CodeByValue"

	query := `
		SELECT id, user_id, purpose, code, expires_at, state, created_at, updated_at
		FROM codes
		WHERE purpose = $1 AND code = $2 AND state = $3
	`

	var c models.Code
	err := s.db.QueryRow(ctx, query, string(purpose), code, active).Scan(
		&c.ID, &c.UserID, &c.Purpose, &c.Code, &c.ExpiresAt, &c.State, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return &c, nil
}

func (s *Storage) ConsumeCode(ctx context.Context, id uuid.UUID) error {
	return s.execAffected(ctx, "storage.postgres.ConsumeCode",
		`UPDATE codes SET state = $2, updated_at = $3 WHERE id = $1 AND state = $4`,
		id, revoked, s.now(), active)
}

func (s *Storage) RevokeCodes(ctx context.Context, userID uuid.UUID, purpose models.CodePurpose) error {
	return s.exec(ctx, "storage.postgres.RevokeCodes",
		`UPDATE codes SET state = $3, updated_at = $4 WHERE user_id = $1 AND purpose = $2 AND state = $5`,
		userID, string(purpose), revoked, s.now(), active)
}

// ---- email changes ----

func (s *Storage) SetEmailChange(ctx context.Context, ch *models.EmailChange) error {
	now := s.now()

	return s.rotate(ctx, "storage.postgres.SetEmailChange",
		`UPDATE email_changes SET state = $2, updated_at = $3 WHERE user_id = $1 AND state = $4`,
		[]any{ch.UserID, revoked, now, active},
		`INSERT INTO email_changes(id, user_id, code_id, old_email, new_email, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		[]any{ch.ID, ch.UserID, ch.CodeID, ch.OldEmail, ch.NewEmail, active, orNow(ch.CreatedAt, now), orNow(ch.UpdatedAt, now)},
	)
}

func (s *Storage) EmailChangeByCode(ctx context.Context, codeID uuid.UUID) (*models.EmailChange, error) {
	const op = "storage.postgres.EmailChangeByCode"

	query := `
		SELECT id, user_id, code_id, old_email, new_email, state, created_at, updated_at
		FROM email_changes
		WHERE code_id = $1 AND state = $2
	`

	var ch models.EmailChange
	err := s.db.QueryRow(ctx, query, codeID, active).Scan(
		&ch.ID, &ch.UserID, &ch.CodeID, &ch.OldEmail, &ch.NewEmail, &ch.State, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return &ch, nil
}

func (s *Storage) RevokeEmailChanges(ctx context.Context, userID uuid.UUID) error {
	return s.exec(ctx, "storage.postgres.RevokeEmailChanges",
		`UPDATE email_changes SET state = $2, updated_at = $3 WHERE user_id = $1 AND state = $4`,
		userID, revoked, s.now(), active)
}
