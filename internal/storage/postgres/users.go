package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-blog-auth/internal/models"
)

const userColumns = `id, email, first_name, last_name, about, avatar_link, role, status,
	failed_login_attempts, email_verified, state, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.About,
		&u.AvatarLink,
		&u.Role,
		&u.Status,
		&u.FailedLoginAttempts,
		&u.EmailVerified,
		&u.State,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser создает нового пользователя в БД.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.CreateUser"

	query := `
		INSERT INTO users(` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	return s.exec(ctx, op, query,
		user.ID,
		strings.ToLower(user.Email),
		user.FirstName,
		user.LastName,
		user.About,
		user.AvatarLink,
		user.Role,
		string(user.Status),
		user.FailedLoginAttempts,
		user.EmailVerified,
		string(user.State),
		user.CreatedAt,
		user.UpdatedAt,
	)
}

// UserByID находит активного пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND state = $2`

	u, err := scanUser(s.db.QueryRow(ctx, query, id, string(models.StateActive)))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return u, nil
}

// UserByEmail находит активного пользователя по email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.UserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND state = $2`

	u, err := scanUser(s.db.QueryRow(ctx, query, strings.ToLower(email), string(models.StateActive)))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return u, nil
}

// RegisterFailedLogin увеличивает счётчик и блокирует учётную запись одним UPDATE.
// В выражениях SET используются значения строки до обновления.
func (s *Storage) RegisterFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int) (*models.User, error) {
	const op = "storage.postgres.RegisterFailedLogin"

	query := `
		UPDATE users
		SET failed_login_attempts = LEAST(failed_login_attempts + 1, $2),
		    status = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE status END,
		    updated_at = $4
		WHERE id = $1 AND state = $5
		RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query,
		id,
		maxAttempts,
		string(models.StatusBlocked),
		s.now(),
		string(models.StateActive),
	))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return u, nil
}

func (s *Storage) ResetFailedLogins(ctx context.Context, id uuid.UUID) error {
	return s.execAffected(ctx, "storage.postgres.ResetFailedLogins",
		`UPDATE users SET failed_login_attempts = 0, updated_at = $2 WHERE id = $1 AND state = $3`,
		id, s.now(), string(models.StateActive))
}

func (s *Storage) BlockUser(ctx context.Context, id uuid.UUID) error {
	return s.execAffected(ctx, "storage.postgres.BlockUser",
		`UPDATE users SET status = $2, updated_at = $3 WHERE id = $1 AND state = $4`,
		id, string(models.StatusBlocked), s.now(), string(models.StateActive))
}

func (s *Storage) UnblockUser(ctx context.Context, id uuid.UUID) error {
	return s.execAffected(ctx, "storage.postgres.UnblockUser",
		`UPDATE users SET status = $2, failed_login_attempts = 0, updated_at = $3 WHERE id = $1 AND state = $4`,
		id, string(models.StatusActive), s.now(), string(models.StateActive))
}

func (s *Storage) SetEmail(ctx context.Context, id uuid.UUID, email string) error {
	return s.execAffected(ctx, "storage.postgres.SetEmail",
		`UPDATE users SET email = $2, email_verified = TRUE, updated_at = $3 WHERE id = $1 AND state = $4`,
		id, strings.ToLower(email), s.now(), string(models.StateActive))
}

func (s *Storage) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return s.execAffected(ctx, "storage.postgres.MarkEmailVerified",
		`UPDATE users SET email_verified = TRUE, updated_at = $2 WHERE id = $1 AND state = $3`,
		id, s.now(), string(models.StateActive))
}

// UpdateProfile обновляет только переданные поля (NULL оставляет значение как есть).
func (s *Storage) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	const op = "storage.postgres.UpdateProfile"

	query := `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
		    last_name = COALESCE($3, last_name),
		    about = COALESCE($4, about),
		    updated_at = $5
		WHERE id = $1 AND state = $6
		RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query,
		id,
		upd.FirstName,
		upd.LastName,
		upd.About,
		s.now(),
		string(models.StateActive),
	))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return u, nil
}

// DeleteUser мягко удаляет пользователя.
func (s *Storage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.execAffected(ctx, "storage.postgres.DeleteUser",
		`UPDATE users SET state = $2, updated_at = $3 WHERE id = $1 AND state = $4`,
		id, string(models.StateRevoked), s.now(), string(models.StateActive))
}
