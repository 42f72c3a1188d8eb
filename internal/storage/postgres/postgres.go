// Package postgres — реализация storage.Storage поверх PostgreSQL (pgx).
// Схема поставляется встроенными миграциями goose (см. Migrate).
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Storage struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)

// New создает новое подключение к PostgreSQL.
func New(ctx context.Context, dbURL string) (*Storage, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Migrate применяет встроенные миграции.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	db := stdlib.OpenDBFromPool(s.db)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close(context.Context) error {
	s.db.Close()
	return nil
}

// mapErr приводит ошибки pgx к ошибкам storage.
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// execAffected выполняет запрос и возвращает ErrNotFound, если ни одна строка не изменена.
func (s *Storage) execAffected(ctx context.Context, op, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return mapErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// exec выполняет запрос, не требуя изменённых строк.
func (s *Storage) exec(ctx context.Context, op, query string, args ...any) error {
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return mapErr(op, err)
	}

	return nil
}

// rotate в одной транзакции отзывает активные записи (revoke) и вставляет новую (insert).
func (s *Storage) rotate(ctx context.Context, op, revoke string, revokeArgs []any, insert string, insertArgs []any) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, revoke, revokeArgs...); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, insert, insertArgs...)
		return err
	})
	if err != nil {
		return mapErr(op, err)
	}

	return nil
}
