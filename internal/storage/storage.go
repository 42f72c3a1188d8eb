// Package storage описывает контракты хранилища учётных записей и сессий.
//
// Общие правила для всех реализаций:
//   - «активные» выборки возвращают только записи в состоянии models.StateActive;
//   - операции Set* выполняют ротацию: активная запись переводится в revoked,
//     затем вставляется новая; уникальные частичные индексы гарантируют не более
//     одной активной записи, конкурентный проигравший получает ErrAlreadyExists;
//   - операции Consume* — атомарный compare-and-set active -> revoked,
//     ровно один вызывающий получает nil, остальные — ErrNotFound;
//   - операции Revoke* идемпотентны: отсутствие подходящих записей не ошибка.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-auth/internal/models"
)

var (
	// ErrNotFound — запись отсутствует (или не активна).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушено ограничение уникальности
	// (e-mail активного пользователя, вторая активная запись того же вида).
	ErrAlreadyExists = errors.New("already exists")
)

// DefaultRetention — сколько истёкшие refresh-сессии и коды хранятся до физического
// удаления. Пока запись не удалена, проверка кода отвечает «истёк», а не «неверен».
const DefaultRetention = 24 * time.Hour

// UserStorage — учётные записи.
type UserStorage interface {
	// CreateUser сохраняет нового пользователя. ErrAlreadyExists, если e-mail занят активным пользователем.
	CreateUser(ctx context.Context, user *models.User) error
	// UserByID возвращает активного пользователя.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UserByEmail возвращает активного пользователя по e-mail (в нижнем регистре).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// RegisterFailedLogin атомарно увеличивает счётчик неудачных входов (не выше maxAttempts)
	// и блокирует учётную запись при достижении лимита. Возвращает состояние после обновления.
	RegisterFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int) (*models.User, error)
	// ResetFailedLogins обнуляет счётчик неудачных входов.
	ResetFailedLogins(ctx context.Context, id uuid.UUID) error
	// BlockUser переводит учётную запись в статус blocked.
	BlockUser(ctx context.Context, id uuid.UUID) error
	// UnblockUser переводит учётную запись в статус active и обнуляет счётчик.
	UnblockUser(ctx context.Context, id uuid.UUID) error
	// SetEmail меняет e-mail и помечает его подтверждённым. ErrAlreadyExists, если адрес занят.
	SetEmail(ctx context.Context, id uuid.UUID, email string) error
	// MarkEmailVerified помечает текущий e-mail подтверждённым.
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	// UpdateProfile применяет частичное обновление профиля и возвращает результат.
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error)
	// DeleteUser мягко удаляет пользователя (state=revoked).
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// PasswordStorage — хэши паролей.
type PasswordStorage interface {
	ActivePassword(ctx context.Context, userID uuid.UUID) (*models.Password, error)
	SetPassword(ctx context.Context, password *models.Password) error
	RevokePasswords(ctx context.Context, userID uuid.UUID) error
}

// AccessImageStorage — секреты access-токенов.
type AccessImageStorage interface {
	ActiveAccessImage(ctx context.Context, userID uuid.UUID) (*models.AccessImage, error)
	SetAccessImage(ctx context.Context, image *models.AccessImage) error
	RevokeAccessImages(ctx context.Context, userID uuid.UUID) error
}

// RefreshTokenStorage — refresh-сессии.
type RefreshTokenStorage interface {
	// SaveRefreshToken сохраняет новую сессию. ErrAlreadyExists при коллизии строки токена.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByToken возвращает активную сессию по строке токена.
	RefreshTokenByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	// ConsumeRefreshToken переводит активную сессию в revoked; ErrNotFound, если её уже поглотили.
	ConsumeRefreshToken(ctx context.Context, id uuid.UUID) error
	// RevokeRefreshToken отзывает сессию пользователя по строке токена.
	RevokeRefreshToken(ctx context.Context, userID uuid.UUID, token string) error
	// RevokeRefreshTokens отзывает все сессии пользователя.
	RevokeRefreshTokens(ctx context.Context, userID uuid.UUID) error
	// DeleteExpiredTokens физически удаляет refresh-сессии и коды, истёкшие не позже before.
	DeleteExpiredTokens(ctx context.Context, before time.Time) error
}

// CodeStorage — одноразовые коды.
type CodeStorage interface {
	SetCode(ctx context.Context, code *models.Code) error
	// CodeByValue возвращает активный код данного назначения.
	CodeByValue(ctx context.Context, purpose models.CodePurpose, code string) (*models.Code, error)
	ConsumeCode(ctx context.Context, id uuid.UUID) error
	RevokeCodes(ctx context.Context, userID uuid.UUID, purpose models.CodePurpose) error
}

// EmailChangeStorage — ожидающие смены e-mail.
type EmailChangeStorage interface {
	SetEmailChange(ctx context.Context, change *models.EmailChange) error
	// EmailChangeByCode возвращает активную заявку, привязанную к коду.
	EmailChangeByCode(ctx context.Context, codeID uuid.UUID) (*models.EmailChange, error)
	RevokeEmailChanges(ctx context.Context, userID uuid.UUID) error
}

// Storage объединяет все контракты и управление жизненным циклом подключения.
type Storage interface {
	UserStorage
	PasswordStorage
	AccessImageStorage
	RefreshTokenStorage
	CodeStorage
	EmailChangeStorage

	Close(ctx context.Context) error
}
