package models

import (
	"time"

	"github.com/google/uuid"
)

// Password — хэш пароля пользователя. Активен ровно один на пользователя,
// предыдущие остаются в истории в состоянии revoked.
type Password struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Hash      string
	State     RecordState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccessImage — секрет, вшиваемый в access-токены пользователя.
// Смена активного образа мгновенно инвалидирует все выданные access-токены.
type AccessImage struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Image     string
	State     RecordState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefreshToken — одна refresh-сессия (одно устройство).
// Token — SHA-256 от строки, которую предъявляет клиент (сама строка не хранится);
// Image — секрет, вшитый в токен. Запись одноразовая: успешный refresh переводит её в revoked.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Image     string
	Token     string
	ExpiresAt time.Time
	State     RecordState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired сообщает, истёк ли срок записи относительно now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
