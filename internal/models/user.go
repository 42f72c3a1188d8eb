package models

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись.
//   - Email уникален среди активных (State=active) пользователей;
//   - Status переключается входом (блокировка после превышения лимита неудачных попыток)
//     и восстановлением аккаунта;
//   - State=revoked означает мягко удалённую учётную запись.
type User struct {
	ID                  uuid.UUID
	Email               string
	FirstName           string
	LastName            string
	About               string
	AvatarLink          string
	Role                string
	Status              AccountStatus
	FailedLoginAttempts int
	EmailVerified       bool
	State               RecordState
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsBlocked сообщает, заблокирована ли учётная запись.
func (u *User) IsBlocked() bool {
	return u.Status == StatusBlocked
}

// ProfileUpdate — частичное обновление профиля; nil-поля не меняются.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	About     *string
}
