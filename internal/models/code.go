package models

import (
	"time"

	"github.com/google/uuid"
)

// CodePurpose — назначение одноразового кода.
type CodePurpose string

const (
	PurposeAccountRecovery   CodePurpose = "account_recovery"
	PurposePasswordRecovery  CodePurpose = "password_recovery"
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposeEmailChange       CodePurpose = "email_change"
)

// Code — одноразовый код восстановления/подтверждения.
// На пару (UserID, Purpose) активен не более чем один код.
type Code struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Purpose   CodePurpose
	Code      string
	ExpiresAt time.Time
	State     RecordState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired сообщает, истёк ли срок кода относительно now.
func (c *Code) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// EmailChange — ожидающая подтверждения смена e-mail, привязанная к коду.
type EmailChange struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CodeID    uuid.UUID
	OldEmail  string
	NewEmail  string
	State     RecordState
	CreatedAt time.Time
	UpdatedAt time.Time
}
