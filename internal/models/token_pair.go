package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenPair — пара токенов, выдаваемая при регистрации, входе и обновлении.
//   - Access — короткоживущий JWT, предъявляется в заголовке X-Access-Token;
//   - Refresh — долгоживущий одноразовый JWT, предъявляется в теле запроса;
//   - AccessExpiresAt/RefreshExpiresAt — моменты истечения (UTC).
type TokenPair struct {
	Access           string
	Refresh          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Session — результат операций, выдающих токены.
type Session struct {
	UserID uuid.UUID
	Role   string
	Tokens TokenPair
}

// Identity — личность, привязанная к запросу после успешной проверки access-токена.
type Identity struct {
	UserID uuid.UUID
	Role   string
	User   *User
}
