// Package tokens выпускает и проверяет подписанные JWT двух назначений.
//
// Access- и refresh-токены подписываются разными ключами (HS256) и живут разное время.
// Каждый токен несёт идентификатор пользователя и секрет сессии («образ»):
// claim "accessImage" у access-токена и "refreshImage" у refresh-токена.
// Подпись сама по себе не делает токен действительным: образ сверяется
// с хранилищем на стороне сервиса.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-auth/internal/config"
)

// Purpose — назначение токена.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

var (
	// ErrInvalidToken — неверная подпись, формат, назначение или набор claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — подпись верна, но срок действия истёк.
	ErrTokenExpired = errors.New("token expired")
)

// leeway — допуск на рассинхронизацию часов.
const leeway = 5 * time.Second

// Claims — расшифрованное содержимое проверенного токена.
type Claims struct {
	UserID    uuid.UUID
	Image     string
	ExpiresAt time.Time
}

type jwtClaims struct {
	UserID       string `json:"id"`
	AccessImage  string `json:"accessImage,omitempty"`
	RefreshImage string `json:"refreshImage,omitempty"`
	jwt.RegisteredClaims
}

// Codec — кодек токенов. Безопасен для конкурентного использования.
type Codec struct {
	cfg config.AuthConfig
	now func() time.Time
}

// New создаёт кодек. now == nil означает time.Now.
func New(cfg config.AuthConfig, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}

	return &Codec{cfg: cfg, now: now}
}

// Issue подписывает токен назначения p для пользователя userID с образом image.
// Возвращает строку токена и момент его истечения.
func (c *Codec) Issue(p Purpose, userID uuid.UUID, image string) (string, time.Time, error) {
	const op = "tokens.Issue"

	key, ttl, err := c.params(p)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	if userID == uuid.Nil || image == "" {
		return "", time.Time{}, fmt.Errorf("%s: empty subject or image", op)
	}

	now := c.now().UTC()
	exp := now.Add(ttl)

	claims := jwtClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.cfg.Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	if p == PurposeAccess {
		claims.AccessImage = image
	} else {
		claims.RefreshImage = image
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, exp, nil
}

// Verify проверяет подпись, срок и форму токена назначения p.
// Истёкший токен даёт ErrTokenExpired, любая другая проблема — ErrInvalidToken.
func (c *Codec) Verify(p Purpose, token string) (*Claims, error) {
	const op = "tokens.Verify"

	key, _, err := c.params(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{},
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil || uid == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	image := claims.AccessImage
	if p == PurposeRefresh {
		image = claims.RefreshImage
	}
	if image == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return &Claims{
		UserID:    uid,
		Image:     image,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// TTL возвращает срок жизни токена назначения p.
func (c *Codec) TTL(p Purpose) time.Duration {
	if p == PurposeRefresh {
		return c.cfg.RefreshTokenTTL
	}

	return c.cfg.AccessTokenTTL
}

func (c *Codec) params(p Purpose) ([]byte, time.Duration, error) {
	switch p {
	case PurposeAccess:
		return []byte(c.cfg.AccessSecret), c.cfg.AccessTokenTTL, nil
	case PurposeRefresh:
		return []byte(c.cfg.RefreshSecret), c.cfg.RefreshTokenTTL, nil
	default:
		return nil, 0, fmt.Errorf("unknown token purpose %q", p)
	}
}
