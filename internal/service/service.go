// service содержит бизнес-логику жизненного цикла сессий:
// регистрацию и вход, обновление и отзыв токенов, смену пароля,
// восстановление доступа и подтверждение/смену e-mail.
//
// Основные аспекты:
//   - Service не хранит состояние запроса и безопасен для конкурентного
//     использования при условии потокобезопасного хранилища;
//   - каждый токен несёт «образ» (секрет сессии), который сверяется с хранилищем,
//     поэтому ротация образа мгновенно отзывает все выданные токены;
//   - ошибки возвращаются значениями и маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже);
//   - письма отправляются в фоне и не задерживают ответ; Wait дожидается их при остановке.
package service

import (
	"errors"
	"sync"
	"time"

	"github.com/pribylovaa/go-blog-auth/internal/cache"
	"github.com/pribylovaa/go-blog-auth/internal/config"
	"github.com/pribylovaa/go-blog-auth/internal/mailer"
	"github.com/pribylovaa/go-blog-auth/internal/metrics"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
	"github.com/pribylovaa/go-blog-auth/internal/tokens"
)

var (
	// ErrMissingToken — access-токен не передан. HTTP 401 MISSING_TOKEN.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken — подпись/формат токена неверны или образ в токене
	// не совпадает с активным. HTTP 401 INVALID_TOKEN.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия access-токена истёк. HTTP 401 TOKEN_EXPIRED.
	ErrTokenExpired = errors.New("token expired")

	// ErrAccessDenied — пользователь/образ/сессия не найдены или учётные данные неверны.
	// HTTP 401 ACCESS_DENIED.
	ErrAccessDenied = errors.New("access denied")

	// ErrAccountIsBlocked — учётная запись заблокирована. HTTP 403 ACCOUNT_IS_BLOCKED.
	ErrAccountIsBlocked = errors.New("account is blocked")

	// ErrEmailAlreadyInUse — e-mail занят другим активным пользователем.
	// HTTP 403 EMAIL_ALREADY_IN_USE.
	ErrEmailAlreadyInUse = errors.New("email already in use")

	// ErrInvalidEmail — e-mail не проходит проверку формата. HTTP 400 INVALID_DATA.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrPasswordTooLong — пароль длиннее, чем принимает bcrypt (72 байта).
	// HTTP 400 INVALID_DATA.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrOldPasswordIsInvalid — при смене пароля указан неверный текущий пароль.
	// HTTP 400 OLD_PASSWORD_IS_INVALID.
	ErrOldPasswordIsInvalid = errors.New("old password is invalid")

	// ErrInvalidRecoveryCode — код восстановления не найден или уже использован.
	// HTTP 400 INVALID_RECOVERY_CODE.
	ErrInvalidRecoveryCode = errors.New("invalid recovery code")

	// ErrExpiredRecoveryCode — срок кода восстановления истёк. HTTP 400 EXPIRED_RECOVERY_CODE.
	ErrExpiredRecoveryCode = errors.New("expired recovery code")

	// ErrInvalidVerificationCode — код подтверждения e-mail не найден или использован.
	// HTTP 403 INVALID_VERIFICATION_CODE.
	ErrInvalidVerificationCode = errors.New("invalid verification code")

	// ErrExpiredVerificationCode — срок кода подтверждения истёк.
	// HTTP 403 EXPIRED_VERIFICATION_CODE.
	ErrExpiredVerificationCode = errors.New("expired verification code")

	// ErrEmailAlreadyVerified — e-mail уже подтверждён.
	// HTTP 400 при запросе письма, 403 при проверке кода.
	ErrEmailAlreadyVerified = errors.New("email already verified")

	// ErrEmailRecordNotFound — заявка на смену e-mail, связанная с кодом, не найдена.
	// HTTP 404 EMAIL_RECORD_NOT_FOUND.
	ErrEmailRecordNotFound = errors.New("email record not found")

	// ErrRefreshTokenCollision — исчерпаны попытки сохранить уникальный refresh-токен.
	// HTTP 500.
	ErrRefreshTokenCollision = errors.New("refresh token collision")
)

// rotationAttempts — сколько раз повторяется ротация, проигравшая конкурентной вставке.
const rotationAttempts = 2

// Service описывает бизнес-логику сервиса аутентификации.
type Service struct {
	storage storage.Storage
	codec   *tokens.Codec
	mailer  mailer.Mailer
	cfg     *config.Config
	images  cache.ImageCache // может быть nil, если кэш не сконфигурирован
	metrics *metrics.Metrics // может быть nil
	now     func() time.Time

	mailWG sync.WaitGroup
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, m mailer.Mailer, cfg *config.Config) *Service {
	s := &Service{
		storage: st,
		mailer:  m,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.codec = tokens.New(cfg.Auth, func() time.Time { return s.now() })

	return s
}

// SetImageCache устанавливает кэш access-образов (опционально).
func (s *Service) SetImageCache(c cache.ImageCache) {
	s.images = c
}

// SetMetrics устанавливает коллекторы событий аутентификации (опционально).
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Wait блокируется до завершения фоновых отправок писем.
func (s *Service) Wait() {
	s.mailWG.Wait()
}
