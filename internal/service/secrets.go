package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxPasswordBytes — предел длины пароля для bcrypt.
	MaxPasswordBytes = 72

	codeLength   = 32
	alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string, cost int) (string, error) {
	const op = "service.secrets.hashPassword"

	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateImage создаёт необратимый образ сессии: bcrypt от id пользователя,
// случайных строк и текущего времени. Длина исходной строки укладывается в 72 байта bcrypt.
func generateImage(userID uuid.UUID, now time.Time, cost int) (string, error) {
	const op = "service.secrets.generateImage"

	left, err := randomString(10)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	right, err := randomString(10)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	seed := userID.String() + "X" + left + "X" + strconv.FormatInt(now.UnixMilli(), 10) + "X" + right

	image, err := bcrypt.GenerateFromPassword([]byte(seed), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(image), nil
}

// generateCode создаёт одноразовый код из 32 латинских букв и цифр.
func generateCode() (string, error) {
	return randomString(codeLength)
}

// randomString возвращает строку из алфавита alphanumeric без смещения распределения.
func randomString(n int) (string, error) {
	// 248 = 4*62: байты >= 248 отбрасываются.
	const limit = 256 - 256%len(alphanumeric)

	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, alphanumeric[int(b)%len(alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}

// hashToken — ключ хранения refresh-токена: сам токен в БД не попадает.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
