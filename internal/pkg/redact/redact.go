// Package redact маскирует чувствительные значения перед записью в лог.
package redact

import "strings"

// Email оставляет первые две руны локальной части и домен: "fo***@example.com".
// Короткая локальная часть и некорректный адрес маскируются целиком.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := []rune(parts[0]), parts[1]
	if len(local) > 2 {
		return string(local[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Token — заглушка вместо значения токена или кода.
func Token() string { return "[REDACTED_TOKEN]" }

// Password — заглушка вместо пароля.
func Password() string { return "[REDACTED_PASSWORD]" }
