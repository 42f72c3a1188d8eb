// Package models содержит доменные сущности сервиса аутентификации.
package models

// RecordState — жизненный цикл вторичных записей (пароли, образы, токены, коды).
// Вместо булевого флага удаления каждая запись либо активна, либо отозвана;
// запросы к хранилищу параметризуются состоянием.
type RecordState string

const (
	StateActive  RecordState = "active"
	StateRevoked RecordState = "revoked"
)

// AccountStatus — статус учётной записи пользователя.
type AccountStatus string

const (
	StatusActive  AccountStatus = "active"
	StatusBlocked AccountStatus = "blocked"
)

// RoleUser — роль, которую получает пользователь при регистрации.
const RoleUser = "user"
