// Package response формирует единый конверт ответов HTTP API:
//
//	{"datetime": <unix ms>, "info": "...", "misc": "...", "request": "/path [METHOD]", "status": 200, "data": ...}
//
// Ошибки сервисного слоя переводятся в пару (HTTP-статус, info) функцией ToHTTP.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pribylovaa/go-blog-auth/internal/service"
)

// Значения поля info.
const (
	InfoOK                      = "OK"
	InfoMissingData             = "MISSING_DATA"
	InfoInvalidData             = "INVALID_DATA"
	InfoMissingToken            = "MISSING_TOKEN"
	InfoInvalidToken            = "INVALID_TOKEN"
	InfoTokenExpired            = "TOKEN_EXPIRED"
	InfoAccessDenied            = "ACCESS_DENIED"
	InfoAccountIsBlocked        = "ACCOUNT_IS_BLOCKED"
	InfoEmailAlreadyInUse       = "EMAIL_ALREADY_IN_USE"
	InfoOldPasswordIsInvalid    = "OLD_PASSWORD_IS_INVALID"
	InfoInvalidRecoveryCode     = "INVALID_RECOVERY_CODE"
	InfoExpiredRecoveryCode     = "EXPIRED_RECOVERY_CODE"
	InfoInvalidVerificationCode = "INVALID_VERIFICATION_CODE"
	InfoExpiredVerificationCode = "EXPIRED_VERIFICATION_CODE"
	InfoEmailAlreadyVerified    = "EMAIL_ALREADY_VERIFIED"
	InfoEmailRecordNotFound     = "EMAIL_RECORD_NOT_FOUND"
	InfoResourceNotFound        = "RESOURCE_NOT_FOUND"
	InfoInternalServerError     = "INTERNAL_SERVER_ERROR"
)

const miscDefault = "NO_ADDITIONAL_INFORMATION"

// Envelope — корневой объект любого ответа.
type Envelope struct {
	Datetime int64  `json:"datetime"`
	Info     string `json:"info"`
	Misc     string `json:"misc"`
	Request  string `json:"request"`
	Status   int    `json:"status"`
	Data     any    `json:"data,omitempty"`
}

// Write пишет конверт с заданным статусом, info и необязательными данными.
func Write(w http.ResponseWriter, r *http.Request, status int, info string, data any) {
	env := Envelope{
		Datetime: time.Now().UnixMilli(),
		Info:     info,
		Misc:     miscDefault,
		Request:  Request(r),
		Status:   status,
		Data:     data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK — 200 с info=OK.
func OK(w http.ResponseWriter, r *http.Request, data any) {
	Write(w, r, http.StatusOK, InfoOK, data)
}

// MissingData — 400 MISSING_DATA со списком отсутствующих полей.
func MissingData(w http.ResponseWriter, r *http.Request, fields []string) {
	Write(w, r, http.StatusBadRequest, InfoMissingData, map[string][]string{"missing": fields})
}

// InvalidData — 400 INVALID_DATA со списком полей неверного типа/формата.
// fields == nil означает, что тело запроса целиком не разобрано.
func InvalidData(w http.ResponseWriter, r *http.Request, fields []string) {
	var data any
	if fields != nil {
		data = map[string][]string{"invalid": fields}
	}

	Write(w, r, http.StatusBadRequest, InfoInvalidData, data)
}

// NotFound — 404 RESOURCE_NOT_FOUND (в том числе для неизвестных маршрутов).
func NotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, r, http.StatusNotFound, InfoResourceNotFound, nil)
}

// Internal — 500 INTERNAL_SERVER_ERROR без подробностей.
func Internal(w http.ResponseWriter, r *http.Request) {
	Write(w, r, http.StatusInternalServerError, InfoInternalServerError, nil)
}

// Error пишет ответ по ошибке сервисного слоя и возвращает выбранный статус.
func Error(w http.ResponseWriter, r *http.Request, err error) int {
	status, info := ToHTTP(err)
	Write(w, r, status, info, nil)

	return status
}

// Request — строка вида "/path [METHOD]" для поля request.
func Request(r *http.Request) string {
	return r.URL.Path + " [" + r.Method + "]"
}

// ToHTTP переводит ошибку в HTTP-статус и info.
//
// ErrEmailAlreadyVerified даёт 403: запрос письма для уже подтверждённого адреса
// обработчик переводит в 400 самостоятельно. Всё неизвестное — 500.
func ToHTTP(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, InfoInternalServerError
	case errors.Is(err, service.ErrMissingToken):
		return http.StatusUnauthorized, InfoMissingToken
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, InfoInvalidToken
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, InfoTokenExpired
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusUnauthorized, InfoAccessDenied
	case errors.Is(err, service.ErrAccountIsBlocked):
		return http.StatusForbidden, InfoAccountIsBlocked
	case errors.Is(err, service.ErrEmailAlreadyInUse):
		return http.StatusForbidden, InfoEmailAlreadyInUse
	case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrPasswordTooLong):
		return http.StatusBadRequest, InfoInvalidData
	case errors.Is(err, service.ErrOldPasswordIsInvalid):
		return http.StatusBadRequest, InfoOldPasswordIsInvalid
	case errors.Is(err, service.ErrInvalidRecoveryCode):
		return http.StatusBadRequest, InfoInvalidRecoveryCode
	case errors.Is(err, service.ErrExpiredRecoveryCode):
		return http.StatusBadRequest, InfoExpiredRecoveryCode
	case errors.Is(err, service.ErrInvalidVerificationCode):
		return http.StatusForbidden, InfoInvalidVerificationCode
	case errors.Is(err, service.ErrExpiredVerificationCode):
		return http.StatusForbidden, InfoExpiredVerificationCode
	case errors.Is(err, service.ErrEmailAlreadyVerified):
		return http.StatusForbidden, InfoEmailAlreadyVerified
	case errors.Is(err, service.ErrEmailRecordNotFound):
		return http.StatusNotFound, InfoEmailRecordNotFound
	default:
		return http.StatusInternalServerError, InfoInternalServerError
	}
}
