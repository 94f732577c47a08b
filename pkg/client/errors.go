package client

import (
	"errors"
	"net/http"
)

// Error kinds. Every *APIError unwraps to exactly one of these.
var (
	ErrValidation   = errors.New("girilen bilgiler geçersiz")
	ErrBadRequest   = errors.New("istek geçersiz")
	ErrUnauthorized = errors.New("oturumunuz sona erdi, lütfen tekrar giriş yapın")
	ErrForbidden    = errors.New("bu işlem için yetkiniz bulunmuyor")
	ErrNotFound     = errors.New("kayıt bulunamadı")
	ErrConflict     = errors.New("kayıt başka bir işlemle değiştirilmiş")
	ErrServer       = errors.New("sunucuya ulaşılamadı, lütfen daha sonra tekrar deneyin")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.kind.Error()
}

func (e *APIError) Unwrap() error {
	return e.kind
}

func kindFor(status int) error {
	switch {
	case status == http.StatusBadRequest, status == http.StatusRequestEntityTooLarge,
		status == http.StatusUnsupportedMediaType, status == http.StatusUnprocessableEntity:
		return ErrBadRequest
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	default:
		return ErrServer
	}
}

// roleMessages replaces server text for role management failures.
var roleMessages = map[int]string{
	http.StatusBadRequest: "Geçersiz e-posta adresi veya rol.",
	http.StatusForbidden:  "Yönetici rollerini yalnızca süper yöneticiler değiştirebilir.",
	http.StatusNotFound:   "Bu e-posta adresiyle kayıtlı bir hesap bulunamadı.",
	http.StatusConflict:   "Kendi rolünüzü değiştiremezsiniz.",

	http.StatusInternalServerError: "Rol değişikliği sunucu hatası nedeniyle kaydedilemedi. Lütfen daha sonra tekrar deneyin.",
}

func withRoleMessage(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg, ok := roleMessages[apiErr.Status]; ok {
			apiErr.Message = msg
		}
	}
	return err
}
