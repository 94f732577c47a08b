package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/istun/mezunlar-backend/internal/response"
	"github.com/istun/mezunlar-backend/internal/service"
	"github.com/rs/zerolog"
)

type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

var serviceErrors = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrRefreshInvalid, http.StatusUnauthorized, response.ErrRefreshInvalid},
	{service.ErrAccountPending, http.StatusForbidden, response.ErrAccountPending},
	{service.ErrAccountRejected, http.StatusForbidden, response.ErrAccountRejected},
	{service.ErrNotAdmin, http.StatusForbidden, response.ErrAdminAccessOnly},
	{service.ErrForbidden, http.StatusForbidden, response.ErrPermissionDenied},
	{service.ErrNotFound, http.StatusNotFound, response.ErrUserNotFound},
	{service.ErrAlreadyDecided, http.StatusConflict, response.ErrAlreadyDecided},
	{service.ErrSelfRoleChange, http.StatusConflict, response.ErrActionForbidden},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
	{service.ErrUsernameTaken, http.StatusConflict, response.ErrUsernameTaken},
	{service.ErrReasonRequired, http.StatusBadRequest, response.ErrReasonRequired},
	{service.ErrInvalidRole, http.StatusBadRequest, response.ErrInvalidRole},
	{service.ErrInvalidEmail, http.StatusBadRequest, response.ErrValidation},
	{service.ErrConsentRequired, http.StatusBadRequest, response.ErrConsentRequired},
	{service.ErrDocumentRequired, http.StatusBadRequest, response.ErrFileRequired},
	{service.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},
}

// failService writes the API error for a service error. Unknown errors are
// logged and reported as INTERNAL_ERROR.
func failService(c *gin.Context, log zerolog.Logger, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}

	log.Error().Err(err).
		Str("request_id", response.RequestID(c)).
		Str("path", c.FullPath()).
		Msg("Unhandled service error")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
