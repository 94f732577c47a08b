package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/middleware"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/response"
	"github.com/istun/mezunlar-backend/internal/service"
	"github.com/istun/mezunlar-backend/internal/validator"
	"github.com/rs/zerolog"
)

// AuthHandler handles login, token refresh, logout and registration.
type AuthHandler struct {
	cfg                 *config.Config
	authService         *service.AuthService
	registrationService *service.RegistrationService
	log                 zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	cfg *config.Config,
	authService *service.AuthService,
	registrationService *service.RegistrationService,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		cfg:                 cfg,
		authService:         authService,
		registrationService: registrationService,
		log:                 log.With().Str("component", "auth_handler").Logger(),
	}
}

// AdminLogin godoc
// POST /api/admin/auth/login
// Validates identifier + password for an account holding an admin role.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.authService.LoginAdmin(c.Request.Context(), req.Login(), req.Password)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// MemberLogin godoc
// POST /api/auth/login
// Validates identifier + password for an approved member.
func (h *AuthHandler) MemberLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.authService.LoginMember(c.Request.Context(), req.Login(), req.Password)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Refresh godoc
// POST /api/admin/auth/refresh, POST /api/auth/refresh
// Exchanges a refresh token for a new token pair. The old refresh token is consumed.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

// Logout godoc
// POST /api/admin/auth/logout, POST /api/auth/logout
// Revokes the presented refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.RefreshRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Oturum kapatıldı."})
}

// Me godoc
// GET /api/admin/auth/me, GET /api/auth/me
// Returns the authenticated account and the permissions of its role.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	u, err := h.authService.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":        u,
		"permissions": u.AdminRole.Permissions(),
	})
}

// Register godoc
// POST /api/auth/register
// Multipart sign-up: profile fields plus the student_doc proof file.
// The account starts pending.
func (h *AuthHandler) Register(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes()+1<<20)

	var req model.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}
	if !req.Consent {
		response.Fail(c, http.StatusBadRequest, response.ErrConsentRequired)
		return
	}

	file, header, err := c.Request.FormFile("student_doc")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	u, err := h.registrationService.Register(c.Request.Context(), req, file, header)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Başvurunuz alındı. Yönetici onayından sonra giriş yapabilirsiniz.",
		"user":    u,
	})
}
