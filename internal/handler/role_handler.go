package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/istun/mezunlar-backend/internal/middleware"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/response"
	"github.com/istun/mezunlar-backend/internal/service"
	"github.com/istun/mezunlar-backend/internal/validator"
	"github.com/rs/zerolog"
)

// RoleHandler serves admin role management.
type RoleHandler struct {
	roleService *service.RoleService
	log         zerolog.Logger
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roleService *service.RoleService, log zerolog.Logger) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		log:         log.With().Str("component", "role_handler").Logger(),
	}
}

// ListAdmins godoc
// GET /api/admin/management/list-admins
func (h *RoleHandler) ListAdmins(c *gin.Context) {
	claims := middleware.GetClaims(c)
	admins, err := h.roleService.ListAdmins(c.Request.Context(), claims.Actor())
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admins": admins})
}

// SetRole godoc
// POST /api/admin/management/set-role
// Body: {"email": "...", "role": "content_admin|super_admin"}
func (h *RoleHandler) SetRole(c *gin.Context) {
	var req model.SetRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		code := response.ErrValidation
		if _, bad := fields["role"]; bad {
			code = response.ErrInvalidRole
		}
		response.FailWithFields(c, http.StatusBadRequest, code, fields)
		return
	}

	claims := middleware.GetClaims(c)
	u, err := h.roleService.AssignRole(c.Request.Context(), claims.Actor(), req.Email, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "Yönetici rolü atandı.",
		"user":    u,
	})
}

// RemoveRole godoc
// POST /api/admin/management/remove-role
// Body: {"email": "..."}
func (h *RoleHandler) RemoveRole(c *gin.Context) {
	var req model.RemoveRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	u, err := h.roleService.RemoveRole(c.Request.Context(), claims.Actor(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "Yönetici rolü kaldırıldı.",
		"user":    u,
	})
}

// fail reports unknown emails as a missing account rather than a missing user.
func (h *RoleHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrAccountNotFound)
		return
	}
	failService(c, h.log, err)
}
