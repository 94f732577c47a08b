package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/middleware"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/response"
	"github.com/istun/mezunlar-backend/internal/service"
	"github.com/istun/mezunlar-backend/internal/validator"
	"github.com/rs/zerolog"
)

// ApprovalHandler serves the registration review endpoints and the user listings.
type ApprovalHandler struct {
	approvalService *service.ApprovalService
	log             zerolog.Logger
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(approvalService *service.ApprovalService, log zerolog.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
		log:             log.With().Str("component", "approval_handler").Logger(),
	}
}

// ListPending godoc
// GET /api/admin/auth/pending-users
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	claims := middleware.GetClaims(c)
	users, err := h.approvalService.ListPending(c.Request.Context(), claims.Actor())
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// ApproveUser godoc
// POST /api/admin/auth/approve-user/:id
func (h *ApprovalHandler) ApproveUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	u, changed, err := h.approvalService.Approve(c.Request.Context(), claims.Actor(), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	msg := "Kullanıcı onaylandı."
	if !changed {
		msg = "Kullanıcı zaten onaylanmış."
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg, "user": u})
}

// RejectUser godoc
// POST /api/admin/auth/reject-user/:id
// Body: {"reason": "..."}; the reason must not be blank.
func (h *ApprovalHandler) RejectUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RejectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		if _, missing := fields["reason"]; missing {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrReasonRequired, fields)
			return
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	u, changed, err := h.approvalService.Reject(c.Request.Context(), claims.Actor(), id, req.Reason)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	msg := "Kullanıcı reddedildi."
	if !changed {
		msg = "Kullanıcı zaten reddedilmiş."
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg, "user": u})
}

// ListUsers godoc
// GET /api/users?page=1&limit=20&status=approved
func (h *ApprovalHandler) ListUsers(c *gin.Context) {
	var q model.UserListQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var status *model.UserStatus
	statusLabel := "all"
	if q.Status != "" && q.Status != "all" {
		st, err := model.ParseUserStatus(q.Status)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		status = &st
		statusLabel = string(st)
	}

	claims := middleware.GetClaims(c)
	users, hasMore, err := h.approvalService.ListUsers(c.Request.Context(), claims.Actor(), status, q.Page, q.Limit)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	page, limit := service.NormalizePage(q.Page, q.Limit)
	response.SuccessPage(c, http.StatusOK, users, &response.PageInfo{
		Page:    page,
		Limit:   limit,
		HasMore: hasMore,
		Status:  statusLabel,
	})
}

// ListAlumni godoc
// GET /api/public/alumni?page=1&limit=20
// Public roster of approved members.
func (h *ApprovalHandler) ListAlumni(c *gin.Context) {
	var q model.UserListQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profiles, hasMore, err := h.approvalService.ListApproved(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	page, limit := service.NormalizePage(q.Page, q.Limit)
	response.SuccessPage(c, http.StatusOK, profiles, &response.PageInfo{
		Page:    page,
		Limit:   limit,
		HasMore: hasMore,
		Status:  string(model.StatusApproved),
	})
}
