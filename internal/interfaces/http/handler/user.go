package handler

import (
	identityapp "github.com/cultivo/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// UserHandler serves profile administration and the audit trail
type UserHandler struct {
	BaseHandler
	userService  *identityapp.UserService
	auditService *identityapp.AuditLogService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService, auditService *identityapp.AuditLogService) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// List GET /users
func (h *UserHandler) List(c *gin.Context) {
	filter, ok := h.ParseFilter(c, "role", "status")
	if !ok {
		return
	}
	page, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// Get GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, user)
}

// Update changes role or status. PATCH /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req identityapp.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, user)
}

// Invite POST /users/invitations
func (h *UserHandler) Invite(c *gin.Context) {
	var req identityapp.InviteUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	invitation, err := h.userService.Invite(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, invitation)
}

// ListInvitations GET /users/invitations
func (h *UserHandler) ListInvitations(c *gin.Context) {
	filter, ok := h.ParseFilter(c, "status", "role", "email")
	if !ok {
		return
	}
	page, err := h.userService.ListInvitations(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// RevokeInvitation POST /users/invitations/:id/revoke
func (h *UserHandler) RevokeInvitation(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	invitation, err := h.userService.RevokeInvitation(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, invitation)
}

// ListAuditLogs GET /audit-logs
func (h *UserHandler) ListAuditLogs(c *gin.Context) {
	filter, ok := h.ParseFilter(c, "actor_id", "entity_type", "entity_id", "action")
	if !ok {
		return
	}
	page, err := h.auditService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}
