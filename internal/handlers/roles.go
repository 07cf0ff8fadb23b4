package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/zfogg/aihub/backend/internal/errors"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

type roleRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Code        *string  `json:"code" binding:"omitempty,min=1,max=128"`
	Description *string  `json:"description"`
	Permissions []string `json:"permissions"`
}

// ListRoles returns roles by code
// GET /api/v1/roles
func (h *Handlers) ListRoles(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	total, err := h.store.Roles.Count(ctx)
	if util.HandleStoreError(c, err, "role") {
		return
	}
	roles, err := h.store.Roles.Find(ctx, store.OrderBy("code", false), store.Page(p.Skip, p.Limit))
	if util.HandleStoreError(c, err, "role") {
		return
	}
	c.JSON(http.StatusOK, listResponse(roles, total, p))
}

// GetRole returns one role
// GET /api/v1/roles/:id
func (h *Handlers) GetRole(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	role, err := h.store.Roles.Get(c.Request.Context(), id)
	if util.HandleStoreError(c, err, "role") {
		return
	}
	c.JSON(http.StatusOK, role)
}

// CreateRole adds a role. Every granted permission must exist.
// POST /api/v1/roles
func (h *Handlers) CreateRole(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req roleRequest
	if !util.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	role := &models.Role{Permissions: models.StringArray{}}
	applyRole(&req, role)
	if !h.permissionsExist(c, role.Permissions) {
		return
	}
	if util.HandleStoreError(c, h.store.Roles.Insert(ctx, role), "role") {
		return
	}
	c.JSON(http.StatusCreated, role)
}

// UpdateRole edits a role
// PUT /api/v1/roles/:id
func (h *Handlers) UpdateRole(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req roleRequest
	if !util.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	role, err := h.store.Roles.Get(ctx, id)
	if util.HandleStoreError(c, err, "role") {
		return
	}
	applyRole(&req, role)
	if req.Permissions != nil && !h.permissionsExist(c, role.Permissions) {
		return
	}
	if util.HandleStoreError(c, h.store.Roles.Replace(ctx, role), "role") {
		return
	}
	c.JSON(http.StatusOK, role)
}

// DeleteRole removes a role no user holds
// DELETE /api/v1/roles/:id
func (h *Handlers) DeleteRole(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.Roles.Get(ctx, id); util.HandleStoreError(c, err, "role") {
		return
	}
	held, err := h.store.Users.Exists(ctx, store.Eq("role_id", id))
	if util.HandleStoreError(c, err, "user") {
		return
	}
	if held {
		util.RespondWithAPIError(c, apperrors.Conflict("role is assigned to users"))
		return
	}
	if util.HandleStoreError(c, h.store.Roles.Delete(ctx, id), "role") {
		return
	}
	util.RespondMessage(c, "role deleted")
}

func applyRole(r *roleRequest, role *models.Role) {
	if r.Name != nil {
		role.Name = *r.Name
	}
	if r.Code != nil {
		role.Code = strings.TrimSpace(*r.Code)
	}
	if r.Description != nil {
		role.Description = *r.Description
	}
	if r.Permissions != nil {
		role.Permissions = models.StringArray(r.Permissions).Normalize()
	}
}

// permissionsExist answers INVALID_INPUT naming the first unknown permission id
func (h *Handlers) permissionsExist(c *gin.Context, ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if !util.ValidID(id) {
			util.RespondWithAPIError(c, apperrors.InvalidInput("permissions", "unknown permission "+id))
			return false
		}
	}
	found, err := h.store.Permissions.Pluck(c.Request.Context(), "id", store.In("id", ids))
	if util.HandleStoreError(c, err, "permission") {
		return false
	}
	known := make(map[string]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			util.RespondWithAPIError(c, apperrors.InvalidInput("permissions", "unknown permission "+id))
			return false
		}
	}
	return true
}
