package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/zfogg/aihub/backend/internal/errors"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

type permissionRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Code        *string `json:"code" binding:"omitempty,min=1,max=128"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id" binding:"omitempty,uuid"`
}

// ListPermissions returns the permission tree flattened by level then code
// GET /api/v1/permissions
func (h *Handlers) ListPermissions(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	var filters []store.Scope
	if parent := c.Query("parent_id"); parent != "" {
		filters = append(filters, store.Eq("parent_id", parent))
	}

	ctx := c.Request.Context()
	total, err := h.store.Permissions.Count(ctx, filters...)
	if util.HandleStoreError(c, err, "permission") {
		return
	}
	perms, err := h.store.Permissions.Find(ctx, append(filters, store.OrderBy("level", false), store.OrderBy("code", false), store.Page(p.Skip, p.Limit))...)
	if util.HandleStoreError(c, err, "permission") {
		return
	}
	c.JSON(http.StatusOK, listResponse(perms, total, p))
}

// GetPermission returns one permission
// GET /api/v1/permissions/:id
func (h *Handlers) GetPermission(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	perm, err := h.store.Permissions.Get(c.Request.Context(), id)
	if util.HandleStoreError(c, err, "permission") {
		return
	}
	c.JSON(http.StatusOK, perm)
}

// CreatePermission adds a node under parent_id, or a root when it is absent
// POST /api/v1/permissions
func (h *Handlers) CreatePermission(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req permissionRequest
	if !util.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	perm := &models.Permission{}
	applyPermission(&req, perm)
	if req.ParentID != nil {
		parent, err := h.store.Permissions.Get(ctx, *req.ParentID)
		if util.HandleStoreError(c, err, "parent permission") {
			return
		}
		perm.ParentID = &parent.ID
		perm.Level = parent.Level + 1
	}

	if util.HandleStoreError(c, h.store.Permissions.Insert(ctx, perm), "permission") {
		return
	}
	c.JSON(http.StatusCreated, perm)
}

// UpdatePermission edits a permission. Moving it under another parent
// relevels the whole subtree.
// PUT /api/v1/permissions/:id
func (h *Handlers) UpdatePermission(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req permissionRequest
	if !util.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	perm, err := h.store.Permissions.Get(ctx, id)
	if util.HandleStoreError(c, err, "permission") {
		return
	}
	applyPermission(&req, perm)

	moved := false
	if req.ParentID != nil && (perm.ParentID == nil || *perm.ParentID != *req.ParentID) {
		parent, err := h.store.Permissions.Get(ctx, *req.ParentID)
		if util.HandleStoreError(c, err, "parent permission") {
			return
		}
		inside, err := h.isDescendant(ctx, parent, perm.ID)
		if util.HandleStoreError(c, err, "permission") {
			return
		}
		if inside {
			util.RespondWithAPIError(c, apperrors.InvalidInput("parent_id", "a permission cannot be moved under itself"))
			return
		}
		perm.ParentID = &parent.ID
		perm.Level = parent.Level + 1
		moved = true
	}

	if util.HandleStoreError(c, h.store.Permissions.Replace(ctx, perm), "permission") {
		return
	}
	if moved {
		if err := h.relevelChildren(ctx, perm); util.HandleStoreError(c, err, "permission") {
			return
		}
	}
	c.JSON(http.StatusOK, perm)
}

// DeletePermission removes a leaf permission that no role grants
// DELETE /api/v1/permissions/:id
func (h *Handlers) DeletePermission(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.Permissions.Get(ctx, id); util.HandleStoreError(c, err, "permission") {
		return
	}
	hasChildren, err := h.store.Permissions.Exists(ctx, store.Eq("parent_id", id))
	if util.HandleStoreError(c, err, "permission") {
		return
	}
	if hasChildren {
		util.RespondWithAPIError(c, apperrors.Conflict("permission has child permissions"))
		return
	}
	granted, err := h.store.Roles.Exists(ctx, store.HasTag("permissions", id))
	if util.HandleStoreError(c, err, "role") {
		return
	}
	if granted {
		util.RespondWithAPIError(c, apperrors.Conflict("permission is granted by a role"))
		return
	}

	if util.HandleStoreError(c, h.store.Permissions.Delete(ctx, id), "permission") {
		return
	}
	util.RespondMessage(c, "permission deleted")
}

func applyPermission(r *permissionRequest, p *models.Permission) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Code != nil {
		p.Code = strings.TrimSpace(*r.Code)
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
}

// isDescendant walks up from node and reports whether ancestorID is on the path
func (h *Handlers) isDescendant(ctx context.Context, node *models.Permission, ancestorID string) (bool, error) {
	seen := map[string]struct{}{}
	for cur := node; cur != nil; {
		if cur.ID == ancestorID {
			return true, nil
		}
		if cur.ParentID == nil {
			return false, nil
		}
		if _, loop := seen[cur.ID]; loop {
			return false, nil
		}
		seen[cur.ID] = struct{}{}

		next, err := h.store.Permissions.Get(ctx, *cur.ParentID)
		if err != nil {
			return false, err
		}
		cur = next
	}
	return false, nil
}

// relevelChildren sets level = parent.level + 1 across the subtree under root
func (h *Handlers) relevelChildren(ctx context.Context, root *models.Permission) error {
	queue := []*models.Permission{root}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		children, err := h.store.Permissions.Find(ctx, store.Eq("parent_id", parent.ID))
		if err != nil {
			return err
		}
		for i := range children {
			child := &children[i]
			if child.Level != parent.Level+1 {
				if err := h.store.Permissions.SetColumns(ctx, child.ID, map[string]interface{}{"level": parent.Level + 1}); err != nil {
					return err
				}
				child.Level = parent.Level + 1
			}
			queue = append(queue, child)
		}
	}
	return nil
}
