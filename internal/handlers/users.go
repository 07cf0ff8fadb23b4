package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
	"golang.org/x/crypto/bcrypt"
)

// ListUsers returns a page of accounts
// GET /api/v1/users
func (h *Handlers) ListUsers(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var filters []store.Scope
	if q := c.Query("search"); q != "" {
		filters = append(filters, store.Match(q, "username", "email"))
	}

	total, err := h.store.Users.Count(ctx, filters...)
	if util.HandleStoreError(c, err, "user") {
		return
	}
	users, err := h.store.Users.Find(ctx, append(filters, store.OrderBy("created_at", true), store.Page(p.Skip, p.Limit))...)
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusOK, listResponse(users, total, p))
}

// GetUser returns one account to its owner or an administrator
// GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	userID, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if _, ok := requireOwner(c, userID); !ok {
		return
	}
	user, err := h.store.Users.Get(c.Request.Context(), userID)
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser changes profile fields. Only administrators may change is_admin,
// is_active or role_id.
// PUT /api/v1/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	userID, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := requireOwner(c, userID)
	if !ok {
		return
	}

	var req struct {
		Email    *string `json:"email" binding:"omitempty,email"`
		Password *string `json:"password" binding:"omitempty,min=8"`
		IsActive *bool   `json:"is_active"`
		IsAdmin  *bool   `json:"is_admin"`
		RoleID   *string `json:"role_id" binding:"omitempty,uuid"`
	}
	if !util.BindJSON(c, &req) {
		return
	}
	if !identity.IsAdmin && (req.IsAdmin != nil || req.IsActive != nil || req.RoleID != nil) {
		util.RespondForbidden(c, "only administrators may change roles or account status")
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.Users.Get(ctx, userID)
	if util.HandleStoreError(c, err, "user") {
		return
	}

	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			util.RespondError(c, err, "user")
			return
		}
		user.PasswordHash = string(hashed)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.RoleID != nil {
		exists, err := h.store.Roles.Exists(ctx, store.Eq("id", *req.RoleID))
		if util.HandleStoreError(c, err, "role") {
			return
		}
		if !exists {
			util.RespondNotFound(c, "role")
			return
		}
		user.RoleID = req.RoleID
	}

	if util.HandleStoreError(c, h.store.Users.Replace(ctx, user), "user") {
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account
// DELETE /api/v1/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	userID, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if util.HandleStoreError(c, h.store.Users.Delete(c.Request.Context(), userID), "user") {
		return
	}
	util.RespondMessage(c, "user deleted")
}

// MyShares lists the caller's shares, newest first
// GET /api/v1/users/me/shares
func (h *Handlers) MyShares(c *gin.Context) {
	listMine(c, h.store.Shares, "share")
}

// MySubscriptions lists the caller's subscriptions, newest first
// GET /api/v1/users/me/subscriptions
func (h *Handlers) MySubscriptions(c *gin.Context) {
	listMine(c, h.store.Subscriptions, "subscription")
}

// MyFavorites lists the caller's favorite tools, most recently favorited first
// GET /api/v1/users/me/favorites
func (h *Handlers) MyFavorites(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	mine := store.Eq("user_id", identity.ID)

	total, err := h.store.Favorites.Count(ctx, mine)
	if util.HandleStoreError(c, err, "favorite") {
		return
	}
	toolIDs, err := h.store.Favorites.Pluck(ctx, "tool_id", mine, store.OrderBy("created_at", true), store.Page(p.Skip, p.Limit))
	if util.HandleStoreError(c, err, "favorite") {
		return
	}
	found, err := h.store.Tools.Find(ctx, store.In("id", toolIDs))
	if util.HandleStoreError(c, err, "tool") {
		return
	}

	byID := make(map[string]models.Tool, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tools := make([]models.Tool, 0, len(toolIDs))
	for _, id := range toolIDs {
		if t, ok := byID[id]; ok {
			tools = append(tools, t)
		}
	}
	c.JSON(http.StatusOK, listResponse(tools, total, p))
}

// listMine answers the caller-scoped list endpoints of collections keyed by user_id
func listMine[T any](c *gin.Context, coll *store.Collection[T], resource string) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	mine := store.Eq("user_id", identity.ID)

	total, err := coll.Count(ctx, mine)
	if util.HandleStoreError(c, err, resource) {
		return
	}
	items, err := coll.Find(ctx, mine, store.OrderBy("created_at", true), store.Page(p.Skip, p.Limit))
	if util.HandleStoreError(c, err, resource) {
		return
	}
	c.JSON(http.StatusOK, listResponse(items, total, p))
}
