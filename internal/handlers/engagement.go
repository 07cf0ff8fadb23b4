package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

// CreateShare records that the caller shared a tool
// POST /api/v1/tools/:id/shares
func (h *Handlers) CreateShare(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	var req struct {
		Platform string `json:"platform" binding:"required,max=64"`
		ShareURL string `json:"share_url" binding:"omitempty,url"`
	}
	if !util.BindJSON(c, &req) {
		return
	}

	share := &models.Share{
		ToolID:   tool.ID,
		UserID:   identity.ID,
		Platform: strings.ToLower(strings.TrimSpace(req.Platform)),
		ShareURL: req.ShareURL,
	}
	ctx := c.Request.Context()
	if util.HandleStoreError(c, h.store.Shares.Insert(ctx, share), "share") {
		return
	}
	if _, err := h.engine.RecomputeShareStats(ctx, tool.ID); err != nil {
		util.RespondError(c, err, "share stats")
		return
	}
	c.JSON(http.StatusCreated, share)
}

// ListShares returns a tool's shares, newest first
// GET /api/v1/tools/:id/shares
func (h *Handlers) ListShares(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	byTool := store.Eq("tool_id", tool.ID)

	total, err := h.store.Shares.Count(ctx, byTool)
	if util.HandleStoreError(c, err, "share") {
		return
	}
	shares, err := h.store.Shares.Find(ctx, byTool, store.OrderBy("created_at", true), store.Page(p.Skip, p.Limit))
	if util.HandleStoreError(c, err, "share") {
		return
	}
	c.JSON(http.StatusOK, listResponse(shares, total, p))
}

// GetShareStats returns the tool's share statistics, building them on first read
// GET /api/v1/tools/:id/shares/stats
func (h *Handlers) GetShareStats(c *gin.Context) {
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	stats, err := h.engine.ShareStats(c.Request.Context(), tool.ID)
	if util.HandleStoreError(c, err, "share stats") {
		return
	}
	c.JSON(http.StatusOK, stats)
}

// FavoriteTool adds the tool to the caller's favorites. Repeating it is a no-op.
// POST /api/v1/tools/:id/favorite
func (h *Handlers) FavoriteTool(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	mine := []store.Scope{store.Eq("tool_id", tool.ID), store.Eq("user_id", identity.ID)}
	exists, err := h.store.Favorites.Exists(ctx, mine...)
	if util.HandleStoreError(c, err, "favorite") {
		return
	}
	if !exists {
		err := h.store.Favorites.Insert(ctx, &models.Favorite{ToolID: tool.ID, UserID: identity.ID})
		// a concurrent identical request already inserted it
		if err != nil && !isDuplicate(err) {
			util.RespondError(c, err, "favorite")
			return
		}
	}

	likes, err := h.engine.RecomputeLikes(ctx, tool.ID)
	if util.HandleStoreError(c, err, "tool") {
		return
	}
	h.reindexTool(ctx, tool.ID)
	c.JSON(http.StatusOK, gin.H{"tool_id": tool.ID, "favorited": true, "likes": likes})
}

// UnfavoriteTool removes the tool from the caller's favorites
// DELETE /api/v1/tools/:id/favorite
func (h *Handlers) UnfavoriteTool(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	n, err := h.store.Favorites.DeleteWhere(ctx, store.Eq("tool_id", tool.ID), store.Eq("user_id", identity.ID))
	if util.HandleStoreError(c, err, "favorite") {
		return
	}
	if n == 0 {
		util.RespondNotFound(c, "favorite")
		return
	}

	likes, err := h.engine.RecomputeLikes(ctx, tool.ID)
	if util.HandleStoreError(c, err, "tool") {
		return
	}
	h.reindexTool(ctx, tool.ID)
	c.JSON(http.StatusOK, gin.H{"tool_id": tool.ID, "favorited": false, "likes": likes})
}
