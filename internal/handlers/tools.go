package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
	"go.uber.org/zap"
)

// ToolRequest is the body of tool writes. Nil fields are left unchanged on update.
type ToolRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description  *string  `json:"description"`
	URL          *string  `json:"url" binding:"omitempty,url"`
	CategoryID   *string  `json:"category"`
	Subcategory  *string  `json:"subcategory"`
	Tags         []string `json:"tags"`
	Icon         *string  `json:"icon"`
	IsFree       *bool    `json:"is_free"`
	IsFeatured   *bool    `json:"is_featured"`
	IsActive     *bool    `json:"is_active"`
	RelatedTools []string `json:"related_tools"`
}

func (r *ToolRequest) apply(tool *models.Tool) {
	if r.Name != nil {
		tool.Name = *r.Name
	}
	if r.Description != nil {
		tool.Description = *r.Description
	}
	if r.URL != nil {
		tool.URL = *r.URL
	}
	if r.CategoryID != nil {
		tool.CategoryID = *r.CategoryID
	}
	if r.Subcategory != nil {
		tool.Subcategory = *r.Subcategory
	}
	if r.Tags != nil {
		tool.Tags = models.StringArray(r.Tags).Normalize()
	}
	if r.Icon != nil {
		tool.Icon = *r.Icon
	}
	if r.IsFree != nil {
		tool.IsFree = *r.IsFree
	}
	if r.IsFeatured != nil {
		tool.IsFeatured = *r.IsFeatured
	}
	if r.IsActive != nil {
		tool.IsActive = *r.IsActive
	}
	if r.RelatedTools != nil {
		tool.RelatedTools = models.StringArray(r.RelatedTools).Normalize()
	}
}

// ListTools returns a page of tools
// GET /api/v1/tools
func (h *Handlers) ListTools(c *gin.Context) {
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}

	isActive, present, ok := util.ParseBoolQuery(c, "is_active")
	if !ok {
		return
	}
	if !present {
		isActive = true
	}
	filters := []store.Scope{store.Eq("is_active", isActive)}

	if category := c.Query("category"); category != "" {
		filters = append(filters, store.Eq("category_id", category))
	}
	for _, name := range []string{"is_featured", "is_free"} {
		v, present, ok := util.ParseBoolQuery(c, name)
		if !ok {
			return
		}
		if present {
			filters = append(filters, store.Eq(name, v))
		}
	}
	if q := c.Query("search"); q != "" {
		filters = append(filters, store.Match(q, "name", "description", store.Elements("tags")))
	}

	ctx := c.Request.Context()
	total, err := h.store.Tools.Count(ctx, filters...)
	if util.HandleStoreError(c, err, "tool") {
		return
	}
	tools, err := h.store.Tools.Find(ctx, append(filters, store.OrderBy("created_at", true), store.OrderBy("id", false), store.Page(p.Skip, p.Limit))...)
	if util.HandleStoreError(c, err, "tool") {
		return
	}
	c.JSON(http.StatusOK, listResponse(tools, total, p))
}

// GetTool returns a tool and counts the view. Authenticated callers also get
// the view recorded in their history.
// GET /api/v1/tools/:id
func (h *Handlers) GetTool(c *gin.Context) {
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := h.store.Tools.Increment(ctx, tool.ID, "views", 1); err != nil {
		logger.Log.Warn("Failed to count tool view", logger.WithToolID(tool.ID), zap.Error(err))
	} else {
		tool.Views++
		if err := h.search.IndexTool(ctx, tool); err != nil {
			logger.Log.Warn("Failed to refresh search document", logger.WithToolID(tool.ID), zap.Error(err))
		}
	}

	if userID := util.GetUserIDFromContext(c); userID != "" {
		view := &models.ToolView{ToolID: tool.ID, UserID: userID}
		if err := h.store.Views.Insert(ctx, view); err != nil {
			logger.Log.Warn("Failed to record tool view", logger.WithToolID(tool.ID), logger.WithUserID(userID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, tool)
}

// CreateTool adds a tool to the catalog
// POST /api/v1/tools
func (h *Handlers) CreateTool(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req ToolRequest
	if !util.BindJSON(c, &req) {
		return
	}

	tool := &models.Tool{IsActive: true, Tags: models.StringArray{}, RelatedTools: models.StringArray{}}
	req.apply(tool)
	if !h.categoryExists(c, tool.CategoryID) {
		return
	}

	ctx := c.Request.Context()
	if util.HandleStoreError(c, h.store.Tools.Insert(ctx, tool), "tool") {
		return
	}
	h.refreshToolViews(ctx, tool, false, tool.Tags...)

	logger.Log.Info("Tool created", logger.WithToolID(tool.ID), zap.String("name", tool.Name))
	c.JSON(http.StatusCreated, tool)
}

// UpdateTool applies a partial update
// PUT /api/v1/tools/:id
func (h *Handlers) UpdateTool(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	var req ToolRequest
	if !util.BindJSON(c, &req) {
		return
	}

	previousTags := append([]string(nil), tool.Tags...)
	req.apply(tool)
	if req.CategoryID != nil && !h.categoryExists(c, tool.CategoryID) {
		return
	}

	ctx := c.Request.Context()
	if util.HandleStoreError(c, h.store.Tools.Replace(ctx, tool), "tool") {
		return
	}
	h.refreshToolViews(ctx, tool, false, append(previousTags, tool.Tags...)...)

	c.JSON(http.StatusOK, tool)
}

// DeleteTool removes a tool and its materialized views
// DELETE /api/v1/tools/:id
func (h *Handlers) DeleteTool(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if util.HandleStoreError(c, h.store.Tools.Delete(ctx, tool.ID), "tool") {
		return
	}
	for _, err := range []error{
		discard(h.store.RatingStats.DeleteWhere(ctx, store.Eq("tool_id", tool.ID))),
		discard(h.store.ShareStats.DeleteWhere(ctx, store.Eq("tool_id", tool.ID))),
	} {
		if err != nil {
			logger.Log.Warn("Failed to drop stats of deleted tool", logger.WithToolID(tool.ID), zap.Error(err))
		}
	}
	h.refreshToolViews(ctx, tool, true, tool.Tags...)

	logger.Log.Info("Tool deleted", logger.WithToolID(tool.ID))
	util.RespondMessage(c, "tool deleted")
}

// categoryExists answers 404 when a non-empty category id does not resolve
func (h *Handlers) categoryExists(c *gin.Context, categoryID string) bool {
	if categoryID == "" {
		return true
	}
	ok, err := h.store.Categories.Exists(c.Request.Context(), store.Eq("id", categoryID))
	if util.HandleStoreError(c, err, "category") {
		return false
	}
	if !ok {
		util.RespondNotFound(c, "category")
		return false
	}
	return true
}

func discard(_ int64, err error) error {
	return err
}
