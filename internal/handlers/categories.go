package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/zfogg/aihub/backend/internal/errors"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

type categoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"is_active"`
}

func (r *categoryRequest) apply(cat *models.Category) {
	if r.Name != nil {
		cat.Name = *r.Name
	}
	if r.Description != nil {
		cat.Description = *r.Description
	}
	if r.Icon != nil {
		cat.Icon = *r.Icon
	}
	if r.Order != nil {
		cat.Order = *r.Order
	}
	if r.IsActive != nil {
		cat.IsActive = *r.IsActive
	}
}

// ListCategories returns categories in display order
// GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	var filters []store.Scope
	if active, present, ok := util.ParseBoolQuery(c, "is_active"); !ok {
		return
	} else if present {
		filters = append(filters, store.Eq("is_active", active))
	}
	if q := c.Query("search"); q != "" {
		filters = append(filters, store.Match(q, "name", "description"))
	}

	ctx := c.Request.Context()
	total, err := h.store.Categories.Count(ctx, filters...)
	if util.HandleStoreError(c, err, "category") {
		return
	}
	cats, err := h.store.Categories.Find(ctx, append(filters, store.OrderBy("sort_order", false), store.OrderBy("name", false), store.Page(p.Skip, p.Limit))...)
	if util.HandleStoreError(c, err, "category") {
		return
	}
	c.JSON(http.StatusOK, listResponse(cats, total, p))
}

// GetCategory returns one category
// GET /api/v1/categories/:id
func (h *Handlers) GetCategory(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	cat, err := h.store.Categories.Get(c.Request.Context(), id)
	if util.HandleStoreError(c, err, "category") {
		return
	}
	c.JSON(http.StatusOK, cat)
}

// CreateCategory adds a category. Names are unique.
// POST /api/v1/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req categoryRequest
	if !util.BindJSON(c, &req) {
		return
	}
	cat := &models.Category{IsActive: true}
	req.apply(cat)

	if util.HandleStoreError(c, h.store.Categories.Insert(c.Request.Context(), cat), "category") {
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// UpdateCategory applies a partial update
// PUT /api/v1/categories/:id
func (h *Handlers) UpdateCategory(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !util.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	cat, err := h.store.Categories.Get(ctx, id)
	if util.HandleStoreError(c, err, "category") {
		return
	}
	req.apply(cat)
	if util.HandleStoreError(c, h.store.Categories.Replace(ctx, cat), "category") {
		return
	}
	c.JSON(http.StatusOK, cat)
}

// DeleteCategory removes a category no tool refers to
// DELETE /api/v1/categories/:id
func (h *Handlers) DeleteCategory(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.Categories.Get(ctx, id); util.HandleStoreError(c, err, "category") {
		return
	}
	inUse, err := h.store.Tools.Exists(ctx, store.Eq("category_id", id))
	if util.HandleStoreError(c, err, "tool") {
		return
	}
	if inUse {
		util.RespondWithAPIError(c, apperrors.Conflict("category still has tools"))
		return
	}
	if util.HandleStoreError(c, h.store.Categories.Delete(ctx, id), "category") {
		return
	}
	util.RespondMessage(c, "category deleted")
}
