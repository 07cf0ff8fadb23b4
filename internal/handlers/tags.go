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

const defaultPopularTags = 10

type tagRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=64"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

func (r *tagRequest) apply(tag *models.Tag) {
	if r.Name != nil {
		tag.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		tag.Description = *r.Description
	}
	if r.Color != nil {
		tag.Color = *r.Color
	}
	if r.Icon != nil {
		tag.Icon = *r.Icon
	}
}

// ListTags returns tags by name
// GET /api/v1/tags
func (h *Handlers) ListTags(c *gin.Context) {
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	var filters []store.Scope
	if q := c.Query("search"); q != "" {
		filters = append(filters, store.Match(q, "name", "description"))
	}

	ctx := c.Request.Context()
	total, err := h.store.Tags.Count(ctx, filters...)
	if util.HandleStoreError(c, err, "tag") {
		return
	}
	tags, err := h.store.Tags.Find(ctx, append(filters, store.OrderBy("name", false), store.Page(p.Skip, p.Limit))...)
	if util.HandleStoreError(c, err, "tag") {
		return
	}
	c.JSON(http.StatusOK, listResponse(tags, total, p))
}

// PopularTags returns the tags carried by the most tools
// GET /api/v1/tags/popular
func (h *Handlers) PopularTags(c *gin.Context) {
	limit := util.ParseInt(c.Query("limit"), defaultPopularTags)
	if limit < 1 || limit > util.MaxLimit {
		util.RespondWithAPIError(c, apperrors.InvalidInput("limit", "limit must be between 1 and 1000"))
		return
	}
	tags, err := h.store.Tags.Find(c.Request.Context(),
		store.OrderBy("tool_count", true),
		store.OrderBy("name", false),
		store.Page(0, limit),
	)
	if util.HandleStoreError(c, err, "tag") {
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTag returns one tag
// GET /api/v1/tags/:id
func (h *Handlers) GetTag(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	tag, err := h.store.Tags.Get(c.Request.Context(), id)
	if util.HandleStoreError(c, err, "tag") {
		return
	}
	c.JSON(http.StatusOK, tag)
}

// CreateTag registers a tag name and counts the tools already carrying it
// POST /api/v1/tags
func (h *Handlers) CreateTag(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req tagRequest
	if !util.BindJSON(c, &req) {
		return
	}
	tag := &models.Tag{}
	req.apply(tag)

	ctx := c.Request.Context()
	if util.HandleStoreError(c, h.store.Tags.Insert(ctx, tag), "tag") {
		return
	}
	if err := h.engine.RecomputeTagCounts(ctx, tag.Name); err != nil {
		util.RespondError(c, err, "tag")
		return
	}
	if fresh, err := h.store.Tags.Get(ctx, tag.ID); err == nil {
		tag = fresh
	}
	c.JSON(http.StatusCreated, tag)
}

// UpdateTag edits a tag. Renaming keeps tool tag lists as they are and
// recounts under the new name.
// PUT /api/v1/tags/:id
func (h *Handlers) UpdateTag(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req tagRequest
	if !util.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	tag, err := h.store.Tags.Get(ctx, id)
	if util.HandleStoreError(c, err, "tag") {
		return
	}
	oldName := tag.Name
	req.apply(tag)
	if util.HandleStoreError(c, h.store.Tags.Replace(ctx, tag), "tag") {
		return
	}
	if tag.Name != oldName {
		if err := h.engine.RecomputeTagCounts(ctx, tag.Name); err != nil {
			util.RespondError(c, err, "tag")
			return
		}
		if fresh, err := h.store.Tags.Get(ctx, tag.ID); err == nil {
			tag = fresh
		}
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag removes a tag that no tool carries
// DELETE /api/v1/tags/:id
func (h *Handlers) DeleteTag(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	tag, err := h.store.Tags.Get(ctx, id)
	if util.HandleStoreError(c, err, "tag") {
		return
	}
	inUse, err := h.store.Tools.Exists(ctx, store.HasTag("tags", tag.Name))
	if util.HandleStoreError(c, err, "tool") {
		return
	}
	if inUse {
		util.RespondWithAPIError(c, apperrors.Conflict("tag is still used by tools"))
		return
	}
	if util.HandleStoreError(c, h.store.Tags.Delete(ctx, id), "tag") {
		return
	}
	util.RespondMessage(c, "tag deleted")
}
