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

type createRatingRequest struct {
	Score   *float64 `json:"score" binding:"required,gte=0,lte=5"`
	Comment string   `json:"comment" binding:"max=2000"`
	Tags    []string `json:"tags"`
}

type updateRatingRequest struct {
	Score   *float64 `json:"score" binding:"omitempty,gte=0,lte=5"`
	Comment *string  `json:"comment" binding:"omitempty,max=2000"`
	Tags    []string `json:"tags"`
}

// CreateRating records the caller's rating of a tool. A second rating by the
// same user is a conflict.
// POST /api/v1/tools/:id/ratings
func (h *Handlers) CreateRating(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	var req createRatingRequest
	if !util.BindJSON(c, &req) {
		return
	}

	rating := &models.Rating{
		ToolID:  tool.ID,
		UserID:  identity.ID,
		Score:   *req.Score,
		Comment: req.Comment,
		Tags:    models.StringArray(req.Tags).Normalize(),
	}
	ctx := c.Request.Context()
	if util.HandleStoreError(c, h.store.Ratings.Insert(ctx, rating), "rating") {
		return
	}
	if _, err := h.engine.RecomputeRatingStats(ctx, tool.ID); err != nil {
		util.RespondError(c, err, "rating stats")
		return
	}
	h.reindexTool(ctx, tool.ID)

	logger.Log.Info("Rating created",
		logger.WithToolID(tool.ID),
		logger.WithUserID(identity.ID),
		zap.Float64("score", rating.Score),
	)
	c.JSON(http.StatusCreated, rating)
}

// ListRatings returns a tool's ratings, newest first
// GET /api/v1/tools/:id/ratings
func (h *Handlers) ListRatings(c *gin.Context) {
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

	total, err := h.store.Ratings.Count(ctx, byTool)
	if util.HandleStoreError(c, err, "rating") {
		return
	}
	ratings, err := h.store.Ratings.Find(ctx, byTool, store.OrderBy("created_at", true), store.OrderBy("id", false), store.Page(p.Skip, p.Limit))
	if util.HandleStoreError(c, err, "rating") {
		return
	}
	c.JSON(http.StatusOK, listResponse(ratings, total, p))
}

// GetRatingStats returns the tool's rating statistics, building them on first read
// GET /api/v1/tools/:id/ratings/stats
func (h *Handlers) GetRatingStats(c *gin.Context) {
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	stats, err := h.engine.RatingStats(c.Request.Context(), tool.ID)
	if util.HandleStoreError(c, err, "rating stats") {
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetRating returns one rating of a tool
// GET /api/v1/tools/:id/ratings/:rating_id
func (h *Handlers) GetRating(c *gin.Context) {
	rating, ok := h.loadRating(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rating)
}

// UpdateRating edits a rating. Only its author or an administrator may.
// PUT /api/v1/tools/:id/ratings/:rating_id
func (h *Handlers) UpdateRating(c *gin.Context) {
	rating, ok := h.loadRating(c)
	if !ok {
		return
	}
	if _, ok := requireOwner(c, rating.UserID); !ok {
		return
	}
	var req updateRatingRequest
	if !util.BindJSON(c, &req) {
		return
	}

	if req.Score != nil {
		rating.Score = *req.Score
	}
	if req.Comment != nil {
		rating.Comment = *req.Comment
	}
	if req.Tags != nil {
		rating.Tags = models.StringArray(req.Tags).Normalize()
	}

	ctx := c.Request.Context()
	if util.HandleStoreError(c, h.store.Ratings.Replace(ctx, rating), "rating") {
		return
	}
	if _, err := h.engine.RecomputeRatingStats(ctx, rating.ToolID); err != nil {
		util.RespondError(c, err, "rating stats")
		return
	}
	h.reindexTool(ctx, rating.ToolID)
	c.JSON(http.StatusOK, rating)
}

// DeleteRating removes a rating. Only its author or an administrator may.
// DELETE /api/v1/tools/:id/ratings/:rating_id
func (h *Handlers) DeleteRating(c *gin.Context) {
	rating, ok := h.loadRating(c)
	if !ok {
		return
	}
	if _, ok := requireOwner(c, rating.UserID); !ok {
		return
	}

	ctx := c.Request.Context()
	if util.HandleStoreError(c, h.store.Ratings.Delete(ctx, rating.ID), "rating") {
		return
	}
	if _, err := h.engine.RecomputeRatingStats(ctx, rating.ToolID); err != nil {
		util.RespondError(c, err, "rating stats")
		return
	}
	h.reindexTool(ctx, rating.ToolID)
	util.RespondMessage(c, "rating deleted")
}

// loadRating resolves :id and :rating_id. A rating of another tool is not found.
func (h *Handlers) loadRating(c *gin.Context) (*models.Rating, bool) {
	toolID, ok := util.ParseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	ratingID, ok := util.ParseIDParam(c, "rating_id")
	if !ok {
		return nil, false
	}
	rating, err := h.store.Ratings.FindOne(c.Request.Context(), store.Eq("id", ratingID), store.Eq("tool_id", toolID))
	if util.HandleStoreError(c, err, "rating") {
		return nil, false
	}
	return rating, true
}
