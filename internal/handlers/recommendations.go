package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/zfogg/aihub/backend/internal/errors"
	"github.com/zfogg/aihub/backend/internal/recommendations"
	"github.com/zfogg/aihub/backend/internal/util"
)

const defaultToolRecommendations = 5

// GetRecommendations ranks tools related to the caller's favorites, ratings
// and views
// GET /api/v1/recommendations
func (h *Handlers) GetRecommendations(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c, recommendations.DefaultLimit)
	if !ok {
		return
	}

	recs, err := h.recommender.ForUser(c.Request.Context(), identity.ID, limit)
	if util.HandleStoreError(c, err, "recommendation") {
		return
	}
	c.JSON(http.StatusOK, recs)
}

// GetToolRecommendations ranks a tool's related tools for the caller
// GET /api/v1/tools/:id/recommendations
func (h *Handlers) GetToolRecommendations(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	toolID, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	limit, ok := parseLimit(c, defaultToolRecommendations)
	if !ok {
		return
	}

	recs, err := h.recommender.ForTool(c.Request.Context(), toolID, identity.ID, limit)
	if util.HandleStoreError(c, err, "tool") {
		return
	}
	c.JSON(http.StatusOK, recs)
}

// parseLimit reads ?limit in 1..MaxLimit, defaulting to def
func parseLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	limit := util.ParseInt(raw, -1)
	if limit < 1 || limit > util.MaxLimit {
		util.RespondWithAPIError(c, apperrors.InvalidInput("limit", "limit must be between 1 and 1000"))
		return 0, false
	}
	return limit, true
}
