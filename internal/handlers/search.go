package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/search"
	"github.com/zfogg/aihub/backend/internal/util"
)

const defaultSuggestions = 5

// SearchTools runs a filtered, sorted and paged tool search
// POST /api/v1/search
func (h *Handlers) SearchTools(c *gin.Context) {
	var q search.Query
	if c.Request.ContentLength != 0 && !util.BindJSON(c, &q) {
		return
	}
	result, err := h.search.Search(c.Request.Context(), q)
	if util.HandleStoreError(c, err, "tool") {
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchSuggestions completes tool and tag names
// GET /api/v1/search/suggestions
func (h *Handlers) SearchSuggestions(c *gin.Context) {
	limit, ok := parseLimit(c, defaultSuggestions)
	if !ok {
		return
	}
	suggestions, err := h.search.Suggest(c.Request.Context(), c.Query("keyword"), limit)
	if util.HandleStoreError(c, err, "tool") {
		return
	}
	c.JSON(http.StatusOK, suggestions)
}
