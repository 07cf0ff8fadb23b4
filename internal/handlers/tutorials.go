package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

type tutorialRequest struct {
	Title   *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Content *string  `json:"content"`
	Steps   []string `json:"steps"`
}

func (r *tutorialRequest) apply(t *models.Tutorial) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Content != nil {
		t.Content = *r.Content
	}
	if r.Steps != nil {
		t.Steps = r.Steps
	}
}

// ListTutorials returns a tool's tutorials, newest first
// GET /api/v1/tools/:id/tutorials
func (h *Handlers) ListTutorials(c *gin.Context) {
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

	total, err := h.store.Tutorials.Count(ctx, byTool)
	if util.HandleStoreError(c, err, "tutorial") {
		return
	}
	tutorials, err := h.store.Tutorials.Find(ctx, byTool, store.OrderBy("created_at", true), store.Page(p.Skip, p.Limit))
	if util.HandleStoreError(c, err, "tutorial") {
		return
	}
	c.JSON(http.StatusOK, listResponse(tutorials, total, p))
}

// CreateTutorial publishes a tutorial authored by the caller
// POST /api/v1/tools/:id/tutorials
func (h *Handlers) CreateTutorial(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	var req tutorialRequest
	if !util.BindJSON(c, &req) {
		return
	}

	tutorial := &models.Tutorial{ToolID: tool.ID, AuthorID: identity.ID, Steps: models.StringArray{}}
	req.apply(tutorial)
	if util.HandleStoreError(c, h.store.Tutorials.Insert(c.Request.Context(), tutorial), "tutorial") {
		return
	}
	c.JSON(http.StatusCreated, tutorial)
}

// GetTutorial returns one tutorial
// GET /api/v1/tutorials/:id
func (h *Handlers) GetTutorial(c *gin.Context) {
	tutorial, ok := h.loadTutorial(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

// UpdateTutorial edits a tutorial. Only its author or an administrator may.
// PUT /api/v1/tutorials/:id
func (h *Handlers) UpdateTutorial(c *gin.Context) {
	tutorial, ok := h.loadTutorial(c)
	if !ok {
		return
	}
	if _, ok := requireOwner(c, tutorial.AuthorID); !ok {
		return
	}
	var req tutorialRequest
	if !util.BindJSON(c, &req) {
		return
	}
	req.apply(tutorial)
	if util.HandleStoreError(c, h.store.Tutorials.Replace(c.Request.Context(), tutorial), "tutorial") {
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

// DeleteTutorial removes a tutorial. Only its author or an administrator may.
// DELETE /api/v1/tutorials/:id
func (h *Handlers) DeleteTutorial(c *gin.Context) {
	tutorial, ok := h.loadTutorial(c)
	if !ok {
		return
	}
	if _, ok := requireOwner(c, tutorial.AuthorID); !ok {
		return
	}
	if util.HandleStoreError(c, h.store.Tutorials.Delete(c.Request.Context(), tutorial.ID), "tutorial") {
		return
	}
	util.RespondMessage(c, "tutorial deleted")
}

func (h *Handlers) loadTutorial(c *gin.Context) (*models.Tutorial, bool) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	tutorial, err := h.store.Tutorials.Get(c.Request.Context(), id)
	if util.HandleStoreError(c, err, "tutorial") {
		return nil, false
	}
	return tutorial, true
}
