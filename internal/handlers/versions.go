package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

type versionRequest struct {
	VersionNumber    *string    `json:"version_number" binding:"omitempty,min=1,max=64"`
	ReleaseDate      *time.Time `json:"release_date"`
	Changes          []string   `json:"changes"`
	Features         []string   `json:"features"`
	Improvements     []string   `json:"improvements"`
	BugFixes         []string   `json:"bug_fixes"`
	IsStable         *bool      `json:"is_stable"`
	DownloadURL      *string    `json:"download_url" binding:"omitempty,url"`
	DocumentationURL *string    `json:"documentation_url" binding:"omitempty,url"`
}

func (r *versionRequest) apply(v *models.Version) {
	if r.VersionNumber != nil {
		v.VersionNumber = strings.TrimSpace(*r.VersionNumber)
	}
	if r.ReleaseDate != nil {
		v.ReleaseDate = r.ReleaseDate.UTC()
	}
	if r.Changes != nil {
		v.Changes = r.Changes
	}
	if r.Features != nil {
		v.Features = r.Features
	}
	if r.Improvements != nil {
		v.Improvements = r.Improvements
	}
	if r.BugFixes != nil {
		v.BugFixes = r.BugFixes
	}
	if r.IsStable != nil {
		v.IsStable = *r.IsStable
	}
	if r.DownloadURL != nil {
		v.DownloadURL = *r.DownloadURL
	}
	if r.DocumentationURL != nil {
		v.DocumentationURL = *r.DocumentationURL
	}
}

// ListVersions returns a tool's releases, newest first
// GET /api/v1/tools/:id/versions
func (h *Handlers) ListVersions(c *gin.Context) {
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

	total, err := h.store.Versions.Count(ctx, byTool)
	if util.HandleStoreError(c, err, "version") {
		return
	}
	versions, err := h.store.Versions.Find(ctx, byTool, store.OrderBy("release_date", true), store.Page(p.Skip, p.Limit))
	if util.HandleStoreError(c, err, "version") {
		return
	}
	c.JSON(http.StatusOK, listResponse(versions, total, p))
}

// LatestVersion returns the most recent stable release
// GET /api/v1/tools/:id/versions/latest
func (h *Handlers) LatestVersion(c *gin.Context) {
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	v, err := h.store.Versions.FindOne(c.Request.Context(),
		store.Eq("tool_id", tool.ID),
		store.Eq("is_stable", true),
		store.OrderBy("release_date", true),
	)
	if util.HandleStoreError(c, err, "stable version") {
		return
	}
	c.JSON(http.StatusOK, v)
}

// GetVersion returns one release of a tool
// GET /api/v1/tools/:id/versions/:version_id
func (h *Handlers) GetVersion(c *gin.Context) {
	v, ok := h.loadVersion(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, v)
}

// CreateVersion publishes a release. Version numbers are unique per tool.
// POST /api/v1/tools/:id/versions
func (h *Handlers) CreateVersion(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	var req versionRequest
	if !util.BindJSON(c, &req) {
		return
	}

	v := &models.Version{ToolID: tool.ID, ReleaseDate: time.Now().UTC()}
	req.apply(v)
	if util.HandleStoreError(c, h.store.Versions.Insert(c.Request.Context(), v), "version") {
		return
	}
	c.JSON(http.StatusCreated, v)
}

// UpdateVersion edits a release
// PUT /api/v1/tools/:id/versions/:version_id
func (h *Handlers) UpdateVersion(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	v, ok := h.loadVersion(c)
	if !ok {
		return
	}
	var req versionRequest
	if !util.BindJSON(c, &req) {
		return
	}
	req.apply(v)
	if util.HandleStoreError(c, h.store.Versions.Replace(c.Request.Context(), v), "version") {
		return
	}
	c.JSON(http.StatusOK, v)
}

// DeleteVersion removes a release
// DELETE /api/v1/tools/:id/versions/:version_id
func (h *Handlers) DeleteVersion(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	v, ok := h.loadVersion(c)
	if !ok {
		return
	}
	if util.HandleStoreError(c, h.store.Versions.Delete(c.Request.Context(), v.ID), "version") {
		return
	}
	util.RespondMessage(c, "version deleted")
}

func (h *Handlers) loadVersion(c *gin.Context) (*models.Version, bool) {
	toolID, ok := util.ParseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	versionID, ok := util.ParseIDParam(c, "version_id")
	if !ok {
		return nil, false
	}
	v, err := h.store.Versions.FindOne(c.Request.Context(), store.Eq("id", versionID), store.Eq("tool_id", toolID))
	if util.HandleStoreError(c, err, "version") {
		return nil, false
	}
	return v, true
}
