package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

type configRequest struct {
	Key         string `json:"key" binding:"required,max=128"`
	Value       any    `json:"value"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type updateConfigRequest struct {
	Value       any     `json:"value"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// isAdmin reports whether an administrator token came with the request
func isAdmin(c *gin.Context) bool {
	identity, ok := util.GetIdentity(c)
	return ok && identity.IsAdmin
}

// ListConfigs returns configuration entries. Non-admins only see public ones.
// GET /api/v1/configs
func (h *Handlers) ListConfigs(c *gin.Context) {
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	var filters []store.Scope
	if !isAdmin(c) {
		filters = append(filters, store.Eq("is_public", true))
	}

	ctx := c.Request.Context()
	total, err := h.store.Configs.Count(ctx, filters...)
	if util.HandleStoreError(c, err, "config") {
		return
	}
	configs, err := h.store.Configs.Find(ctx, append(filters, store.OrderBy("key", false), store.Page(p.Skip, p.Limit))...)
	if util.HandleStoreError(c, err, "config") {
		return
	}
	c.JSON(http.StatusOK, listResponse(configs, total, p))
}

// GetConfig returns one entry by key
// GET /api/v1/configs/:key
func (h *Handlers) GetConfig(c *gin.Context) {
	cfg, err := h.store.Configs.FindOne(c.Request.Context(), store.Eq("key", c.Param("key")))
	if util.HandleStoreError(c, err, "config") {
		return
	}
	if !cfg.IsPublic && !isAdmin(c) {
		util.RespondForbidden(c, "this configuration entry is private")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// BatchConfigs returns the entries for several keys. Private entries are
// left out for non-admins; unknown keys are ignored.
// POST /api/v1/configs/batch
func (h *Handlers) BatchConfigs(c *gin.Context) {
	var req struct {
		Keys []string `json:"keys" binding:"required,min=1,max=100"`
	}
	if !util.BindJSON(c, &req) {
		return
	}
	filters := []store.Scope{store.In("key", req.Keys)}
	if !isAdmin(c) {
		filters = append(filters, store.Eq("is_public", true))
	}
	configs, err := h.store.Configs.Find(c.Request.Context(), append(filters, store.OrderBy("key", false))...)
	if util.HandleStoreError(c, err, "config") {
		return
	}
	c.JSON(http.StatusOK, configs)
}

// CreateConfig adds an entry. Keys are unique.
// POST /api/v1/configs
func (h *Handlers) CreateConfig(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req configRequest
	if !util.BindJSON(c, &req) {
		return
	}
	cfg := &models.SystemConfig{
		Key:         strings.TrimSpace(req.Key),
		Value:       req.Value,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if util.HandleStoreError(c, h.store.Configs.Insert(c.Request.Context(), cfg), "config") {
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// UpdateConfig changes an entry. A body without value keeps the stored one.
// PUT /api/v1/configs/:key
func (h *Handlers) UpdateConfig(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req updateConfigRequest
	if !util.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	cfg, err := h.store.Configs.FindOne(ctx, store.Eq("key", c.Param("key")))
	if util.HandleStoreError(c, err, "config") {
		return
	}
	if req.Value != nil {
		cfg.Value = req.Value
	}
	if req.Description != nil {
		cfg.Description = *req.Description
	}
	if req.IsPublic != nil {
		cfg.IsPublic = *req.IsPublic
	}
	if util.HandleStoreError(c, h.store.Configs.Replace(ctx, cfg), "config") {
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeleteConfig removes an entry
// DELETE /api/v1/configs/:key
func (h *Handlers) DeleteConfig(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	n, err := h.store.Configs.DeleteWhere(c.Request.Context(), store.Eq("key", c.Param("key")))
	if util.HandleStoreError(c, err, "config") {
		return
	}
	if n == 0 {
		util.RespondNotFound(c, "config")
		return
	}
	util.RespondMessage(c, "config deleted")
}
