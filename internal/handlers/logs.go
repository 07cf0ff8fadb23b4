package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/zfogg/aihub/backend/internal/errors"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

// CreateLog stores an application event reported by the caller
// POST /api/v1/logs
func (h *Handlers) CreateLog(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Level   string         `json:"level" binding:"required,oneof=debug info warning error critical"`
		Module  string         `json:"module" binding:"max=64"`
		Action  string         `json:"action" binding:"max=64"`
		Message string         `json:"message" binding:"required"`
		Details map[string]any `json:"details"`
	}
	if !util.BindJSON(c, &req) {
		return
	}

	entry := &models.LogEntry{
		Level:     req.Level,
		Module:    req.Module,
		Action:    req.Action,
		UserID:    identity.ID,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   req.Message,
		Details:   req.Details,
	}
	if util.HandleStoreError(c, h.store.Logs.Insert(c.Request.Context(), entry), "log") {
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListLogs returns log entries matching the query filters, newest first
// GET /api/v1/logs
func (h *Handlers) ListLogs(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	start, ok := util.ParseTimeQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := util.ParseTimeQuery(c, "end_date")
	if !ok {
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		util.RespondWithAPIError(c, apperrors.InvalidInput("end_date", "end_date is before start_date"))
		return
	}

	var filters []store.Scope
	for _, col := range []string{"level", "module", "action", "user_id"} {
		if v := c.Query(col); v != "" {
			filters = append(filters, store.Eq(col, v))
		}
	}
	if start != nil || end != nil {
		filters = append(filters, store.Between("created_at", start, end))
	}

	ctx := c.Request.Context()
	total, err := h.store.Logs.Count(ctx, filters...)
	if util.HandleStoreError(c, err, "log") {
		return
	}
	entries, err := h.store.Logs.Find(ctx, append(filters, store.OrderBy("created_at", true), store.Page(p.Skip, p.Limit))...)
	if util.HandleStoreError(c, err, "log") {
		return
	}
	c.JSON(http.StatusOK, listResponse(entries, total, p))
}

// LogStats counts log entries by level, module and action
// GET /api/v1/logs/stats
func (h *Handlers) LogStats(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	ctx := c.Request.Context()
	stats := models.LogStats{}

	var err error
	if stats.Total, err = h.store.Logs.Count(ctx); util.HandleStoreError(c, err, "log") {
		return
	}
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if stats.Today, err = h.store.Logs.Count(ctx, store.Between("created_at", &midnight, nil)); util.HandleStoreError(c, err, "log") {
		return
	}
	if stats.ByLevel, err = h.store.Logs.GroupCount(ctx, "level"); util.HandleStoreError(c, err, "log") {
		return
	}
	if stats.ByModule, err = h.store.Logs.GroupCount(ctx, "module"); util.HandleStoreError(c, err, "log") {
		return
	}
	if stats.ByAction, err = h.store.Logs.GroupCount(ctx, "action"); util.HandleStoreError(c, err, "log") {
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetLog returns one entry
// GET /api/v1/logs/:id
func (h *Handlers) GetLog(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.store.Logs.Get(c.Request.Context(), id)
	if util.HandleStoreError(c, err, "log") {
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteLog removes one entry
// DELETE /api/v1/logs/:id
func (h *Handlers) DeleteLog(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if util.HandleStoreError(c, h.store.Logs.Delete(c.Request.Context(), id), "log") {
		return
	}
	util.RespondMessage(c, "log deleted")
}
