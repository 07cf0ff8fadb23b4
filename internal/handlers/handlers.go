// Package handlers holds the HTTP handlers of the catalog API. Each handler
// parses the request, authorizes the caller, talks to the store and, after
// rating, share, favorite or tool writes, refreshes the derived views before
// responding.
package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/aggregation"
	"github.com/zfogg/aihub/backend/internal/auth"
	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/recommendations"
	"github.com/zfogg/aihub/backend/internal/search"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	store       *store.Store
	auth        *auth.Service
	engine      *aggregation.Engine
	recommender *recommendations.Recommender
	search      *search.Service
}

// NewHandlers creates a new handlers instance. Search runs against the store
// until SetSearchService installs an Elasticsearch backed service.
func NewHandlers(s *store.Store, authService *auth.Service) *Handlers {
	return &Handlers{
		store:       s,
		auth:        authService,
		engine:      aggregation.NewEngine(s),
		recommender: recommendations.NewRecommender(s),
		search:      search.NewService(s, nil),
	}
}

// SetSearchService sets the search service
func (h *Handlers) SetSearchService(svc *search.Service) {
	h.search = svc
}

// Engine exposes the aggregation engine for callers outside HTTP (the CLI)
func (h *Handlers) Engine() *aggregation.Engine {
	return h.engine
}

// loadTool resolves the :id path parameter to a tool, responding on failure
func (h *Handlers) loadTool(c *gin.Context) (*models.Tool, bool) {
	toolID, ok := util.ParseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	tool, err := h.store.Tools.Get(c.Request.Context(), toolID)
	if util.HandleStoreError(c, err, "tool") {
		return nil, false
	}
	return tool, true
}

// requireAdmin resolves the caller and checks the administrator flag
func requireAdmin(c *gin.Context) (*auth.Identity, bool) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return nil, false
	}
	if err := auth.RequireAdmin(identity); err != nil {
		util.RespondError(c, err, "")
		return nil, false
	}
	return identity, true
}

// requireOwner resolves the caller and checks it owns ownerID or is an admin
func requireOwner(c *gin.Context, ownerID string) (*auth.Identity, bool) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return nil, false
	}
	if err := auth.RequireOwnerOrAdmin(identity, ownerID); err != nil {
		util.RespondError(c, err, "")
		return nil, false
	}
	return identity, true
}

// refreshToolViews updates tag counts and the search index after a tool write.
// Failures are logged; the write itself already succeeded.
func (h *Handlers) refreshToolViews(ctx context.Context, tool *models.Tool, deleted bool, tags ...string) {
	if err := h.engine.RecomputeTagCounts(ctx, tags...); err != nil {
		logger.Log.Warn("Failed to refresh tag counts", logger.WithToolID(tool.ID), zap.Error(err))
	}

	var err error
	if deleted {
		err = h.search.DeleteTool(ctx, tool.ID)
	} else {
		err = h.search.IndexTool(ctx, tool)
	}
	if err != nil {
		logger.Log.Warn("Failed to update search index", logger.WithToolID(tool.ID), zap.Error(err))
	}
}

// reindexTool pushes the stored tool into the search index after one of its
// counters changed. Failures are logged.
func (h *Handlers) reindexTool(ctx context.Context, toolID string) {
	if err := h.search.RefreshTool(ctx, toolID); err != nil {
		logger.Log.Warn("Failed to refresh search document", logger.WithToolID(toolID), zap.Error(err))
	}
}

func listResponse[T any](items []T, total int64, p util.Pagination) util.ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return util.ListResponse[T]{Items: items, Total: total, Skip: p.Skip, Limit: p.Limit}
}

func isDuplicate(err error) bool {
	return errors.Is(err, store.ErrDuplicate)
}
