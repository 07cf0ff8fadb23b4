// Package search answers tool searches and suggestions. Elasticsearch is used
// when configured; the document store's substring matching is the fallback.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/metrics"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"go.uber.org/zap"
)

const (
	backendElasticsearch = "elasticsearch"
	backendStore         = "store"
	backendFallback      = "store_fallback"
)

var errNotConfigured = errors.New("elasticsearch is not configured")

// Service routes searches to Elasticsearch or the store
type Service struct {
	store *store.Store
	es    *Client
}

// NewService creates a search service. es may be nil.
func NewService(s *store.Store, es *Client) *Service {
	return &Service{store: s, es: es}
}

// Enabled reports whether Elasticsearch backs this service
func (s *Service) Enabled() bool {
	return s.es != nil
}

// Ping checks the Elasticsearch cluster. It fails when none is configured.
func (s *Service) Ping(ctx context.Context) error {
	if s.es == nil {
		return errNotConfigured
	}
	return s.es.Ping(ctx)
}

// Search returns one page of active tools matching q
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	q.Normalize()
	m := metrics.Get()

	if s.es != nil {
		ids, total, err := s.es.SearchTools(ctx, q)
		if err == nil {
			tools, err := s.loadInOrder(ctx, ids)
			if err != nil {
				return nil, err
			}
			m.SearchRequestsTotal.WithLabelValues(backendElasticsearch).Inc()
			return newResult(q, total, tools), nil
		}
		logger.Log.Warn("Elasticsearch search failed, falling back to store", zap.Error(err))
		m.SearchRequestsTotal.WithLabelValues(backendFallback).Inc()
	} else {
		m.SearchRequestsTotal.WithLabelValues(backendStore).Inc()
	}

	return s.storeSearch(ctx, q)
}

func (s *Service) storeSearch(ctx context.Context, q Query) (*Result, error) {
	filters := []store.Scope{store.Eq("is_active", true)}
	if q.Keyword != "" {
		filters = append(filters, store.Match(q.Keyword, "name", "description", store.Elements("tags")))
	}
	if q.CategoryID != "" {
		filters = append(filters, store.Eq("category_id", q.CategoryID))
	}
	for _, tag := range q.Tags {
		filters = append(filters, store.HasTag("tags", tag))
	}
	if q.IsFree != nil {
		filters = append(filters, store.Eq("is_free", *q.IsFree))
	}

	total, err := s.store.Tools.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	page := append(filters,
		store.OrderBy(q.SortBy, q.SortOrder == "desc"),
		store.OrderBy("id", false),
		store.Page(q.offset(), q.PageSize),
	)
	tools, err := s.store.Tools.Find(ctx, page...)
	if err != nil {
		return nil, err
	}
	return newResult(q, total, tools), nil
}

// loadInOrder fetches tools by id keeping the order of ids. Ids the store no
// longer knows are dropped.
func (s *Service) loadInOrder(ctx context.Context, ids []string) ([]models.Tool, error) {
	if len(ids) == 0 {
		return []models.Tool{}, nil
	}
	found, err := s.store.Tools.Find(ctx, store.In("id", ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Tool, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tools := make([]models.Tool, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tools = append(tools, t)
		}
	}
	return tools, nil
}

// Suggest returns up to limit tool names and tag names containing keyword
func (s *Service) Suggest(ctx context.Context, keyword string, limit int) (*Suggestions, error) {
	keyword = strings.TrimSpace(keyword)
	if limit <= 0 {
		limit = 5
	}
	out := &Suggestions{Tools: []ToolSuggestion{}, Tags: []string{}}
	if keyword == "" {
		return out, nil
	}

	var err error
	if s.es != nil {
		out.Tools, err = s.es.SuggestTools(ctx, keyword, limit)
		if err != nil {
			logger.Log.Warn("Elasticsearch suggest failed, falling back to store", zap.Error(err))
		}
	}
	if s.es == nil || err != nil {
		tools, err := s.store.Tools.Find(ctx, store.Match(keyword, "name"), store.OrderBy("name", false), store.Page(0, limit))
		if err != nil {
			return nil, err
		}
		out.Tools = make([]ToolSuggestion, 0, len(tools))
		for _, t := range tools {
			out.Tools = append(out.Tools, ToolSuggestion{ID: t.ID, Name: t.Name})
		}
	}

	out.Tags, err = s.matchingTags(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// matchingTags unwinds the tags of tools whose tag list mentions keyword and
// keeps the distinct ones that contain it
func (s *Service) matchingTags(ctx context.Context, keyword string, limit int) ([]string, error) {
	raw, err := s.store.Tools.Pluck(ctx, "tags", store.Match(keyword, store.Elements("tags")))
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	seen := make(map[string]struct{})
	tags := make([]string, 0, limit)
	for _, encoded := range raw {
		var list models.StringArray
		if err := list.Scan(encoded); err != nil {
			continue
		}
		for _, tag := range list {
			if _, ok := seen[tag]; ok || !strings.Contains(strings.ToLower(tag), needle) {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
			if len(tags) == limit {
				return tags, nil
			}
		}
	}
	return tags, nil
}

// IndexTool pushes tool into the index. It is a no-op without Elasticsearch.
func (s *Service) IndexTool(ctx context.Context, tool *models.Tool) error {
	if s.es == nil {
		return nil
	}
	return s.es.IndexTool(ctx, ToolToSearchDoc(tool))
}

// RefreshTool reloads a tool from the store and pushes it into the index, so
// counters written outside tool updates (rating, likes, views) stay sortable.
// It is a no-op without Elasticsearch.
func (s *Service) RefreshTool(ctx context.Context, toolID string) error {
	if s.es == nil {
		return nil
	}
	tool, err := s.store.Tools.Get(ctx, toolID)
	if err != nil {
		return err
	}
	return s.es.IndexTool(ctx, ToolToSearchDoc(tool))
}

// DeleteTool removes a tool from the index. It is a no-op without Elasticsearch.
func (s *Service) DeleteTool(ctx context.Context, toolID string) error {
	if s.es == nil {
		return nil
	}
	return s.es.DeleteTool(ctx, toolID)
}

// Reindex ensures the index exists and pushes every tool into it
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.es == nil {
		return 0, nil
	}
	if err := s.es.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	tools, err := s.store.Tools.Find(ctx)
	if err != nil {
		return 0, err
	}
	for i := range tools {
		if err := s.es.IndexTool(ctx, ToolToSearchDoc(&tools[i])); err != nil {
			return i, err
		}
	}
	logger.Log.Info("Search index rebuilt", zap.Int("tools", len(tools)))
	return len(tools), nil
}
