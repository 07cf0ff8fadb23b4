package search

import (
	"slices"

	"github.com/zfogg/aihub/backend/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortFields are the accepted values of Query.SortBy
var SortFields = []string{"rating", "views", "likes", "created_at", "name"}

// Query is the body of POST /search
type Query struct {
	Keyword    string   `json:"keyword"`
	CategoryID string   `json:"category_id"`
	Tags       []string `json:"tags"`
	IsFree     *bool    `json:"is_free"`
	SortBy     string   `json:"sort_by" binding:"omitempty,oneof=rating views likes created_at name"`
	SortOrder  string   `json:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page       int      `json:"page" binding:"omitempty,min=1"`
	PageSize   int      `json:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills defaults (newest first, page 1 of DefaultPageSize) and
// replaces unknown sort fields
func (q *Query) Normalize() {
	if !slices.Contains(SortFields, q.SortBy) {
		q.SortBy = "created_at"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

func (q *Query) offset() int {
	return (q.Page - 1) * q.PageSize
}

// Result is one page of matching tools
type Result struct {
	Total      int64         `json:"total"`
	Tools      []models.Tool `json:"tools"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int64         `json:"total_pages"`
}

func newResult(q Query, total int64, tools []models.Tool) *Result {
	return &Result{
		Total:      total,
		Tools:      tools,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: (total + int64(q.PageSize) - 1) / int64(q.PageSize),
	}
}

// ToolSuggestion is a tool name completion
type ToolSuggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Suggestions answers GET /search/suggestions
type Suggestions struct {
	Tools []ToolSuggestion `json:"tools"`
	Tags  []string         `json:"tags"`
}
