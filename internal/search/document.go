package search

import (
	"time"

	"github.com/zfogg/aihub/backend/internal/models"
)

// ToolDocument is the indexed shape of a tool
type ToolDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  string    `json:"category_id"`
	Tags        []string  `json:"tags"`
	IsFree      bool      `json:"is_free"`
	IsFeatured  bool      `json:"is_featured"`
	IsActive    bool      `json:"is_active"`
	Rating      float64   `json:"rating"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToolToSearchDoc converts a Tool model to a search document
func ToolToSearchDoc(tool *models.Tool) ToolDocument {
	tags := []string(tool.Tags)
	if tags == nil {
		tags = []string{}
	}
	return ToolDocument{
		ID:          tool.ID,
		Name:        tool.Name,
		Description: tool.Description,
		CategoryID:  tool.CategoryID,
		Tags:        tags,
		IsFree:      tool.IsFree,
		IsFeatured:  tool.IsFeatured,
		IsActive:    tool.IsActive,
		Rating:      tool.Rating,
		Views:       tool.Views,
		Likes:       tool.Likes,
		CreatedAt:   tool.CreatedAt,
	}
}

// toolsMapping is the index body of IndexTools
var toolsMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id": map[string]interface{}{
				"type": "keyword",
			},
			"name": map[string]interface{}{
				"type":     "text",
				"analyzer": "standard",
				"fields": map[string]interface{}{
					"keyword": map[string]interface{}{
						"type": "keyword",
					},
					"suggest": map[string]interface{}{
						"type":     "completion",
						"analyzer": "simple",
					},
				},
			},
			"description": map[string]interface{}{
				"type":     "text",
				"analyzer": "standard",
			},
			"category_id": map[string]interface{}{
				"type": "keyword",
			},
			"tags": map[string]interface{}{
				"type": "keyword",
			},
			"is_free": map[string]interface{}{
				"type": "boolean",
			},
			"is_featured": map[string]interface{}{
				"type": "boolean",
			},
			"is_active": map[string]interface{}{
				"type": "boolean",
			},
			"rating": map[string]interface{}{
				"type": "float",
			},
			"views": map[string]interface{}{
				"type": "long",
			},
			"likes": map[string]interface{}{
				"type": "long",
			},
			"created_at": map[string]interface{}{
				"type": "date",
			},
		},
	},
}
