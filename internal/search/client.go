package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/zfogg/aihub/backend/internal/telemetry"
)

// IndexTools is the only index the service maintains
const IndexTools = "tools"

// Client wraps the Elasticsearch client with tool-catalog functionality
type Client struct {
	es    *elasticsearch.Client
	index string
}

// NewClient creates a new Elasticsearch client and verifies the connection.
// Outgoing requests are traced.
func NewClient(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		url = "http://localhost:9200"
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Transport: telemetry.InstrumentedTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &Client{es: es, index: IndexTools}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	return client, nil
}

// Ping checks that the cluster answers
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return responseError(res, "ping")
}

// EnsureIndex creates the tools index with its mapping when it is missing
func (c *Client) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()

	// If index exists (status 200), skip creation
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mappingJSON, err := json.Marshal(toolsMapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithBody(bytes.NewReader(mappingJSON)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	return responseError(res, "creating index")
}

// IndexTool writes (or overwrites) the document of one tool
func (c *Client) IndexTool(ctx context.Context, doc ToolDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal tool document: %w", err)
	}

	res, err := c.es.Index(c.index, bytes.NewReader(body),
		c.es.Index.WithDocumentID(doc.ID),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index tool: %w", err)
	}
	defer res.Body.Close()

	return responseError(res, "indexing tool")
}

// DeleteTool deletes a tool document from the search index
func (c *Client) DeleteTool(ctx context.Context, toolID string) error {
	res, err := c.es.Delete(c.index, toolID, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete tool: %w", err)
	}
	defer res.Body.Close()

	// 404 is OK - document doesn't exist
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "deleting tool")
}

// SearchTools returns the ids of one page of active matching tools, best
// match first when a keyword is given, plus the total hit count
func (c *Client) SearchTools(ctx context.Context, q Query) ([]string, int64, error) {
	q.Normalize()

	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"is_active": true}},
	}
	if q.CategoryID != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"category_id": q.CategoryID}})
	}
	for _, tag := range q.Tags {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"tags": tag}})
	}
	if q.IsFree != nil {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"is_free": *q.IsFree}})
	}

	boolQuery := map[string]interface{}{"filter": filters}
	sortField := q.SortBy
	if sortField == "name" {
		sortField = "name.keyword"
	}
	sort := []map[string]interface{}{}
	if q.Keyword != "" {
		boolQuery["must"] = []map[string]interface{}{
			{
				"multi_match": map[string]interface{}{
					"query":     q.Keyword,
					"fields":    []string{"name^3", "tags^2", "description"},
					"fuzziness": "AUTO",
				},
			},
		}
		sort = append(sort, map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}})
	}
	sort = append(sort, map[string]interface{}{sortField: map[string]interface{}{"order": q.SortOrder}})

	searchQuery := map[string]interface{}{
		"query":            map[string]interface{}{"bool": boolQuery},
		"sort":             sort,
		"from":             q.offset(),
		"size":             q.PageSize,
		"_source":          false,
		"track_total_hits": true,
	}

	var searchResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := c.search(ctx, searchQuery, &searchResp); err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(searchResp.Hits.Hits))
	for _, hit := range searchResp.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, searchResp.Hits.Total.Value, nil
}

// SuggestTools returns autocomplete suggestions for tool names
func (c *Client) SuggestTools(ctx context.Context, prefix string, limit int) ([]ToolSuggestion, error) {
	suggestQuery := map[string]interface{}{
		"_source": []string{"name"},
		"suggest": map[string]interface{}{
			"name_suggest": map[string]interface{}{
				"prefix": prefix,
				"completion": map[string]interface{}{
					"field":           "name.suggest",
					"size":            limit,
					"skip_duplicates": true,
				},
			},
		},
	}

	var suggestResp struct {
		Suggest struct {
			NameSuggest []struct {
				Options []struct {
					ID   string `json:"_id"`
					Text string `json:"text"`
				} `json:"options"`
			} `json:"name_suggest"`
		} `json:"suggest"`
	}
	if err := c.search(ctx, suggestQuery, &suggestResp); err != nil {
		return nil, err
	}

	suggestions := make([]ToolSuggestion, 0)
	if len(suggestResp.Suggest.NameSuggest) > 0 {
		for _, option := range suggestResp.Suggest.NameSuggest[0].Options {
			suggestions = append(suggestions, ToolSuggestion{ID: option.ID, Name: option.Text})
		}
	}
	return suggestions, nil
}

func (c *Client) search(ctx context.Context, query map[string]interface{}, out interface{}) error {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(queryJSON)),
	)
	if err != nil {
		return fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if err := responseError(res, "searching tools"); err != nil {
		return err
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode search response: %w", err)
	}
	return nil
}

// responseError turns an error status into an error carrying the
// Elasticsearch error body
func responseError(res *esapi.Response, action string) error {
	if !res.IsError() {
		return nil
	}
	var errResp map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return fmt.Errorf("error %s: [%s]", action, res.Status())
	}
	return fmt.Errorf("error %s: [%s] %v", action, res.Status(), errResp["error"])
}
