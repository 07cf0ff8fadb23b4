package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/aihub/backend/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the catalog of a running server",
	Long:  "Commands for searching tools and completing names through the HTTP API (see --api)",
}

var searchToolsCmd = &cobra.Command{
	Use:   "tools [keyword]",
	Short: "Search tools by keyword, category, tags and price",
	Long: `Search tools with the same filters as POST /api/v1/search.

Examples:
  aihub search tools "chat"
  aihub search tools --tags coding,open-source --free --sort rating`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := search.Query{}
		if len(args) == 1 {
			q.Keyword = args[0]
		}
		q.CategoryID, _ = cmd.Flags().GetString("category")
		q.Tags, _ = cmd.Flags().GetStringSlice("tags")
		q.SortBy, _ = cmd.Flags().GetString("sort")
		q.SortOrder, _ = cmd.Flags().GetString("order")
		q.Page, _ = cmd.Flags().GetInt("page")
		q.PageSize, _ = cmd.Flags().GetInt("limit")
		if cmd.Flags().Changed("free") {
			free, _ := cmd.Flags().GetBool("free")
			q.IsFree = &free
		}
		return searchTools(q)
	},
}

var searchSuggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Complete tool and tag names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return suggest(args[0], limit)
	},
}

func init() {
	searchCmd.AddCommand(searchToolsCmd)
	searchCmd.AddCommand(searchSuggestCmd)

	searchToolsCmd.Flags().String("category", "", "Category ID filter")
	searchToolsCmd.Flags().StringSlice("tags", []string{}, "Tag filters (comma-separated or repeated)")
	searchToolsCmd.Flags().Bool("free", false, "Only free tools (--free=false for paid ones)")
	searchToolsCmd.Flags().String("sort", "", "Sort by: "+strings.Join(search.SortFields, ", "))
	searchToolsCmd.Flags().String("order", "desc", "Sort order: asc or desc")
	searchToolsCmd.Flags().IntP("page", "p", 1, "Result page")
	searchToolsCmd.Flags().IntP("limit", "l", search.DefaultPageSize, "Results per page")

	searchSuggestCmd.Flags().IntP("limit", "l", 10, "Maximum number of suggestions")
}

func searchTools(q search.Query) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	body, err := callAPI(http.MethodPost, "/api/v1/search", bytes.NewReader(payload))
	if err != nil {
		return err
	}

	var result search.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	if len(result.Tools) == 0 {
		fmt.Println("No tools found")
		return nil
	}
	fmt.Printf("Found %d tools (page %d of %d):\n\n", result.Total, result.Page, result.TotalPages)
	for i, tool := range result.Tools {
		price := "paid"
		if tool.IsFree {
			price = "free"
		}
		fmt.Printf("%d. %s  ★ %.2f  (%s)\n", i+1, tool.Name, tool.Rating, price)
		fmt.Printf("   %s\n", tool.URL)
		if len(tool.Tags) > 0 {
			fmt.Printf("   tags: %s\n", strings.Join(tool.Tags, ", "))
		}
		fmt.Printf("   id: %s\n\n", tool.ID)
	}
	return nil
}

func suggest(prefix string, limit int) error {
	if strings.TrimSpace(prefix) == "" {
		return fmt.Errorf("prefix cannot be empty")
	}

	params := url.Values{}
	params.Set("keyword", prefix)
	params.Set("limit", strconv.Itoa(limit))

	body, err := callAPI(http.MethodGet, "/api/v1/search/suggestions?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	var result search.Suggestions
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	fmt.Println("Tools:")
	for _, s := range result.Tools {
		fmt.Printf("  %s  (%s)\n", s.Name, s.ID)
	}
	fmt.Println("Tags:")
	for _, tag := range result.Tags {
		fmt.Printf("  %s\n", tag)
	}
	return nil
}

// callAPI sends a request to the server and returns the body of a 2xx response
func callAPI(method, path string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, strings.TrimRight(apiURL, "/")+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		_ = json.Unmarshal(body, &errResp)
		if msg, ok := errResp["message"].(string); ok {
			return nil, fmt.Errorf("API error: %s", msg)
		}
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	return body, nil
}
