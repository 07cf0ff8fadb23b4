package util

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zfogg/aihub/backend/internal/errors"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// Pagination is the skip/limit pair of list endpoints
type Pagination struct {
	Skip  int
	Limit int
}

// ParsePagination reads ?skip and ?limit. skip must be >= 0 and limit in
// 1..MaxLimit; a missing limit is DefaultLimit.
func ParsePagination(c *gin.Context) (Pagination, bool) {
	p := Pagination{Limit: DefaultLimit}

	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			RespondWithAPIError(c, errors.InvalidInput("skip", "skip must be a non-negative integer"))
			return p, false
		}
		p.Skip = skip
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxLimit {
			RespondWithAPIError(c, errors.InvalidInput("limit", "limit must be between 1 and 1000"))
			return p, false
		}
		p.Limit = limit
	}
	return p, true
}

// ParseIDParam reads a path parameter that must be a UUID
func ParseIDParam(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondWithAPIError(c, errors.InvalidInput(name, "invalid id format"))
		return "", false
	}
	return id.String(), true
}

// ValidID reports whether s is a UUID, for ids that arrive in bodies or queries
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ParseBoolQuery reads an optional boolean query parameter. The second
// result is false when the parameter is absent.
func ParseBoolQuery(c *gin.Context, name string) (value bool, present bool, ok bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		RespondWithAPIError(c, errors.InvalidInput(name, "must be true or false"))
		return false, false, false
	}
	return v, true, true
}

// ParseTimeQuery reads an optional RFC 3339 timestamp (or a YYYY-MM-DD date)
func ParseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	RespondWithAPIError(c, errors.InvalidInput(name, "must be an RFC 3339 timestamp or YYYY-MM-DD date"))
	return nil, false
}

// SplitCSV splits a comma separated query value, dropping blanks
func SplitCSV(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
