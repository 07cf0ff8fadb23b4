// Package aggregation recomputes the materialized statistics documents
// (rating stats, share stats, tag and like counters) from their source
// collections.
package aggregation

import (
	"context"
	"errors"
	"time"

	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/metrics"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	outcomeWritten   = "written"
	outcomeUnchanged = "unchanged"
	outcomeFailed    = "failed"
)

// Engine recomputes derived documents. Every recomputation reads the full
// source set and replaces the stored view with a single upsert.
type Engine struct {
	store *store.Store
	now   func() time.Time
}

// NewEngine creates an engine over s
func NewEngine(s *store.Store) *Engine {
	return &Engine{
		store: s,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// RecomputeRatingStats rebuilds the RatingStats of toolID. The caller has
// already checked that the tool exists.
func (e *Engine) RecomputeRatingStats(ctx context.Context, toolID string) (*models.RatingStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "aggregation.recompute_rating_stats", attribute.String("tool.id", toolID))
	start := time.Now()

	stats, outcome, err := e.recomputeRatingStats(ctx, toolID)

	e.observe("rating", outcome, start)
	span.SetAttributes(attribute.String("aggregation.outcome", outcome))
	telemetry.EndSpan(span, err)
	return stats, err
}

func (e *Engine) recomputeRatingStats(ctx context.Context, toolID string) (*models.RatingStats, string, error) {
	ratings, err := e.store.Ratings.Find(ctx, store.Eq("tool_id", toolID))
	if err != nil {
		return nil, outcomeFailed, err
	}

	next := BuildRatingStats(toolID, ratings, e.now())

	existing, err := e.store.RatingStats.FindOne(ctx, store.Eq("tool_id", toolID))
	switch {
	case err == nil && sameRatingStats(existing, &next):
		return existing, outcomeUnchanged, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, outcomeFailed, err
	}

	if err := e.store.RatingStats.Upsert(ctx, &next, "tool_id"); err != nil {
		return nil, outcomeFailed, err
	}

	if err := e.store.Tools.SetColumns(ctx, toolID, map[string]interface{}{"rating": next.AverageScore}); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, outcomeFailed, err
	}

	logger.Log.Debug("Rating stats recomputed",
		logger.WithToolID(toolID),
		zap.Int64("total_ratings", next.TotalRatings),
		zap.Float64("average_score", next.AverageScore),
	)
	return &next, outcomeWritten, nil
}

// RecomputeShareStats rebuilds the ShareStats of toolID
func (e *Engine) RecomputeShareStats(ctx context.Context, toolID string) (*models.ShareStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "aggregation.recompute_share_stats", attribute.String("tool.id", toolID))
	start := time.Now()

	stats, outcome, err := e.recomputeShareStats(ctx, toolID)

	e.observe("share", outcome, start)
	span.SetAttributes(attribute.String("aggregation.outcome", outcome))
	telemetry.EndSpan(span, err)
	return stats, err
}

func (e *Engine) recomputeShareStats(ctx context.Context, toolID string) (*models.ShareStats, string, error) {
	byPlatform, err := e.store.Shares.GroupCount(ctx, "platform", store.Eq("tool_id", toolID))
	if err != nil {
		return nil, outcomeFailed, err
	}

	next := BuildShareStats(toolID, byPlatform, e.now())

	existing, err := e.store.ShareStats.FindOne(ctx, store.Eq("tool_id", toolID))
	switch {
	case err == nil && sameShareStats(existing, &next):
		return existing, outcomeUnchanged, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, outcomeFailed, err
	}

	if err := e.store.ShareStats.Upsert(ctx, &next, "tool_id"); err != nil {
		return nil, outcomeFailed, err
	}
	return &next, outcomeWritten, nil
}

// RatingStats returns the stored view, building it when none exists yet
func (e *Engine) RatingStats(ctx context.Context, toolID string) (*models.RatingStats, error) {
	stats, err := e.store.RatingStats.FindOne(ctx, store.Eq("tool_id", toolID))
	if errors.Is(err, store.ErrNotFound) {
		return e.RecomputeRatingStats(ctx, toolID)
	}
	return stats, err
}

// ShareStats returns the stored view, building it when none exists yet
func (e *Engine) ShareStats(ctx context.Context, toolID string) (*models.ShareStats, error) {
	stats, err := e.store.ShareStats.FindOne(ctx, store.Eq("tool_id", toolID))
	if errors.Is(err, store.ErrNotFound) {
		return e.RecomputeShareStats(ctx, toolID)
	}
	return stats, err
}

// RecomputeTagCounts refreshes tool_count of the named tags. Tags that are
// not registered in the tags collection are skipped.
func (e *Engine) RecomputeTagCounts(ctx context.Context, names ...string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok || name == "" {
			continue
		}
		seen[name] = struct{}{}

		tag, err := e.store.Tags.FindOne(ctx, store.Eq("name", name))
		if errors.Is(err, store.ErrNotFound) {
			continue
		} else if err != nil {
			return err
		}

		n, err := e.store.Tools.Count(ctx, store.HasTag("tags", name))
		if err != nil {
			return err
		}
		if n == tag.ToolCount {
			continue
		}
		if err := e.store.Tags.SetColumns(ctx, tag.ID, map[string]interface{}{"tool_count": n}); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeLikes sets a tool's likes to its number of favorites
func (e *Engine) RecomputeLikes(ctx context.Context, toolID string) (int64, error) {
	n, err := e.store.Favorites.Count(ctx, store.Eq("tool_id", toolID))
	if err != nil {
		return 0, err
	}
	if err := e.store.Tools.SetColumns(ctx, toolID, map[string]interface{}{"likes": n}); err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}
	return n, nil
}

// Summary reports what RecomputeAll touched
type Summary struct {
	Tools int `json:"tools"`
	Tags  int `json:"tags"`
}

// RecomputeAll replays every source collection into the materialized views.
// When toolIDs is empty every tool is processed.
func (e *Engine) RecomputeAll(ctx context.Context, toolIDs ...string) (*Summary, error) {
	ids := toolIDs
	if len(ids) == 0 {
		var err error
		if ids, err = e.store.Tools.Pluck(ctx, "id"); err != nil {
			return nil, err
		}
	}

	summary := &Summary{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, err := e.RecomputeRatingStats(ctx, id); err != nil {
			return summary, err
		}
		if _, err := e.RecomputeShareStats(ctx, id); err != nil {
			return summary, err
		}
		if _, err := e.RecomputeLikes(ctx, id); err != nil {
			return summary, err
		}
		summary.Tools++
	}

	names, err := e.store.Tags.Pluck(ctx, "name")
	if err != nil {
		return summary, err
	}
	if err := e.RecomputeTagCounts(ctx, names...); err != nil {
		return summary, err
	}
	summary.Tags = len(names)

	logger.Log.Info("Materialized views recomputed",
		zap.Int("tools", summary.Tools),
		zap.Int("tags", summary.Tags),
	)
	return summary, nil
}

func (e *Engine) observe(kind, outcome string, start time.Time) {
	m := metrics.Get()
	m.StatsRecomputationsTotal.WithLabelValues(kind, outcome).Inc()
	m.StatsRecomputationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
