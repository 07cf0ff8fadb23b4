// Package recommendations ranks tools for a user or a tool by co-occurrence
// in related_tools lists. Results are computed per request and never stored.
package recommendations

import (
	"context"
	"sort"

	"github.com/zfogg/aihub/backend/internal/metrics"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultLimit = 10

	toolBaseScore     = 1.0
	favoritedBonus    = 0.5
	ratedBonus        = 0.3
	sourceUser        = "user"
	sourceRelatedTool = "tool"
)

// Recommender reads user history and tool relations from the store
type Recommender struct {
	store *store.Store
}

// NewRecommender creates a recommender over s
func NewRecommender(s *store.Store) *Recommender {
	return &Recommender{store: s}
}

// ForUser scores every tool related to something the user favorited, rated
// or viewed. Tools already in that history are never returned.
func (r *Recommender) ForUser(ctx context.Context, userID string, limit int) (recs []models.Recommendation, err error) {
	ctx, span := telemetry.StartSpan(ctx, "recommendations.for_user", attribute.String("user.id", userID))
	defer func() {
		span.SetAttributes(attribute.Int("recommendations.count", len(recs)))
		telemetry.EndSpan(span, err)
	}()

	history, err := r.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(history.order) == 0 {
		return []models.Recommendation{}, nil
	}

	sources, err := r.store.Tools.Find(ctx, store.In("id", history.order))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Tool, len(sources))
	for i := range sources {
		byID[sources[i].ID] = &sources[i]
	}

	scores := newScoreboard()
	for _, id := range history.order {
		tool, ok := byID[id]
		if !ok {
			continue
		}
		for _, candidate := range tool.RelatedTools {
			if history.has(candidate) {
				continue
			}
			scores.add(candidate, 1)
		}
	}

	recs, err = r.finish(ctx, scores, userID, limit)
	if err != nil {
		return nil, err
	}
	metrics.Get().RecommendationsServed.WithLabelValues(sourceUser).Observe(float64(len(recs)))
	return recs, nil
}

// ForTool ranks the related tools of toolID. Each starts at 1.0 and gains a
// bonus when the acting user has favorited or rated it. userID may be empty.
func (r *Recommender) ForTool(ctx context.Context, toolID, userID string, limit int) (recs []models.Recommendation, err error) {
	ctx, span := telemetry.StartSpan(ctx, "recommendations.for_tool", attribute.String("tool.id", toolID))
	defer func() {
		span.SetAttributes(attribute.Int("recommendations.count", len(recs)))
		telemetry.EndSpan(span, err)
	}()

	tool, err := r.store.Tools.Get(ctx, toolID)
	if err != nil {
		return nil, err
	}

	var favorited, rated set
	if userID != "" {
		if favorited, err = r.toolSet(ctx, r.store.Favorites.Pluck, userID); err != nil {
			return nil, err
		}
		if rated, err = r.toolSet(ctx, r.store.Ratings.Pluck, userID); err != nil {
			return nil, err
		}
	}

	scores := newScoreboard()
	for _, candidate := range tool.RelatedTools {
		if candidate == toolID || scores.seen(candidate) {
			continue
		}
		score := toolBaseScore
		if favorited.has(candidate) {
			score += favoritedBonus
		}
		if rated.has(candidate) {
			score += ratedBonus
		}
		scores.add(candidate, score)
	}

	recs, err = r.finish(ctx, scores, userID, limit)
	if err != nil {
		return nil, err
	}
	metrics.Get().RecommendationsServed.WithLabelValues(sourceRelatedTool).Observe(float64(len(recs)))
	return recs, nil
}

// finish sorts candidates, drops ids that no longer resolve to a tool and
// truncates to limit
func (r *Recommender) finish(ctx context.Context, scores *scoreboard, userID string, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ranked := scores.ranked()
	if len(ranked) == 0 {
		return []models.Recommendation{}, nil
	}

	ids := make([]string, len(ranked))
	for i, c := range ranked {
		ids[i] = c.id
	}
	tools, err := r.store.Tools.Find(ctx, store.In("id", ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Tool, len(tools))
	for i := range tools {
		byID[tools[i].ID] = &tools[i]
	}

	recs := make([]models.Recommendation, 0, min(limit, len(ranked)))
	for _, c := range ranked {
		tool, ok := byID[c.id]
		if !ok {
			continue
		}
		recs = append(recs, models.Recommendation{UserID: userID, ToolID: c.id, Score: c.score, Tool: tool})
		if len(recs) == limit {
			break
		}
	}
	return recs, nil
}

type pluckFunc func(ctx context.Context, column string, scopes ...store.Scope) ([]string, error)

func (r *Recommender) toolSet(ctx context.Context, pluck pluckFunc, userID string) (set, error) {
	ids, err := pluck(ctx, "tool_id", store.Eq("user_id", userID), store.OrderBy("created_at", false))
	if err != nil {
		return nil, err
	}
	s := make(set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s, nil
}

// userHistory is the union of favorited, rated and viewed tools in the order
// they were first seen
type userHistory struct {
	order []string
	set
}

func (r *Recommender) history(ctx context.Context, userID string) (*userHistory, error) {
	h := &userHistory{set: make(set)}
	for _, pluck := range []pluckFunc{r.store.Favorites.Pluck, r.store.Ratings.Pluck, r.store.Views.Pluck} {
		ids, err := pluck(ctx, "tool_id", store.Eq("user_id", userID), store.OrderBy("created_at", false))
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if h.has(id) {
				continue
			}
			h.set[id] = struct{}{}
			h.order = append(h.order, id)
		}
	}
	return h, nil
}

type set map[string]struct{}

func (s set) has(id string) bool {
	_, ok := s[id]
	return ok
}

type candidate struct {
	id    string
	score float64
}

// scoreboard accumulates scores while remembering first-seen order, which
// breaks ties in ranked
type scoreboard struct {
	index      map[string]int
	candidates []candidate
}

func newScoreboard() *scoreboard {
	return &scoreboard{index: make(map[string]int)}
}

func (b *scoreboard) seen(id string) bool {
	_, ok := b.index[id]
	return ok
}

func (b *scoreboard) add(id string, score float64) {
	if i, ok := b.index[id]; ok {
		b.candidates[i].score += score
		return
	}
	b.index[id] = len(b.candidates)
	b.candidates = append(b.candidates, candidate{id: id, score: score})
}

func (b *scoreboard) ranked() []candidate {
	out := make([]candidate, len(b.candidates))
	copy(out, b.candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	return out
}
