package aggregation

import (
	"maps"
	"math"
	"strconv"
	"time"

	"github.com/zfogg/aihub/backend/internal/models"
)

// ScoreBuckets are the distribution keys of RatingStats
var ScoreBuckets = []string{"1", "2", "3", "4", "5"}

// BucketFor maps a score in [0,5] to its distribution key. Scores are floored
// and clamped into 1..5, so 0 counts as "1".
func BucketFor(score float64) string {
	b := int(math.Floor(score))
	if b < 1 {
		b = 1
	}
	if b > 5 {
		b = 5
	}
	return strconv.Itoa(b)
}

// BuildRatingStats computes the materialized view for one tool from all of its ratings
func BuildRatingStats(toolID string, ratings []models.Rating, now time.Time) models.RatingStats {
	stats := models.RatingStats{
		ToolID:            toolID,
		ScoreDistribution: make(map[string]int64, len(ScoreBuckets)),
		TagStats:          make(map[string]int64),
		UpdatedAt:         now,
	}
	for _, b := range ScoreBuckets {
		stats.ScoreDistribution[b] = 0
	}
	if len(ratings) == 0 {
		return stats
	}

	var sum float64
	for _, r := range ratings {
		sum += r.Score
		stats.ScoreDistribution[BucketFor(r.Score)]++
		for _, tag := range r.Tags {
			stats.TagStats[tag]++
		}
	}
	stats.TotalRatings = int64(len(ratings))
	stats.AverageScore = sum / float64(len(ratings))
	return stats
}

// BuildShareStats computes the materialized view for one tool from its shares
// grouped by platform
func BuildShareStats(toolID string, byPlatform map[string]int64, now time.Time) models.ShareStats {
	stats := models.ShareStats{
		ToolID:        toolID,
		PlatformStats: make(map[string]int64, len(byPlatform)),
		UpdatedAt:     now,
	}
	for platform, n := range byPlatform {
		stats.PlatformStats[platform] = n
		stats.TotalShares += n
	}
	return stats
}

func sameRatingStats(a, b *models.RatingStats) bool {
	return a.ToolID == b.ToolID &&
		a.AverageScore == b.AverageScore &&
		a.TotalRatings == b.TotalRatings &&
		maps.Equal(a.ScoreDistribution, b.ScoreDistribution) &&
		maps.Equal(a.TagStats, b.TagStats)
}

func sameShareStats(a, b *models.ShareStats) bool {
	return a.ToolID == b.ToolID &&
		a.TotalShares == b.TotalShares &&
		maps.Equal(a.PlatformStats, b.PlatformStats)
}
