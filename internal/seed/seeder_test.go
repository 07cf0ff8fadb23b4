package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/testutil"
)

func TestSeedBuildsConsistentCatalog(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	report, err := NewSeeder(st).Seed(ctx, Options{Users: 5, Tools: 12})
	require.NoError(t, err)

	assert.Equal(t, 5, report.Users)
	assert.Equal(t, 12, report.Tools)
	assert.Equal(t, len(categoryNames), report.Categories)
	assert.Equal(t, len(tagNames), report.Tags)
	require.NotNil(t, report.Views)
	assert.Equal(t, 12, report.Views.Tools)

	ratings, err := st.Ratings.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(report.Ratings), ratings)

	tools, err := st.Tools.Find(ctx)
	require.NoError(t, err)
	for _, tool := range tools {
		stats, err := st.RatingStats.FindOne(ctx, store.Eq("tool_id", tool.ID))
		require.NoError(t, err, "every tool has rating stats after seeding")

		n, err := st.Ratings.Count(ctx, store.Eq("tool_id", tool.ID))
		require.NoError(t, err)
		assert.Equal(t, n, stats.TotalRatings)
		assert.InDelta(t, stats.AverageScore, tool.Rating, 1e-9)

		var bucketSum int64
		for _, c := range stats.ScoreDistribution {
			bucketSum += c
		}
		assert.Equal(t, stats.TotalRatings, bucketSum)

		favorites, err := st.Favorites.Count(ctx, store.Eq("tool_id", tool.ID))
		require.NoError(t, err)
		assert.Equal(t, favorites, tool.Likes)

		assert.NotContains(t, tool.RelatedTools, tool.ID)
	}

	tags, err := st.Tags.Find(ctx)
	require.NoError(t, err)
	for _, tag := range tags {
		n, err := st.Tools.Count(ctx, store.HasTag("tags", tag.Name))
		require.NoError(t, err)
		assert.Equal(t, n, tag.ToolCount, tag.Name)
	}
}

func TestSeedTwiceReusesTaxonomy(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)
	seeder := NewSeeder(st)

	_, err := seeder.Seed(ctx, Options{Users: 2, Tools: 3})
	require.NoError(t, err)
	second, err := seeder.Seed(ctx, Options{Users: 2, Tools: 3})
	require.NoError(t, err)

	assert.Zero(t, second.Tags, "tags already exist")
	categories, err := st.Categories.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(categoryNames)), categories)

	users, err := st.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), users)
}

func TestClean(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)
	seeder := NewSeeder(st)

	_, err := seeder.Seed(ctx, Options{Users: 2, Tools: 4})
	require.NoError(t, err)
	require.NoError(t, seeder.Clean(ctx))

	for name, count := range map[string]func(context.Context, ...store.Scope) (int64, error){
		"users":   st.Users.Count,
		"tools":   st.Tools.Count,
		"ratings": st.Ratings.Count,
		"tags":    st.Tags.Count,
	} {
		n, err := count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n, name)
	}
}
