package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

func (suite *HandlersTestSuite) TestCreateToolRequiresAdmin() {
	body := gin.H{"name": "ChatGPT", "url": "https://chat.openai.com", "tags": []string{"chat"}}

	w := suite.request("POST", "/api/v1/tools", "", body)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.request("POST", "/api/v1/tools", suite.aliceToken, body)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("POST", "/api/v1/tools", suite.adminToken, body)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var tool models.Tool
	suite.decode(w, &tool)
	suite.NotEmpty(tool.ID)
	suite.True(tool.IsActive)
	suite.Equal(models.StringArray{"chat"}, tool.Tags)
}

func (suite *HandlersTestSuite) TestCreateToolRefreshesTagCounts() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Tags.Insert(ctx, &models.Tag{Name: "chat"}))

	for _, name := range []string{"ChatGPT", "Claude"} {
		w := suite.request("POST", "/api/v1/tools", suite.adminToken, gin.H{"name": name, "url": "https://example.com", "tags": []string{"chat", " chat "}})
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	tag, err := suite.store.Tags.FindOne(ctx, store.Eq("name", "chat"))
	suite.Require().NoError(err)
	suite.Equal(int64(2), tag.ToolCount)
}

func (suite *HandlersTestSuite) TestCreateToolUnknownCategory() {
	w := suite.request("POST", "/api/v1/tools", suite.adminToken, gin.H{
		"name":     "Orphan",
		"category": "00000000-0000-0000-0000-000000000000",
	})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestListToolsFilters() {
	ctx := context.Background()
	free := suite.createTool("Free Tool", "image")
	suite.Require().NoError(suite.store.Tools.SetColumns(ctx, free.ID, map[string]interface{}{"is_free": true}))
	suite.createTool("Paid Tool", "chat")
	hidden := suite.createTool("Hidden Tool")
	suite.Require().NoError(suite.store.Tools.SetColumns(ctx, hidden.ID, map[string]interface{}{"is_active": false}))

	w := suite.request("GET", "/api/v1/tools", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page util.ListResponse[models.Tool]
	suite.decode(w, &page)
	suite.Equal(int64(2), page.Total, "inactive tools are hidden by default")
	suite.Equal(util.DefaultLimit, page.Limit)

	w = suite.request("GET", "/api/v1/tools?is_free=true", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	page = util.ListResponse[models.Tool]{}
	suite.decode(w, &page)
	suite.Require().Len(page.Items, 1)
	suite.Equal("Free Tool", page.Items[0].Name)

	w = suite.request("GET", "/api/v1/tools?search=paid", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	page = util.ListResponse[models.Tool]{}
	suite.decode(w, &page)
	suite.Require().Len(page.Items, 1)
	suite.Equal("Paid Tool", page.Items[0].Name)

	w = suite.request("GET", "/api/v1/tools?is_active=false", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	page = util.ListResponse[models.Tool]{}
	suite.decode(w, &page)
	suite.Require().Len(page.Items, 1)
	suite.Equal("Hidden Tool", page.Items[0].Name)

	w = suite.request("GET", "/api/v1/tools?limit=0", "", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request("GET", "/api/v1/tools?is_free=maybe", "", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetToolCountsViews() {
	tool := suite.createTool("Viewed")

	w := suite.request("GET", "/api/v1/tools/"+tool.ID, "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var got models.Tool
	suite.decode(w, &got)
	suite.Equal(int64(1), got.Views)

	w = suite.request("GET", "/api/v1/tools/"+tool.ID, suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	ctx := context.Background()
	stored, err := suite.store.Tools.Get(ctx, tool.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), stored.Views)

	views, err := suite.store.Views.Count(ctx, store.Eq("user_id", suite.alice.ID))
	suite.Require().NoError(err)
	suite.Equal(int64(1), views, "only authenticated views are recorded")
}

func (suite *HandlersTestSuite) TestGetToolNotFound() {
	w := suite.request("GET", "/api/v1/tools/00000000-0000-0000-0000-000000000000", "", nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("NOT_FOUND", suite.errorCode(w))
}

func (suite *HandlersTestSuite) TestUpdateToolPartial() {
	tool := suite.createTool("Before", "old")

	w := suite.request("PUT", "/api/v1/tools/"+tool.ID, suite.adminToken, gin.H{"name": "After"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated models.Tool
	suite.decode(w, &updated)
	suite.Equal("After", updated.Name)
	suite.Equal(models.StringArray{"old"}, updated.Tags, "omitted fields keep their values")
	suite.Equal(tool.URL, updated.URL)

	w = suite.request("PUT", "/api/v1/tools/"+tool.ID, suite.adminToken, gin.H{"url": "not a url"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteToolDropsStats() {
	ctx := context.Background()
	tool := suite.createTool("Doomed")

	w := suite.request("POST", "/api/v1/tools/"+tool.ID+"/ratings", suite.aliceToken, gin.H{"score": 4})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.request("DELETE", "/api/v1/tools/"+tool.ID, suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/tools/"+tool.ID, "", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	exists, err := suite.store.RatingStats.Exists(ctx, store.Eq("tool_id", tool.ID))
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *HandlersTestSuite) TestRatingLifecycle() {
	tool := suite.createTool("Rated")
	base := "/api/v1/tools/" + tool.ID + "/ratings"

	w := suite.request("POST", base, suite.aliceToken, gin.H{"score": 4.5, "comment": "great", "tags": []string{"fast", "fast"}})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var rating models.Rating
	suite.decode(w, &rating)
	suite.Equal(suite.alice.ID, rating.UserID)
	suite.Equal(models.StringArray{"fast"}, rating.Tags)

	w = suite.request("POST", base, suite.aliceToken, gin.H{"score": 3})
	suite.Equal(http.StatusConflict, w.Code, "one rating per user and tool")

	w = suite.request("POST", base, suite.bobToken, gin.H{"score": 6})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request("POST", base, suite.bobToken, gin.H{"comment": "no score"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request("POST", base, suite.bobToken, gin.H{"score": 0})
	suite.Require().Equal(http.StatusCreated, w.Code, "zero is a valid score")
	var bobRating models.Rating
	suite.decode(w, &bobRating)

	w = suite.request("GET", base+"/stats", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stats models.RatingStats
	suite.decode(w, &stats)
	suite.Equal(int64(2), stats.TotalRatings)
	suite.InDelta(2.25, stats.AverageScore, 1e-9)
	suite.Equal(int64(1), stats.ScoreDistribution["1"])
	suite.Equal(int64(1), stats.ScoreDistribution["4"])
	suite.Equal(int64(1), stats.TagStats["fast"])

	stored, err := suite.store.Tools.Get(context.Background(), tool.ID)
	suite.Require().NoError(err)
	suite.InDelta(2.25, stored.Rating, 1e-9, "tool rating follows the stats")

	w = suite.request("PUT", base+"/"+rating.ID, suite.bobToken, gin.H{"score": 1})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("PUT", base+"/"+rating.ID, suite.aliceToken, gin.H{"score": 5})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request("DELETE", base+"/"+bobRating.ID, suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("GET", base+"/stats", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	stats = models.RatingStats{}
	suite.decode(w, &stats)
	suite.Equal(int64(1), stats.TotalRatings)
	suite.InDelta(5.0, stats.AverageScore, 1e-9)

	w = suite.request("GET", base, "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page util.ListResponse[models.Rating]
	suite.decode(w, &page)
	suite.Equal(int64(1), page.Total)
}

func (suite *HandlersTestSuite) TestRatingStatsOfUnratedTool() {
	tool := suite.createTool("Unrated")

	w := suite.request("GET", "/api/v1/tools/"+tool.ID+"/ratings/stats", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stats models.RatingStats
	suite.decode(w, &stats)
	suite.Equal(int64(0), stats.TotalRatings)
	suite.Zero(stats.AverageScore)
	suite.Len(stats.ScoreDistribution, 5)
}

func (suite *HandlersTestSuite) TestRatingOfAnotherTool() {
	first := suite.createTool("First")
	second := suite.createTool("Second")

	w := suite.request("POST", "/api/v1/tools/"+first.ID+"/ratings", suite.aliceToken, gin.H{"score": 3})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var rating models.Rating
	suite.decode(w, &rating)

	w = suite.request("GET", "/api/v1/tools/"+second.ID+"/ratings/"+rating.ID, "", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestShares() {
	tool := suite.createTool("Shared")
	base := "/api/v1/tools/" + tool.ID + "/shares"

	for _, platform := range []string{"Twitter", "twitter", "wechat"} {
		w := suite.request("POST", base, suite.aliceToken, gin.H{"platform": platform})
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := suite.request("GET", base+"/stats", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stats models.ShareStats
	suite.decode(w, &stats)
	suite.Equal(int64(3), stats.TotalShares)
	suite.Equal(int64(2), stats.PlatformStats["twitter"])
	suite.Equal(int64(1), stats.PlatformStats["wechat"])

	w = suite.request("GET", base, suite.aliceToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("GET", base, suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/users/me/shares", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var mine util.ListResponse[models.Share]
	suite.decode(w, &mine)
	suite.Equal(int64(3), mine.Total)
}

func (suite *HandlersTestSuite) TestFavorites() {
	tool := suite.createTool("Loved")
	path := "/api/v1/tools/" + tool.ID + "/favorite"

	var resp struct {
		Favorited bool  `json:"favorited"`
		Likes     int64 `json:"likes"`
	}
	for i := 0; i < 2; i++ {
		w := suite.request("POST", path, suite.aliceToken, nil)
		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		suite.decode(w, &resp)
		suite.True(resp.Favorited)
		suite.Equal(int64(1), resp.Likes, "favoriting twice counts once")
	}

	w := suite.request("POST", path, suite.bobToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &resp)
	suite.Equal(int64(2), resp.Likes)

	w = suite.request("GET", "/api/v1/users/me/favorites", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var favorites util.ListResponse[models.Tool]
	suite.decode(w, &favorites)
	suite.Require().Len(favorites.Items, 1)
	suite.Equal(tool.ID, favorites.Items[0].ID)

	w = suite.request("DELETE", path, suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &resp)
	suite.False(resp.Favorited)
	suite.Equal(int64(1), resp.Likes)

	w = suite.request("DELETE", path, suite.aliceToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestSubscriptions() {
	tool := suite.createTool("Followed")
	base := "/api/v1/tools/" + tool.ID

	w := suite.request("POST", base+"/subscriptions", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var sub models.Subscription
	suite.decode(w, &sub)
	suite.True(sub.NotifyOnUpdates)
	suite.True(sub.NotifyOnComments)
	suite.True(sub.NotifyOnRatings)

	w = suite.request("POST", base+"/subscriptions", suite.aliceToken, gin.H{"notify_on_ratings": false})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request("GET", base+"/subscribers/count", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var count struct {
		Count int64 `json:"count"`
	}
	suite.decode(w, &count)
	suite.Equal(int64(1), count.Count)

	w = suite.request("PUT", "/api/v1/subscriptions/"+sub.ID, suite.bobToken, gin.H{"notify_on_ratings": false})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("PUT", "/api/v1/subscriptions/"+sub.ID, suite.aliceToken, gin.H{"notify_on_ratings": false})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	sub = models.Subscription{}
	suite.decode(w, &sub)
	suite.False(sub.NotifyOnRatings)
	suite.True(sub.NotifyOnUpdates)

	w = suite.request("GET", "/api/v1/users/me/subscriptions", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var mine util.ListResponse[models.Subscription]
	suite.decode(w, &mine)
	suite.Equal(int64(1), mine.Total)

	w = suite.request("DELETE", "/api/v1/subscriptions/"+sub.ID, suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("DELETE", "/api/v1/subscriptions/"+sub.ID, suite.aliceToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestVersions() {
	tool := suite.createTool("Versioned")
	base := "/api/v1/tools/" + tool.ID + "/versions"

	w := suite.request("GET", base+"/latest", "", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request("POST", base, suite.aliceToken, gin.H{"version_number": "1.0.0"})
	suite.Equal(http.StatusForbidden, w.Code)

	for _, v := range []gin.H{
		{"version_number": "1.0.0", "release_date": "2024-01-01T00:00:00Z", "is_stable": true},
		{"version_number": "1.1.0", "release_date": "2024-03-01T00:00:00Z", "is_stable": true},
		{"version_number": "2.0.0-beta", "release_date": "2024-06-01T00:00:00Z", "is_stable": false},
	} {
		w = suite.request("POST", base, suite.adminToken, v)
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w = suite.request("POST", base, suite.adminToken, gin.H{"version_number": "1.0.0"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request("GET", base+"/latest", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var latest models.Version
	suite.decode(w, &latest)
	suite.Equal("1.1.0", latest.VersionNumber, "latest skips unstable releases")

	w = suite.request("GET", base, "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page util.ListResponse[models.Version]
	suite.decode(w, &page)
	suite.Require().Len(page.Items, 3)
	suite.Equal("2.0.0-beta", page.Items[0].VersionNumber)
}

func (suite *HandlersTestSuite) TestTutorialOwnership() {
	tool := suite.createTool("Taught")

	w := suite.request("POST", "/api/v1/tools/"+tool.ID+"/tutorials", suite.aliceToken, gin.H{
		"title":   "Getting started",
		"content": "Sign up first.",
		"steps":   []string{"sign up", "log in"},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var tutorial models.Tutorial
	suite.decode(w, &tutorial)
	suite.Equal(suite.alice.ID, tutorial.AuthorID)

	w = suite.request("PUT", "/api/v1/tutorials/"+tutorial.ID, suite.bobToken, gin.H{"title": "Hijacked"})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("PUT", "/api/v1/tutorials/"+tutorial.ID, suite.aliceToken, gin.H{"title": "Quick start"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request("GET", "/api/v1/tutorials/"+tutorial.ID, "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	tutorial = models.Tutorial{}
	suite.decode(w, &tutorial)
	suite.Equal("Quick start", tutorial.Title)

	w = suite.request("DELETE", "/api/v1/tutorials/"+tutorial.ID, suite.bobToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("DELETE", "/api/v1/tutorials/"+tutorial.ID, suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestRecommendations() {
	ctx := context.Background()
	target := suite.createTool("Target")
	other := suite.createTool("Other")
	source := suite.createTool("Source")
	suite.Require().NoError(suite.store.Tools.SetColumns(ctx, source.ID, map[string]interface{}{
		"related_tools": models.StringArray{target.ID, other.ID},
	}))

	w := suite.request("GET", "/api/v1/recommendations", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var recs []models.Recommendation
	suite.decode(w, &recs)
	suite.Empty(recs, "no history, no recommendations")

	w = suite.request("POST", "/api/v1/tools/"+source.ID+"/favorite", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/recommendations", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	recs = nil
	suite.decode(w, &recs)
	suite.Len(recs, 2)
	for _, rec := range recs {
		suite.NotEqual(source.ID, rec.ToolID)
	}

	w = suite.request("GET", "/api/v1/tools/"+source.ID+"/recommendations?limit=1", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	recs = nil
	suite.decode(w, &recs)
	suite.Len(recs, 1)

	w = suite.request("GET", "/api/v1/tools/00000000-0000-0000-0000-000000000000/recommendations", suite.aliceToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request("GET", "/api/v1/recommendations?limit=0", suite.aliceToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestSearch() {
	suite.createTool("ChatGPT", "chat")
	suite.createTool("Midjourney", "image")

	w := suite.request("POST", "/api/v1/search", "", gin.H{"keyword": "chat"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Tools []models.Tool `json:"tools"`
		Total int64         `json:"total"`
	}
	suite.decode(w, &result)
	suite.Equal(int64(1), result.Total)
	suite.Require().Len(result.Tools, 1)
	suite.Equal("ChatGPT", result.Tools[0].Name)

	w = suite.request("GET", "/api/v1/search/suggestions?keyword=mid", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Midjourney")
}
