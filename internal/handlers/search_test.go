package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/search"
	"github.com/zfogg/aihub/backend/internal/testutil"
)

// useElasticsearch installs a search service backed by a fake cluster
func (suite *HandlersTestSuite) useElasticsearch() *testutil.FakeElasticsearch {
	fake := testutil.NewFakeElasticsearch(suite.T(), search.IndexTools)
	client, err := search.NewClient(context.Background(), fake.URL)
	suite.Require().NoError(err)
	suite.handlers.SetSearchService(search.NewService(suite.store, client))
	return fake
}

func (suite *HandlersTestSuite) TestRatingsKeepSearchIndexCurrent() {
	fake := suite.useElasticsearch()
	tool := suite.createTool("Claude", "chat")
	base := "/api/v1/tools/" + tool.ID + "/ratings"

	w := suite.request("POST", base, suite.aliceToken, gin.H{"score": 4})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var rating struct {
		ID string `json:"id"`
	}
	suite.decode(w, &rating)
	suite.Require().NotNil(fake.Doc(tool.ID), "rating a tool pushes it into the index")
	suite.EqualValues(4, fake.Doc(tool.ID)["rating"])

	w = suite.request("POST", base, suite.bobToken, gin.H{"score": 2})
	suite.Require().Equal(http.StatusCreated, w.Code)
	suite.EqualValues(3, fake.Doc(tool.ID)["rating"])

	w = suite.request("PUT", base+"/"+rating.ID, suite.aliceToken, gin.H{"score": 5})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.EqualValues(3.5, fake.Doc(tool.ID)["rating"])

	w = suite.request("DELETE", base+"/"+rating.ID, suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.EqualValues(2, fake.Doc(tool.ID)["rating"])
}

func (suite *HandlersTestSuite) TestFavoritesAndViewsKeepSearchIndexCurrent() {
	fake := suite.useElasticsearch()
	tool := suite.createTool("Midjourney", "image")
	path := "/api/v1/tools/" + tool.ID

	w := suite.request("POST", path+"/favorite", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.EqualValues(1, fake.Doc(tool.ID)["likes"])

	w = suite.request("DELETE", path+"/favorite", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.EqualValues(0, fake.Doc(tool.ID)["likes"])

	w = suite.request("GET", path, "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	w = suite.request("GET", path, "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.EqualValues(2, fake.Doc(tool.ID)["views"])
}
