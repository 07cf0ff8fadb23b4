package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/aihub/backend/internal/auth"
	"github.com/zfogg/aihub/backend/internal/middleware"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/testutil"
	"github.com/zfogg/aihub/backend/internal/util"
)

// HandlersTestSuite drives the handlers through a gin router backed by an
// in-memory store
type HandlersTestSuite struct {
	suite.Suite
	store    *store.Store
	auth     *auth.Service
	handlers *Handlers
	router   *gin.Engine

	admin      *models.User
	alice      *models.User
	bob        *models.User
	adminToken string
	aliceToken string
	bobToken   string
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.store = testutil.NewStore(suite.T())
	suite.auth = auth.NewService([]byte("test-secret"), time.Hour, suite.store.Users)
	suite.handlers = NewHandlers(suite.store, suite.auth)
	suite.router = gin.New()
	suite.setupRoutes()

	suite.alice, suite.aliceToken = suite.register("alice", false)
	suite.bob, suite.bobToken = suite.register("bob", false)
	suite.admin, suite.adminToken = suite.register("admin", true)
}

// setupRoutes mounts the production route table. Rate limiting is left to
// the server package.
func (suite *HandlersTestSuite) setupRoutes() {
	api := suite.router.Group("/api/v1", middleware.OptionalAuth(suite.auth))
	suite.handlers.RegisterRoutes(api, suite.auth, func(c *gin.Context) { c.Next() })
	suite.router.GET("/health", suite.handlers.Health)
}

// register creates a user through the auth service and returns it with a token
func (suite *HandlersTestSuite) register(username string, admin bool) (*models.User, string) {
	ctx := context.Background()
	resp, err := suite.auth.Register(ctx, auth.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	suite.Require().NoError(err)
	if !admin {
		return resp.User, resp.Token
	}

	suite.Require().NoError(suite.store.Users.SetColumns(ctx, resp.User.ID, map[string]interface{}{"is_admin": true}))
	resp.User.IsAdmin = true
	issued, err := suite.auth.IssueToken(resp.User)
	suite.Require().NoError(err)
	return resp.User, issued.Token
}

// request performs a JSON request with an optional bearer token
func (suite *HandlersTestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into v
func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// errorCode returns the code of an error response
func (suite *HandlersTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var resp util.ErrorResponse
	suite.decode(w, &resp)
	return resp.Code
}

// createTool inserts a tool directly into the store
func (suite *HandlersTestSuite) createTool(name string, tags ...string) *models.Tool {
	tool := &models.Tool{
		Name:         name,
		Description:  name + " description",
		URL:          "https://example.com/" + name,
		Tags:         models.StringArray(tags).Normalize(),
		IsActive:     true,
		RelatedTools: models.StringArray{},
	}
	suite.Require().NoError(suite.store.Tools.Insert(context.Background(), tool))
	return tool
}

func (suite *HandlersTestSuite) TestRegisterLoginMe() {
	w := suite.request("POST", "/api/v1/auth/register", "", gin.H{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "password123",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var registered auth.AuthResponse
	suite.decode(w, &registered)
	suite.NotEmpty(registered.Token)
	suite.Equal("bearer", registered.TokenType)
	suite.Equal("carol", registered.User.Username)

	w = suite.request("POST", "/api/v1/auth/register", "", gin.H{
		"username": "carol",
		"email":    "other@example.com",
		"password": "password123",
	})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request("POST", "/api/v1/auth/login", "", gin.H{"username": "carol", "password": "wrong-password"})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.request("POST", "/api/v1/auth/login", "", gin.H{"username": "carol", "password": "password123"})
	suite.Require().Equal(http.StatusOK, w.Code)
	var login auth.AuthResponse
	suite.decode(w, &login)

	w = suite.request("GET", "/api/v1/auth/me", login.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var me models.User
	suite.decode(w, &me)
	suite.Equal(registered.User.ID, me.ID)
	suite.NotContains(w.Body.String(), "password")
}

func (suite *HandlersTestSuite) TestRegisterValidation() {
	w := suite.request("POST", "/api/v1/auth/register", "", gin.H{
		"username": "dave",
		"email":    "not-an-email",
		"password": "password123",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_INPUT", suite.errorCode(w))
}

func (suite *HandlersTestSuite) TestMeRequiresToken() {
	w := suite.request("GET", "/api/v1/auth/me", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("UNAUTHENTICATED", suite.errorCode(w))
}

func (suite *HandlersTestSuite) TestUserAccess() {
	w := suite.request("GET", "/api/v1/users/"+suite.alice.ID, suite.aliceToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/users/"+suite.alice.ID, suite.bobToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("GET", "/api/v1/users/"+suite.alice.ID, suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/users", suite.aliceToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("GET", "/api/v1/users", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page util.ListResponse[models.User]
	suite.decode(w, &page)
	suite.Equal(int64(3), page.Total)
}

func (suite *HandlersTestSuite) TestUpdateUserAdminFields() {
	w := suite.request("PUT", "/api/v1/users/"+suite.alice.ID, suite.aliceToken, gin.H{"is_admin": true})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("PUT", "/api/v1/users/"+suite.alice.ID, suite.aliceToken, gin.H{"email": "alice@new.example.com"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated models.User
	suite.decode(w, &updated)
	suite.Equal("alice@new.example.com", updated.Email)

	w = suite.request("PUT", "/api/v1/users/"+suite.alice.ID, suite.adminToken, gin.H{"is_active": false})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request("POST", "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "password123"})
	suite.Equal(http.StatusForbidden, w.Code, "inactive users cannot log in")
}

func (suite *HandlersTestSuite) TestInvalidIDIsBadRequest() {
	w := suite.request("GET", "/api/v1/tools/not-a-uuid", "", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_INPUT", suite.errorCode(w))
}

func (suite *HandlersTestSuite) TestHealth() {
	w := suite.request("GET", "/health", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var body map[string]interface{}
	suite.decode(w, &body)
	suite.Equal("ok", body["status"])
	suite.Equal(false, body["search"])
}

func (suite *HandlersTestSuite) TestAdminRoutesRejectRegularUsers() {
	tool := suite.createTool("Sora", "video")
	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/users"},
		{"POST", "/api/v1/tools"},
		{"PUT", "/api/v1/tools/" + tool.ID},
		{"DELETE", "/api/v1/tools/" + tool.ID},
		{"GET", "/api/v1/tools/" + tool.ID + "/shares"},
		{"POST", "/api/v1/tools/" + tool.ID + "/versions"},
		{"POST", "/api/v1/categories"},
		{"POST", "/api/v1/tags"},
		{"GET", "/api/v1/permissions"},
		{"GET", "/api/v1/roles"},
		{"POST", "/api/v1/configs"},
		{"GET", "/api/v1/logs"},
	} {
		w := suite.request(route.method, route.path, suite.aliceToken, gin.H{})
		suite.Equal(http.StatusForbidden, w.Code, "%s %s", route.method, route.path)
		suite.Equal("FORBIDDEN", suite.errorCode(w))
	}

	_, err := suite.store.Tools.Get(context.Background(), tool.ID)
	suite.NoError(err, "rejected requests leave the tool in place")
}
