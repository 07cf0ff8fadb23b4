package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/util"
)

func (suite *HandlersTestSuite) TestCategories() {
	w := suite.request("POST", "/api/v1/categories", suite.aliceToken, gin.H{"name": "Chat"})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("POST", "/api/v1/categories", suite.adminToken, gin.H{"name": "Writing", "order": 2})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	w = suite.request("POST", "/api/v1/categories", suite.adminToken, gin.H{"name": "Chat", "order": 1})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var chat models.Category
	suite.decode(w, &chat)
	suite.True(chat.IsActive)

	w = suite.request("POST", "/api/v1/categories", suite.adminToken, gin.H{"name": "Chat"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request("GET", "/api/v1/categories", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page util.ListResponse[models.Category]
	suite.decode(w, &page)
	suite.Require().Len(page.Items, 2)
	suite.Equal("Chat", page.Items[0].Name, "ordered by sort order")

	w = suite.request("POST", "/api/v1/tools", suite.adminToken, gin.H{
		"name":     "ChatGPT",
		"url":      "https://chat.openai.com",
		"category": chat.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.request("DELETE", "/api/v1/categories/"+chat.ID, suite.adminToken, nil)
	suite.Equal(http.StatusConflict, w.Code, "categories in use cannot be deleted")

	w = suite.request("PUT", "/api/v1/categories/"+chat.ID, suite.adminToken, gin.H{"description": "Assistants"})
	suite.Require().Equal(http.StatusOK, w.Code)
	chat = models.Category{}
	suite.decode(w, &chat)
	suite.Equal("Assistants", chat.Description)
	suite.Equal("Chat", chat.Name)
}

func (suite *HandlersTestSuite) TestTags() {
	suite.createTool("ChatGPT", "chat", "writing")
	suite.createTool("Claude", "chat")

	for _, name := range []string{"chat", "writing", "unused"} {
		w := suite.request("POST", "/api/v1/tags", suite.adminToken, gin.H{"name": name})
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := suite.request("GET", "/api/v1/tags/popular?limit=2", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var popular []models.Tag
	suite.decode(w, &popular)
	suite.Require().Len(popular, 2)
	suite.Equal("chat", popular[0].Name)
	suite.Equal(int64(2), popular[0].ToolCount)
	suite.Equal("writing", popular[1].Name)

	w = suite.request("GET", "/api/v1/tags", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page util.ListResponse[models.Tag]
	suite.decode(w, &page)
	suite.Equal(int64(3), page.Total)

	var chatID, unusedID string
	for _, tag := range page.Items {
		switch tag.Name {
		case "chat":
			chatID = tag.ID
		case "unused":
			unusedID = tag.ID
		}
	}

	w = suite.request("DELETE", "/api/v1/tags/"+chatID, suite.adminToken, nil)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request("DELETE", "/api/v1/tags/"+unusedID, suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestPermissionTree() {
	w := suite.request("POST", "/api/v1/permissions", suite.aliceToken, gin.H{"name": "Tools", "code": "tools"})
	suite.Equal(http.StatusForbidden, w.Code)

	create := func(body gin.H) models.Permission {
		w := suite.request("POST", "/api/v1/permissions", suite.adminToken, body)
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
		var perm models.Permission
		suite.decode(w, &perm)
		return perm
	}

	root := create(gin.H{"name": "Tools", "code": "tools"})
	write := create(gin.H{"name": "Write tools", "code": "tools.write", "parent_id": root.ID})
	del := create(gin.H{"name": "Delete tools", "code": "tools.write.delete", "parent_id": write.ID})
	other := create(gin.H{"name": "Users", "code": "users"})

	suite.Equal(0, root.Level)
	suite.Equal(1, write.Level)
	suite.Equal(2, del.Level)

	w = suite.request("POST", "/api/v1/permissions", suite.adminToken, gin.H{"name": "Dup", "code": "tools"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request("PUT", "/api/v1/permissions/"+root.ID, suite.adminToken, gin.H{"parent_id": del.ID})
	suite.Equal(http.StatusBadRequest, w.Code, "a node cannot move under its own subtree")

	w = suite.request("PUT", "/api/v1/permissions/"+write.ID, suite.adminToken, gin.H{"parent_id": other.ID})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	moved, err := suite.store.Permissions.Get(context.Background(), del.ID)
	suite.Require().NoError(err)
	suite.Equal(2, moved.Level, "the subtree keeps parent level + 1")

	w = suite.request("DELETE", "/api/v1/permissions/"+write.ID, suite.adminToken, nil)
	suite.Equal(http.StatusConflict, w.Code, "permissions with children cannot be deleted")

	w = suite.request("POST", "/api/v1/roles", suite.adminToken, gin.H{
		"name":        "Editor",
		"code":        "editor",
		"permissions": []string{del.ID},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.request("DELETE", "/api/v1/permissions/"+del.ID, suite.adminToken, nil)
	suite.Equal(http.StatusConflict, w.Code, "permissions granted by a role cannot be deleted")

	w = suite.request("DELETE", "/api/v1/permissions/"+root.ID, suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestRoles() {
	w := suite.request("POST", "/api/v1/roles", suite.adminToken, gin.H{
		"name":        "Ghost",
		"code":        "ghost",
		"permissions": []string{"00000000-0000-0000-0000-000000000000"},
	})
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	var errResp util.ErrorResponse
	suite.decode(w, &errResp)
	suite.Equal("permissions", errResp.Field)

	w = suite.request("POST", "/api/v1/roles", suite.adminToken, gin.H{"name": "Reviewer", "code": "reviewer"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var role models.Role
	suite.decode(w, &role)

	w = suite.request("PUT", "/api/v1/users/"+suite.bob.ID, suite.adminToken, gin.H{"role_id": role.ID})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request("DELETE", "/api/v1/roles/"+role.ID, suite.adminToken, nil)
	suite.Equal(http.StatusConflict, w.Code, "held roles cannot be deleted")

	w = suite.request("GET", "/api/v1/roles", suite.bobToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestConfigVisibility() {
	for _, body := range []gin.H{
		{"key": "site.name", "value": "AI Hub", "is_public": true},
		{"key": "smtp.password", "value": "hunter2"},
	} {
		w := suite.request("POST", "/api/v1/configs", suite.adminToken, body)
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := suite.request("POST", "/api/v1/configs", suite.adminToken, gin.H{"key": "site.name"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request("GET", "/api/v1/configs", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page util.ListResponse[models.SystemConfig]
	suite.decode(w, &page)
	suite.Require().Len(page.Items, 1)
	suite.Equal("site.name", page.Items[0].Key)
	suite.Equal("AI Hub", page.Items[0].Value)

	w = suite.request("GET", "/api/v1/configs", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	page = util.ListResponse[models.SystemConfig]{}
	suite.decode(w, &page)
	suite.Len(page.Items, 2)

	w = suite.request("GET", "/api/v1/configs/smtp.password", suite.aliceToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("GET", "/api/v1/configs/smtp.password", suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request("POST", "/api/v1/configs/batch", "", gin.H{"keys": []string{"site.name", "smtp.password", "missing"}})
	suite.Require().Equal(http.StatusOK, w.Code)
	var batch []models.SystemConfig
	suite.decode(w, &batch)
	suite.Require().Len(batch, 1)
	suite.Equal("site.name", batch[0].Key)

	w = suite.request("PUT", "/api/v1/configs/site.name", suite.adminToken, gin.H{"value": map[string]interface{}{"en": "AI Hub"}})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request("DELETE", "/api/v1/configs/smtp.password", suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.request("DELETE", "/api/v1/configs/smtp.password", suite.adminToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestLogs() {
	for _, body := range []gin.H{
		{"level": "info", "module": "tools", "action": "view", "message": "opened"},
		{"level": "error", "module": "tools", "action": "share", "message": "failed"},
		{"level": "info", "module": "auth", "action": "login", "message": "signed in"},
	} {
		w := suite.request("POST", "/api/v1/logs", suite.aliceToken, body)
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := suite.request("POST", "/api/v1/logs", suite.aliceToken, gin.H{"level": "fatal", "message": "nope"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request("GET", "/api/v1/logs", suite.aliceToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("GET", "/api/v1/logs?module=tools", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page util.ListResponse[models.LogEntry]
	suite.decode(w, &page)
	suite.Equal(int64(2), page.Total)
	for _, entry := range page.Items {
		suite.Equal(suite.alice.ID, entry.UserID)
	}

	w = suite.request("GET", "/api/v1/logs?start_date=2030-01-01T00:00:00Z", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	page = util.ListResponse[models.LogEntry]{}
	suite.decode(w, &page)
	suite.Zero(page.Total)

	w = suite.request("GET", "/api/v1/logs/stats", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stats models.LogStats
	suite.decode(w, &stats)
	suite.Equal(int64(3), stats.Total)
	suite.Equal(int64(3), stats.Today)
	suite.Equal(int64(2), stats.ByLevel["info"])
	suite.Equal(int64(1), stats.ByLevel["error"])
	suite.Equal(int64(2), stats.ByModule["tools"])
	suite.Equal(int64(1), stats.ByAction["login"])
}
