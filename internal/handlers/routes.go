package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/auth"
	"github.com/zfogg/aihub/backend/internal/middleware"
)

// RegisterRoutes mounts every /api/v1 endpoint on api. The group is expected to
// resolve optional identities already; authLimiter guards register and login.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, tokens auth.TokenValidator, authLimiter gin.HandlerFunc) {
	requireAuth := middleware.RequireAuth(tokens)
	requireAdmin := middleware.RequireAdmin()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authLimiter, h.Register)
		authGroup.POST("/login", authLimiter, h.Login)
		authGroup.GET("/me", requireAuth, h.Me)
	}

	users := api.Group("/users")
	{
		users.GET("", requireAuth, requireAdmin, h.ListUsers)
		users.GET("/me/shares", requireAuth, h.MyShares)
		users.GET("/me/subscriptions", requireAuth, h.MySubscriptions)
		users.GET("/me/favorites", requireAuth, h.MyFavorites)
		users.GET("/:id", requireAuth, h.GetUser)
		users.PUT("/:id", requireAuth, h.UpdateUser)
		users.DELETE("/:id", requireAuth, requireAdmin, h.DeleteUser)
	}

	tools := api.Group("/tools")
	{
		tools.GET("", h.ListTools)
		tools.POST("", requireAuth, requireAdmin, h.CreateTool)
		tools.GET("/:id", h.GetTool)
		tools.PUT("/:id", requireAuth, requireAdmin, h.UpdateTool)
		tools.DELETE("/:id", requireAuth, requireAdmin, h.DeleteTool)

		tools.POST("/:id/ratings", requireAuth, h.CreateRating)
		tools.GET("/:id/ratings", h.ListRatings)
		tools.GET("/:id/ratings/stats", h.GetRatingStats)
		tools.GET("/:id/ratings/:rating_id", h.GetRating)
		tools.PUT("/:id/ratings/:rating_id", requireAuth, h.UpdateRating)
		tools.DELETE("/:id/ratings/:rating_id", requireAuth, h.DeleteRating)

		tools.POST("/:id/shares", requireAuth, h.CreateShare)
		tools.GET("/:id/shares", requireAuth, requireAdmin, h.ListShares)
		tools.GET("/:id/shares/stats", h.GetShareStats)

		tools.POST("/:id/favorite", requireAuth, h.FavoriteTool)
		tools.DELETE("/:id/favorite", requireAuth, h.UnfavoriteTool)

		tools.POST("/:id/subscriptions", requireAuth, h.Subscribe)
		tools.GET("/:id/subscriptions", requireAuth, requireAdmin, h.ListToolSubscriptions)
		tools.GET("/:id/subscribers/count", h.SubscriberCount)

		tools.GET("/:id/versions", h.ListVersions)
		tools.GET("/:id/versions/latest", h.LatestVersion)
		tools.GET("/:id/versions/:version_id", h.GetVersion)
		tools.POST("/:id/versions", requireAuth, requireAdmin, h.CreateVersion)
		tools.PUT("/:id/versions/:version_id", requireAuth, requireAdmin, h.UpdateVersion)
		tools.DELETE("/:id/versions/:version_id", requireAuth, requireAdmin, h.DeleteVersion)

		tools.GET("/:id/tutorials", h.ListTutorials)
		tools.POST("/:id/tutorials", requireAuth, h.CreateTutorial)

		tools.GET("/:id/recommendations", requireAuth, h.GetToolRecommendations)
	}

	subscriptions := api.Group("/subscriptions", requireAuth)
	{
		subscriptions.PUT("/:id", h.UpdateSubscription)
		subscriptions.DELETE("/:id", h.DeleteSubscription)
	}

	tutorials := api.Group("/tutorials")
	{
		tutorials.GET("/:id", h.GetTutorial)
		tutorials.PUT("/:id", requireAuth, h.UpdateTutorial)
		tutorials.DELETE("/:id", requireAuth, h.DeleteTutorial)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", requireAuth, requireAdmin, h.CreateCategory)
		categories.PUT("/:id", requireAuth, requireAdmin, h.UpdateCategory)
		categories.DELETE("/:id", requireAuth, requireAdmin, h.DeleteCategory)
	}

	tags := api.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/popular", h.PopularTags)
		tags.GET("/:id", h.GetTag)
		tags.POST("", requireAuth, requireAdmin, h.CreateTag)
		tags.PUT("/:id", requireAuth, requireAdmin, h.UpdateTag)
		tags.DELETE("/:id", requireAuth, requireAdmin, h.DeleteTag)
	}

	api.GET("/recommendations", requireAuth, h.GetRecommendations)

	search := api.Group("/search")
	{
		search.POST("", h.SearchTools)
		search.GET("/suggestions", h.SearchSuggestions)
	}

	permissions := api.Group("/permissions", requireAuth, requireAdmin)
	{
		permissions.GET("", h.ListPermissions)
		permissions.GET("/:id", h.GetPermission)
		permissions.POST("", h.CreatePermission)
		permissions.PUT("/:id", h.UpdatePermission)
		permissions.DELETE("/:id", h.DeletePermission)
	}

	roles := api.Group("/roles", requireAuth, requireAdmin)
	{
		roles.GET("", h.ListRoles)
		roles.GET("/:id", h.GetRole)
		roles.POST("", h.CreateRole)
		roles.PUT("/:id", h.UpdateRole)
		roles.DELETE("/:id", h.DeleteRole)
	}

	configs := api.Group("/configs")
	{
		configs.GET("", h.ListConfigs)
		configs.POST("/batch", h.BatchConfigs)
		configs.GET("/:key", h.GetConfig)
		configs.POST("", requireAuth, requireAdmin, h.CreateConfig)
		configs.PUT("/:key", requireAuth, requireAdmin, h.UpdateConfig)
		configs.DELETE("/:key", requireAuth, requireAdmin, h.DeleteConfig)
	}

	logs := api.Group("/logs", requireAuth)
	{
		logs.POST("", h.CreateLog)
		logs.GET("", requireAdmin, h.ListLogs)
		logs.GET("/stats", requireAdmin, h.LogStats)
		logs.GET("/:id", requireAdmin, h.GetLog)
		logs.DELETE("/:id", requireAdmin, h.DeleteLog)
	}
}
