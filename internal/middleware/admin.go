package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/auth"
	"github.com/zfogg/aihub/backend/internal/errors"
	"github.com/zfogg/aihub/backend/internal/util"
)

// RequireAdmin middleware ensures the request is authenticated and the user is an admin.
// It must run after RequireAuth. The admin flag comes from the verified token,
// so no store lookup happens here.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := util.GetIdentity(c)
		if err := auth.RequireAdmin(identity); err != nil {
			util.RespondWithAPIError(c, errors.FromError(err, ""))
			return
		}
		c.Next()
	}
}
