package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/auth"
	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/util"
	"go.uber.org/zap"
)

// bearerToken returns the credential of an "Authorization: Bearer <token>"
// header. present is false when no Authorization header was sent.
func bearerToken(c *gin.Context) (token string, present bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}

func authenticate(c *gin.Context, tokens auth.TokenValidator, required bool) {
	token, present := bearerToken(c)
	if !present {
		if required {
			util.RespondUnauthorized(c, "missing bearer token")
			return
		}
		c.Next()
		return
	}

	identity, err := tokens.ParseToken(token)
	if err != nil {
		logger.Log.Debug("Rejected bearer token",
			logger.WithIP(c.ClientIP()),
			zap.Error(err),
		)
		if required {
			util.RespondUnauthorized(c, "invalid or expired token")
			return
		}
		c.Next()
		return
	}

	util.SetIdentity(c, identity)
	c.Next()
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(tokens auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, tokens, true)
	}
}

// OptionalAuth resolves the caller when a valid token is sent. It never
// rejects a request; a bad token leaves the caller anonymous.
func OptionalAuth(tokens auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, tokens, false)
	}
}
