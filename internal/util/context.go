package util

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/auth"
)

// Keys set on the gin context by the middleware chain
const (
	IdentityKey  = "identity"
	UserIDKey    = "user_id"
	RequestIDKey = "request_id"
)

// SetIdentity stores the authenticated caller on c
func SetIdentity(c *gin.Context, identity *auth.Identity) {
	c.Set(IdentityKey, identity)
	c.Set(UserIDKey, identity.ID)
}

// GetIdentity returns the caller if a bearer token was verified for this request
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok && identity != nil
}

// RequireIdentity is GetIdentity that responds 401 when there is no caller
func RequireIdentity(c *gin.Context) (*auth.Identity, bool) {
	identity, ok := GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "authentication required")
		return nil, false
	}
	return identity, true
}

// GetUserIDFromContext returns the caller's id or "" for anonymous requests
func GetUserIDFromContext(c *gin.Context) string {
	if identity, ok := GetIdentity(c); ok {
		return identity.ID
	}
	return ""
}
