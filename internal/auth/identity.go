package auth

import (
	apperrors "github.com/zfogg/aihub/backend/internal/errors"
)

// Identity is the caller resolved from a bearer token
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// RequireAdmin fails with Forbidden unless the identity is an administrator
func RequireAdmin(id *Identity) error {
	if id == nil {
		return apperrors.Unauthenticated("authentication required")
	}
	if !id.IsAdmin {
		return apperrors.Forbidden("administrator privileges required")
	}
	return nil
}

// RequireOwnerOrAdmin fails with Forbidden unless the identity owns the
// resource or is an administrator
func RequireOwnerOrAdmin(id *Identity, ownerID string) error {
	if id == nil {
		return apperrors.Unauthenticated("authentication required")
	}
	if id.IsAdmin || (ownerID != "" && id.ID == ownerID) {
		return nil
	}
	return apperrors.Forbidden("only the owner or an administrator may do this")
}
