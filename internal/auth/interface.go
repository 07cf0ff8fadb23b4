package auth

import (
	"context"

	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
)

// TokenValidator resolves bearer tokens. The auth middleware depends on this.
type TokenValidator interface {
	ParseToken(tokenString string) (*Identity, error)
}

// UserStore is the slice of the users collection the service needs
type UserStore interface {
	Insert(ctx context.Context, doc *models.User) error
	FindOne(ctx context.Context, scopes ...store.Scope) (*models.User, error)
}

var (
	_ TokenValidator = (*Service)(nil)
	_ UserStore      = (*store.Collection[models.User])(nil)
)
