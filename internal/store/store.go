// Package store is the document store adapter: one gorm-backed collection per
// catalog entity, plus the filter scopes used to query them.
package store

import (
	"context"

	"github.com/zfogg/aihub/backend/internal/models"
	"gorm.io/gorm"
)

// Store groups every collection over a single connection
type Store struct {
	db *gorm.DB

	Users         *Collection[models.User]
	Tools         *Collection[models.Tool]
	Categories    *Collection[models.Category]
	Tags          *Collection[models.Tag]
	Ratings       *Collection[models.Rating]
	RatingStats   *Collection[models.RatingStats]
	Shares        *Collection[models.Share]
	ShareStats    *Collection[models.ShareStats]
	Favorites     *Collection[models.Favorite]
	Views         *Collection[models.ToolView]
	Subscriptions *Collection[models.Subscription]
	Versions      *Collection[models.Version]
	Tutorials     *Collection[models.Tutorial]
	Permissions   *Collection[models.Permission]
	Roles         *Collection[models.Role]
	Configs       *Collection[models.SystemConfig]
	Logs          *Collection[models.LogEntry]
}

// New binds every collection to db
func New(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewCollection[models.User](db),
		Tools:         NewCollection[models.Tool](db),
		Categories:    NewCollection[models.Category](db),
		Tags:          NewCollection[models.Tag](db),
		Ratings:       NewCollection[models.Rating](db),
		RatingStats:   NewCollection[models.RatingStats](db),
		Shares:        NewCollection[models.Share](db),
		ShareStats:    NewCollection[models.ShareStats](db),
		Favorites:     NewCollection[models.Favorite](db),
		Views:         NewCollection[models.ToolView](db),
		Subscriptions: NewCollection[models.Subscription](db),
		Versions:      NewCollection[models.Version](db),
		Tutorials:     NewCollection[models.Tutorial](db),
		Permissions:   NewCollection[models.Permission](db),
		Roles:         NewCollection[models.Role](db),
		Configs:       NewCollection[models.SystemConfig](db),
		Logs:          NewCollection[models.LogEntry](db),
	}
}

// DB exposes the underlying connection for migrations and health checks
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks the store is reachable
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translate(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return translate(err)
	}
	return nil
}
