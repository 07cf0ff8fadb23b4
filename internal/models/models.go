// Package models defines the documents stored in each catalog collection.
package models

// All returns one zero value per collection, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Tag{},
		&Tool{},
		&Rating{},
		&RatingStats{},
		&Share{},
		&ShareStats{},
		&Favorite{},
		&ToolView{},
		&Subscription{},
		&Version{},
		&Tutorial{},
		&Permission{},
		&Role{},
		&SystemConfig{},
		&LogEntry{},
	}
}
