package models

// Favorite marks a tool as favorited by a user
type Favorite struct {
	Base
	ToolID string `gorm:"uniqueIndex:idx_favorites_tool_user;size:36;not null" json:"tool_id"`
	UserID string `gorm:"uniqueIndex:idx_favorites_tool_user;index;size:36;not null" json:"user_id"`
}

func (Favorite) TableName() string {
	return "favorites"
}

func (f *Favorite) Validate() error {
	return firstError(required("tool_id", f.ToolID), required("user_id", f.UserID))
}

// ToolView records that an authenticated user opened a tool
type ToolView struct {
	Base
	ToolID string `gorm:"index;size:36;not null" json:"tool_id"`
	UserID string `gorm:"index;size:36;not null" json:"user_id"`
}

func (ToolView) TableName() string {
	return "user_views"
}

func (v *ToolView) Validate() error {
	return firstError(required("tool_id", v.ToolID), required("user_id", v.UserID))
}

// Subscription asks for notifications about a tool
type Subscription struct {
	Base
	ToolID           string `gorm:"uniqueIndex:idx_subscriptions_tool_user;size:36;not null" json:"tool_id"`
	UserID           string `gorm:"uniqueIndex:idx_subscriptions_tool_user;index;size:36;not null" json:"user_id"`
	NotifyOnUpdates  bool   `json:"notify_on_updates"`
	NotifyOnComments bool   `json:"notify_on_comments"`
	NotifyOnRatings  bool   `json:"notify_on_ratings"`
}

func (s *Subscription) Validate() error {
	return firstError(required("tool_id", s.ToolID), required("user_id", s.UserID))
}

// Recommendation is computed per request and never stored
type Recommendation struct {
	UserID string  `json:"user_id,omitempty"`
	ToolID string  `json:"tool_id"`
	Score  float64 `json:"score"`
	Tool   *Tool   `json:"tool,omitempty"`
}
