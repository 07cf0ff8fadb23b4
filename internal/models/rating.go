package models

import "time"

// Rating is one user's score for one tool. (tool_id, user_id) is unique.
type Rating struct {
	Base
	ToolID  string      `gorm:"uniqueIndex:idx_ratings_tool_user;size:36;not null" json:"tool_id"`
	UserID  string      `gorm:"uniqueIndex:idx_ratings_tool_user;size:36;not null" json:"user_id"`
	Score   float64     `gorm:"not null" json:"score"`
	Comment string      `gorm:"type:text" json:"comment,omitempty"`
	Tags    StringArray `gorm:"type:text" json:"tags"`
}

func (r *Rating) Validate() error {
	if err := firstError(required("tool_id", r.ToolID), required("user_id", r.UserID)); err != nil {
		return err
	}
	if !validScore(r.Score) {
		return invalid("score", "score must be between 0 and 5")
	}
	return nil
}

// RatingStats is the materialized view of a tool's ratings
type RatingStats struct {
	ToolID            string           `gorm:"primaryKey;size:36" json:"tool_id"`
	AverageScore      float64          `json:"average_score"`
	TotalRatings      int64            `json:"total_ratings"`
	ScoreDistribution map[string]int64 `gorm:"type:text;serializer:json" json:"score_distribution"`
	TagStats          map[string]int64 `gorm:"type:text;serializer:json" json:"tag_stats"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (RatingStats) TableName() string {
	return "rating_stats"
}

func (s *RatingStats) Validate() error {
	if err := required("tool_id", s.ToolID); err != nil {
		return err
	}
	if s.TotalRatings < 0 {
		return invalid("total_ratings", "total_ratings cannot be negative")
	}
	return nil
}

// Share is an append-only record of a tool being shared to a platform
type Share struct {
	Base
	ToolID   string `gorm:"index;size:36;not null" json:"tool_id"`
	UserID   string `gorm:"index;size:36;not null" json:"user_id"`
	Platform string `gorm:"index;size:64;not null" json:"platform"`
	ShareURL string `gorm:"type:text" json:"share_url,omitempty"`
}

func (s *Share) Validate() error {
	return firstError(required("tool_id", s.ToolID), required("user_id", s.UserID), required("platform", s.Platform))
}

// ShareStats is the materialized view of a tool's shares
type ShareStats struct {
	ToolID        string           `gorm:"primaryKey;size:36" json:"tool_id"`
	TotalShares   int64            `json:"total_shares"`
	PlatformStats map[string]int64 `gorm:"type:text;serializer:json" json:"platform_stats"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (ShareStats) TableName() string {
	return "share_stats"
}

func (s *ShareStats) Validate() error {
	return required("tool_id", s.ToolID)
}
