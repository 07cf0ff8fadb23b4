package models

import "time"

// Version is a release of a tool. version_number is unique per tool.
type Version struct {
	Base
	ToolID           string      `gorm:"uniqueIndex:idx_versions_tool_number;size:36;not null" json:"tool_id"`
	VersionNumber    string      `gorm:"uniqueIndex:idx_versions_tool_number;size:64;not null" json:"version_number"`
	ReleaseDate      time.Time   `gorm:"index" json:"release_date"`
	Changes          StringArray `gorm:"type:text" json:"changes"`
	Features         StringArray `gorm:"type:text" json:"features"`
	Improvements     StringArray `gorm:"type:text" json:"improvements"`
	BugFixes         StringArray `gorm:"type:text" json:"bug_fixes"`
	IsStable         bool        `json:"is_stable"`
	DownloadURL      string      `gorm:"type:text" json:"download_url,omitempty"`
	DocumentationURL string      `gorm:"type:text" json:"documentation_url,omitempty"`
}

func (v *Version) Validate() error {
	return firstError(required("tool_id", v.ToolID), required("version_number", v.VersionNumber))
}

// Tutorial is a user-authored guide for a tool
type Tutorial struct {
	Base
	ToolID   string      `gorm:"index;size:36;not null" json:"tool_id"`
	AuthorID string      `gorm:"index;size:36;not null" json:"author_id"`
	Title    string      `gorm:"not null" json:"title"`
	Content  string      `gorm:"type:text" json:"content"`
	Steps    StringArray `gorm:"type:text" json:"steps"`
}

func (t *Tutorial) Validate() error {
	return firstError(
		required("title", t.Title),
		required("content", t.Content),
		required("tool_id", t.ToolID),
		required("author_id", t.AuthorID),
	)
}
