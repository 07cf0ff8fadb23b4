package models

// Permission is a node in the permission tree. Level is parent.Level+1, roots are 0.
type Permission struct {
	Base
	Name        string  `gorm:"not null" json:"name"`
	Code        string  `gorm:"uniqueIndex:idx_permissions_code;size:128;not null" json:"code"`
	Description string  `gorm:"type:text" json:"description"`
	ParentID    *string `gorm:"index;size:36" json:"parent_id,omitempty"`
	Level       int     `json:"level"`
}

func (p *Permission) Validate() error {
	if err := firstError(required("name", p.Name), required("code", p.Code)); err != nil {
		return err
	}
	if p.Level < 0 {
		return invalid("level", "level cannot be negative")
	}
	return nil
}

// Role bundles permission ids
type Role struct {
	Base
	Name        string      `gorm:"not null" json:"name"`
	Code        string      `gorm:"uniqueIndex:idx_roles_code;size:128;not null" json:"code"`
	Description string      `gorm:"type:text" json:"description"`
	Permissions StringArray `gorm:"type:text" json:"permissions"`
}

func (r *Role) Validate() error {
	return firstError(required("name", r.Name), required("code", r.Code))
}

// SystemConfig is a keyed JSON value. Private entries are admin only.
type SystemConfig struct {
	Base
	Key         string `gorm:"uniqueIndex:idx_system_configs_key;size:128;not null" json:"key"`
	Value       any    `gorm:"type:text;serializer:json" json:"value"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `gorm:"index" json:"is_public"`
}

func (c *SystemConfig) Validate() error {
	return required("key", c.Key)
}
