package models

// Tool is a catalog entry
type Tool struct {
	Base
	Name         string      `gorm:"index;not null" json:"name"`
	Description  string      `gorm:"type:text" json:"description"`
	URL          string      `gorm:"type:text" json:"url"`
	CategoryID   string      `gorm:"index;size:64" json:"category"`
	Subcategory  string      `json:"subcategory,omitempty"`
	Tags         StringArray `gorm:"type:text" json:"tags"`
	Icon         string      `json:"icon,omitempty"`
	IsFree       bool        `gorm:"index" json:"is_free"`
	IsFeatured   bool        `gorm:"index" json:"is_featured"`
	Rating       float64     `json:"rating"`
	Views        int64       `json:"views"`
	Likes        int64       `json:"likes"`
	IsActive     bool        `gorm:"index" json:"is_active"`
	RelatedTools StringArray `gorm:"type:text" json:"related_tools"`
}

func (t *Tool) Validate() error {
	if err := firstError(required("name", t.Name), required("url", t.URL)); err != nil {
		return err
	}
	if !validScore(t.Rating) {
		return invalid("rating", "rating must be between 0 and 5")
	}
	if t.Views < 0 || t.Likes < 0 {
		return invalid("views", "counters cannot be negative")
	}
	return nil
}

// Category groups tools for browsing
type Category struct {
	Base
	Name        string `gorm:"uniqueIndex:idx_categories_name;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `json:"icon,omitempty"`
	Order       int    `gorm:"column:sort_order;index" json:"order"`
	IsActive    bool   `json:"is_active"`
}

func (c *Category) Validate() error {
	return required("name", c.Name)
}

// Tag labels tools. ToolCount is maintained from the tools collection.
type Tag struct {
	Base
	Name        string `gorm:"uniqueIndex:idx_tags_name;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	ToolCount   int64  `gorm:"index" json:"tool_count"`
}

func (t *Tag) Validate() error {
	if err := required("name", t.Name); err != nil {
		return err
	}
	if t.ToolCount < 0 {
		return invalid("tool_count", "tool_count cannot be negative")
	}
	return nil
}
