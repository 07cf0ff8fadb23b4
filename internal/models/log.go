package models

// Log levels accepted by the logs collection
var LogLevels = []string{"debug", "info", "warning", "error", "critical"}

// LogEntry is an application event reported through the API
type LogEntry struct {
	Base
	Level     string         `gorm:"index;size:16;not null" json:"level"`
	Module    string         `gorm:"index;size:64" json:"module"`
	Action    string         `gorm:"index;size:64" json:"action"`
	UserID    string         `gorm:"index;size:36" json:"user_id,omitempty"`
	IPAddress string         `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent string         `gorm:"type:text" json:"user_agent,omitempty"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Details   map[string]any `gorm:"type:text;serializer:json" json:"details,omitempty"`
}

func (LogEntry) TableName() string {
	return "logs"
}

func (l *LogEntry) Validate() error {
	if err := required("message", l.Message); err != nil {
		return err
	}
	for _, lvl := range LogLevels {
		if l.Level == lvl {
			return nil
		}
	}
	return invalid("level", "level must be one of debug, info, warning, error, critical")
}

// LogStats summarizes the logs collection
type LogStats struct {
	Total    int64            `json:"total"`
	Today    int64            `json:"today"`
	ByLevel  map[string]int64 `json:"by_level"`
	ByModule map[string]int64 `json:"by_module"`
	ByAction map[string]int64 `json:"by_action"`
}
