package models

import "time"

// Tag is a label unique per (owner, name). UsageCount is only populated by
// the popular-tags query.
type Tag struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	UserID     int64     `json:"userId"`
	UsageCount int       `json:"usage_count,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
