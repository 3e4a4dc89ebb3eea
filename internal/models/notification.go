package models

import "time"

// Notification types emitted by engagement actions. Unfollow, unlike and
// comment actions emit none.
const (
	NotificationTypeFollow = "follow"
	NotificationTypeLike   = "like"
)

// Notification represents a directed engagement event (PostgreSQL).
// FromID and ToID are MongoDB user ObjectIDs stored as hex strings.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FromID    string    `json:"from" gorm:"size:24;index"`
	ToID      string    `json:"to" gorm:"size:24;index"`
	Type      string    `json:"type" gorm:"size:20"` // follow, like
	Read      bool      `json:"read" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// EnrichedNotification includes the sender's public display fields.
// The outer From field shadows the embedded FromID in the JSON output;
// when the sender no longer exists the key is omitted entirely.
type EnrichedNotification struct {
	Notification
	From *UserCompact `json:"from,omitempty"`
}
