package models

import "time"

// Notification types and priorities for the in-app HR inbox.
const (
	NotificationTypeCampaign   = "campaign"
	NotificationTypeEvaluation = "evaluation"
	NotificationTypeSystem     = "system"

	NotificationPriorityLow    = "low"
	NotificationPriorityMedium = "medium"
	NotificationPriorityHigh   = "high"
)

// Notification is an in-app message for an HR manager.
type Notification struct {
	ID          string     `db:"id" json:"id"`
	RecipientID string     `db:"recipient_id" json:"recipient_id"`
	Title       string     `db:"title" json:"title"`
	Message     string     `db:"message" json:"message"`
	Type        string     `db:"type" json:"type"`
	Priority    string     `db:"priority" json:"priority"`
	IsRead      bool       `db:"is_read" json:"is_read"`
	RelatedType *string    `db:"related_type" json:"related_type,omitempty"`
	RelatedID   *string    `db:"related_id" json:"related_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
}
