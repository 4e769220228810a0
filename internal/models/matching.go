package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CriteriaStatus is the lifecycle state of a campaign's criteria set.
// Criteria are editable while Draft and become Locked, irreversibly, the
// moment the first pair is confirmed for the campaign.
type CriteriaStatus string

const (
	CriteriaDraft  CriteriaStatus = "draft"
	CriteriaLocked CriteriaStatus = "locked"
)

// MatchingCriterion is a single (attribute key, rule) constraint saved for a
// campaign. Unique per (campaign, attribute key). Status transitions are
// campaign-scoped: one statement locks every row at once.
type MatchingCriterion struct {
	ID           string         `db:"id" json:"id"`
	CampaignID   string         `db:"campaign_id" json:"campaign_id"`
	AttributeKey string         `db:"attribute_key" json:"attribute_key"`
	Rule         string         `db:"rule" json:"rule"`
	Status       CriteriaStatus `db:"status" json:"status"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Email delivery states for a confirmed pair.
const (
	EmailStatusPending = "pending"
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
)

// EmployeePair is the permanent record of one confirmed pairing. The pair is
// unordered: the repository stores ids normalized so (campaign, e1, e2) and
// (campaign, e2, e1) collide on the same uniqueness constraint. The criteria
// snapshot freezes the rules in force at confirmation time for audit.
type EmployeePair struct {
	ID               string         `db:"id" json:"id"`
	CampaignID       string         `db:"campaign_id" json:"campaign_id"`
	Employee1ID      string         `db:"employee1_id" json:"employee_1_id"`
	Employee2ID      string         `db:"employee2_id" json:"employee_2_id"`
	CriteriaSnapshot types.JSONText `db:"criteria_snapshot" json:"matching_criteria_snapshot"`
	EmailStatus      string         `db:"email_status" json:"email_status"`
	EmailError       *string        `db:"email_error" json:"email_error,omitempty"`
	EmailSentAt      *time.Time     `db:"email_sent_at" json:"email_sent_at,omitempty"`
	CreatedBy        string         `db:"created_by" json:"created_by"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`

	// Joined employee info for history/listing queries.
	Employee1Name  string `db:"employee1_name" json:"employee_1_name,omitempty"`
	Employee1Email string `db:"employee1_email" json:"employee_1_email,omitempty"`
	Employee2Name  string `db:"employee2_name" json:"employee_2_name,omitempty"`
	Employee2Email string `db:"employee2_email" json:"employee_2_email,omitempty"`
}
