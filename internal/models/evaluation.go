package models

import "time"

// Evaluation is the anonymous post-meeting feedback slot created for each
// participant when the notification email goes out. The token is the only
// credential: one-shot, campaign-agnostic, never tied to a login.
type Evaluation struct {
	ID          string     `db:"id" json:"id"`
	EmployeeID  string     `db:"employee_id" json:"employee_id"`
	PairID      string     `db:"pair_id" json:"pair_id"`
	Token       string     `db:"token" json:"-"`
	Rating      *int       `db:"rating" json:"rating,omitempty"`
	Comment     string     `db:"comment" json:"comment"`
	Used        bool       `db:"used" json:"used"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
