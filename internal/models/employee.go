package models

import "time"

// Employee belongs to exactly one campaign roster. Employees are created by
// bulk import and removed only by roster reset or campaign deletion.
type Employee struct {
	ID          string    `db:"id" json:"id"`
	CampaignID  string    `db:"campaign_id" json:"campaign_id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	ArrivalDate time.Time `db:"arrival_date" json:"arrival_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// EmployeeAttribute is one free-form key/value datum imported alongside an
// employee. At most one value exists per (employee, key) within a campaign.
// Values are plain strings; the matching evaluator only needs equality.
type EmployeeAttribute struct {
	ID         string `db:"id" json:"id"`
	EmployeeID string `db:"employee_id" json:"employee_id"`
	CampaignID string `db:"campaign_id" json:"campaign_id"`
	Key        string `db:"attribute_key" json:"attribute_key"`
	Value      string `db:"attribute_value" json:"attribute_value"`
}
