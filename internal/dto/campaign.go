package dto

import "time"

// CreateCampaignRequest starts a new campaign (workflow step 1).
type CreateCampaignRequest struct {
	Title       string    `json:"title" validate:"required,max=100"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// UpdateCampaignRequest edits campaign metadata.
type UpdateCampaignRequest struct {
	Title       string    `json:"title" validate:"required,max=100"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// CampaignFilter narrows campaign listings.
type CampaignFilter struct {
	Search   string
	Page     int
	PageSize int
}

// WorkflowStepRequest marks a workflow step as completed.
type WorkflowStepRequest struct {
	Step int `json:"step" validate:"required,min=1,max=5"`
}

// WorkflowStatusResponse reports the campaign's lifecycle position.
type WorkflowStatusResponse struct {
	CampaignID     string  `json:"campaign_id"`
	CurrentStep    int     `json:"current_step"`
	CompletedSteps []int   `json:"completed_steps"`
	Completed      bool    `json:"completed"`
	CanAdvance     bool    `json:"can_advance"`
	BlockedReason  *string `json:"blocked_reason,omitempty"`
}
