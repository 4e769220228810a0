package models

import (
	"time"

	"github.com/lib/pq"
)

// Campaign is a time-boxed coffee-meeting initiative owned by one HR
// manager. The campaign owns its roster, criteria, pairs and evaluations.
type Campaign struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	HRManagerID string    `db:"hr_manager_id" json:"hr_manager_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Workflow steps of a campaign, in order. Steps advance as side effects of
// the owning module (roster upload completes step 2, criteria save step 3,
// pair confirmation step 4, evaluation results step 5).
const (
	WorkflowStepCreate     = 1
	WorkflowStepUpload     = 2
	WorkflowStepCriteria   = 3
	WorkflowStepConfirm    = 4
	WorkflowStepEvaluation = 5

	WorkflowStepMin = WorkflowStepCreate
	WorkflowStepMax = WorkflowStepEvaluation
)

// CampaignWorkflow tracks the five-step campaign lifecycle.
type CampaignWorkflow struct {
	CampaignID     string        `db:"campaign_id" json:"campaign_id"`
	CurrentStep    int           `db:"current_step" json:"current_step"`
	CompletedSteps pq.Int64Array `db:"completed_steps" json:"completed_steps"`
	Completed      bool          `db:"completed" json:"completed"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// StepDone reports whether the given step has been completed.
func (w *CampaignWorkflow) StepDone(step int) bool {
	for _, s := range w.CompletedSteps {
		if int(s) == step {
			return true
		}
	}
	return false
}
