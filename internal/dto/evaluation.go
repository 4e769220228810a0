package dto

import "time"

// EvaluationFormResponse renders the anonymous feedback form for a token.
type EvaluationFormResponse struct {
	Token         string `json:"token"`
	EmployeeName  string `json:"employee_name"`
	PartnerName   string `json:"partner_name"`
	CampaignTitle string `json:"campaign_title"`
	Used          bool   `json:"used"`
}

// SubmitEvaluationRequest records one employee's feedback.
type SubmitEvaluationRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// EvaluationStatisticsResponse aggregates feedback for a campaign.
type EvaluationStatisticsResponse struct {
	CampaignID           string   `json:"campaign_id"`
	TotalEvaluations     int      `json:"total_evaluations"`
	CompletedEvaluations int      `json:"completed_evaluations"`
	AverageRating        *float64 `json:"average_rating,omitempty"`
	CompletionRate       float64  `json:"completion_rate"`
}

// RecentEvaluationItem is a dashboard line for freshly submitted feedback.
type RecentEvaluationItem struct {
	CampaignID    string    `json:"campaign_id"`
	CampaignTitle string    `json:"campaign_title"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	SubmittedAt   time.Time `json:"submitted_at"`
}
