package dto

import "time"

// CriterionInput is one (attribute key, rule) entry in a criteria-save call.
type CriterionInput struct {
	AttributeKey string `json:"attribute_key" validate:"required"`
	Rule         string `json:"rule" validate:"required,oneof=same not_same"`
}

// SaveCriteriaRequest replaces the whole criteria set of a campaign.
type SaveCriteriaRequest struct {
	Criteria []CriterionInput `json:"criteria" validate:"required,min=1,dive"`
}

// SavedCriterion echoes one persisted criterion.
type SavedCriterion struct {
	ID           string `json:"id"`
	AttributeKey string `json:"attribute_key"`
	Rule         string `json:"rule"`
}

// SaveCriteriaResponse reports the outcome of a criteria save.
type SaveCriteriaResponse struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	CriteriaSaved []SavedCriterion `json:"criteria_saved"`
	TotalSaved    int              `json:"total_saved"`
}

// AvailableAttributesResponse lists distinct attribute keys of a campaign.
type AvailableAttributesResponse struct {
	CampaignID          string   `json:"campaign_id"`
	AvailableAttributes []string `json:"available_attributes"`
	TotalCount          int      `json:"total_count"`
}

// PairEmployee is the roster view of one side of a previewed pair.
type PairEmployee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PairPreview is one candidate pair in a generation response.
type PairPreview struct {
	Employee1 PairEmployee `json:"employee_1"`
	Employee2 PairEmployee `json:"employee_2"`
}

// CriterionUsed echoes the criteria in force during a generation run.
type CriterionUsed struct {
	AttributeKey string `json:"attribute_key"`
	Rule         string `json:"rule"`
}

// GeneratePairsResponse is the preview result: no persistence happens.
// TotalPossible is C(n,2) minus existing pairs and deliberately ignores
// criteria; it is the historical reporting denominator.
type GeneratePairsResponse struct {
	Success            bool            `json:"success"`
	Pairs              []PairPreview   `json:"pairs"`
	TotalPossible      int             `json:"total_possible"`
	TotalGenerated     int             `json:"total_generated"`
	CriteriaUsed       []CriterionUsed `json:"criteria_used"`
	ExistingPairsCount int             `json:"existing_pairs_count"`
	Message            string          `json:"message"`
}

// ConfirmPairInput identifies one pair the operator selected for commit.
type ConfirmPairInput struct {
	Employee1ID string `json:"employee_1_id" validate:"required"`
	Employee2ID string `json:"employee_2_id" validate:"required"`
}

// ConfirmPairsRequest commits a batch of previewed pairs.
type ConfirmPairsRequest struct {
	Pairs      []ConfirmPairInput `json:"pairs" validate:"required,min=1,dive"`
	SendEmails bool               `json:"send_emails"`
}

// SavedPair describes one durably created pair.
type SavedPair struct {
	PairID        string `json:"pair_id"`
	Employee1ID   string `json:"employee_1_id"`
	Employee1Name string `json:"employee_1_name"`
	Employee2ID   string `json:"employee_2_id"`
	Employee2Name string `json:"employee_2_name"`
}

// ConfirmPairsResponse reports partial-success batch results: created pairs
// and per-item rejection reasons, never an all-or-nothing rollback.
type ConfirmPairsResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	PairsSaved []SavedPair `json:"pairs_saved"`
	TotalSaved int         `json:"total_saved"`
	Errors     []string    `json:"errors,omitempty"`
}

// EmailSummary aggregates pair email delivery state for a campaign.
type EmailSummary struct {
	TotalPairs    int     `json:"total_pairs"`
	EmailsSent    int     `json:"emails_sent"`
	EmailsPending int     `json:"emails_pending"`
	EmailsFailed  int     `json:"emails_failed"`
	SuccessRate   float64 `json:"success_rate"`
}

// MatchingHistoryResponse is the HR-facing record of everything matched so
// far in a campaign.
type MatchingHistoryResponse struct {
	CampaignID         string          `json:"campaign_id"`
	CampaignTitle      string          `json:"campaign_title"`
	TotalPairs         int             `json:"total_pairs"`
	Pairs              interface{}     `json:"pairs"`
	CriteriaHistory    []SavedCriterion `json:"criteria_history"`
	EmailSummary       EmailSummary    `json:"email_summary"`
	LastGenerationDate *time.Time      `json:"last_generation_date,omitempty"`
}

// CriteriaHistoryResponse reports the criteria set and its lock state.
type CriteriaHistoryResponse struct {
	CampaignID     string           `json:"campaign_id"`
	CampaignTitle  string           `json:"campaign_title"`
	Criteria       []SavedCriterion `json:"criteria"`
	TotalCriteria  int              `json:"total_criteria"`
	IsLocked       bool             `json:"is_locked"`
	PairsGenerated int              `json:"pairs_generated"`
}
