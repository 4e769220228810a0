package dto

// DashboardStatisticsResponse is the HR landing-page aggregate.
type DashboardStatisticsResponse struct {
	TotalCampaigns     int      `json:"total_campaigns"`
	ActiveCampaigns    int      `json:"active_campaigns"`
	TotalEmployees     int      `json:"total_employees"`
	TotalPairs         int      `json:"total_pairs"`
	EmailSuccessRate   float64  `json:"email_success_rate"`
	AverageRating      *float64 `json:"average_rating,omitempty"`
	EvaluationsPending int      `json:"evaluations_pending"`
}

// RatingDistributionResponse buckets ratings 1..5 for a manager's campaigns.
type RatingDistributionResponse struct {
	Distribution map[int]int `json:"distribution"`
	Total        int         `json:"total"`
}

// TrendPoint is one month of evaluation volume/quality.
type TrendPoint struct {
	Month         string   `json:"month"`
	Evaluations   int      `json:"evaluations"`
	AverageRating *float64 `json:"average_rating,omitempty"`
}

// EvaluationTrendsResponse charts feedback over time.
type EvaluationTrendsResponse struct {
	Points []TrendPoint `json:"points"`
}
