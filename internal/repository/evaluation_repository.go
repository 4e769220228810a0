package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

// EvaluationRepository manages anonymous feedback slots and their tokens.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs an EvaluationRepository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts a new unused evaluation slot.
func (r *EvaluationRepository) Create(ctx context.Context, ev *models.Evaluation) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO evaluations (id, employee_id, pair_id, token, rating, comment, used, submitted_at, created_at)
        VALUES (:id, :employee_id, :pair_id, :token, :rating, :comment, :used, :submitted_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ev); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// FindByToken returns the evaluation slot for a token.
func (r *EvaluationRepository) FindByToken(ctx context.Context, token string) (*models.Evaluation, error) {
	const query = `SELECT id, employee_id, pair_id, token, rating, comment, used, submitted_at, created_at FROM evaluations WHERE token = $1 LIMIT 1`
	var ev models.Evaluation
	if err := r.db.GetContext(ctx, &ev, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find evaluation by token: %w", err)
	}
	return &ev, nil
}

// MarkSubmitted records feedback for an unused slot. The WHERE clause on
// used guards against a double submit racing past the service check; zero
// rows affected means the token was consumed first.
func (r *EvaluationRepository) MarkSubmitted(ctx context.Context, id string, rating int, comment string, submittedAt time.Time) (bool, error) {
	const query = `UPDATE evaluations SET rating = $2, comment = $3, used = TRUE, submitted_at = $4 WHERE id = $1 AND used = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, rating, comment, submittedAt)
	if err != nil {
		return false, fmt.Errorf("submit evaluation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("submit evaluation: %w", err)
	}
	return affected > 0, nil
}

// Statistics aggregates feedback for one campaign.
func (r *EvaluationRepository) Statistics(ctx context.Context, campaignID string) (*dto.EvaluationStatisticsResponse, error) {
	const query = `SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE e.used) AS completed,
        AVG(e.rating) FILTER (WHERE e.used) AS average
        FROM evaluations e
        JOIN employee_pairs p ON p.id = e.pair_id
        WHERE p.campaign_id = $1`
	var row struct {
		Total     int      `db:"total"`
		Completed int      `db:"completed"`
		Average   *float64 `db:"average"`
	}
	if err := r.db.GetContext(ctx, &row, query, campaignID); err != nil {
		return nil, fmt.Errorf("evaluation statistics: %w", err)
	}

	stats := &dto.EvaluationStatisticsResponse{
		CampaignID:           campaignID,
		TotalEvaluations:     row.Total,
		CompletedEvaluations: row.Completed,
		AverageRating:        row.Average,
	}
	if row.Total > 0 {
		stats.CompletionRate = float64(row.Completed) / float64(row.Total)
	}
	return stats, nil
}

// Recent returns the newest submitted evaluations across a manager's
// campaigns.
func (r *EvaluationRepository) Recent(ctx context.Context, hrManagerID string, limit int) ([]dto.RecentEvaluationItem, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT c.id AS campaign_id, c.title AS campaign_title, e.rating, e.comment, e.submitted_at
        FROM evaluations e
        JOIN employee_pairs p ON p.id = e.pair_id
        JOIN campaigns c ON c.id = p.campaign_id
        WHERE c.hr_manager_id = $1 AND e.used = TRUE
        ORDER BY e.submitted_at DESC LIMIT %d`, limit)
	var items []dto.RecentEvaluationItem
	if err := r.db.SelectContext(ctx, &items, query, hrManagerID); err != nil {
		return nil, fmt.Errorf("recent evaluations: %w", err)
	}
	return items, nil
}

// RatingDistribution buckets submitted ratings for a manager's campaigns.
func (r *EvaluationRepository) RatingDistribution(ctx context.Context, hrManagerID string) (map[int]int, error) {
	const query = `SELECT e.rating, COUNT(*) AS total
        FROM evaluations e
        JOIN employee_pairs p ON p.id = e.pair_id
        JOIN campaigns c ON c.id = p.campaign_id
        WHERE c.hr_manager_id = $1 AND e.used = TRUE
        GROUP BY e.rating`
	rows, err := r.db.QueryxContext(ctx, query, hrManagerID)
	if err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}
	defer rows.Close()

	dist := make(map[int]int)
	for rows.Next() {
		var rating, total int
		if err := rows.Scan(&rating, &total); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		dist[rating] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distribution: %w", err)
	}
	return dist, nil
}

// MonthlyTrends returns per-month evaluation counts and averages for the
// trailing window.
func (r *EvaluationRepository) MonthlyTrends(ctx context.Context, hrManagerID string, months int) ([]dto.TrendPoint, error) {
	if months <= 0 || months > 24 {
		months = 6
	}
	const query = `SELECT to_char(date_trunc('month', e.submitted_at), 'YYYY-MM') AS month,
        COUNT(*) AS evaluations,
        AVG(e.rating) AS average_rating
        FROM evaluations e
        JOIN employee_pairs p ON p.id = e.pair_id
        JOIN campaigns c ON c.id = p.campaign_id
        WHERE c.hr_manager_id = $1 AND e.used = TRUE AND e.submitted_at >= $2
        GROUP BY 1 ORDER BY 1 ASC`
	since := time.Now().UTC().AddDate(0, -months, 0)
	rows, err := r.db.QueryxContext(ctx, query, hrManagerID, since)
	if err != nil {
		return nil, fmt.Errorf("evaluation trends: %w", err)
	}
	defer rows.Close()

	var points []dto.TrendPoint
	for rows.Next() {
		var p dto.TrendPoint
		if err := rows.Scan(&p.Month, &p.Evaluations, &p.AverageRating); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trends: %w", err)
	}
	return points, nil
}

// CountPending counts unused evaluation slots across a manager's campaigns.
func (r *EvaluationRepository) CountPending(ctx context.Context, hrManagerID string) (int, error) {
	const query = `SELECT COUNT(*)
        FROM evaluations e
        JOIN employee_pairs p ON p.id = e.pair_id
        JOIN campaigns c ON c.id = p.campaign_id
        WHERE c.hr_manager_id = $1 AND e.used = FALSE`
	var total int
	if err := r.db.GetContext(ctx, &total, query, hrManagerID); err != nil {
		return 0, fmt.Errorf("count pending evaluations: %w", err)
	}
	return total, nil
}

// AverageForManager returns the overall mean rating across a manager's
// campaigns, nil when no feedback exists yet.
func (r *EvaluationRepository) AverageForManager(ctx context.Context, hrManagerID string) (*float64, error) {
	const query = `SELECT AVG(e.rating)
        FROM evaluations e
        JOIN employee_pairs p ON p.id = e.pair_id
        JOIN campaigns c ON c.id = p.campaign_id
        WHERE c.hr_manager_id = $1 AND e.used = TRUE`
	var avg *float64
	if err := r.db.GetContext(ctx, &avg, query, hrManagerID); err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}
