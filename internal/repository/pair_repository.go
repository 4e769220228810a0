package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

// PairRepository manages confirmed employee pairs. Pairs are stored with
// employee ids normalized (employee1_id < employee2_id) so the unique index
// on (campaign_id, employee1_id, employee2_id) catches duplicates in either
// order, including races between concurrent confirmations.
type PairRepository struct {
	db *sqlx.DB
}

// NewPairRepository constructs a PairRepository.
func NewPairRepository(db *sqlx.DB) *PairRepository {
	return &PairRepository{db: db}
}

// DB exposes the underlying handle for cross-repository transactions.
func (r *PairRepository) DB() *sqlx.DB {
	return r.db
}

// ExistingPairs returns the id pairs already confirmed for a campaign.
func (r *PairRepository) ExistingPairs(ctx context.Context, campaignID string) ([][2]string, error) {
	const query = `SELECT employee1_id, employee2_id FROM employee_pairs WHERE campaign_id = $1`
	rows, err := r.db.QueryxContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list existing pairs: %w", err)
	}
	defer rows.Close()

	var pairs [][2]string
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, [2]string{a, b})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	return pairs, nil
}

// CountByCampaign returns the number of confirmed pairs in a campaign.
func (r *PairRepository) CountByCampaign(ctx context.Context, campaignID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM employee_pairs WHERE campaign_id = $1", campaignID); err != nil {
		return 0, fmt.Errorf("count pairs: %w", err)
	}
	return total, nil
}

// CreateTx inserts one confirmed pair inside the caller's transaction. The
// ids must already be normalized. A duplicate in either order surfaces as
// ErrDuplicatePair so the caller can report it per item; ON CONFLICT keeps
// the surrounding transaction usable, a raw unique violation would abort it.
func (r *PairRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, pair *models.EmployeePair) error {
	if pair.ID == "" {
		pair.ID = uuid.NewString()
	}
	if pair.CreatedAt.IsZero() {
		pair.CreatedAt = time.Now().UTC()
	}
	if pair.EmailStatus == "" {
		pair.EmailStatus = models.EmailStatusPending
	}
	const query = `INSERT INTO employee_pairs (id, campaign_id, employee1_id, employee2_id, criteria_snapshot, email_status, email_error, email_sent_at, created_by, created_at)
        VALUES (:id, :campaign_id, :employee1_id, :employee2_id, :criteria_snapshot, :email_status, :email_error, :email_sent_at, :created_by, :created_at)
        ON CONFLICT (campaign_id, employee1_id, employee2_id) DO NOTHING`
	res, err := tx.NamedExecContext(ctx, query, pair)
	if err != nil {
		return fmt.Errorf("create pair: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create pair: %w", err)
	}
	if affected == 0 {
		return appErrors.ErrDuplicatePair
	}
	return nil
}

// ListByCampaign returns the confirmed pairs of a campaign with employee
// names and emails joined in, newest first.
func (r *PairRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.EmployeePair, error) {
	const query = `SELECT p.id, p.campaign_id, p.employee1_id, p.employee2_id, p.criteria_snapshot,
        p.email_status, p.email_error, p.email_sent_at, p.created_by, p.created_at,
        e1.name AS employee1_name, e1.email AS employee1_email,
        e2.name AS employee2_name, e2.email AS employee2_email
        FROM employee_pairs p
        JOIN employees e1 ON e1.id = p.employee1_id
        JOIN employees e2 ON e2.id = p.employee2_id
        WHERE p.campaign_id = $1
        ORDER BY p.created_at DESC`
	var pairs []models.EmployeePair
	if err := r.db.SelectContext(ctx, &pairs, query, campaignID); err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	return pairs, nil
}

// FindByID fetches one pair with employee info joined in.
func (r *PairRepository) FindByID(ctx context.Context, id string) (*models.EmployeePair, error) {
	const query = `SELECT p.id, p.campaign_id, p.employee1_id, p.employee2_id, p.criteria_snapshot,
        p.email_status, p.email_error, p.email_sent_at, p.created_by, p.created_at,
        e1.name AS employee1_name, e1.email AS employee1_email,
        e2.name AS employee2_name, e2.email AS employee2_email
        FROM employee_pairs p
        JOIN employees e1 ON e1.id = p.employee1_id
        JOIN employees e2 ON e2.id = p.employee2_id
        WHERE p.id = $1 LIMIT 1`
	var pair models.EmployeePair
	if err := r.db.GetContext(ctx, &pair, query, id); err != nil {
		return nil, err
	}
	return &pair, nil
}

// UpdateEmailStatus records the outcome of a pair notification delivery.
func (r *PairRepository) UpdateEmailStatus(ctx context.Context, id, status string, emailErr *string, sentAt *time.Time) error {
	const query = `UPDATE employee_pairs SET email_status = $2, email_error = $3, email_sent_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, emailErr, sentAt); err != nil {
		return fmt.Errorf("update email status: %w", err)
	}
	return nil
}

// EmailStatusSummary returns pair counts per email delivery state for a
// campaign.
func (r *PairRepository) EmailStatusSummary(ctx context.Context, campaignID string) (map[string]int, error) {
	const query = `SELECT email_status, COUNT(*) AS total FROM employee_pairs WHERE campaign_id = $1 GROUP BY email_status`
	rows, err := r.db.QueryxContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("email status summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[string]int)
	for rows.Next() {
		var status string
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary[status] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}

// EmailSuccessRateByManager computes the share of a manager's pairs whose
// notification email was delivered. Zero pairs yields zero.
func (r *PairRepository) EmailSuccessRateByManager(ctx context.Context, hrManagerID string) (float64, error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE p.email_status = 'sent') AS sent
        FROM employee_pairs p JOIN campaigns c ON c.id = p.campaign_id WHERE c.hr_manager_id = $1`
	var row struct {
		Total int `db:"total"`
		Sent  int `db:"sent"`
	}
	if err := r.db.GetContext(ctx, &row, query, hrManagerID); err != nil {
		return 0, fmt.Errorf("email success rate: %w", err)
	}
	if row.Total == 0 {
		return 0, nil
	}
	return float64(row.Sent) / float64(row.Total), nil
}

// CountByManager counts confirmed pairs across all campaigns of a manager.
func (r *PairRepository) CountByManager(ctx context.Context, hrManagerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM employee_pairs p JOIN campaigns c ON c.id = p.campaign_id WHERE c.hr_manager_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, hrManagerID); err != nil {
		return 0, fmt.Errorf("count pairs by manager: %w", err)
	}
	return total, nil
}
