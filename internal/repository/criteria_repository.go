package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

// CriteriaRepository manages matching criteria and their campaign-scoped
// lock state.
type CriteriaRepository struct {
	db *sqlx.DB
}

// NewCriteriaRepository constructs a CriteriaRepository.
func NewCriteriaRepository(db *sqlx.DB) *CriteriaRepository {
	return &CriteriaRepository{db: db}
}

// ListByCampaign returns the criteria of a campaign ordered by attribute key.
func (r *CriteriaRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.MatchingCriterion, error) {
	const query = `SELECT id, campaign_id, attribute_key, rule, status, created_by, created_at FROM matching_criteria WHERE campaign_id = $1 ORDER BY attribute_key ASC`
	var criteria []models.MatchingCriterion
	if err := r.db.SelectContext(ctx, &criteria, query, campaignID); err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	return criteria, nil
}

// IsLocked reports whether any criterion of the campaign has been locked.
// Lock is campaign-scoped so one locked row means all are.
func (r *CriteriaRepository) IsLocked(ctx context.Context, campaignID string) (bool, error) {
	const query = `SELECT 1 FROM matching_criteria WHERE campaign_id = $1 AND status = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, campaignID, models.CriteriaLocked); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check criteria lock: %w", err)
	}
	return true, nil
}

// ReplaceAll swaps the draft criteria set of a campaign for the given one in
// a single transaction. Callers must verify the campaign is not locked first.
func (r *CriteriaRepository) ReplaceAll(ctx context.Context, campaignID string, criteria []models.MatchingCriterion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matching_criteria WHERE campaign_id = $1`, campaignID); err != nil {
		return fmt.Errorf("clear criteria: %w", err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO matching_criteria (id, campaign_id, attribute_key, rule, status, created_by, created_at)
        VALUES (:id, :campaign_id, :attribute_key, :rule, :status, :created_by, :created_at)`
	for i := range criteria {
		if criteria[i].ID == "" {
			criteria[i].ID = uuid.NewString()
		}
		criteria[i].CampaignID = campaignID
		criteria[i].Status = models.CriteriaDraft
		criteria[i].CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, &criteria[i]); err != nil {
			return fmt.Errorf("insert criterion %s: %w", criteria[i].AttributeKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit criteria: %w", err)
	}
	return nil
}

// LockAllTx marks every criterion of the campaign as locked inside the
// caller's transaction, so the lock lands atomically with the pairs that
// triggered it.
func (r *CriteriaRepository) LockAllTx(ctx context.Context, tx *sqlx.Tx, campaignID string) error {
	const query = `UPDATE matching_criteria SET status = $2 WHERE campaign_id = $1 AND status = $3`
	if _, err := tx.ExecContext(ctx, query, campaignID, models.CriteriaLocked, models.CriteriaDraft); err != nil {
		return fmt.Errorf("lock criteria: %w", err)
	}
	return nil
}
