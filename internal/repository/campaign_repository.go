package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

// CampaignRepository manages persistence for campaigns and their workflow
// state.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository constructs a CampaignRepository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// List returns campaigns owned by the given HR manager matching the filter.
func (r *CampaignRepository) List(ctx context.Context, hrManagerID string, filter dto.CampaignFilter) ([]models.Campaign, int, error) {
	base := "FROM campaigns WHERE hr_manager_id = $1"
	args := []interface{}{hrManagerID}

	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(title) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, title, description, start_date, end_date, hr_manager_id, created_at, updated_at
        %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var campaigns []models.Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}
	return campaigns, total, nil
}

// FindByID fetches a campaign by identifier.
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	const query = `SELECT id, title, description, start_date, end_date, hr_manager_id, created_at, updated_at FROM campaigns WHERE id = $1 LIMIT 1`
	var campaign models.Campaign
	if err := r.db.GetContext(ctx, &campaign, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find campaign: %w", err)
	}
	return &campaign, nil
}

// Create inserts a new campaign together with its initial workflow row.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertCampaign = `INSERT INTO campaigns (id, title, description, start_date, end_date, hr_manager_id, created_at, updated_at)
        VALUES (:id, :title, :description, :start_date, :end_date, :hr_manager_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertCampaign, campaign); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}

	const insertWorkflow = `INSERT INTO campaign_workflows (campaign_id, current_step, completed_steps, completed, updated_at)
        VALUES ($1, $2, $3, FALSE, $4)`
	steps := pq.Int64Array{int64(models.WorkflowStepCreate)}
	if _, err := tx.ExecContext(ctx, insertWorkflow, campaign.ID, models.WorkflowStepUpload, steps, now); err != nil {
		return fmt.Errorf("create campaign workflow: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit campaign: %w", err)
	}
	return nil
}

// Update modifies an existing campaign.
func (r *CampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	campaign.UpdatedAt = time.Now().UTC()
	const query = `UPDATE campaigns SET title = :title, description = :description, start_date = :start_date, end_date = :end_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, campaign); err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

// Delete removes a campaign. Dependent rows cascade at the schema level.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM campaigns WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return nil
}

// FindWorkflow returns the workflow state for a campaign.
func (r *CampaignRepository) FindWorkflow(ctx context.Context, campaignID string) (*models.CampaignWorkflow, error) {
	const query = `SELECT campaign_id, current_step, completed_steps, completed, updated_at FROM campaign_workflows WHERE campaign_id = $1 LIMIT 1`
	var wf models.CampaignWorkflow
	if err := r.db.GetContext(ctx, &wf, query, campaignID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find campaign workflow: %w", err)
	}
	return &wf, nil
}

// CompleteStep records a workflow step as finished and advances the cursor.
// Re-completing an already finished step is a no-op for completed_steps.
func (r *CampaignRepository) CompleteStep(ctx context.Context, campaignID string, step int) error {
	const query = `UPDATE campaign_workflows SET
        completed_steps = (SELECT ARRAY(SELECT DISTINCT unnest(completed_steps || $2::bigint) ORDER BY 1)),
        current_step = GREATEST(current_step, LEAST($2 + 1, $3)),
        completed = (completed OR $2 >= $3),
        updated_at = $4
        WHERE campaign_id = $1`
	if _, err := r.db.ExecContext(ctx, query, campaignID, step, models.WorkflowStepMax, time.Now().UTC()); err != nil {
		return fmt.Errorf("complete workflow step: %w", err)
	}
	return nil
}

// CountByManager returns the number of campaigns owned by an HR manager.
func (r *CampaignRepository) CountByManager(ctx context.Context, hrManagerID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM campaigns WHERE hr_manager_id = $1", hrManagerID); err != nil {
		return 0, fmt.Errorf("count campaigns by manager: %w", err)
	}
	return total, nil
}

// CountActiveByManager counts campaigns whose date window includes now.
func (r *CampaignRepository) CountActiveByManager(ctx context.Context, hrManagerID string, now time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM campaigns WHERE hr_manager_id = $1 AND start_date <= $2 AND end_date >= $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, hrManagerID, now); err != nil {
		return 0, fmt.Errorf("count active campaigns: %w", err)
	}
	return total, nil
}
