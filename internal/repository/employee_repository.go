package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

// EmployeeRepository manages campaign rosters and their imported attributes.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// ListByCampaign returns the full roster of a campaign ordered by name.
func (r *EmployeeRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.Employee, error) {
	const query = `SELECT id, campaign_id, name, email, arrival_date, created_at FROM employees WHERE campaign_id = $1 ORDER BY name ASC`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, campaignID); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// CountByCampaign returns the roster size of a campaign.
func (r *EmployeeRepository) CountByCampaign(ctx context.Context, campaignID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM employees WHERE campaign_id = $1", campaignID); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return total, nil
}

// ReplaceRoster deletes the current roster of a campaign and inserts the
// imported employees and their attributes in one transaction. When replace
// is false the existing roster is kept and the new rows are appended.
func (r *EmployeeRepository) ReplaceRoster(ctx context.Context, campaignID string, employees []models.Employee, attrs []models.EmployeeAttribute, replace bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM employee_attributes WHERE campaign_id = $1`, campaignID); err != nil {
			return fmt.Errorf("clear attributes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE campaign_id = $1`, campaignID); err != nil {
			return fmt.Errorf("clear roster: %w", err)
		}
	}

	now := time.Now().UTC()
	const insertEmployee = `INSERT INTO employees (id, campaign_id, name, email, arrival_date, created_at)
        VALUES (:id, :campaign_id, :name, :email, :arrival_date, :created_at)`
	for i := range employees {
		if employees[i].ID == "" {
			employees[i].ID = uuid.NewString()
		}
		employees[i].CampaignID = campaignID
		employees[i].CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, insertEmployee, &employees[i]); err != nil {
			return fmt.Errorf("insert employee %s: %w", employees[i].Email, err)
		}
	}

	const insertAttr = `INSERT INTO employee_attributes (id, employee_id, campaign_id, attribute_key, attribute_value)
        VALUES (:id, :employee_id, :campaign_id, :attribute_key, :attribute_value)`
	for i := range attrs {
		if attrs[i].ID == "" {
			attrs[i].ID = uuid.NewString()
		}
		attrs[i].CampaignID = campaignID
		if _, err := tx.NamedExecContext(ctx, insertAttr, &attrs[i]); err != nil {
			return fmt.Errorf("insert attribute %s: %w", attrs[i].Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster: %w", err)
	}
	return nil
}

// DeleteByCampaign clears the roster of a campaign. Attributes, pairs and
// evaluations go with it through the schema cascades. Returns the number of
// employees removed.
func (r *EmployeeRepository) DeleteByCampaign(ctx context.Context, campaignID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return 0, fmt.Errorf("delete roster: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete roster: %w", err)
	}
	return int(affected), nil
}

// AttributesByCampaign returns every imported attribute of a campaign keyed
// by employee id then attribute key, the shape the matching evaluator needs.
func (r *EmployeeRepository) AttributesByCampaign(ctx context.Context, campaignID string) (map[string]map[string]string, error) {
	const query = `SELECT id, employee_id, campaign_id, attribute_key, attribute_value FROM employee_attributes WHERE campaign_id = $1`
	var rows []models.EmployeeAttribute
	if err := r.db.SelectContext(ctx, &rows, query, campaignID); err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}

	attrs := make(map[string]map[string]string)
	for _, row := range rows {
		m, ok := attrs[row.EmployeeID]
		if !ok {
			m = make(map[string]string)
			attrs[row.EmployeeID] = m
		}
		m[row.Key] = row.Value
	}
	return attrs, nil
}

// DistinctAttributeKeys returns the attribute keys present in a campaign's
// roster, sorted alphabetically.
func (r *EmployeeRepository) DistinctAttributeKeys(ctx context.Context, campaignID string) ([]string, error) {
	const query = `SELECT DISTINCT attribute_key FROM employee_attributes WHERE campaign_id = $1 ORDER BY attribute_key ASC`
	var keys []string
	if err := r.db.SelectContext(ctx, &keys, query, campaignID); err != nil {
		return nil, fmt.Errorf("list attribute keys: %w", err)
	}
	return keys, nil
}

// CountByManager counts employees across all campaigns of a manager.
func (r *EmployeeRepository) CountByManager(ctx context.Context, hrManagerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM employees e JOIN campaigns c ON c.id = e.campaign_id WHERE c.hr_manager_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, hrManagerID); err != nil {
		return 0, fmt.Errorf("count employees by manager: %w", err)
	}
	return total, nil
}

// FindByID fetches one employee.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	const query = `SELECT id, campaign_id, name, email, arrival_date, created_at FROM employees WHERE id = $1 LIMIT 1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}
