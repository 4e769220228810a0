package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

func newEmployeeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEmployeeRepositoryListByCampaign(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "campaign_id", "name", "email", "arrival_date", "created_at"}).
		AddRow("emp-1", "camp-1", "Alice Martin", "alice@example.com", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, campaign_id, name, email, arrival_date, created_at FROM employees WHERE campaign_id = $1 ORDER BY name ASC")).
		WithArgs("camp-1").
		WillReturnRows(rows)

	employees, err := repo.ListByCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	require.Len(t, employees, 1)
	require.Equal(t, "alice@example.com", employees[0].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryAttributesByCampaign(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "employee_id", "campaign_id", "attribute_key", "attribute_value"}).
		AddRow("attr-1", "emp-1", "camp-1", "department", "Engineering").
		AddRow("attr-2", "emp-1", "camp-1", "site", "Paris").
		AddRow("attr-3", "emp-2", "camp-1", "department", "Sales")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, employee_id, campaign_id, attribute_key, attribute_value FROM employee_attributes WHERE campaign_id = $1")).
		WithArgs("camp-1").
		WillReturnRows(rows)

	attrs, err := repo.AttributesByCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	require.Equal(t, "Engineering", attrs["emp-1"]["department"])
	require.Equal(t, "Paris", attrs["emp-1"]["site"])
	require.Equal(t, "Sales", attrs["emp-2"]["department"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryReplaceRoster(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employee_attributes WHERE campaign_id = $1")).
		WithArgs("camp-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE campaign_id = $1")).
		WithArgs("camp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO employees").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO employee_attributes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	employees := []models.Employee{
		{Name: "Alice Martin", Email: "alice@example.com", ArrivalDate: time.Now()},
	}
	attrs := []models.EmployeeAttribute{
		{EmployeeID: "emp-1", Key: "department", Value: "Engineering"},
	}
	require.NoError(t, repo.ReplaceRoster(context.Background(), "camp-1", employees, attrs, true))
	require.NotEmpty(t, employees[0].ID)
	require.Equal(t, "camp-1", employees[0].CampaignID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryDistinctAttributeKeys(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	rows := sqlmock.NewRows([]string{"attribute_key"}).
		AddRow("department").
		AddRow("site")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT attribute_key FROM employee_attributes WHERE campaign_id = $1 ORDER BY attribute_key ASC")).
		WithArgs("camp-1").
		WillReturnRows(rows)

	keys, err := repo.DistinctAttributeKeys(context.Background(), "camp-1")
	require.NoError(t, err)
	require.Equal(t, []string{"department", "site"}, keys)
	require.NoError(t, mock.ExpectationsWereMet())
}
