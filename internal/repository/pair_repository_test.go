package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

func newPairRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPairRepositoryExistingPairs(t *testing.T) {
	db, mock, cleanup := newPairRepoMock(t)
	defer cleanup()
	repo := NewPairRepository(db)

	rows := sqlmock.NewRows([]string{"employee1_id", "employee2_id"}).
		AddRow("emp-a", "emp-b").
		AddRow("emp-a", "emp-c")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT employee1_id, employee2_id FROM employee_pairs WHERE campaign_id = $1")).
		WithArgs("camp-1").
		WillReturnRows(rows)

	pairs, err := repo.ExistingPairs(context.Background(), "camp-1")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, [2]string{"emp-a", "emp-b"}, pairs[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPairRepositoryCreateTxDuplicate(t *testing.T) {
	db, mock, cleanup := newPairRepoMock(t)
	defer cleanup()
	repo := NewPairRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO employee_pairs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	pair := &models.EmployeePair{
		CampaignID:  "camp-1",
		Employee1ID: "emp-a",
		Employee2ID: "emp-b",
		CreatedBy:   "hr-1",
	}
	err = repo.CreateTx(context.Background(), tx, pair)
	require.ErrorIs(t, err, appErrors.ErrDuplicatePair)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPairRepositoryCreateTxDefaultsEmailStatus(t *testing.T) {
	db, mock, cleanup := newPairRepoMock(t)
	defer cleanup()
	repo := NewPairRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO employee_pairs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	pair := &models.EmployeePair{
		CampaignID:  "camp-1",
		Employee1ID: "emp-a",
		Employee2ID: "emp-b",
		CreatedBy:   "hr-1",
	}
	require.NoError(t, repo.CreateTx(context.Background(), tx, pair))
	require.NoError(t, tx.Commit())
	require.NotEmpty(t, pair.ID)
	require.Equal(t, models.EmailStatusPending, pair.EmailStatus)
	require.False(t, pair.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPairRepositoryEmailStatusSummary(t *testing.T) {
	db, mock, cleanup := newPairRepoMock(t)
	defer cleanup()
	repo := NewPairRepository(db)

	rows := sqlmock.NewRows([]string{"email_status", "total"}).
		AddRow(models.EmailStatusSent, 4).
		AddRow(models.EmailStatusFailed, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT email_status, COUNT(*) AS total FROM employee_pairs WHERE campaign_id = $1 GROUP BY email_status")).
		WithArgs("camp-1").
		WillReturnRows(rows)

	summary, err := repo.EmailStatusSummary(context.Background(), "camp-1")
	require.NoError(t, err)
	require.Equal(t, 4, summary[models.EmailStatusSent])
	require.Equal(t, 1, summary[models.EmailStatusFailed])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPairRepositoryUpdateEmailStatus(t *testing.T) {
	db, mock, cleanup := newPairRepoMock(t)
	defer cleanup()
	repo := NewPairRepository(db)

	sentAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employee_pairs SET email_status = $2, email_error = $3, email_sent_at = $4 WHERE id = $1")).
		WithArgs("pair-1", models.EmailStatusSent, nil, sentAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateEmailStatus(context.Background(), "pair-1", models.EmailStatusSent, nil, &sentAt))
	require.NoError(t, mock.ExpectationsWereMet())
}
