package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

func confirmPairs() []*models.EmployeePair {
	return []*models.EmployeePair{
		{CampaignID: "camp-1", Employee1ID: "emp-a", Employee2ID: "emp-b", CreatedBy: "hr-1"},
		{CampaignID: "camp-1", Employee1ID: "emp-c", Employee2ID: "emp-d", CreatedBy: "hr-1"},
	}
}

func TestMatchingStoreConfirmBatchLocksCriteria(t *testing.T) {
	db, mock, cleanup := newPairRepoMock(t)
	defer cleanup()
	store := NewMatchingStore(db, NewPairRepository(db), NewCriteriaRepository(db))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO employee_pairs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO employee_pairs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matching_criteria SET status = $2 WHERE campaign_id = $1 AND status = $3")).
		WithArgs("camp-1", models.CriteriaLocked, models.CriteriaDraft).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	created, duplicate, err := store.ConfirmBatch(context.Background(), "camp-1", confirmPairs())
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, created)
	require.Empty(t, duplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchingStoreConfirmBatchSkipsDuplicates(t *testing.T) {
	db, mock, cleanup := newPairRepoMock(t)
	defer cleanup()
	store := NewMatchingStore(db, NewPairRepository(db), NewCriteriaRepository(db))

	mock.ExpectBegin()
	// First insert hits the unique index; the batch keeps going.
	mock.ExpectExec("INSERT INTO employee_pairs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO employee_pairs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE matching_criteria SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, duplicate, err := store.ConfirmBatch(context.Background(), "camp-1", confirmPairs())
	require.NoError(t, err)
	require.Equal(t, []int{1}, created)
	require.Equal(t, []int{0}, duplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchingStoreConfirmBatchAllDuplicatesSkipsLock(t *testing.T) {
	db, mock, cleanup := newPairRepoMock(t)
	defer cleanup()
	store := NewMatchingStore(db, NewPairRepository(db), NewCriteriaRepository(db))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO employee_pairs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO employee_pairs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	created, duplicate, err := store.ConfirmBatch(context.Background(), "camp-1", confirmPairs())
	require.NoError(t, err)
	require.Empty(t, created)
	require.Equal(t, []int{0, 1}, duplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}
