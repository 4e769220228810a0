package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

// MatchingStore coordinates the pair confirmation transaction, which spans
// the employee_pairs and matching_criteria tables: confirmed pairs land
// together with the criteria lock they trigger.
type MatchingStore struct {
	db       *sqlx.DB
	pairs    *PairRepository
	criteria *CriteriaRepository
}

// NewMatchingStore constructs a MatchingStore.
func NewMatchingStore(db *sqlx.DB, pairs *PairRepository, criteria *CriteriaRepository) *MatchingStore {
	return &MatchingStore{db: db, pairs: pairs, criteria: criteria}
}

// ConfirmBatch inserts the given pairs in one transaction. Duplicates,
// including ones raced in by a concurrent confirmation, are skipped and
// reported by index; the batch still commits. When at least one pair lands
// the campaign criteria are locked in the same transaction.
func (s *MatchingStore) ConfirmBatch(ctx context.Context, campaignID string, pairs []*models.EmployeePair) (created []int, duplicate []int, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin confirm tx: %w", err)
	}
	defer tx.Rollback()

	for i, pair := range pairs {
		if err := s.pairs.CreateTx(ctx, tx, pair); err != nil {
			if errors.Is(err, appErrors.ErrDuplicatePair) {
				duplicate = append(duplicate, i)
				continue
			}
			return nil, nil, err
		}
		created = append(created, i)
	}

	if len(created) > 0 {
		if err := s.criteria.LockAllTx(ctx, tx, campaignID); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit confirm tx: %w", err)
	}
	return created, duplicate, nil
}
