package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

type fakeEvaluations struct {
	evaluation *fakeStoredEvaluation
	stats      *dto.EvaluationStatisticsResponse
	// raceLost simulates a concurrent submit winning between the token
	// read and the guarded update.
	raceLost bool
}

type fakeStoredEvaluation struct {
	models.Evaluation
	submitted bool
}

func (f *fakeEvaluations) FindByToken(_ context.Context, token string) (*models.Evaluation, error) {
	if f.evaluation == nil || f.evaluation.Token != token {
		return nil, sql.ErrNoRows
	}
	ev := f.evaluation.Evaluation
	return &ev, nil
}

func (f *fakeEvaluations) MarkSubmitted(_ context.Context, id string, rating int, comment string, submittedAt time.Time) (bool, error) {
	if f.raceLost || f.evaluation == nil || f.evaluation.ID != id || f.evaluation.Used {
		return false, nil
	}
	f.evaluation.Used = true
	f.evaluation.Rating = &rating
	f.evaluation.Comment = comment
	f.evaluation.SubmittedAt = &submittedAt
	f.evaluation.submitted = true
	return true, nil
}

func (f *fakeEvaluations) Statistics(context.Context, string) (*dto.EvaluationStatisticsResponse, error) {
	return f.stats, nil
}

type fakePairLookup struct {
	pair *models.EmployeePair
}

func (f *fakePairLookup) FindByID(context.Context, string) (*models.EmployeePair, error) {
	return f.pair, nil
}

func confirmedPair() *models.EmployeePair {
	return &models.EmployeePair{
		ID:             "pair-1",
		CampaignID:     "camp-1",
		Employee1ID:    "emp-1",
		Employee2ID:    "emp-2",
		Employee1Name:  "Alice",
		Employee1Email: "alice@example.com",
		Employee2Name:  "Bob",
		Employee2Email: "bob@example.com",
	}
}

func newEvaluationService(evaluations *fakeEvaluations, pairs *fakePairLookup, campaigns *fakeCampaigns) *EvaluationService {
	return NewEvaluationService(evaluations, pairs, campaigns, nil, zap.NewNop())
}

func TestEvaluationFormResolvesPartner(t *testing.T) {
	evaluations := &fakeEvaluations{evaluation: &fakeStoredEvaluation{
		Evaluation: models.Evaluation{ID: "ev-1", EmployeeID: "emp-2", PairID: "pair-1", Token: "tok-1"},
	}}
	svc := newEvaluationService(evaluations, &fakePairLookup{pair: confirmedPair()}, &fakeCampaigns{campaign: testCampaign()})

	form, err := svc.Form(context.Background(), "tok-1")
	require.NoError(t, err)

	assert.Equal(t, "Bob", form.EmployeeName)
	assert.Equal(t, "Alice", form.PartnerName)
	assert.Equal(t, "Spring Coffee", form.CampaignTitle)
	assert.False(t, form.Used)
}

func TestEvaluationFormUnknownToken(t *testing.T) {
	svc := newEvaluationService(&fakeEvaluations{}, &fakePairLookup{}, &fakeCampaigns{campaign: testCampaign()})

	_, err := svc.Form(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSubmitEvaluationBurnsToken(t *testing.T) {
	evaluations := &fakeEvaluations{evaluation: &fakeStoredEvaluation{
		Evaluation: models.Evaluation{ID: "ev-1", EmployeeID: "emp-1", PairID: "pair-1", Token: "tok-1"},
	}}
	svc := newEvaluationService(evaluations, &fakePairLookup{pair: confirmedPair()}, &fakeCampaigns{campaign: testCampaign()})

	err := svc.Submit(context.Background(), "tok-1", dto.SubmitEvaluationRequest{Rating: 4, Comment: "great chat"})
	require.NoError(t, err)
	assert.True(t, evaluations.evaluation.submitted)

	err = svc.Submit(context.Background(), "tok-1", dto.SubmitEvaluationRequest{Rating: 5})
	require.ErrorIs(t, err, appErrors.ErrTokenUsed)
}

func TestSubmitEvaluationRacedToken(t *testing.T) {
	// The read sees an unused token but the guarded update loses the race.
	evaluations := &fakeEvaluations{
		evaluation: &fakeStoredEvaluation{
			Evaluation: models.Evaluation{ID: "ev-1", EmployeeID: "emp-1", PairID: "pair-1", Token: "tok-1"},
		},
		raceLost: true,
	}
	svc := newEvaluationService(evaluations, &fakePairLookup{pair: confirmedPair()}, &fakeCampaigns{campaign: testCampaign()})

	err := svc.Submit(context.Background(), "tok-1", dto.SubmitEvaluationRequest{Rating: 3})
	require.ErrorIs(t, err, appErrors.ErrTokenUsed)
}

func TestSubmitEvaluationValidatesRating(t *testing.T) {
	svc := newEvaluationService(&fakeEvaluations{}, &fakePairLookup{}, &fakeCampaigns{campaign: testCampaign()})

	err := svc.Submit(context.Background(), "tok-1", dto.SubmitEvaluationRequest{Rating: 9})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestEvaluationStatisticsOwnershipGated(t *testing.T) {
	stats := &dto.EvaluationStatisticsResponse{CampaignID: "camp-1", TotalEvaluations: 4, CompletedEvaluations: 2, CompletionRate: 50}
	svc := newEvaluationService(&fakeEvaluations{stats: stats}, &fakePairLookup{}, &fakeCampaigns{campaign: testCampaign()})

	got, err := svc.Statistics(context.Background(), "camp-1", "hr-1")
	require.NoError(t, err)
	assert.Equal(t, stats, got)

	_, err = svc.Statistics(context.Background(), "camp-1", "hr-2")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}
