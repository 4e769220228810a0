package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

type fakeCriteriaRepo struct {
	criteria []models.MatchingCriterion
	locked   bool
	replaced []models.MatchingCriterion
}

func (f *fakeCriteriaRepo) ListByCampaign(context.Context, string) ([]models.MatchingCriterion, error) {
	return f.criteria, nil
}

func (f *fakeCriteriaRepo) IsLocked(context.Context, string) (bool, error) {
	return f.locked, nil
}

func (f *fakeCriteriaRepo) ReplaceAll(_ context.Context, _ string, criteria []models.MatchingCriterion) error {
	f.replaced = criteria
	return nil
}

type fakeAttributeKeys struct {
	keys []string
}

func (f *fakeAttributeKeys) DistinctAttributeKeys(context.Context, string) ([]string, error) {
	return f.keys, nil
}

func newCriteriaService(campaigns *fakeCampaigns, repo *fakeCriteriaRepo, keys *fakeAttributeKeys, pairs *fakePairs) *CriteriaService {
	return NewCriteriaService(campaigns, repo, keys, pairs, nil, zap.NewNop())
}

func TestSaveCriteriaReplacesSet(t *testing.T) {
	campaigns := &fakeCampaigns{campaign: testCampaign()}
	repo := &fakeCriteriaRepo{}
	svc := newCriteriaService(campaigns, repo, &fakeAttributeKeys{keys: []string{"department", "location"}}, &fakePairs{})

	resp, err := svc.SaveCriteria(context.Background(), "camp-1", "hr-1", dto.SaveCriteriaRequest{
		Criteria: []dto.CriterionInput{
			{AttributeKey: "department", Rule: "not_same"},
			{AttributeKey: "location", Rule: "same"},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "2 criteria saved successfully", resp.Message)
	assert.Equal(t, 2, resp.TotalSaved)

	require.Len(t, repo.replaced, 2)
	assert.Equal(t, "department", repo.replaced[0].AttributeKey)
	assert.Equal(t, "hr-1", repo.replaced[0].CreatedBy)
	assert.Equal(t, []int{models.WorkflowStepCriteria}, campaigns.completedSteps)
}

func TestSaveCriteriaRejectedWhenLocked(t *testing.T) {
	repo := &fakeCriteriaRepo{locked: true}
	svc := newCriteriaService(&fakeCampaigns{campaign: testCampaign()}, repo, &fakeAttributeKeys{keys: []string{"department"}}, &fakePairs{})

	_, err := svc.SaveCriteria(context.Background(), "camp-1", "hr-1", dto.SaveCriteriaRequest{
		Criteria: []dto.CriterionInput{{AttributeKey: "department", Rule: "same"}},
	})
	require.ErrorIs(t, err, appErrors.ErrCriteriaLocked)
	assert.Nil(t, repo.replaced)
}

func TestSaveCriteriaUnknownAttribute(t *testing.T) {
	svc := newCriteriaService(&fakeCampaigns{campaign: testCampaign()}, &fakeCriteriaRepo{}, &fakeAttributeKeys{keys: []string{"department"}}, &fakePairs{})

	_, err := svc.SaveCriteria(context.Background(), "camp-1", "hr-1", dto.SaveCriteriaRequest{
		Criteria: []dto.CriterionInput{{AttributeKey: "team", Rule: "same"}},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnknownAttribute.Code, appErr.Code)
	assert.Contains(t, appErr.Message, `"team"`)
}

func TestSaveCriteriaDuplicateKey(t *testing.T) {
	svc := newCriteriaService(&fakeCampaigns{campaign: testCampaign()}, &fakeCriteriaRepo{}, &fakeAttributeKeys{keys: []string{"department"}}, &fakePairs{})

	_, err := svc.SaveCriteria(context.Background(), "camp-1", "hr-1", dto.SaveCriteriaRequest{
		Criteria: []dto.CriterionInput{
			{AttributeKey: "department", Rule: "same"},
			{AttributeKey: "department", Rule: "not_same"},
		},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSaveCriteriaInvalidRule(t *testing.T) {
	svc := newCriteriaService(&fakeCampaigns{campaign: testCampaign()}, &fakeCriteriaRepo{}, &fakeAttributeKeys{keys: []string{"department"}}, &fakePairs{})

	_, err := svc.SaveCriteria(context.Background(), "camp-1", "hr-1", dto.SaveCriteriaRequest{
		Criteria: []dto.CriterionInput{{AttributeKey: "department", Rule: "similar"}},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCriteriaHistoryReportsLockState(t *testing.T) {
	repo := &fakeCriteriaRepo{criteria: []models.MatchingCriterion{
		{ID: "c-1", AttributeKey: "department", Rule: "not_same", Status: models.CriteriaLocked},
	}}
	pairs := &fakePairs{pairs: []models.EmployeePair{{ID: "p-1"}, {ID: "p-2"}}}
	svc := newCriteriaService(&fakeCampaigns{campaign: testCampaign()}, repo, &fakeAttributeKeys{}, pairs)

	resp, err := svc.History(context.Background(), "camp-1", "hr-1")
	require.NoError(t, err)

	assert.True(t, resp.IsLocked)
	assert.Equal(t, 1, resp.TotalCriteria)
	assert.Equal(t, 2, resp.PairsGenerated)
	assert.Equal(t, "Spring Coffee", resp.CampaignTitle)
}

func TestAvailableAttributes(t *testing.T) {
	svc := newCriteriaService(&fakeCampaigns{campaign: testCampaign()}, &fakeCriteriaRepo{}, &fakeAttributeKeys{keys: []string{"department", "location"}}, &fakePairs{})

	resp, err := svc.AvailableAttributes(context.Background(), "camp-1", "hr-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"department", "location"}, resp.AvailableAttributes)
	assert.Equal(t, 2, resp.TotalCount)
}
