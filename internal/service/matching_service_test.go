package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/matching"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

type fakeCampaigns struct {
	campaign       *models.Campaign
	err            error
	completedSteps []int
}

func (f *fakeCampaigns) FindByID(context.Context, string) (*models.Campaign, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.campaign, nil
}

func (f *fakeCampaigns) CompleteStep(_ context.Context, _ string, step int) error {
	f.completedSteps = append(f.completedSteps, step)
	return nil
}

type fakeEmployees struct {
	employees []models.Employee
	attrs     map[string]map[string]string
}

func (f *fakeEmployees) ListByCampaign(context.Context, string) ([]models.Employee, error) {
	return f.employees, nil
}

func (f *fakeEmployees) AttributesByCampaign(context.Context, string) (map[string]map[string]string, error) {
	return f.attrs, nil
}

type fakeCriteria struct {
	criteria []models.MatchingCriterion
}

func (f *fakeCriteria) ListByCampaign(context.Context, string) ([]models.MatchingCriterion, error) {
	return f.criteria, nil
}

type fakePairs struct {
	existing [][2]string
	pairs    []models.EmployeePair
	summary  map[string]int
}

func (f *fakePairs) ExistingPairs(context.Context, string) ([][2]string, error) {
	return f.existing, nil
}

func (f *fakePairs) ListByCampaign(context.Context, string) ([]models.EmployeePair, error) {
	return f.pairs, nil
}

func (f *fakePairs) CountByCampaign(context.Context, string) (int, error) {
	return len(f.pairs), nil
}

func (f *fakePairs) EmailStatusSummary(context.Context, string) (map[string]int, error) {
	if f.summary == nil {
		return map[string]int{}, nil
	}
	return f.summary, nil
}

type fakeStore struct {
	// indices to report as duplicates, keyed by normalized pair.
	duplicates map[[2]string]bool
	received   []*models.EmployeePair
}

func (f *fakeStore) ConfirmBatch(_ context.Context, _ string, pairs []*models.EmployeePair) ([]int, []int, error) {
	f.received = pairs
	var created, duplicate []int
	for i, pair := range pairs {
		if f.duplicates[[2]string{pair.Employee1ID, pair.Employee2ID}] {
			duplicate = append(duplicate, i)
			continue
		}
		pair.ID = "pair-" + pair.Employee1ID + "-" + pair.Employee2ID
		created = append(created, i)
	}
	return created, duplicate, nil
}

type fakeNotifier struct {
	notified []string
}

func (f *fakeNotifier) NotifyPairs(_ context.Context, _ *models.Campaign, pairIDs []string) error {
	f.notified = append(f.notified, pairIDs...)
	return nil
}

func testCampaign() *models.Campaign {
	return &models.Campaign{
		ID:          "camp-1",
		Title:       "Spring Coffee",
		HRManagerID: "hr-1",
		StartDate:   time.Now().AddDate(0, 0, -1),
		EndDate:     time.Now().AddDate(0, 1, 0),
	}
}

func rosterOf(ids ...string) []models.Employee {
	employees := make([]models.Employee, 0, len(ids))
	for _, id := range ids {
		employees = append(employees, models.Employee{ID: id, Name: "Employee " + id, Email: id + "@example.com"})
	}
	return employees
}

func newMatchingService(t *testing.T, campaigns *fakeCampaigns, employees *fakeEmployees, criteria *fakeCriteria, pairs *fakePairs, store *fakeStore, notifier *fakeNotifier) *MatchingService {
	t.Helper()
	svc, err := NewMatchingService(campaigns, employees, criteria, pairs, store, notifier, nil, zap.NewNop(), MatchingConfig{SolverStrategy: matching.StrategyBlossom})
	require.NoError(t, err)
	return svc
}

func TestGeneratePairsInsufficientEmployees(t *testing.T) {
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a")},
		&fakeCriteria{}, &fakePairs{}, &fakeStore{}, &fakeNotifier{})

	_, err := svc.GeneratePairs(context.Background(), "camp-1", "hr-1", 0)
	require.ErrorIs(t, err, appErrors.ErrInsufficientEmployees)
}

func TestGeneratePairsOwnershipEnforced(t *testing.T) {
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b")},
		&fakeCriteria{}, &fakePairs{}, &fakeStore{}, &fakeNotifier{})

	_, err := svc.GeneratePairs(context.Background(), "camp-1", "hr-2", 0)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestGeneratePairsMaximumMatching(t *testing.T) {
	// Four mutually eligible employees yield exactly two disjoint pairs.
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b", "c", "d")},
		&fakeCriteria{}, &fakePairs{}, &fakeStore{}, &fakeNotifier{})

	resp, err := svc.GeneratePairs(context.Background(), "camp-1", "hr-1", 0)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalGenerated)
	assert.Equal(t, 6, resp.TotalPossible)
	assert.Equal(t, 0, resp.ExistingPairsCount)
	assert.Equal(t, "2 final pairs created successfully", resp.Message)

	seen := map[string]bool{}
	for _, pair := range resp.Pairs {
		assert.NotEqual(t, pair.Employee1.ID, pair.Employee2.ID)
		assert.False(t, seen[pair.Employee1.ID], "employee matched twice")
		assert.False(t, seen[pair.Employee2.ID], "employee matched twice")
		seen[pair.Employee1.ID] = true
		seen[pair.Employee2.ID] = true
	}
}

func TestGeneratePairsDeterministic(t *testing.T) {
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("d", "b", "a", "c", "e", "f")},
		&fakeCriteria{}, &fakePairs{}, &fakeStore{}, &fakeNotifier{})

	first, err := svc.GeneratePairs(context.Background(), "camp-1", "hr-1", 0)
	require.NoError(t, err)
	second, err := svc.GeneratePairs(context.Background(), "camp-1", "hr-1", 0)
	require.NoError(t, err)
	assert.Equal(t, first.Pairs, second.Pairs)
}

func TestGeneratePairsRespectsCriteria(t *testing.T) {
	attrs := map[string]map[string]string{
		"a": {"department": "eng"},
		"b": {"department": "eng"},
		"c": {"department": "sales"},
		"d": {"department": "sales"},
	}
	criteria := []models.MatchingCriterion{
		{AttributeKey: "department", Rule: "not_same"},
	}
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b", "c", "d"), attrs: attrs},
		&fakeCriteria{criteria: criteria}, &fakePairs{}, &fakeStore{}, &fakeNotifier{})

	resp, err := svc.GeneratePairs(context.Background(), "camp-1", "hr-1", 0)
	require.NoError(t, err)
	require.Equal(t, 2, resp.TotalGenerated)
	for _, pair := range resp.Pairs {
		assert.NotEqual(t, attrs[pair.Employee1.ID]["department"], attrs[pair.Employee2.ID]["department"])
	}
	require.Len(t, resp.CriteriaUsed, 1)
	assert.Equal(t, "department", resp.CriteriaUsed[0].AttributeKey)
}

func TestGeneratePairsExcludesExistingAndTruncates(t *testing.T) {
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b", "c", "d")},
		&fakeCriteria{},
		&fakePairs{existing: [][2]string{{"a", "b"}}},
		&fakeStore{}, &fakeNotifier{})

	resp, err := svc.GeneratePairs(context.Background(), "camp-1", "hr-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalGenerated)
	assert.Equal(t, 5, resp.TotalPossible)
	assert.Equal(t, 1, resp.ExistingPairsCount)
	for _, pair := range resp.Pairs {
		exists := (pair.Employee1.ID == "a" && pair.Employee2.ID == "b") ||
			(pair.Employee1.ID == "b" && pair.Employee2.ID == "a")
		assert.False(t, exists, "existing pair must not be re-proposed")
	}
}

func TestGeneratePairsZeroEligible(t *testing.T) {
	attrs := map[string]map[string]string{
		"a": {"site": "paris"},
		"b": {"site": "paris"},
	}
	criteria := []models.MatchingCriterion{{AttributeKey: "site", Rule: "not_same"}}
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b"), attrs: attrs},
		&fakeCriteria{criteria: criteria}, &fakePairs{}, &fakeStore{}, &fakeNotifier{})

	resp, err := svc.GeneratePairs(context.Background(), "camp-1", "hr-1", 0)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Pairs)
	assert.Equal(t, "No valid pairs could be generated with the current criteria", resp.Message)
}

func TestGeneratePairsLimitShortfallMessage(t *testing.T) {
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b")},
		&fakeCriteria{}, &fakePairs{}, &fakeStore{}, &fakeNotifier{})

	resp, err := svc.GeneratePairs(context.Background(), "camp-1", "hr-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalGenerated)
	assert.Equal(t, "Only 1 pairs created, less than requested limit of 5", resp.Message)
}

func TestConfirmPairsPartialSuccess(t *testing.T) {
	campaigns := &fakeCampaigns{campaign: testCampaign()}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	svc := newMatchingService(t, campaigns,
		&fakeEmployees{employees: rosterOf("a", "b", "c", "d")},
		&fakeCriteria{},
		&fakePairs{existing: [][2]string{{"c", "d"}}},
		store, notifier)

	resp, err := svc.ConfirmPairs(context.Background(), "camp-1", "hr-1", dto.ConfirmPairsRequest{
		Pairs: []dto.ConfirmPairInput{
			{Employee1ID: "a", Employee2ID: "b"},
			{Employee1ID: "c", Employee2ID: "d"},  // already exists
			{Employee1ID: "a", Employee2ID: "a"},  // self pair
			{Employee1ID: "a", Employee2ID: "zz"}, // unknown employee
		},
		SendEmails: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.TotalSaved)
	require.Len(t, resp.PairsSaved, 1)
	assert.Equal(t, "1 pairs confirmed and saved successfully", resp.Message)
	require.Len(t, resp.Errors, 3)
	assert.Contains(t, resp.Errors[0], "already exists")
	assert.Contains(t, resp.Errors[1], "themselves")
	assert.Contains(t, resp.Errors[2], "not found")

	// Successful confirmation advances the workflow and notifies the pair.
	assert.Contains(t, campaigns.completedSteps, models.WorkflowStepConfirm)
	assert.Len(t, notifier.notified, 1)
}

func TestConfirmPairsNormalizesOrder(t *testing.T) {
	store := &fakeStore{}
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b")},
		&fakeCriteria{}, &fakePairs{}, store, &fakeNotifier{})

	resp, err := svc.ConfirmPairs(context.Background(), "camp-1", "hr-1", dto.ConfirmPairsRequest{
		Pairs: []dto.ConfirmPairInput{{Employee1ID: "b", Employee2ID: "a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalSaved)
	require.Len(t, store.received, 1)
	assert.Equal(t, "a", store.received[0].Employee1ID)
	assert.Equal(t, "b", store.received[0].Employee2ID)
}

func TestConfirmPairsDuplicateWithinBatch(t *testing.T) {
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b")},
		&fakeCriteria{}, &fakePairs{}, &fakeStore{}, &fakeNotifier{})

	resp, err := svc.ConfirmPairs(context.Background(), "camp-1", "hr-1", dto.ConfirmPairsRequest{
		Pairs: []dto.ConfirmPairInput{
			{Employee1ID: "a", Employee2ID: "b"},
			{Employee1ID: "b", Employee2ID: "a"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalSaved)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "already exists")
}

func TestConfirmPairsRacedDuplicateReported(t *testing.T) {
	store := &fakeStore{duplicates: map[[2]string]bool{{"a", "b"}: true}}
	notifier := &fakeNotifier{}
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b")},
		&fakeCriteria{}, &fakePairs{}, store, notifier)

	resp, err := svc.ConfirmPairs(context.Background(), "camp-1", "hr-1", dto.ConfirmPairsRequest{
		Pairs:      []dto.ConfirmPairInput{{Employee1ID: "a", Employee2ID: "b"}},
		SendEmails: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalSaved)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "already exists")
	assert.Empty(t, notifier.notified)
}

func TestConfirmPairsStampsCriteriaSnapshot(t *testing.T) {
	store := &fakeStore{}
	criteria := []models.MatchingCriterion{{AttributeKey: "department", Rule: "not_same"}}
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{employees: rosterOf("a", "b")},
		&fakeCriteria{criteria: criteria}, &fakePairs{}, store, &fakeNotifier{})

	_, err := svc.ConfirmPairs(context.Background(), "camp-1", "hr-1", dto.ConfirmPairsRequest{
		Pairs: []dto.ConfirmPairInput{{Employee1ID: "a", Employee2ID: "b"}},
	})
	require.NoError(t, err)
	require.Len(t, store.received, 1)
	assert.JSONEq(t, `[{"attribute_key":"department","rule":"not_same"}]`, string(store.received[0].CriteriaSnapshot))
	assert.Equal(t, "hr-1", store.received[0].CreatedBy)
}

func TestEmailSummary(t *testing.T) {
	svc := newMatchingService(t,
		&fakeCampaigns{campaign: testCampaign()},
		&fakeEmployees{},
		&fakeCriteria{},
		&fakePairs{summary: map[string]int{
			models.EmailStatusSent:    3,
			models.EmailStatusFailed:  1,
			models.EmailStatusPending: 1,
		}},
		&fakeStore{}, &fakeNotifier{})

	summary, err := svc.EmailSummary(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalPairs)
	assert.Equal(t, 3, summary.EmailsSent)
	assert.InDelta(t, 0.6, summary.SuccessRate, 1e-9)
}

func TestNewMatchingServiceRejectsUnknownStrategy(t *testing.T) {
	_, err := NewMatchingService(&fakeCampaigns{}, &fakeEmployees{}, &fakeCriteria{}, &fakePairs{}, &fakeStore{}, &fakeNotifier{}, nil, zap.NewNop(), MatchingConfig{SolverStrategy: "simulated-annealing"})
	require.Error(t, err)
}
