package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

type fakeRoster struct {
	employees  []models.Employee
	attrs      map[string]map[string]string
	count      int
	saved      []models.Employee
	savedAttrs []models.EmployeeAttribute
	replace    bool
}

func (f *fakeRoster) ListByCampaign(context.Context, string) ([]models.Employee, error) {
	return f.employees, nil
}

func (f *fakeRoster) CountByCampaign(context.Context, string) (int, error) {
	return f.count, nil
}

func (f *fakeRoster) ReplaceRoster(_ context.Context, _ string, employees []models.Employee, attrs []models.EmployeeAttribute, replace bool) error {
	f.saved = employees
	f.savedAttrs = attrs
	f.replace = replace
	return nil
}

func (f *fakeRoster) DeleteByCampaign(context.Context, string) (int, error) {
	deleted := len(f.employees)
	f.employees = nil
	return deleted, nil
}

func (f *fakeRoster) AttributesByCampaign(context.Context, string) (map[string]map[string]string, error) {
	return f.attrs, nil
}

func (f *fakeRoster) DistinctAttributeKeys(context.Context, string) ([]string, error) {
	return nil, nil
}

func newEmployeeService(campaigns *fakeCampaigns, repo *fakeRoster, config ImportConfig) *EmployeeService {
	return NewEmployeeService(campaigns, repo, nil, zap.NewNop(), config)
}

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportRosterCreatesEmployeesAndAttributes(t *testing.T) {
	campaigns := &fakeCampaigns{campaign: testCampaign()}
	repo := &fakeRoster{count: 3}
	svc := newEmployeeService(campaigns, repo, ImportConfig{})

	buf := workbook(t,
		[]interface{}{"Name", "Email", "Arrival_Date", "Department"},
		[]interface{}{"Alice", "alice@example.com", "2024-03-01", "Engineering"},
		[]interface{}{"Bob", "bob@example.com", "2024-04-15", "Sales"},
	)

	result, err := svc.ImportRoster(context.Background(), "camp-1", "hr-1", buf, int64(buf.Len()), dto.ImportOptions{ReplaceExisting: true})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.CreatedEmployees)
	assert.Equal(t, 3, result.DeletedEmployees)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"Department"}, result.AttributeKeys)

	require.Len(t, repo.saved, 2)
	assert.True(t, repo.replace)
	assert.Equal(t, "alice@example.com", repo.saved[0].Email)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), repo.saved[0].ArrivalDate)

	require.Len(t, repo.savedAttrs, 2)
	assert.Equal(t, repo.saved[0].ID, repo.savedAttrs[0].EmployeeID)
	assert.Equal(t, "Department", repo.savedAttrs[0].Key)
	assert.Equal(t, "Engineering", repo.savedAttrs[0].Value)

	assert.Equal(t, []int{models.WorkflowStepUpload}, campaigns.completedSteps)
}

func TestImportRosterAcceptsFrenchHeaders(t *testing.T) {
	repo := &fakeRoster{}
	svc := newEmployeeService(&fakeCampaigns{campaign: testCampaign()}, repo, ImportConfig{})

	buf := workbook(t,
		[]interface{}{"Nom", "Courriel", "Date_Embauche"},
		[]interface{}{"Chloé", "chloe@example.com", "01/02/2024"},
	)

	result, err := svc.ImportRoster(context.Background(), "camp-1", "hr-1", buf, int64(buf.Len()), dto.ImportOptions{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "Chloé", repo.saved[0].Name)
	assert.False(t, repo.replace)
}

func TestImportRosterCollectsRowErrors(t *testing.T) {
	repo := &fakeRoster{}
	svc := newEmployeeService(&fakeCampaigns{campaign: testCampaign()}, repo, ImportConfig{})

	buf := workbook(t,
		[]interface{}{"Name", "Email", "Arrival_Date"},
		[]interface{}{"Alice", "alice@example.com", "2024-03-01"},
		[]interface{}{"", "missing-name@example.com", ""},
		[]interface{}{"Carol", "not-an-email", ""},
		[]interface{}{"Dave", "alice@example.com", ""},
		[]interface{}{"Erin", "erin@example.com", "yesterday"},
	)

	result, err := svc.ImportRoster(context.Background(), "camp-1", "hr-1", buf, int64(buf.Len()), dto.ImportOptions{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 1, result.CreatedEmployees)
	require.Len(t, result.Errors, 4)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[2].Reason, "duplicate email")
	assert.Contains(t, result.Errors[3].Reason, "unparseable arrival date")
}

func TestImportRosterRejectsOversizedFile(t *testing.T) {
	svc := newEmployeeService(&fakeCampaigns{campaign: testCampaign()}, &fakeRoster{}, ImportConfig{MaxFileSizeBytes: 10})

	buf := workbook(t,
		[]interface{}{"Name", "Email"},
		[]interface{}{"Alice", "alice@example.com"},
	)

	_, err := svc.ImportRoster(context.Background(), "camp-1", "hr-1", buf, int64(buf.Len()), dto.ImportOptions{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestImportRosterRequiresNameAndEmailColumns(t *testing.T) {
	svc := newEmployeeService(&fakeCampaigns{campaign: testCampaign()}, &fakeRoster{}, ImportConfig{})

	buf := workbook(t,
		[]interface{}{"Department", "Location"},
		[]interface{}{"Engineering", "Paris"},
	)

	_, err := svc.ImportRoster(context.Background(), "camp-1", "hr-1", buf, int64(buf.Len()), dto.ImportOptions{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "name and email")
}

func TestImportRosterAllRowsRejected(t *testing.T) {
	repo := &fakeRoster{}
	svc := newEmployeeService(&fakeCampaigns{campaign: testCampaign()}, repo, ImportConfig{})

	buf := workbook(t,
		[]interface{}{"Name", "Email"},
		[]interface{}{"Alice", "broken"},
	)

	result, err := svc.ImportRoster(context.Background(), "camp-1", "hr-1", buf, int64(buf.Len()), dto.ImportOptions{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Nil(t, repo.saved)
	require.Len(t, result.Errors, 1)
}

func TestDeleteRosterRequiresOwnership(t *testing.T) {
	repo := &fakeRoster{employees: rosterOf("a", "b")}
	svc := newEmployeeService(&fakeCampaigns{campaign: testCampaign()}, repo, ImportConfig{})

	_, err := svc.DeleteRoster(context.Background(), "camp-1", "hr-2")
	require.Error(t, err)
	assert.Len(t, repo.employees, 2)

	deleted, err := svc.DeleteRoster(context.Background(), "camp-1", "hr-1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Empty(t, repo.employees)
}

func TestListAttachesAttributeBags(t *testing.T) {
	repo := &fakeRoster{
		employees: []models.Employee{
			{ID: "emp-1", Name: "Alice", Email: "alice@example.com"},
			{ID: "emp-2", Name: "Bob", Email: "bob@example.com"},
		},
		attrs: map[string]map[string]string{
			"emp-1": {"department": "Engineering"},
		},
	}
	svc := newEmployeeService(&fakeCampaigns{campaign: testCampaign()}, repo, ImportConfig{})

	items, err := svc.List(context.Background(), "camp-1", "hr-1")
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "Engineering", items[0].Attributes["department"])
	assert.NotNil(t, items[1].Attributes)
	assert.Empty(t, items[1].Attributes)
}
