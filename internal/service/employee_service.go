package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

// columnSynonyms maps the canonical roster fields to the header spellings
// accepted in uploaded spreadsheets. Matching is case-insensitive; any
// unmapped column becomes an employee attribute.
var columnSynonyms = map[string][]string{
	"name":         {"name", "full_name", "employee_name", "nom", "prénom", "first_name", "last_name"},
	"email":        {"email", "email_address", "e-mail", "mail", "courriel"},
	"arrival_date": {"arrival_date", "start_date", "hire_date", "date_arrivee", "date_embauche", "joining_date"},
}

// dateLayouts accepted for the arrival date cell, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	time.RFC3339,
}

type employeeRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]models.Employee, error)
	CountByCampaign(ctx context.Context, campaignID string) (int, error)
	ReplaceRoster(ctx context.Context, campaignID string, employees []models.Employee, attrs []models.EmployeeAttribute, replace bool) error
	DeleteByCampaign(ctx context.Context, campaignID string) (int, error)
	AttributesByCampaign(ctx context.Context, campaignID string) (map[string]map[string]string, error)
	DistinctAttributeKeys(ctx context.Context, campaignID string) ([]string, error)
}

// ImportConfig bounds roster uploads.
type ImportConfig struct {
	MaxFileSizeBytes int64
	MaxRows          int
}

// EmployeeService manages campaign rosters, including the spreadsheet
// import that feeds the matching engine its attributes.
type EmployeeService struct {
	campaigns matchingCampaignRepository
	repo      employeeRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    ImportConfig
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(campaigns matchingCampaignRepository, repo employeeRepository, validate *validator.Validate, logger *zap.Logger, config ImportConfig) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EmployeeService{campaigns: campaigns, repo: repo, validator: validate, logger: logger, config: config}
}

// List returns the roster of a campaign with attribute bags attached.
func (s *EmployeeService) List(ctx context.Context, campaignID, actorID string) ([]dto.EmployeeItem, error) {
	if _, err := requireOwnedCampaign(ctx, s.campaigns, campaignID, actorID); err != nil {
		return nil, err
	}

	employees, err := s.repo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	attrs, err := s.repo.AttributesByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attributes")
	}

	items := make([]dto.EmployeeItem, 0, len(employees))
	for _, emp := range employees {
		bag := attrs[emp.ID]
		if bag == nil {
			bag = map[string]string{}
		}
		items = append(items, dto.EmployeeItem{
			ID:          emp.ID,
			Name:        emp.Name,
			Email:       emp.Email,
			ArrivalDate: emp.ArrivalDate,
			Attributes:  bag,
		})
	}
	return items, nil
}

// ImportRoster ingests an Excel workbook. The first sheet's first row is
// the header; name and email are required, arrival date optional, every
// other column lands in the attribute bag. Row failures are collected, not
// fatal; the surviving rows commit in one transaction.
func (s *EmployeeService) ImportRoster(ctx context.Context, campaignID, actorID string, file io.Reader, size int64, opts dto.ImportOptions) (*dto.ImportResult, error) {
	if _, err := requireOwnedCampaign(ctx, s.campaigns, campaignID, actorID); err != nil {
		return nil, err
	}
	if s.config.MaxFileSizeBytes > 0 && size > s.config.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds the maximum upload size of %d bytes", s.config.MaxFileSizeBytes))
	}

	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is not a readable Excel workbook")
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workbook has no sheets")
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read sheet")
	}
	if len(rows) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sheet has no data rows")
	}
	if s.config.MaxRows > 0 && len(rows)-1 > s.config.MaxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("sheet exceeds the maximum of %d data rows", s.config.MaxRows))
	}

	header := rows[0]
	nameCol, emailCol, dateCol := -1, -1, -1
	attrCols := make(map[int]string)
	for i, raw := range header {
		col := strings.TrimSpace(raw)
		if col == "" {
			continue
		}
		switch canonicalColumn(col) {
		case "name":
			if nameCol < 0 {
				nameCol = i
			}
		case "email":
			if emailCol < 0 {
				emailCol = i
			}
		case "arrival_date":
			if dateCol < 0 {
				dateCol = i
			}
		default:
			attrCols[i] = col
		}
	}
	if nameCol < 0 || emailCol < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sheet must contain name and email columns")
	}

	result := &dto.ImportResult{TotalRows: len(rows) - 1}
	var employees []models.Employee
	var attrs []models.EmployeeAttribute
	seenEmails := make(map[string]int)
	attrKeySet := make(map[string]struct{})

	for rowIdx, row := range rows[1:] {
		line := rowIdx + 2
		name := strings.TrimSpace(cell(row, nameCol))
		email := strings.ToLower(strings.TrimSpace(cell(row, emailCol)))

		if name == "" && email == "" {
			continue
		}
		result.ProcessedRows++

		if name == "" {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Reason: "missing name"})
			continue
		}
		if email == "" {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Reason: "missing email"})
			continue
		}
		if err := s.validator.Var(email, "email"); err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Reason: fmt.Sprintf("invalid email %q", email)})
			continue
		}
		if prev, dup := seenEmails[email]; dup {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Reason: fmt.Sprintf("duplicate email %q (first seen on row %d)", email, prev)})
			continue
		}
		seenEmails[email] = line

		arrival := time.Now().UTC()
		if dateCol >= 0 {
			if raw := strings.TrimSpace(cell(row, dateCol)); raw != "" {
				parsed, err := parseArrivalDate(raw)
				if err != nil {
					result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Reason: fmt.Sprintf("unparseable arrival date %q", raw)})
					continue
				}
				arrival = parsed
			}
		}

		employeeID := uuid.NewString()
		for colIdx, key := range attrCols {
			value := strings.TrimSpace(cell(row, colIdx))
			if value == "" {
				continue
			}
			attrs = append(attrs, models.EmployeeAttribute{EmployeeID: employeeID, Key: key, Value: value})
			attrKeySet[key] = struct{}{}
		}

		employees = append(employees, models.Employee{ID: employeeID, Name: name, Email: email, ArrivalDate: arrival})
	}

	if len(employees) == 0 {
		result.Success = false
		return result, nil
	}

	if opts.ReplaceExisting {
		deleted, err := s.repo.CountByCampaign(ctx, campaignID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count roster")
		}
		result.DeletedEmployees = deleted
	}

	if err := s.repo.ReplaceRoster(ctx, campaignID, employees, attrs, opts.ReplaceExisting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save roster")
	}

	if err := s.campaigns.CompleteStep(ctx, campaignID, models.WorkflowStepUpload); err != nil {
		s.logger.Warn("failed to advance campaign workflow", zap.String("campaign_id", campaignID), zap.Error(err))
	}

	result.Success = true
	result.CreatedEmployees = len(employees)
	result.AttributeKeys = sortedKeys(attrKeySet)

	s.logger.Info("roster imported",
		zap.String("campaign_id", campaignID),
		zap.Int("created", result.CreatedEmployees),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

// DeleteRoster removes every employee of a campaign, and with them their
// attributes, pairs and evaluations.
func (s *EmployeeService) DeleteRoster(ctx context.Context, campaignID, actorID string) (int, error) {
	if _, err := requireOwnedCampaign(ctx, s.campaigns, campaignID, actorID); err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteByCampaign(ctx, campaignID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete roster")
	}
	s.logger.Info("roster deleted", zap.String("campaign_id", campaignID), zap.Int("deleted", deleted))
	return deleted, nil
}

func canonicalColumn(col string) string {
	lower := strings.ToLower(col)
	for field, names := range columnSynonyms {
		for _, name := range names {
			if lower == name {
				return field
			}
		}
	}
	return ""
}

func parseArrivalDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", raw)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
