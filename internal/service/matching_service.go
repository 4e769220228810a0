package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/matching"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

type matchingCampaignRepository interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
	CompleteStep(ctx context.Context, campaignID string, step int) error
}

type matchingEmployeeRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]models.Employee, error)
	AttributesByCampaign(ctx context.Context, campaignID string) (map[string]map[string]string, error)
}

type matchingCriteriaRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]models.MatchingCriterion, error)
}

type matchingPairRepository interface {
	ExistingPairs(ctx context.Context, campaignID string) ([][2]string, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]models.EmployeePair, error)
	CountByCampaign(ctx context.Context, campaignID string) (int, error)
	EmailStatusSummary(ctx context.Context, campaignID string) (map[string]int, error)
}

type pairBatchStore interface {
	ConfirmBatch(ctx context.Context, campaignID string, pairs []*models.EmployeePair) (created []int, duplicate []int, err error)
}

// pairNotifier enqueues pair notification emails; delivery is asynchronous
// and reported through the pair email status.
type pairNotifier interface {
	NotifyPairs(ctx context.Context, campaign *models.Campaign, pairIDs []string) error
}

// MatchingConfig tunes the pair generation engine.
type MatchingConfig struct {
	SolverStrategy string
	MaxEmployees   int
}

// MatchingService implements pair generation previews and batch
// confirmation for a campaign.
type MatchingService struct {
	campaigns matchingCampaignRepository
	employees matchingEmployeeRepository
	criteria  matchingCriteriaRepository
	pairs     matchingPairRepository
	store     pairBatchStore
	notifier  pairNotifier
	solver    matching.Solver
	validator *validator.Validate
	logger    *zap.Logger
	config    MatchingConfig
}

// NewMatchingService constructs a MatchingService. An unknown solver
// strategy is a configuration error and fails construction.
func NewMatchingService(
	campaigns matchingCampaignRepository,
	employees matchingEmployeeRepository,
	criteria matchingCriteriaRepository,
	pairs matchingPairRepository,
	store pairBatchStore,
	notifier pairNotifier,
	validate *validator.Validate,
	logger *zap.Logger,
	config MatchingConfig,
) (*MatchingService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	solver, err := matching.NewSolver(config.SolverStrategy)
	if err != nil {
		return nil, err
	}
	return &MatchingService{
		campaigns: campaigns,
		employees: employees,
		criteria:  criteria,
		pairs:     pairs,
		store:     store,
		notifier:  notifier,
		solver:    solver,
		validator: validate,
		logger:    logger,
		config:    config,
	}, nil
}

// GeneratePairs previews a maximum set of eligible pairs for a campaign.
// Nothing is persisted; repeated calls over unchanged data return the same
// pairs. A positive limit truncates the result and is reflected in the
// status message.
func (s *MatchingService) GeneratePairs(ctx context.Context, campaignID, actorID string, limit int) (*dto.GeneratePairsResponse, error) {
	campaign, err := s.requireCampaign(ctx, campaignID, actorID)
	if err != nil {
		return nil, err
	}

	employees, err := s.employees.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if len(employees) < 2 {
		return nil, appErrors.ErrInsufficientEmployees
	}
	if s.config.MaxEmployees > 0 && len(employees) > s.config.MaxEmployees {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("campaign roster exceeds the matching limit of %d employees", s.config.MaxEmployees))
	}

	attrs, err := s.employees.AttributesByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attributes")
	}

	criteria, criteriaUsed, err := s.loadCriteria(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	existingRows, err := s.pairs.ExistingPairs(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing pairs")
	}
	existing := matching.NewPairSet(existingRows)

	ids := make([]string, len(employees))
	byID := make(map[string]models.Employee, len(employees))
	for i, emp := range employees {
		ids[i] = emp.ID
		byID[emp.ID] = emp
	}

	edges := matching.BuildEdges(ids, attrs, criteria, existing)
	matched, err := s.solver.Solve(ids, edges)
	if err != nil {
		s.logger.Warn("exact solver failed, falling back to greedy",
			zap.String("campaign_id", campaignID),
			zap.String("solver", s.solver.Name()),
			zap.Error(err))
		matched, err = (matching.GreedySolver{}).Solve(ids, edges)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pair generation failed")
		}
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	previews := make([]dto.PairPreview, 0, len(matched))
	for _, edge := range matched {
		e1, e2 := byID[edge.A], byID[edge.B]
		previews = append(previews, dto.PairPreview{
			Employee1: dto.PairEmployee{ID: e1.ID, Name: e1.Name, Email: e1.Email},
			Employee2: dto.PairEmployee{ID: e2.ID, Name: e2.Name, Email: e2.Email},
		})
	}

	totalPossible := matching.TotalPossiblePairs(len(employees), existing.Len())
	s.logger.Info("pair preview generated",
		zap.String("campaign_id", campaign.ID),
		zap.Int("employees", len(employees)),
		zap.Int("generated", len(previews)),
		zap.Int("existing", existing.Len()),
		zap.String("solver", s.solver.Name()))

	return &dto.GeneratePairsResponse{
		Success:            true,
		Pairs:              previews,
		TotalPossible:      totalPossible,
		TotalGenerated:     len(previews),
		CriteriaUsed:       criteriaUsed,
		ExistingPairsCount: existing.Len(),
		Message:            statusMessage(len(previews), limit),
	}, nil
}

// ConfirmPairs durably creates the selected pairs. Validation is per item:
// invalid entries are reported and skipped while the rest of the batch
// commits. The first successful confirmation locks the campaign criteria.
func (s *MatchingService) ConfirmPairs(ctx context.Context, campaignID, actorID string, req dto.ConfirmPairsRequest) (*dto.ConfirmPairsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirmation payload")
	}

	campaign, err := s.requireCampaign(ctx, campaignID, actorID)
	if err != nil {
		return nil, err
	}

	employees, err := s.employees.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	byID := make(map[string]models.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}

	existingRows, err := s.pairs.ExistingPairs(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing pairs")
	}
	existing := matching.NewPairSet(existingRows)

	snapshot, err := s.criteriaSnapshot(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	var itemErrors []string
	var toCreate []*models.EmployeePair
	var inputs []dto.ConfirmPairInput

	for _, item := range req.Pairs {
		e1, ok1 := byID[item.Employee1ID]
		e2, ok2 := byID[item.Employee2ID]
		if !ok1 || !ok2 {
			itemErrors = append(itemErrors, fmt.Sprintf("Employee with ID %s or %s not found", item.Employee1ID, item.Employee2ID))
			continue
		}
		if item.Employee1ID == item.Employee2ID {
			itemErrors = append(itemErrors, fmt.Sprintf("Employee %s cannot be paired with themselves", e1.Name))
			continue
		}
		if existing.Contains(item.Employee1ID, item.Employee2ID) {
			itemErrors = append(itemErrors, fmt.Sprintf("Pair %s & %s already exists", e1.Name, e2.Name))
			continue
		}
		// Covers duplicates inside the request itself.
		existing.Add(item.Employee1ID, item.Employee2ID)

		first, second := item.Employee1ID, item.Employee2ID
		if second < first {
			first, second = second, first
		}
		toCreate = append(toCreate, &models.EmployeePair{
			CampaignID:       campaignID,
			Employee1ID:      first,
			Employee2ID:      second,
			CriteriaSnapshot: snapshot,
			CreatedBy:        actorID,
		})
		inputs = append(inputs, item)
	}

	var saved []dto.SavedPair
	var savedIDs []string
	if len(toCreate) > 0 {
		created, duplicate, err := s.store.ConfirmBatch(ctx, campaignID, toCreate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save pairs")
		}
		for _, idx := range duplicate {
			e1 := byID[inputs[idx].Employee1ID]
			e2 := byID[inputs[idx].Employee2ID]
			itemErrors = append(itemErrors, fmt.Sprintf("Pair %s & %s already exists", e1.Name, e2.Name))
		}
		for _, idx := range created {
			e1 := byID[inputs[idx].Employee1ID]
			e2 := byID[inputs[idx].Employee2ID]
			saved = append(saved, dto.SavedPair{
				PairID:        toCreate[idx].ID,
				Employee1ID:   e1.ID,
				Employee1Name: e1.Name,
				Employee2ID:   e2.ID,
				Employee2Name: e2.Name,
			})
			savedIDs = append(savedIDs, toCreate[idx].ID)
		}
	}

	if len(saved) > 0 {
		if err := s.campaigns.CompleteStep(ctx, campaignID, models.WorkflowStepConfirm); err != nil {
			s.logger.Warn("failed to advance campaign workflow", zap.String("campaign_id", campaignID), zap.Error(err))
		}
	}

	if req.SendEmails && len(savedIDs) > 0 && s.notifier != nil {
		if err := s.notifier.NotifyPairs(ctx, campaign, savedIDs); err != nil {
			itemErrors = append(itemErrors, fmt.Sprintf("Email sending failed: %v", err))
		}
	}

	s.logger.Info("pairs confirmed",
		zap.String("campaign_id", campaignID),
		zap.Int("saved", len(saved)),
		zap.Int("rejected", len(itemErrors)))

	return &dto.ConfirmPairsResponse{
		Success:    true,
		Message:    fmt.Sprintf("%d pairs confirmed and saved successfully", len(saved)),
		PairsSaved: saved,
		TotalSaved: len(saved),
		Errors:     itemErrors,
	}, nil
}

// History returns the confirmed pairs of a campaign together with the email
// delivery summary.
func (s *MatchingService) History(ctx context.Context, campaignID, actorID string) (*dto.MatchingHistoryResponse, error) {
	campaign, err := s.requireCampaign(ctx, campaignID, actorID)
	if err != nil {
		return nil, err
	}

	pairs, err := s.pairs.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pairs")
	}

	criteria, err := s.criteria.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criteria")
	}
	criteriaHistory := make([]dto.SavedCriterion, 0, len(criteria))
	for _, c := range criteria {
		criteriaHistory = append(criteriaHistory, dto.SavedCriterion{ID: c.ID, AttributeKey: c.AttributeKey, Rule: c.Rule})
	}

	summary, err := s.EmailSummary(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	resp := &dto.MatchingHistoryResponse{
		CampaignID:      campaign.ID,
		CampaignTitle:   campaign.Title,
		TotalPairs:      len(pairs),
		Pairs:           pairs,
		CriteriaHistory: criteriaHistory,
		EmailSummary:    *summary,
	}
	if len(pairs) > 0 {
		// List is ordered newest first.
		resp.LastGenerationDate = &pairs[0].CreatedAt
	}
	return resp, nil
}

// EmailSummary aggregates pair notification delivery state for a campaign.
func (s *MatchingService) EmailSummary(ctx context.Context, campaignID string) (*dto.EmailSummary, error) {
	counts, err := s.pairs.EmailStatusSummary(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load email summary")
	}

	summary := &dto.EmailSummary{
		EmailsSent:    counts[models.EmailStatusSent],
		EmailsPending: counts[models.EmailStatusPending],
		EmailsFailed:  counts[models.EmailStatusFailed],
	}
	summary.TotalPairs = summary.EmailsSent + summary.EmailsPending + summary.EmailsFailed
	if summary.TotalPairs > 0 {
		summary.SuccessRate = float64(summary.EmailsSent) / float64(summary.TotalPairs)
	}
	return summary, nil
}

func (s *MatchingService) requireCampaign(ctx context.Context, campaignID, actorID string) (*models.Campaign, error) {
	return requireOwnedCampaign(ctx, s.campaigns, campaignID, actorID)
}

func (s *MatchingService) loadCriteria(ctx context.Context, campaignID string) ([]matching.Criterion, []dto.CriterionUsed, error) {
	rows, err := s.criteria.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criteria")
	}

	criteria := make([]matching.Criterion, 0, len(rows))
	used := make([]dto.CriterionUsed, 0, len(rows))
	for _, row := range rows {
		rule, err := matching.ParseRule(row.Rule)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored criterion is invalid")
		}
		criteria = append(criteria, matching.Criterion{Key: row.AttributeKey, Rule: rule})
		used = append(used, dto.CriterionUsed{AttributeKey: row.AttributeKey, Rule: row.Rule})
	}
	return criteria, used, nil
}

func (s *MatchingService) criteriaSnapshot(ctx context.Context, campaignID string) ([]byte, error) {
	rows, err := s.criteria.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criteria")
	}
	snapshot := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		snapshot = append(snapshot, map[string]string{"attribute_key": row.AttributeKey, "rule": row.Rule})
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot criteria")
	}
	return payload, nil
}

func statusMessage(generated, limit int) string {
	switch {
	case generated == 0:
		return "No valid pairs could be generated with the current criteria"
	case limit > 0 && generated < limit:
		return fmt.Sprintf("Only %d pairs created, less than requested limit of %d", generated, limit)
	default:
		return fmt.Sprintf("%d final pairs created successfully", generated)
	}
}
