package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

type criteriaRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]models.MatchingCriterion, error)
	IsLocked(ctx context.Context, campaignID string) (bool, error)
	ReplaceAll(ctx context.Context, campaignID string, criteria []models.MatchingCriterion) error
}

type criteriaEmployeeRepository interface {
	DistinctAttributeKeys(ctx context.Context, campaignID string) ([]string, error)
}

type criteriaPairRepository interface {
	CountByCampaign(ctx context.Context, campaignID string) (int, error)
}

// CriteriaService manages the matching criteria of a campaign: available
// attribute keys, the replace-all save and the lock lifecycle.
type CriteriaService struct {
	campaigns matchingCampaignRepository
	criteria  criteriaRepository
	employees criteriaEmployeeRepository
	pairs     criteriaPairRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCriteriaService constructs a CriteriaService.
func NewCriteriaService(
	campaigns matchingCampaignRepository,
	criteria criteriaRepository,
	employees criteriaEmployeeRepository,
	pairs criteriaPairRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *CriteriaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CriteriaService{
		campaigns: campaigns,
		criteria:  criteria,
		employees: employees,
		pairs:     pairs,
		validator: validate,
		logger:    logger,
	}
}

// AvailableAttributes lists the distinct attribute keys present in the
// campaign roster, the only keys criteria may reference.
func (s *CriteriaService) AvailableAttributes(ctx context.Context, campaignID, actorID string) (*dto.AvailableAttributesResponse, error) {
	if _, err := s.requireCampaign(ctx, campaignID, actorID); err != nil {
		return nil, err
	}

	keys, err := s.employees.DistinctAttributeKeys(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attribute keys")
	}

	return &dto.AvailableAttributesResponse{
		CampaignID:          campaignID,
		AvailableAttributes: keys,
		TotalCount:          len(keys),
	}, nil
}

// SaveCriteria replaces the whole criteria set of a campaign. Rejected
// entirely once the criteria are locked; unknown attribute keys and
// duplicate keys in the payload also reject the call.
func (s *CriteriaService) SaveCriteria(ctx context.Context, campaignID, actorID string, req dto.SaveCriteriaRequest) (*dto.SaveCriteriaResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid criteria payload")
	}

	if _, err := s.requireCampaign(ctx, campaignID, actorID); err != nil {
		return nil, err
	}

	locked, err := s.criteria.IsLocked(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check criteria lock")
	}
	if locked {
		return nil, appErrors.ErrCriteriaLocked
	}

	keys, err := s.employees.DistinctAttributeKeys(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attribute keys")
	}
	known := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		known[key] = struct{}{}
	}

	seen := make(map[string]struct{}, len(req.Criteria))
	criteria := make([]models.MatchingCriterion, 0, len(req.Criteria))
	for _, item := range req.Criteria {
		if _, ok := known[item.AttributeKey]; !ok {
			return nil, appErrors.Clone(appErrors.ErrUnknownAttribute,
				fmt.Sprintf("attribute %q not found in campaign employees", item.AttributeKey))
		}
		if _, dup := seen[item.AttributeKey]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("attribute %q appears more than once", item.AttributeKey))
		}
		seen[item.AttributeKey] = struct{}{}
		criteria = append(criteria, models.MatchingCriterion{
			AttributeKey: item.AttributeKey,
			Rule:         item.Rule,
			CreatedBy:    actorID,
		})
	}

	if err := s.criteria.ReplaceAll(ctx, campaignID, criteria); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save criteria")
	}

	if err := s.campaigns.CompleteStep(ctx, campaignID, models.WorkflowStepCriteria); err != nil {
		s.logger.Warn("failed to advance campaign workflow", zap.String("campaign_id", campaignID), zap.Error(err))
	}

	saved := make([]dto.SavedCriterion, 0, len(criteria))
	for _, c := range criteria {
		saved = append(saved, dto.SavedCriterion{ID: c.ID, AttributeKey: c.AttributeKey, Rule: c.Rule})
	}

	s.logger.Info("criteria saved", zap.String("campaign_id", campaignID), zap.Int("count", len(saved)))

	return &dto.SaveCriteriaResponse{
		Success:       true,
		Message:       fmt.Sprintf("%d criteria saved successfully", len(saved)),
		CriteriaSaved: saved,
		TotalSaved:    len(saved),
	}, nil
}

// History reports the criteria set, its lock state and the pair count that
// caused the lock.
func (s *CriteriaService) History(ctx context.Context, campaignID, actorID string) (*dto.CriteriaHistoryResponse, error) {
	campaign, err := s.requireCampaign(ctx, campaignID, actorID)
	if err != nil {
		return nil, err
	}

	rows, err := s.criteria.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criteria")
	}

	locked := false
	criteria := make([]dto.SavedCriterion, 0, len(rows))
	for _, row := range rows {
		criteria = append(criteria, dto.SavedCriterion{ID: row.ID, AttributeKey: row.AttributeKey, Rule: row.Rule})
		if row.Status == models.CriteriaLocked {
			locked = true
		}
	}

	pairCount, err := s.pairs.CountByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pairs")
	}

	return &dto.CriteriaHistoryResponse{
		CampaignID:     campaign.ID,
		CampaignTitle:  campaign.Title,
		Criteria:       criteria,
		TotalCriteria:  len(criteria),
		IsLocked:       locked,
		PairsGenerated: pairCount,
	}, nil
}

func (s *CriteriaService) requireCampaign(ctx context.Context, campaignID, actorID string) (*models.Campaign, error) {
	return requireOwnedCampaign(ctx, s.campaigns, campaignID, actorID)
}
