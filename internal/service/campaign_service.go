package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

type campaignRepository interface {
	List(ctx context.Context, hrManagerID string, filter dto.CampaignFilter) ([]models.Campaign, int, error)
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) error
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id string) error
	FindWorkflow(ctx context.Context, campaignID string) (*models.CampaignWorkflow, error)
	CompleteStep(ctx context.Context, campaignID string, step int) error
}

// CampaignService covers campaign CRUD and the five-step workflow state.
type CampaignService struct {
	repo      campaignRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCampaignService constructs a CampaignService.
func NewCampaignService(repo campaignRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *CampaignService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CampaignService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the campaigns owned by the manager.
func (s *CampaignService) List(ctx context.Context, hrManagerID string, filter dto.CampaignFilter) ([]models.Campaign, int, error) {
	campaigns, total, err := s.repo.List(ctx, hrManagerID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaigns")
	}
	return campaigns, total, nil
}

// Get loads one campaign, enforcing ownership.
func (s *CampaignService) Get(ctx context.Context, campaignID, actorID string) (*models.Campaign, error) {
	return requireOwnedCampaign(ctx, s.repo, campaignID, actorID)
}

// Create validates and persists a new campaign for the manager.
func (s *CampaignService) Create(ctx context.Context, hrManagerID string, req dto.CreateCampaignRequest) (*models.Campaign, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign payload")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must be after start date")
	}

	campaign := &models.Campaign{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		HRManagerID: hrManagerID,
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create campaign")
	}

	s.invalidateDashboard(ctx, hrManagerID)
	s.logger.Info("campaign created", zap.String("campaign_id", campaign.ID), zap.String("hr_manager_id", hrManagerID))
	return campaign, nil
}

// Update modifies a campaign owned by the actor.
func (s *CampaignService) Update(ctx context.Context, campaignID, actorID string, req dto.UpdateCampaignRequest) (*models.Campaign, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign payload")
	}

	campaign, err := requireOwnedCampaign(ctx, s.repo, campaignID, actorID)
	if err != nil {
		return nil, err
	}

	campaign.Title = req.Title
	campaign.Description = req.Description
	campaign.StartDate = req.StartDate
	campaign.EndDate = req.EndDate
	if !campaign.EndDate.After(campaign.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must be after start date")
	}

	if err := s.repo.Update(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update campaign")
	}
	return campaign, nil
}

// Delete removes a campaign and everything under it.
func (s *CampaignService) Delete(ctx context.Context, campaignID, actorID string) error {
	if _, err := requireOwnedCampaign(ctx, s.repo, campaignID, actorID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, campaignID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete campaign")
	}
	s.invalidateDashboard(ctx, actorID)
	s.logger.Info("campaign deleted", zap.String("campaign_id", campaignID))
	return nil
}

// WorkflowStatus returns the five-step lifecycle state of a campaign.
func (s *CampaignService) WorkflowStatus(ctx context.Context, campaignID, actorID string) (*dto.WorkflowStatusResponse, error) {
	if _, err := requireOwnedCampaign(ctx, s.repo, campaignID, actorID); err != nil {
		return nil, err
	}

	wf, err := s.repo.FindWorkflow(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workflow")
	}

	steps := make([]int, 0, len(wf.CompletedSteps))
	for _, step := range wf.CompletedSteps {
		steps = append(steps, int(step))
	}
	return &dto.WorkflowStatusResponse{
		CampaignID:     wf.CampaignID,
		CurrentStep:    wf.CurrentStep,
		CompletedSteps: steps,
		Completed:      wf.Completed,
		CanAdvance:     !wf.Completed,
	}, nil
}

// CompleteStep marks one workflow step finished on behalf of the owner.
func (s *CampaignService) CompleteStep(ctx context.Context, campaignID, actorID string, req dto.WorkflowStepRequest) (*dto.WorkflowStatusResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workflow payload")
	}
	if req.Step < models.WorkflowStepMin || req.Step > models.WorkflowStepMax {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workflow step out of range")
	}

	if _, err := requireOwnedCampaign(ctx, s.repo, campaignID, actorID); err != nil {
		return nil, err
	}
	if err := s.repo.CompleteStep(ctx, campaignID, req.Step); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to advance workflow")
	}
	return s.WorkflowStatus(ctx, campaignID, actorID)
}

func (s *CampaignService) invalidateDashboard(ctx context.Context, hrManagerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:"+hrManagerID+":*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
