package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

type evaluationRepository interface {
	FindByToken(ctx context.Context, token string) (*models.Evaluation, error)
	MarkSubmitted(ctx context.Context, id string, rating int, comment string, submittedAt time.Time) (bool, error)
	Statistics(ctx context.Context, campaignID string) (*dto.EvaluationStatisticsResponse, error)
}

type evaluationPairRepository interface {
	FindByID(ctx context.Context, id string) (*models.EmployeePair, error)
}

// EvaluationService handles the anonymous, token-gated feedback flow. No
// authentication: the token is the credential and burns on first use.
type EvaluationService struct {
	evaluations evaluationRepository
	pairs       evaluationPairRepository
	campaigns   notifierCampaignRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(
	evaluations evaluationRepository,
	pairs evaluationPairRepository,
	campaigns notifierCampaignRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EvaluationService{
		evaluations: evaluations,
		pairs:       pairs,
		campaigns:   campaigns,
		validator:   validate,
		logger:      logger,
	}
}

// Form resolves the feedback form context for a token: who is evaluating
// whom, in which campaign, and whether the slot is already spent.
func (s *EvaluationService) Form(ctx context.Context, token string) (*dto.EvaluationFormResponse, error) {
	ev, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	pair, err := s.pairs.FindByID(ctx, ev.PairID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pair")
	}
	campaign, err := s.campaigns.FindByID(ctx, pair.CampaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}

	employeeName, partnerName := pair.Employee1Name, pair.Employee2Name
	if ev.EmployeeID == pair.Employee2ID {
		employeeName, partnerName = pair.Employee2Name, pair.Employee1Name
	}

	return &dto.EvaluationFormResponse{
		Token:         token,
		EmployeeName:  employeeName,
		PartnerName:   partnerName,
		CampaignTitle: campaign.Title,
		Used:          ev.Used,
	}, nil
}

// Submit records feedback for a token. One shot: a second submit, even a
// racing one, gets ErrTokenUsed.
func (s *EvaluationService) Submit(ctx context.Context, token string, req dto.SubmitEvaluationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}

	ev, err := s.findByToken(ctx, token)
	if err != nil {
		return err
	}
	if ev.Used {
		return appErrors.ErrTokenUsed
	}

	submitted, err := s.evaluations.MarkSubmitted(ctx, ev.ID, req.Rating, req.Comment, time.Now().UTC())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save evaluation")
	}
	if !submitted {
		return appErrors.ErrTokenUsed
	}

	s.logger.Info("evaluation submitted", zap.String("pair_id", ev.PairID), zap.Int("rating", req.Rating))
	return nil
}

// Statistics aggregates feedback for a campaign owned by the actor.
func (s *EvaluationService) Statistics(ctx context.Context, campaignID, actorID string) (*dto.EvaluationStatisticsResponse, error) {
	if _, err := requireOwnedCampaign(ctx, s.campaigns, campaignID, actorID); err != nil {
		return nil, err
	}
	stats, err := s.evaluations.Statistics(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load statistics")
	}
	return stats, nil
}

func (s *EvaluationService) findByToken(ctx context.Context, token string) (*models.Evaluation, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing evaluation token")
	}
	ev, err := s.evaluations.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation token not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return ev, nil
}
