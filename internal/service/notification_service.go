package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/jobs"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/mailer"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

// pairMailJob is the payload for one pair notification: two emails plus the
// evaluation tokens that travel with them.
type pairMailJob struct {
	PairID     string
	CampaignID string
}

type notifierPairRepository interface {
	FindByID(ctx context.Context, id string) (*models.EmployeePair, error)
	UpdateEmailStatus(ctx context.Context, id, status string, emailErr *string, sentAt *time.Time) error
}

type notifierCampaignRepository interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
}

type evaluationCreator interface {
	Create(ctx context.Context, ev *models.Evaluation) error
}

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, recipientID string, filter dto.NotificationFilter) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	Delete(ctx context.Context, id, recipientID string) error
}

// NotificationConfig tunes outbound mail and the in-app inbox.
type NotificationConfig struct {
	MailEnabled  bool
	FrontendURL  string
	QueueWorkers int
	MaxRetries   int
	InAppEnabled bool
}

// NotificationService sends pair notification emails through the background
// queue, mints the evaluation tokens that ride along, and manages the
// in-app HR inbox.
type NotificationService struct {
	pairs       notifierPairRepository
	campaigns   notifierCampaignRepository
	evaluations evaluationCreator
	inbox       notificationRepository
	sender      mailer.Sender
	queue       *jobs.Queue
	logger      *zap.Logger
	config      NotificationConfig
}

// NewNotificationService constructs the service and its delivery queue.
// Start must be called before pairs can be notified.
func NewNotificationService(
	pairs notifierPairRepository,
	campaigns notifierCampaignRepository,
	evaluations evaluationCreator,
	inbox notificationRepository,
	sender mailer.Sender,
	logger *zap.Logger,
	config NotificationConfig,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = mailer.NopSender{}
	}
	s := &NotificationService{
		pairs:       pairs,
		campaigns:   campaigns,
		evaluations: evaluations,
		inbox:       inbox,
		sender:      sender,
		logger:      logger,
		config:      config,
	}
	s.queue = jobs.NewQueue("pair-notifications", s.handlePairMail, jobs.QueueConfig{
		Workers:    config.QueueWorkers,
		MaxRetries: config.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start spins up the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyPairs enqueues one delivery job per freshly confirmed pair.
func (s *NotificationService) NotifyPairs(ctx context.Context, campaign *models.Campaign, pairIDs []string) error {
	if !s.config.MailEnabled {
		s.logger.Info("mail disabled, skipping pair notifications", zap.Int("pairs", len(pairIDs)))
		return nil
	}
	for _, pairID := range pairIDs {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    "pair_notification",
			Payload: pairMailJob{PairID: pairID, CampaignID: campaign.ID},
		}
		if err := s.queue.Enqueue(job); err != nil {
			return fmt.Errorf("enqueue pair notification: %w", err)
		}
	}
	return nil
}

// handlePairMail is the queue handler: it renders and sends both sides of a
// pair notification, records evaluation tokens, and stamps the delivery
// outcome on the pair.
func (s *NotificationService) handlePairMail(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(pairMailJob)
	if !ok {
		s.logger.Error("unexpected job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}

	pair, err := s.pairs.FindByID(ctx, payload.PairID)
	if err != nil {
		return fmt.Errorf("load pair %s: %w", payload.PairID, err)
	}
	campaign, err := s.campaigns.FindByID(ctx, payload.CampaignID)
	if err != nil {
		return fmt.Errorf("load campaign %s: %w", payload.CampaignID, err)
	}

	sides := []struct {
		employeeID, name, email   string
		partnerName, partnerEmail string
	}{
		{pair.Employee1ID, pair.Employee1Name, pair.Employee1Email, pair.Employee2Name, pair.Employee2Email},
		{pair.Employee2ID, pair.Employee2Name, pair.Employee2Email, pair.Employee1Name, pair.Employee1Email},
	}

	var sendErr error
	for _, side := range sides {
		token := uuid.NewString()
		if err := s.evaluations.Create(ctx, &models.Evaluation{
			EmployeeID: side.employeeID,
			PairID:     pair.ID,
			Token:      token,
		}); err != nil {
			s.logger.Error("failed to create evaluation token",
				zap.String("pair_id", pair.ID),
				zap.String("employee_id", side.employeeID),
				zap.Error(err))
		}

		html, text, err := mailer.RenderPairInvitation(mailer.PairInvitation{
			RecipientName: side.name,
			PartnerName:   side.partnerName,
			PartnerEmail:  side.partnerEmail,
			CampaignTitle: campaign.Title,
			EndDate:       campaign.EndDate,
			EvaluationURL: s.evaluationURL(token),
		})
		if err != nil {
			sendErr = fmt.Errorf("render mail for %s: %w", side.email, err)
			continue
		}

		if err := s.sender.Send(mailer.Message{
			To:       side.email,
			Subject:  fmt.Sprintf("Coffee meeting: you have been matched (%s)", campaign.Title),
			HTMLBody: html,
			TextBody: text,
		}); err != nil {
			sendErr = err
		}
	}

	now := time.Now().UTC()
	if sendErr != nil {
		msg := sendErr.Error()
		if err := s.pairs.UpdateEmailStatus(ctx, pair.ID, models.EmailStatusFailed, &msg, nil); err != nil {
			s.logger.Error("failed to record email failure", zap.String("pair_id", pair.ID), zap.Error(err))
		}
		return sendErr
	}
	if err := s.pairs.UpdateEmailStatus(ctx, pair.ID, models.EmailStatusSent, nil, &now); err != nil {
		s.logger.Error("failed to record email success", zap.String("pair_id", pair.ID), zap.Error(err))
	}
	return nil
}

func (s *NotificationService) evaluationURL(token string) string {
	if s.config.FrontendURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/evaluation/%s", s.config.FrontendURL, token)
}

// Notify creates an in-app notification for an HR manager.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if !s.config.InAppEnabled {
		return nil
	}
	if n.Priority == "" {
		n.Priority = models.NotificationPriorityMedium
	}
	if err := s.inbox.Create(ctx, n); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	return nil
}

// List returns the manager's inbox.
func (s *NotificationService) List(ctx context.Context, recipientID string, filter dto.NotificationFilter) ([]models.Notification, int, error) {
	notifications, total, err := s.inbox.List(ctx, recipientID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, total, nil
}

// UnreadCount returns how many notifications await the manager.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (*dto.UnreadCountResponse, error) {
	count, err := s.inbox.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread")
	}
	return &dto.UnreadCountResponse{UnreadCount: count}, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	if err := s.inbox.MarkRead(ctx, id, recipientID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead clears the unread flag on every notification of the manager.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	if err := s.inbox.MarkAllRead(ctx, recipientID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// Delete removes one notification from the inbox.
func (s *NotificationService) Delete(ctx context.Context, id, recipientID string) error {
	if err := s.inbox.Delete(ctx, id, recipientID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}
