package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/models"
)

type campaignFinder interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
}

// requireOwnedCampaign loads a campaign and verifies the actor owns it.
// Every campaign-scoped operation goes through this gate.
func requireOwnedCampaign(ctx context.Context, repo campaignFinder, campaignID, actorID string) (*models.Campaign, error) {
	campaign, err := repo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	if campaign.HRManagerID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "campaign belongs to another manager")
	}
	return campaign, nil
}
