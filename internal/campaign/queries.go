package campaign

import (
	"context"

	"trace-fund-go/internal/models"

	"go.uber.org/zap"
)

// fundsOf splits held into reserve and available. The reserve is derived
// from the record's space each time and never stored.
func (s *Service) fundsOf(campaign *models.Campaign, held uint64) models.Funds {
	reserve := s.rent.MinimumBalance(campaign.Space)
	funds := models.Funds{Held: held, Reserve: reserve}
	if held > reserve {
		funds.Available = held - reserve
	}
	return funds
}

func (s *Service) GetCampaign(ctx context.Context, address models.Address) (*models.Campaign, error) {
	campaign, err := s.store.GetCampaign(ctx, address)
	if err != nil {
		return nil, translate(err, address)
	}
	return campaign, nil
}

// FindCampaign looks a campaign up by its admin and name.
func (s *Service) FindCampaign(ctx context.Context, admin models.Address, name string) (*models.Campaign, error) {
	return s.GetCampaign(ctx, DeriveAddress(admin, name))
}

func (s *Service) ListCampaigns(ctx context.Context, admin *models.Address) ([]models.Campaign, error) {
	campaigns, err := s.store.ListCampaigns(ctx, admin)
	if err != nil {
		return nil, translate(err, models.Address{})
	}
	return campaigns, nil
}

// Funds reports the held balance of a campaign and how much of it the admin
// may withdraw.
func (s *Service) Funds(ctx context.Context, address models.Address) (models.Funds, error) {
	campaign, err := s.GetCampaign(ctx, address)
	if err != nil {
		return models.Funds{}, err
	}

	held, err := s.store.GetBalance(ctx, address)
	if err != nil {
		return models.Funds{}, translate(err, address)
	}

	funds := s.fundsOf(campaign, held)
	zap.L().Debug("Computed campaign funds",
		zap.String("campaign", address.String()),
		zap.Uint64("held", funds.Held),
		zap.Uint64("reserve", funds.Reserve),
		zap.Uint64("available", funds.Available))
	return funds, nil
}
