package metrics

import (
	"context"
	"time"

	"trace-fund-go/internal/campaign"
	"trace-fund-go/internal/models"
)

// operationsMiddleware implements metrics collection for campaign.Operations
type operationsMiddleware struct {
	metrics *Metrics
	next    campaign.Operations
}

// NewOperationsMiddleware creates a new operations metrics middleware
func NewOperationsMiddleware(metrics *Metrics) func(campaign.Operations) campaign.Operations {
	return func(next campaign.Operations) campaign.Operations {
		return &operationsMiddleware{
			metrics: metrics,
			next:    next,
		}
	}
}

func (mw *operationsMiddleware) InitializeCampaign(ctx context.Context, creator models.Address, name, description string, targetAmount uint64, imageURL string) (c *models.Campaign, err error) {
	defer func(begin time.Time) {
		mw.metrics.RecordOperation(opInitializeCampaign, err, time.Since(begin))
	}(time.Now())

	return mw.next.InitializeCampaign(ctx, creator, name, description, targetAmount, imageURL)
}

func (mw *operationsMiddleware) Donate(ctx context.Context, donor, address models.Address, amount uint64) (err error) {
	defer func(begin time.Time) {
		mw.metrics.RecordOperation(opDonate, err, time.Since(begin))
		if err == nil {
			mw.metrics.RecordLamports(opDonate, amount)
		}
	}(time.Now())

	return mw.next.Donate(ctx, donor, address, amount)
}

func (mw *operationsMiddleware) Withdraw(ctx context.Context, admin, address models.Address, amount uint64, reason string) (err error) {
	defer func(begin time.Time) {
		mw.metrics.RecordOperation(opWithdraw, err, time.Since(begin))
		if err == nil {
			mw.metrics.RecordLamports(opWithdraw, amount)
		}
	}(time.Now())

	return mw.next.Withdraw(ctx, admin, address, amount, reason)
}

func (mw *operationsMiddleware) CloseCampaign(ctx context.Context, admin, address models.Address) (returned uint64, err error) {
	defer func(begin time.Time) {
		mw.metrics.RecordOperation(opCloseCampaign, err, time.Since(begin))
		if err == nil {
			mw.metrics.RecordLamports(opCloseCampaign, returned)
		}
	}(time.Now())

	return mw.next.CloseCampaign(ctx, admin, address)
}

// Reads pass straight through.

func (mw *operationsMiddleware) GetCampaign(ctx context.Context, address models.Address) (*models.Campaign, error) {
	return mw.next.GetCampaign(ctx, address)
}

func (mw *operationsMiddleware) FindCampaign(ctx context.Context, admin models.Address, name string) (*models.Campaign, error) {
	return mw.next.FindCampaign(ctx, admin, name)
}

func (mw *operationsMiddleware) ListCampaigns(ctx context.Context, admin *models.Address) ([]models.Campaign, error) {
	return mw.next.ListCampaigns(ctx, admin)
}

func (mw *operationsMiddleware) Funds(ctx context.Context, address models.Address) (models.Funds, error) {
	return mw.next.Funds(ctx, address)
}
