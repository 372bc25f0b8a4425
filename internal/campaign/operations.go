package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	apperrors "trace-fund-go/internal/errors"
	"trace-fund-go/internal/models"
	"trace-fund-go/internal/rent"
	"trace-fund-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newEvent(eventType models.EventType, campaign models.Address, payload any) (*models.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, fmt.Sprintf("unable to encode %s", eventType), err)
	}
	return &models.Event{Id: uuid.New().String(), Type: eventType, Campaign: campaign, Payload: raw}, nil
}

func (s *Service) dispatch(ctx context.Context, event *models.Event) {
	s.dispatcher.Deliver(ctx, []models.Event{*event})
}

// InitializeCampaign creates a campaign owned by creator and moves the
// storage reserve from the creator into it.
func (s *Service) InitializeCampaign(ctx context.Context, creator models.Address, name, description string, targetAmount uint64, imageURL string) (*models.Campaign, error) {
	if len(name) == 0 || len(name) > rent.MaxSeedLen {
		return nil, apperrors.Newf(apperrors.CodeInvalidArgument,
			"name must be between 1 and %d bytes, got %d", rent.MaxSeedLen, len(name))
	}
	if size := rent.SerializedSize(name, description, imageURL); size > s.policy.RecordSpace {
		return nil, apperrors.WithMetadata(apperrors.CodeInvalidArgument,
			fmt.Sprintf("campaign record needs %d bytes, allocation is %d", size, s.policy.RecordSpace),
			map[string]string{
				"size":  strconv.Itoa(size),
				"space": strconv.Itoa(s.policy.RecordSpace),
			})
	}

	now := s.clock.Now()
	address := DeriveAddress(creator, name)
	reserve := s.rent.MinimumBalance(s.policy.RecordSpace)

	campaign := &models.Campaign{
		Address:      address,
		Admin:        creator,
		Name:         name,
		Description:  description,
		ImageURL:     imageURL,
		TargetAmount: targetAmount,
		StartTime:    now.Unix(),
		Space:        s.policy.RecordSpace,
	}

	event, err := newEvent(models.EventCampaignCreated, address, models.CampaignCreated{
		Campaign:     address,
		Admin:        creator,
		Name:         name,
		TargetAmount: targetAmount,
		Timestamp:    now.Unix(),
	})
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertCampaign(ctx, campaign); err != nil {
			return err
		}
		err := tx.Transfer(ctx, store.TransferParams{
			From:         creator,
			To:           address,
			Amount:       reserve,
			TransferType: models.TransferReserve,
			Reference:    event.Id,
		})
		if err != nil {
			return payerError(err, creator, reserve)
		}
		return tx.AppendEvent(ctx, event)
	})
	if err != nil {
		return nil, translate(err, address)
	}

	zap.L().Info("Campaign initialized",
		zap.String("campaign", address.String()),
		zap.String("admin", creator.String()),
		zap.String("name", name),
		zap.Uint64("target_amount", targetAmount),
		zap.Uint64("reserve", reserve))

	s.dispatch(ctx, event)
	return campaign, nil
}

// Donate moves amount from donor into the campaign and adds it to the
// lifetime amount_collected counter.
func (s *Service) Donate(ctx context.Context, donor, address models.Address, amount uint64) error {
	if amount == 0 || amount < s.policy.MinDonation {
		return apperrors.WithMetadata(apperrors.CodeDonationTooSmall,
			fmt.Sprintf("donation of %d lamports is below the minimum of %d", amount, s.policy.MinDonation),
			map[string]string{
				"amount":  strconv.FormatUint(amount, 10),
				"minimum": strconv.FormatUint(s.policy.MinDonation, 10),
			})
	}
	if donor == address {
		return apperrors.Newf(apperrors.CodeInvalidArgument,
			"campaign %s cannot donate to itself", address)
	}

	now := s.clock.Now()
	event, err := newEvent(models.EventDonation, address, models.DonationEvent{
		Campaign:  address,
		Donor:     donor,
		Amount:    amount,
		Timestamp: now.Unix(),
	})
	if err != nil {
		return err
	}

	var collected uint64
	err = s.store.WithinTx(ctx, func(tx store.Tx) error {
		campaign, err := tx.GetCampaign(ctx, address)
		if err != nil {
			return err
		}

		if campaign.AmountCollected > math.MaxUint64-amount {
			return apperrors.Newf(apperrors.CodeArithmeticOverflow,
				"amount collected %d cannot grow by %d", campaign.AmountCollected, amount)
		}

		err = tx.Transfer(ctx, store.TransferParams{
			From:         donor,
			To:           address,
			Amount:       amount,
			TransferType: models.TransferDonation,
			Reference:    event.Id,
		})
		if err != nil {
			return payerError(err, donor, amount)
		}

		campaign.AmountCollected += amount
		if err := tx.UpdateCampaign(ctx, campaign); err != nil {
			return err
		}
		collected = campaign.AmountCollected
		return tx.AppendEvent(ctx, event)
	})
	if err != nil {
		return translate(err, address)
	}

	zap.L().Info("Donation received",
		zap.String("campaign", address.String()),
		zap.String("donor", donor.String()),
		zap.Uint64("amount", amount),
		zap.Uint64("amount_collected", collected))

	s.dispatch(ctx, event)
	return nil
}

// Withdraw pays amount from the campaign to its admin. The storage reserve
// is never withdrawable and amount_collected is left untouched.
func (s *Service) Withdraw(ctx context.Context, admin, address models.Address, amount uint64, reason string) error {
	now := s.clock.Now()
	event, err := newEvent(models.EventWithdrawal, address, models.WithdrawalEvent{
		Campaign:  address,
		Admin:     admin,
		Amount:    amount,
		Reason:    reason,
		Timestamp: now.Unix(),
	})
	if err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(tx store.Tx) error {
		campaign, err := tx.GetCampaign(ctx, address)
		if err != nil {
			return err
		}
		if campaign.Admin != admin {
			return apperrors.Newf(apperrors.CodeUnauthorized,
				"%s is not the admin of campaign %s", admin, address)
		}
		if len(reason) > s.policy.MaxReasonLen {
			return apperrors.Newf(apperrors.CodeInvalidArgument,
				"reason must be at most %d bytes, got %d", s.policy.MaxReasonLen, len(reason))
		}

		held, err := tx.GetBalance(ctx, address)
		if err != nil {
			return err
		}
		funds := s.fundsOf(campaign, held)
		if amount > funds.Available {
			return apperrors.WithMetadata(apperrors.CodeInsufficientFunds,
				fmt.Sprintf("requested %d lamports, %d available", amount, funds.Available),
				map[string]string{
					"requested": strconv.FormatUint(amount, 10),
					"available": strconv.FormatUint(funds.Available, 10),
					"reserve":   strconv.FormatUint(funds.Reserve, 10),
				})
		}

		err = tx.Transfer(ctx, store.TransferParams{
			From:         address,
			To:           admin,
			Amount:       amount,
			TransferType: models.TransferWithdrawal,
			Reference:    event.Id,
		})
		if err != nil {
			return err
		}
		return tx.AppendEvent(ctx, event)
	})
	if err != nil {
		return translate(err, address)
	}

	zap.L().Info("Withdrawal processed",
		zap.String("campaign", address.String()),
		zap.String("admin", admin.String()),
		zap.Uint64("amount", amount),
		zap.String("reason", reason))

	s.dispatch(ctx, event)
	return nil
}

// CloseCampaign returns the whole held balance, reserve included, to the
// admin and deletes the record. It returns the amount paid out.
func (s *Service) CloseCampaign(ctx context.Context, admin, address models.Address) (uint64, error) {
	var returned uint64
	var event *models.Event

	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		campaign, err := tx.GetCampaign(ctx, address)
		if err != nil {
			return err
		}
		if campaign.Admin != admin {
			return apperrors.Newf(apperrors.CodeUnauthorized,
				"%s is not the admin of campaign %s", admin, address)
		}

		held, err := tx.GetBalance(ctx, address)
		if err != nil {
			return err
		}
		event, err = newEvent(models.EventCampaignClosed, address, models.CampaignClosed{
			Campaign:  address,
			Admin:     admin,
			Amount:    held,
			Timestamp: s.clock.Now().Unix(),
		})
		if err != nil {
			return err
		}

		if held > 0 {
			err = tx.Transfer(ctx, store.TransferParams{
				From:         address,
				To:           admin,
				Amount:       held,
				TransferType: models.TransferClose,
				Reference:    event.Id,
			})
			if err != nil {
				return err
			}
		}
		if err := tx.DeleteCampaign(ctx, address); err != nil {
			return err
		}
		returned = held
		return tx.AppendEvent(ctx, event)
	})
	if err != nil {
		return 0, translate(err, address)
	}

	zap.L().Info("Campaign closed",
		zap.String("campaign", address.String()),
		zap.String("admin", admin.String()),
		zap.Uint64("returned", returned))

	s.dispatch(ctx, event)
	return returned, nil
}
