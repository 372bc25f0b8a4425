package campaign

import (
	"errors"
	"fmt"

	apperrors "trace-fund-go/internal/errors"
	"trace-fund-go/internal/models"
	"trace-fund-go/internal/store"
)

// translate maps store failures onto operation error kinds. Errors that
// already carry a kind pass through unchanged.
func translate(err error, campaign models.Address) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, store.ErrCampaignNotFound):
		return apperrors.Wrap(apperrors.CodeRecordNotFound, fmt.Sprintf("campaign %s does not exist", campaign), err)
	case errors.Is(err, store.ErrCampaignExists):
		return apperrors.Wrap(apperrors.CodeDuplicateCampaign, fmt.Sprintf("campaign %s already exists", campaign), err)
	case errors.Is(err, store.ErrBalanceOverflow):
		return apperrors.Wrap(apperrors.CodeArithmeticOverflow, "balance update would overflow", err)
	default:
		return apperrors.Wrap(apperrors.CodeInternal, "ledger operation failed", err)
	}
}

// payerError reports a transfer the caller could not cover.
func payerError(err error, payer models.Address, amount uint64) error {
	if errors.Is(err, store.ErrInsufficientBalance) {
		return &apperrors.Error{
			Code:    apperrors.CodeInsufficientPayerFunds,
			Message: fmt.Sprintf("account %s cannot cover %d lamports", payer, amount),
			Metadata: map[string]string{
				"payer":  payer.String(),
				"amount": fmt.Sprint(amount),
			},
			Cause: err,
		}
	}
	return err
}
