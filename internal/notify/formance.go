package notify

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"trace-fund-go/internal/models"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/sdkerrors"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultFormanceLedger = "trace-fund"

	// formanceAsset is lamports in Formance UMN notation (9 decimals per SOL).
	formanceAsset = "SOL/9"
	solDecimals   = 9
)

// ---------------------------------------------------------------------------
// Numscript templates. Reserves and airdrops are not mirrored, so sources
// are allowed to overdraft.
// ---------------------------------------------------------------------------

const numscriptDonation = `vars {
  asset $asset
  number $amount
  account $donor
  account $campaign
  string $event_id
  string $amount_human
}

send [$asset $amount] (
  source = @identities:$donor allowing unbounded overdraft
  destination = @campaigns:$campaign
)

set_tx_meta("event_type", "donation")
set_tx_meta("event_id", $event_id)
set_tx_meta("amount_human", $amount_human)
`

const numscriptWithdrawal = `vars {
  asset $asset
  number $amount
  account $admin
  account $campaign
  string $event_id
  string $amount_human
  string $reason
}

send [$asset $amount] (
  source = @campaigns:$campaign allowing unbounded overdraft
  destination = @identities:$admin
)

set_tx_meta("event_type", "withdrawal")
set_tx_meta("event_id", $event_id)
set_tx_meta("amount_human", $amount_human)
set_tx_meta("reason", $reason)
`

const numscriptClose = `vars {
  asset $asset
  number $amount
  account $admin
  account $campaign
  string $event_id
  string $amount_human
}

send [$asset $amount] (
  source = @campaigns:$campaign allowing unbounded overdraft
  destination = @identities:$admin
)

set_tx_meta("event_type", "campaign_closed")
set_tx_meta("event_id", $event_id)
set_tx_meta("amount_human", $amount_human)
`

// FormanceSink mirrors money-moving events into a Formance ledger as
// Numscript transactions referenced by event id.
type FormanceSink struct {
	client *v3.Formance
	ledger string
}

// NewFormanceSink connects to the stack and creates the ledger if it does
// not already exist.
func NewFormanceSink(ctx context.Context, cfg models.FormanceConfig) (*FormanceSink, error) {
	if cfg.StackURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("formance config requires StackURL, ClientID, and ClientSecret")
	}
	if cfg.LedgerName == "" {
		cfg.LedgerName = defaultFormanceLedger
	}

	zap.L().Info("Connecting to Formance Stack",
		zap.String("stack_url", cfg.StackURL),
		zap.String("ledger", cfg.LedgerName))

	client := v3.New(
		v3.WithServerURL(cfg.StackURL),
		v3.WithSecurity(shared.Security{
			ClientID:     v3.Pointer(cfg.ClientID),
			ClientSecret: v3.Pointer(cfg.ClientSecret),
		}),
	)

	if err := ensureLedger(ctx, client, cfg.LedgerName); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger exists: %w", err)
	}

	return &FormanceSink{client: client, ledger: cfg.LedgerName}, nil
}

func ensureLedger(ctx context.Context, client *v3.Formance, ledger string) error {
	_, err := client.Ledger.V2.CreateLedger(ctx, operations.V2CreateLedgerRequest{
		Ledger: ledger,
		V2CreateLedgerRequest: shared.V2CreateLedgerRequest{
			Metadata: map[string]string{
				"application": "trace-fund",
			},
		},
	})
	if err != nil {
		var apiErr *sdkerrors.V2ErrorResponse
		if errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumLedgerAlreadyExists {
			zap.L().Info("Ledger already exists", zap.String("ledger", ledger))
			return nil
		}
		return err
	}
	zap.L().Info("Ledger created", zap.String("ledger", ledger))
	return nil
}

func (s *FormanceSink) Name() string { return "formance" }

func (s *FormanceSink) Publish(ctx context.Context, event models.Event) error {
	postTx, err := postTransactionFor(event)
	if err != nil {
		return err
	}
	if postTx == nil {
		zap.L().Debug("Event moves no funds, not mirrored",
			zap.String("event_id", event.Id),
			zap.String("type", string(event.Type)))
		return nil
	}

	_, err = s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: *postTx,
	})
	if err != nil {
		if isConflictError(err) {
			return nil // idempotent
		}
		return fmt.Errorf("error mirroring %s to Formance: %w", event.Type, err)
	}

	zap.L().Info("Event mirrored in Formance",
		zap.String("event_id", event.Id),
		zap.String("type", string(event.Type)))
	return nil
}

// postTransactionFor builds the Formance transaction for an event, or nil
// when the event has no ledger counterpart.
func postTransactionFor(event models.Event) (*shared.V2PostTransaction, error) {
	payload, err := event.DecodePayload()
	if err != nil {
		return nil, err
	}

	var script string
	var amount uint64
	var timestamp int64
	vars := map[string]string{
		"asset":    formanceAsset,
		"campaign": event.Campaign.String(),
		"event_id": event.Id,
	}

	switch p := payload.(type) {
	case *models.DonationEvent:
		script, amount, timestamp = numscriptDonation, p.Amount, p.Timestamp
		vars["donor"] = p.Donor.String()
	case *models.WithdrawalEvent:
		script, amount, timestamp = numscriptWithdrawal, p.Amount, p.Timestamp
		vars["admin"] = p.Admin.String()
		vars["reason"] = p.Reason
	case *models.CampaignClosed:
		script, amount, timestamp = numscriptClose, p.Amount, p.Timestamp
		vars["admin"] = p.Admin.String()
	default:
		return nil, nil
	}

	vars["amount"] = strconv.FormatUint(amount, 10)
	vars["amount_human"] = decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -solDecimals).String()

	ts := time.Unix(timestamp, 0).UTC()
	return &shared.V2PostTransaction{
		Reference: v3.Pointer(event.Id),
		Timestamp: &ts,
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars:  vars,
		},
	}, nil
}

// isConflictError checks whether a Formance SDK error is a CONFLICT (duplicate reference).
func isConflictError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumConflict
}
