package store

import (
	"context"
	"errors"
	"time"

	"trace-fund-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrDuplicateTransaction   = errors.New("duplicate transaction")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrCampaignExists         = errors.New("campaign already exists")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrBalanceOverflow        = errors.New("balance overflow")
)

// TransferParams describes a value movement between two accounts.
type TransferParams struct {
	From         models.Address
	To           models.Address
	Amount       uint64
	TransferType string
	Reference    string
}

// DepositParams credits an account from outside the ledger (airdrop).
type DepositParams struct {
	Account   models.Address
	Amount    uint64
	Reference string // external reference, unique per deposit
}

// Tx is the capability set available inside one atomic ledger transaction.
// Nothing written through a Tx is visible to others until WithinTx returns nil.
type Tx interface {
	GetCampaign(ctx context.Context, address models.Address) (*models.Campaign, error)
	InsertCampaign(ctx context.Context, campaign *models.Campaign) error
	UpdateCampaign(ctx context.Context, campaign *models.Campaign) error
	DeleteCampaign(ctx context.Context, address models.Address) error

	GetBalance(ctx context.Context, account models.Address) (uint64, error)
	Transfer(ctx context.Context, params TransferParams) error

	AppendEvent(ctx context.Context, event *models.Event) error
}

// LedgerStore defines the contract that every backend must satisfy.
type LedgerStore interface {
	// WithinTx runs fn in a single all-or-nothing transaction. Any error
	// returned by fn rolls back every write made through the Tx.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// --- Campaigns ---
	GetCampaign(ctx context.Context, address models.Address) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, admin *models.Address) ([]models.Campaign, error)

	// --- Balances ---
	GetBalance(ctx context.Context, account models.Address) (uint64, error)
	GetAllBalances(ctx context.Context) ([]models.AccountBalance, error)
	Deposit(ctx context.Context, params DepositParams) error
	ReconcileBalance(ctx context.Context, account models.Address) error

	// --- Transfers ---
	GetTransferHistory(ctx context.Context, account models.Address, limit, offset int) ([]models.Transfer, error)

	// --- Outbox ---
	PendingEvents(ctx context.Context, olderThan time.Time, limit int) ([]models.Event, error)
	MarkEventsDelivered(ctx context.Context, ids []string, at time.Time) error
	PruneDeliveredEvents(ctx context.Context, before time.Time) (int64, error)

	// --- Lifecycle ---
	Close()
}
