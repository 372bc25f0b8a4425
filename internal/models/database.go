package models

import (
	"time"
)

// Campaign is the persistent crowdfunding record
type Campaign struct {
	Address         Address `db:"address"`
	Admin           Address `db:"admin"`
	Name            string  `db:"name"`
	Description     string  `db:"description"`
	ImageURL        string  `db:"image_url"`
	TargetAmount    uint64  `db:"target_amount"`
	AmountCollected uint64  `db:"amount_collected"` // lifetime donations, withdrawals never reduce it
	StartTime       int64   `db:"start_time"`
	Space           int     `db:"space"`
	Version         int64   `db:"version"`
}

// AccountBalance represents current balance state (hot data)
type AccountBalance struct {
	Id             string    `db:"id"`
	Account        Address   `db:"account"`
	Balance        uint64    `db:"balance"`
	LastTransferId string    `db:"last_transfer_id"`
	Version        int64     `db:"version"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Transfer types recorded in the audit trail
const (
	TransferDeposit    = "deposit"
	TransferReserve    = "reserve"
	TransferDonation   = "donation"
	TransferWithdrawal = "withdrawal"
	TransferClose      = "close"
)

// Transfer represents one leg of an immutable balance movement (cold data).
// A movement between two accounts produces one row per account.
type Transfer struct {
	Id            string    `db:"id"`
	MovementId    string    `db:"movement_id"`
	Account       Address   `db:"account"`
	Counterparty  Address   `db:"counterparty"`
	TransferType  string    `db:"transfer_type"`
	Amount        uint64    `db:"amount"`
	Direction     string    `db:"direction"` // "credit" or "debit"
	BalanceBefore uint64    `db:"balance_before"`
	BalanceAfter  uint64    `db:"balance_after"`
	Reference     string    `db:"reference"`
	CreatedAt     time.Time `db:"created_at"`
}

// Funds splits a campaign's held balance into its reserve and the
// withdrawable remainder.
type Funds struct {
	Held      uint64 `json:"held"`
	Reserve   uint64 `json:"reserve"`
	Available uint64 `json:"available"`
}
