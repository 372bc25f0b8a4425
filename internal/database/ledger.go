package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"trace-fund-go/internal/models"
	"trace-fund-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	directionCredit = "credit"
	directionDebit  = "debit"

	journalLedgerAccount   = "ledger_account"
	journalExternalFunding = "external_funding"
)

// LedgerService handles read-side ledger queries outside of a transaction
type LedgerService struct {
	db *sql.DB
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{
		db: db,
	}
}

type balanceRow struct {
	id      string
	balance uint64
	version int64
	exists  bool
}

// leg is one account's side of a movement
type leg struct {
	movementId    string
	account       models.Address
	counterparty  models.Address
	transferType  string
	amount        uint64
	direction     string
	balanceBefore uint64
	balanceAfter  uint64
	reference     string
	createdAt     time.Time
}

type journalEntry struct {
	accountType  string
	accountId    string
	debitAmount  uint64
	creditAmount uint64
}

func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", s, err)
	}
	return v, nil
}

// GetBalance returns the account's balance as seen inside the transaction
func (t *ledgerTx) GetBalance(ctx context.Context, account models.Address) (uint64, error) {
	row, err := t.loadBalance(ctx, account)
	if err != nil {
		return 0, err
	}
	return row.balance, nil
}

func (t *ledgerTx) loadBalance(ctx context.Context, account models.Address) (balanceRow, error) {
	var row balanceRow
	var balanceStr string

	err := t.tx.QueryRowContext(ctx, queryGetAccountBalance, account.String()).Scan(&row.id, &balanceStr, &row.version)
	if errors.Is(err, sql.ErrNoRows) {
		// No balance record means zero balance
		return row, nil
	}
	if err != nil {
		return row, fmt.Errorf("failed to get current balance: %w", err)
	}

	row.balance, err = parseAmount(balanceStr)
	if err != nil {
		return row, err
	}
	row.exists = true
	return row, nil
}

// storeBalance writes the new balance, creating the row on first credit
// (with optimistic locking on existing rows)
func (t *ledgerTx) storeBalance(ctx context.Context, account models.Address, row balanceRow, newBalance uint64, transferId string) error {
	if !row.exists {
		_, err := t.tx.ExecContext(ctx, queryInsertAccountBalance, uuid.New().String(), account.String(), formatAmount(newBalance), transferId)
		if err != nil {
			return fmt.Errorf("failed to create account balance: %w", err)
		}
		return nil
	}

	result, err := t.tx.ExecContext(ctx, queryUpdateAccountBalance, formatAmount(newBalance), transferId, account.String(), row.version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}
	return nil
}

// Transfer moves value between two accounts inside the transaction. The
// debit is checked against the sender's balance and the credit against
// uint64 overflow before anything is written.
func (t *ledgerTx) Transfer(ctx context.Context, params store.TransferParams) error {
	if params.From == params.To {
		return fmt.Errorf("cannot transfer from account %s to itself", params.From)
	}

	zap.L().Debug("Processing transfer",
		zap.String("from", params.From.String()),
		zap.String("to", params.To.String()),
		zap.String("type", params.TransferType),
		zap.Uint64("amount", params.Amount))

	from, err := t.loadBalance(ctx, params.From)
	if err != nil {
		return err
	}
	if from.balance < params.Amount {
		return fmt.Errorf("%w: account %s holds %d, transfer needs %d",
			store.ErrInsufficientBalance, params.From, from.balance, params.Amount)
	}

	to, err := t.loadBalance(ctx, params.To)
	if err != nil {
		return err
	}
	if to.balance > math.MaxUint64-params.Amount {
		return fmt.Errorf("%w: account %s holds %d, cannot receive %d",
			store.ErrBalanceOverflow, params.To, to.balance, params.Amount)
	}

	movementId := uuid.New().String()
	createdAt := now()

	debitId, err := t.recordLeg(ctx, leg{
		movementId:    movementId,
		account:       params.From,
		counterparty:  params.To,
		transferType:  params.TransferType,
		amount:        params.Amount,
		direction:     directionDebit,
		balanceBefore: from.balance,
		balanceAfter:  from.balance - params.Amount,
		reference:     params.Reference,
		createdAt:     createdAt,
	})
	if err != nil {
		return err
	}
	if err := t.storeBalance(ctx, params.From, from, from.balance-params.Amount, debitId); err != nil {
		return err
	}

	creditId, err := t.recordLeg(ctx, leg{
		movementId:    movementId,
		account:       params.To,
		counterparty:  params.From,
		transferType:  params.TransferType,
		amount:        params.Amount,
		direction:     directionCredit,
		balanceBefore: to.balance,
		balanceAfter:  to.balance + params.Amount,
		reference:     params.Reference,
		createdAt:     createdAt,
	})
	if err != nil {
		return err
	}
	if err := t.storeBalance(ctx, params.To, to, to.balance+params.Amount, creditId); err != nil {
		return err
	}

	return t.addJournalEntries(ctx, movementId, []journalEntry{
		{journalLedgerAccount, params.To.String(), params.Amount, 0},
		{journalLedgerAccount, params.From.String(), 0, params.Amount},
	})
}

// deposit credits an account with value arriving from outside the ledger
func (t *ledgerTx) deposit(ctx context.Context, params store.DepositParams) error {
	to, err := t.loadBalance(ctx, params.Account)
	if err != nil {
		return err
	}
	if to.balance > math.MaxUint64-params.Amount {
		return fmt.Errorf("%w: account %s holds %d, cannot receive %d",
			store.ErrBalanceOverflow, params.Account, to.balance, params.Amount)
	}

	movementId := uuid.New().String()
	creditId, err := t.recordLeg(ctx, leg{
		movementId:    movementId,
		account:       params.Account,
		transferType:  models.TransferDeposit,
		amount:        params.Amount,
		direction:     directionCredit,
		balanceBefore: to.balance,
		balanceAfter:  to.balance + params.Amount,
		reference:     params.Reference,
		createdAt:     now(),
	})
	if err != nil {
		return err
	}
	if err := t.storeBalance(ctx, params.Account, to, to.balance+params.Amount, creditId); err != nil {
		return err
	}

	// Funds enter from outside: debit the account, credit external funding
	return t.addJournalEntries(ctx, movementId, []journalEntry{
		{journalLedgerAccount, params.Account.String(), params.Amount, 0},
		{journalExternalFunding, "airdrop", 0, params.Amount},
	})
}

func (t *ledgerTx) recordLeg(ctx context.Context, l leg) (string, error) {
	transferId := uuid.New().String()
	_, err := t.tx.ExecContext(ctx, queryInsertTransfer,
		transferId, l.movementId, l.account.String(), l.counterparty.String(), l.transferType,
		formatAmount(l.amount), l.direction, formatAmount(l.balanceBefore), formatAmount(l.balanceAfter),
		l.reference, l.createdAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert transfer: %w", err)
	}
	return transferId, nil
}

// addJournalEntries creates double-entry bookkeeping entries
func (t *ledgerTx) addJournalEntries(ctx context.Context, movementId string, entries []journalEntry) error {
	for _, entry := range entries {
		_, err := t.tx.ExecContext(ctx, queryInsertJournalEntry,
			uuid.New().String(), movementId, entry.accountType, entry.accountId,
			formatAmount(entry.debitAmount), formatAmount(entry.creditAmount))
		if err != nil {
			return fmt.Errorf("failed to add journal entry: %w", err)
		}
	}
	return nil
}

// GetTransferHistory returns paginated transfer history for an account
func (s *LedgerService) GetTransferHistory(ctx context.Context, account models.Address, limit, offset int) ([]models.Transfer, error) {
	zap.L().Debug("Getting transfer history",
		zap.String("account", account.String()),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := s.db.QueryContext(ctx, queryGetTransferHistory, account.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transfers []models.Transfer
	for rows.Next() {
		var tr models.Transfer
		var accountStr, counterpartyStr, amountStr, beforeStr, afterStr string
		err := rows.Scan(&tr.Id, &tr.MovementId, &accountStr, &counterpartyStr, &tr.TransferType,
			&amountStr, &tr.Direction, &beforeStr, &afterStr, &tr.Reference, &tr.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}

		if tr.Account, err = models.ParseAddress(accountStr); err != nil {
			return nil, err
		}
		if tr.Counterparty, err = models.ParseAddress(counterpartyStr); err != nil {
			return nil, err
		}
		if tr.Amount, err = parseAmount(amountStr); err != nil {
			return nil, err
		}
		if tr.BalanceBefore, err = parseAmount(beforeStr); err != nil {
			return nil, err
		}
		if tr.BalanceAfter, err = parseAmount(afterStr); err != nil {
			return nil, err
		}

		transfers = append(transfers, tr)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transfer row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transfer rows: %w", err)
	}

	return transfers, nil
}
