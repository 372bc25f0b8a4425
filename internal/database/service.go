/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trace-fund-go/internal/models"
	"trace-fund-go/internal/store"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

type Service struct {
	db     *sql.DB
	ledger *LedgerService
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.Path == ":memory:" {
		return nil, fmt.Errorf("in-memory databases are not supported, use a file path")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	// _txlock=immediate makes every transaction take the write lock at BEGIN,
	// so transitions against the ledger are applied one at a time.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_txlock=immediate&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if err := migrateSchema(cfg.Path); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return &Service{db: db, ledger: NewLedgerService(db)}, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

// Ping verifies the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinTx runs fn inside one database transaction and commits only if fn
// succeeds.
func (s *Service) WithinTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.withinTx(ctx, func(tx *ledgerTx) error { return fn(tx) })
}

func (s *Service) withinTx(ctx context.Context, fn func(tx *ledgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Deposit credits an account from outside the ledger. The reference makes
// the deposit idempotent: replaying it returns store.ErrDuplicateTransaction.
func (s *Service) Deposit(ctx context.Context, params store.DepositParams) error {
	if params.Reference == "" {
		params.Reference = uuid.New().String()
	}

	zap.L().Info("Processing deposit",
		zap.String("account", params.Account.String()),
		zap.Uint64("amount", params.Amount),
		zap.String("reference", params.Reference))

	err := s.withinTx(ctx, func(tx *ledgerTx) error {
		var existingId string
		err := tx.tx.QueryRowContext(ctx, queryCheckDuplicateDeposit, params.Reference).Scan(&existingId)
		if err == nil {
			zap.L().Warn("Duplicate deposit reference detected, skipping",
				zap.String("reference", params.Reference),
				zap.String("existing_transfer_id", existingId))
			return fmt.Errorf("%w: reference %s already exists", store.ErrDuplicateTransaction, params.Reference)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check for duplicate deposit: %w", err)
		}
		return tx.deposit(ctx, params)
	})
	if err != nil {
		return fmt.Errorf("error processing deposit: %w", err)
	}

	zap.L().Info("Deposit processed successfully",
		zap.String("account", params.Account.String()),
		zap.Uint64("amount", params.Amount))
	return nil
}

// ledgerTx implements store.Tx on top of a *sql.Tx.
type ledgerTx struct {
	tx *sql.Tx
}

func now() time.Time {
	return time.Now().UTC()
}

func (s *Service) GetCampaign(ctx context.Context, address models.Address) (*models.Campaign, error) {
	return s.ledger.GetCampaign(ctx, address)
}

func (s *Service) ListCampaigns(ctx context.Context, admin *models.Address) ([]models.Campaign, error) {
	return s.ledger.ListCampaigns(ctx, admin)
}

func (s *Service) GetBalance(ctx context.Context, account models.Address) (uint64, error) {
	return s.ledger.GetBalance(ctx, account)
}

func (s *Service) GetAllBalances(ctx context.Context) ([]models.AccountBalance, error) {
	return s.ledger.GetAllBalances(ctx)
}

func (s *Service) ReconcileBalance(ctx context.Context, account models.Address) error {
	return s.ledger.ReconcileBalance(ctx, account)
}

func (s *Service) GetTransferHistory(ctx context.Context, account models.Address, limit, offset int) ([]models.Transfer, error) {
	return s.ledger.GetTransferHistory(ctx, account, limit, offset)
}

func (s *Service) PendingEvents(ctx context.Context, olderThan time.Time, limit int) ([]models.Event, error) {
	return s.ledger.PendingEvents(ctx, olderThan, limit)
}

func (s *Service) MarkEventsDelivered(ctx context.Context, ids []string, at time.Time) error {
	return s.ledger.MarkEventsDelivered(ctx, ids, at)
}

func (s *Service) PruneDeliveredEvents(ctx context.Context, before time.Time) (int64, error) {
	return s.ledger.PruneDeliveredEvents(ctx, before)
}
