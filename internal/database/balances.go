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
	"math/big"

	"trace-fund-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetBalance returns the current balance for an account
func (s *LedgerService) GetBalance(ctx context.Context, account models.Address) (uint64, error) {
	var balanceStr string
	err := s.db.QueryRowContext(ctx, queryGetBalance, account.String()).Scan(&balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		// No balance record means zero balance
		return 0, nil
	}
	if err != nil {
		zap.L().Error("Failed to get balance", zap.String("account", account.String()), zap.Error(err))
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := parseAmount(balanceStr)
	if err != nil {
		zap.L().Error("Failed to parse balance", zap.String("balance_str", balanceStr), zap.Error(err))
		return 0, err
	}

	zap.L().Debug("Retrieved balance", zap.String("account", account.String()), zap.Uint64("balance", balance))
	return balance, nil
}

// GetAllBalances returns every non-zero balance on the ledger
func (s *LedgerService) GetAllBalances(ctx context.Context) ([]models.AccountBalance, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAllBalances)
	if err != nil {
		zap.L().Error("Failed to get all balances", zap.Error(err))
		return nil, fmt.Errorf("failed to get all balances: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var balances []models.AccountBalance
	for rows.Next() {
		var balance models.AccountBalance
		var accountStr, balanceStr string
		err := rows.Scan(&balance.Id, &accountStr, &balanceStr,
			&balance.LastTransferId, &balance.Version, &balance.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}

		if balance.Account, err = models.ParseAddress(accountStr); err != nil {
			return nil, err
		}
		if balance.Balance, err = parseAmount(balanceStr); err != nil {
			return nil, err
		}

		balances = append(balances, balance)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during balance row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}

	zap.L().Debug("Retrieved all balances", zap.Int("count", len(balances)))
	return balances, nil
}

// ReconcileBalance verifies that the current balance matches the sum of all
// credits minus debits recorded for the account
func (s *LedgerService) ReconcileBalance(ctx context.Context, account models.Address) error {
	zap.L().Info("Reconciling balance", zap.String("account", account.String()))

	currentBalance, err := s.GetBalance(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryReconcileBalance, account.String())
	if err != nil {
		return fmt.Errorf("failed to calculate balance from transfers: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	// Summed as decimals so intermediate totals cannot wrap
	calculated := decimal.Zero
	for rows.Next() {
		var amountStr, direction string
		if err := rows.Scan(&amountStr, &direction); err != nil {
			return fmt.Errorf("failed to scan transfer: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		if direction == directionDebit {
			calculated = calculated.Sub(amount)
		} else {
			calculated = calculated.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating transfer rows: %w", err)
	}

	current := decimal.NewFromBigInt(new(big.Int).SetUint64(currentBalance), 0)
	if !current.Equal(calculated) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("account", account.String()),
			zap.String("current_balance", current.String()),
			zap.String("calculated_balance", calculated.String()),
			zap.String("difference", current.Sub(calculated).String()))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", current.String(), calculated.String())
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("account", account.String()),
		zap.String("balance", current.String()))
	return nil
}
