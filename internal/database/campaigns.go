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

	"trace-fund-go/internal/models"
	"trace-fund-go/internal/store"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var c models.Campaign
	var addressStr, adminStr, targetStr, collectedStr string
	err := row.Scan(&addressStr, &adminStr, &c.Name, &c.Description, &c.ImageURL,
		&targetStr, &collectedStr, &c.StartTime, &c.Space, &c.Version)
	if err != nil {
		return nil, err
	}

	if c.Address, err = models.ParseAddress(addressStr); err != nil {
		return nil, err
	}
	if c.Admin, err = models.ParseAddress(adminStr); err != nil {
		return nil, err
	}
	if c.TargetAmount, err = parseAmount(targetStr); err != nil {
		return nil, err
	}
	if c.AmountCollected, err = parseAmount(collectedStr); err != nil {
		return nil, err
	}
	return &c, nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (t *ledgerTx) GetCampaign(ctx context.Context, address models.Address) (*models.Campaign, error) {
	c, err := scanCampaign(t.tx.QueryRowContext(ctx, queryGetCampaign, address.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrCampaignNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// InsertCampaign creates the campaign record. An existing record at the same
// address is reported as store.ErrCampaignExists.
func (t *ledgerTx) InsertCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := t.tx.ExecContext(ctx, queryInsertCampaign,
		c.Address.String(), c.Admin.String(), c.Name, c.Description, c.ImageURL,
		formatAmount(c.TargetAmount), formatAmount(c.AmountCollected), c.StartTime, c.Space)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrCampaignExists, c.Address)
		}
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	c.Version = 1
	return nil
}

// UpdateCampaign persists amount_collected using optimistic locking on version
func (t *ledgerTx) UpdateCampaign(ctx context.Context, c *models.Campaign) error {
	result, err := t.tx.ExecContext(ctx, queryUpdateCampaign,
		formatAmount(c.AmountCollected), c.Address.String(), c.Version)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("campaign update failed - %w", store.ErrConcurrentModification)
	}
	c.Version++
	return nil
}

// DeleteCampaign removes the record and its balance row so the address can
// be initialized again.
func (t *ledgerTx) DeleteCampaign(ctx context.Context, address models.Address) error {
	result, err := t.tx.ExecContext(ctx, queryDeleteCampaign, address.String())
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrCampaignNotFound, address)
	}

	if _, err := t.tx.ExecContext(ctx, queryDeleteAccountBalance, address.String()); err != nil {
		return fmt.Errorf("failed to delete campaign balance: %w", err)
	}
	return nil
}

// GetCampaign reads a campaign record outside of any transaction
func (s *LedgerService) GetCampaign(ctx context.Context, address models.Address) (*models.Campaign, error) {
	c, err := scanCampaign(s.db.QueryRowContext(ctx, queryGetCampaign, address.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrCampaignNotFound, address)
	}
	if err != nil {
		zap.L().Error("Failed to get campaign", zap.String("address", address.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// ListCampaigns returns live campaigns, optionally restricted to one admin
func (s *LedgerService) ListCampaigns(ctx context.Context, admin *models.Address) ([]models.Campaign, error) {
	var rows *sql.Rows
	var err error
	if admin != nil {
		rows, err = s.db.QueryContext(ctx, queryListCampaignsByAdmin, admin.String())
	} else {
		rows, err = s.db.QueryContext(ctx, queryListCampaigns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign rows: %w", err)
	}

	zap.L().Debug("Listed campaigns", zap.Int("count", len(campaigns)))
	return campaigns, nil
}
