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

const (
	// Campaign queries
	campaignColumns = `address, admin, name, description, image_url, target_amount,
		amount_collected, start_time, space, version`

	queryGetCampaign = `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE address = ?`

	queryListCampaigns = `
		SELECT ` + campaignColumns + `
		FROM campaigns
		ORDER BY start_time, name`

	queryListCampaignsByAdmin = `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE admin = ?
		ORDER BY start_time, name`

	queryInsertCampaign = `
		INSERT INTO campaigns (address, admin, name, description, image_url, target_amount,
			amount_collected, start_time, space, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`

	queryUpdateCampaign = `
		UPDATE campaigns
		SET amount_collected = ?, version = version + 1
		WHERE address = ? AND version = ?`

	queryDeleteCampaign = `
		DELETE FROM campaigns WHERE address = ?`

	// Balance queries
	queryGetBalance = `
		SELECT balance
		FROM account_balances
		WHERE account = ?`

	queryGetAllBalances = `
		SELECT id, account, balance, last_transfer_id, version, updated_at
		FROM account_balances
		WHERE balance != '0'
		ORDER BY account`

	queryGetAccountBalance = `
		SELECT id, balance, version
		FROM account_balances
		WHERE account = ?`

	queryInsertAccountBalance = `
		INSERT INTO account_balances (id, account, balance, last_transfer_id, version)
		VALUES (?, ?, ?, ?, 1)`

	queryUpdateAccountBalance = `
		UPDATE account_balances
		SET balance = ?, last_transfer_id = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE account = ? AND version = ?`

	queryDeleteAccountBalance = `
		DELETE FROM account_balances WHERE account = ?`

	queryReconcileBalance = `
		SELECT amount, direction
		FROM transfers
		WHERE account = ?`

	// Transfer queries
	queryCheckDuplicateDeposit = `
		SELECT id FROM transfers WHERE transfer_type = 'deposit' AND reference = ? LIMIT 1`

	queryInsertTransfer = `
		INSERT INTO transfers (
			id, movement_id, account, counterparty, transfer_type, amount, direction,
			balance_before, balance_after, reference, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryInsertJournalEntry = `
		INSERT INTO journal_entries (id, movement_id, account_type, account_id, debit_amount, credit_amount)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetTransferHistory = `
		SELECT id, movement_id, account, counterparty, transfer_type, amount, direction,
		       balance_before, balance_after, reference, created_at
		FROM transfers
		WHERE account = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	// Outbox queries
	queryInsertEvent = `
		INSERT INTO events (id, event_type, campaign, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`

	queryPendingEvents = `
		SELECT seq, id, event_type, campaign, payload, created_at
		FROM events
		WHERE delivered_at IS NULL AND created_at <= ?
		ORDER BY seq
		LIMIT ?`

	queryMarkEventDelivered = `
		UPDATE events SET delivered_at = ? WHERE id = ? AND delivered_at IS NULL`

	queryPruneDeliveredEvents = `
		DELETE FROM events WHERE delivered_at IS NOT NULL AND delivered_at < ?`
)
