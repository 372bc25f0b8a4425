package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trace-fund-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppendEvent writes a notification to the outbox. It becomes visible only
// when the surrounding transaction commits.
func (t *ledgerTx) AppendEvent(ctx context.Context, event *models.Event) error {
	if event.Id == "" {
		event.Id = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now()
	}

	result, err := t.tx.ExecContext(ctx, queryInsertEvent,
		event.Id, string(event.Type), event.Campaign.String(), string(event.Payload), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read event sequence: %w", err)
	}
	event.Sequence = seq
	return nil
}

// PendingEvents returns undelivered events created at or before olderThan,
// oldest first
func (s *LedgerService) PendingEvents(ctx context.Context, olderThan time.Time, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, queryPendingEvents, olderThan.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var eventType, campaignStr, payload string
		if err := rows.Scan(&e.Sequence, &e.Id, &eventType, &campaignStr, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = models.EventType(eventType)
		e.Payload = json.RawMessage(payload)
		if e.Campaign, err = models.ParseAddress(campaignStr); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

// MarkEventsDelivered stamps delivered_at on the given events. Events that
// were already delivered keep their original timestamp.
func (s *LedgerService) MarkEventsDelivered(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, queryMarkEventDelivered, at.UTC(), id); err != nil {
			return fmt.Errorf("failed to mark event %s delivered: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PruneDeliveredEvents deletes events delivered before the cutoff
func (s *LedgerService) PruneDeliveredEvents(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, queryPruneDeliveredEvents, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return result.RowsAffected()
}
