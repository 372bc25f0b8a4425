package notify

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"trace-fund-go/internal/database"
	"trace-fund-go/internal/models"
	"trace-fund-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSink is a mock implementation of Sink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Name() string {
	return m.Called().String(0)
}

func (m *MockSink) Publish(ctx context.Context, event models.Event) error {
	return m.Called(ctx, event).Error(0)
}

type countingRecorder struct {
	mu       sync.Mutex
	ok, fail int
}

func (r *countingRecorder) RecordDelivery(_ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.fail++
		return
	}
	r.ok++
}

func setupOutbox(t *testing.T) *database.Service {
	t.Helper()
	ledger, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "outbox.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(ledger.Close)
	return ledger
}

func appendDonation(t *testing.T, ledger *database.Service, amount uint64) models.Event {
	t.Helper()
	ctx := context.Background()
	campaign := models.Address{7}

	payload, err := json.Marshal(models.DonationEvent{
		Campaign:  campaign,
		Donor:     models.IdentityFromSeed("donor"),
		Amount:    amount,
		Timestamp: 1_700_000_000,
	})
	require.NoError(t, err)

	event := &models.Event{Type: models.EventDonation, Campaign: campaign, Payload: payload}
	require.NoError(t, ledger.WithinTx(ctx, func(tx store.Tx) error { return tx.AppendEvent(ctx, event) }))
	return *event
}

func pendingCount(t *testing.T, ledger *database.Service) int {
	t.Helper()
	pending, err := ledger.PendingEvents(context.Background(), time.Now().Add(time.Minute), 100)
	require.NoError(t, err)
	return len(pending)
}

func TestDispatcher_DeliverMarksDelivered(t *testing.T) {
	ledger := setupOutbox(t)
	event := appendDonation(t, ledger, 1_000_000)

	sink := &MockSink{}
	sink.On("Name").Return("mock")
	sink.On("Publish", mock.Anything, mock.MatchedBy(func(e models.Event) bool { return e.Id == event.Id })).Return(nil)

	recorder := &countingRecorder{}
	dispatcher := NewDispatcher(DispatcherConfig{Outbox: ledger, Sinks: []Sink{sink, NewLogSink()}, Recorder: recorder})
	dispatcher.Deliver(context.Background(), []models.Event{event})

	sink.AssertNumberOfCalls(t, "Publish", 1)
	assert.Equal(t, 0, pendingCount(t, ledger))
	assert.Equal(t, 2, recorder.ok)
	assert.Equal(t, 0, recorder.fail)
}

func TestDispatcher_FailedSinkKeepsEventPending(t *testing.T) {
	ledger := setupOutbox(t)
	event := appendDonation(t, ledger, 1_000_000)

	flaky := &MockSink{}
	flaky.On("Name").Return("flaky")
	flaky.On("Publish", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()
	flaky.On("Publish", mock.Anything, mock.Anything).Return(nil)

	healthy := &MockSink{}
	healthy.On("Name").Return("healthy")
	healthy.On("Publish", mock.Anything, mock.Anything).Return(nil)

	recorder := &countingRecorder{}
	dispatcher := NewDispatcher(DispatcherConfig{
		Outbox:          ledger,
		Sinks:           []Sink{flaky, healthy},
		Recorder:        recorder,
		PollingInterval: 10 * time.Millisecond,
		CleanupInterval: time.Hour,
		Retention:       time.Hour,
	})

	dispatcher.Deliver(context.Background(), []models.Event{event})
	healthy.AssertNumberOfCalls(t, "Publish", 1)
	require.Equal(t, 1, pendingCount(t, ledger), "rejected event must stay in the outbox")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, dispatcher.Start(ctx))

	assert.Eventually(t, func() bool {
		return pendingCount(t, ledger) == 0
	}, 2*time.Second, 10*time.Millisecond)

	dispatcher.Stop()

	// The healthy sink sees the event again: delivery is at-least-once
	healthy.AssertNumberOfCalls(t, "Publish", 2)
	recorder.mu.Lock()
	assert.Equal(t, 1, recorder.fail)
	recorder.mu.Unlock()
}

func TestDispatcher_StartValidatesIntervals(t *testing.T) {
	dispatcher := NewDispatcher(DispatcherConfig{Outbox: setupOutbox(t), CleanupInterval: time.Minute})
	assert.Error(t, dispatcher.Start(context.Background()))

	dispatcher = NewDispatcher(DispatcherConfig{Outbox: setupOutbox(t), PollingInterval: time.Minute})
	assert.Error(t, dispatcher.Start(context.Background()))
}

func TestDispatcher_CleanupPrunesDelivered(t *testing.T) {
	ledger := setupOutbox(t)
	ctx := context.Background()
	old := appendDonation(t, ledger, 1_000_000)
	recent := appendDonation(t, ledger, 2_000_000)

	require.NoError(t, ledger.MarkEventsDelivered(ctx, []string{old.Id}, time.Now().Add(-2*time.Hour)))
	require.NoError(t, ledger.MarkEventsDelivered(ctx, []string{recent.Id}, time.Now()))

	dispatcher := NewDispatcher(DispatcherConfig{Outbox: ledger, Retention: time.Hour})
	dispatcher.cleanupDelivered(ctx)

	// Only the recent event is left to prune
	pruned, err := ledger.PruneDeliveredEvents(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
}
