package notify

import (
	"context"

	"trace-fund-go/internal/models"

	"go.uber.org/zap"
)

// Sink is a destination for committed events. Publish must be safe to call
// more than once for the same event.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event models.Event) error
}

// LogSink writes every event to the global zap logger.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Publish(_ context.Context, event models.Event) error {
	zap.L().Info("Campaign event",
		zap.String("event_id", event.Id),
		zap.Int64("sequence", event.Sequence),
		zap.String("type", string(event.Type)),
		zap.String("campaign", event.Campaign.String()),
		zap.ByteString("payload", event.Payload))
	return nil
}
