package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trace-fund-go/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const defaultRedisChannel = "trace-fund:events"

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink broadcasts events as JSON on a Redis pub/sub channel.
type RedisSink struct {
	client  publisher
	closer  func() error
	channel string
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, cfg models.RedisConfig) (*RedisSink, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	if cfg.Channel == "" {
		cfg.Channel = defaultRedisChannel
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	zap.L().Info("Redis sink connected",
		zap.String("addr", cfg.Addr),
		zap.String("channel", cfg.Channel))

	return &RedisSink{client: client, closer: client.Close, channel: cfg.Channel}, nil
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("JSON marshal error: %w", err)
	}

	receivers, err := s.client.Publish(ctx, s.channel, data).Result()
	if err != nil {
		return fmt.Errorf("Redis publish error: %w", err)
	}

	zap.L().Debug("Published event to Redis",
		zap.String("event_id", event.Id),
		zap.String("channel", s.channel),
		zap.Int64("receivers", receivers))
	return nil
}

func (s *RedisSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
