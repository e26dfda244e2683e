package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const drainTimeout = 2 * time.Second

// RoomJournal - receives an event for every successful room mutation.
type RoomJournal interface {
	Record(event entity.RoomEvent)
}

// NopJournal - used when the journal is disabled.
type NopJournal struct{}

func (NopJournal) Record(entity.RoomEvent) {}

// RedisJournal - appends room events to a capped Redis list from a background goroutine,
// so callers never wait on Redis.
type RedisJournal struct {
	logger *slog.Logger
	client *redis.Client

	key    string
	maxLen int64
	events chan entity.RoomEvent
}

func NewRedisJournal(logger *slog.Logger, client *redis.Client, key string, maxLen int64, buffer int) *RedisJournal {
	return &RedisJournal{
		logger: logger.With("component", "journal"),
		client: client,
		key:    key,
		maxLen: maxLen,
		events: make(chan entity.RoomEvent, buffer),
	}
}

// Record - enqueues the event, dropping it when the buffer is full.
func (that *RedisJournal) Record(event entity.RoomEvent) {
	select {
	case that.events <- event:
	default:
		that.logger.Warn("journal buffer is full, event dropped", "type", event.Type, "roomID", event.RoomID)
	}
}

// Run - writes queued events until ctx is canceled, then flushes what is left.
func (that *RedisJournal) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	for {
		select {
		case event := <-that.events:
			if err := that.push(ctx, event); err != nil {
				log.Error("failed to write room event", "type", event.Type, "roomID", event.RoomID, "error", err)
			}
		case <-ctx.Done():
			that.drain()
			return nil
		}
	}
}

func (that *RedisJournal) drain() {
	log := that.logger.With("method", "drain")

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-that.events:
			if err := that.push(ctx, event); err != nil {
				log.Error("failed to flush room event", "type", event.Type, "error", err)
				return
			}
		default:
			return
		}
	}
}

func (that *RedisJournal) push(ctx context.Context, event entity.RoomEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal room event: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.RPush(ctx, that.key, eventJSON)
	if that.maxLen > 0 {
		pipe.LTrim(ctx, that.key, -that.maxLen, -1)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append room event: %w", err)
	}

	return nil
}

// Recent - reads back the newest events, oldest first.
func (that *RedisJournal) Recent(ctx context.Context, limit int64) ([]entity.RoomEvent, error) {
	response, err := that.client.LRange(ctx, that.key, -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read room events: %w", err)
	}

	events := make([]entity.RoomEvent, 0, len(response))
	for _, raw := range response {
		var event entity.RoomEvent
		if err = json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room event: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}
