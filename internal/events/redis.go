package events

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"taskbuddy/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix prefixes every Redis channel, followed by the event type.
const ChannelPrefix = "taskbuddy:events:"

// Channel returns the pub/sub channel for an event type.
func Channel(eventType string) string {
	return ChannelPrefix + eventType
}

// RedisSink publishes events onto Redis pub/sub channels.
type RedisSink struct {
	rdb *redis.Client
}

// NewRedisSink creates a RedisSink using the provided Redis client.
func NewRedisSink(rdb *redis.Client) *RedisSink {
	return &RedisSink{rdb: rdb}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, e Event, payload []byte) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Publish(ctx, Channel(e.Type), payload).Err()
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisSink) Close() error { return nil }

// Subscribe listens on every event channel and calls onMessage for each
// payload until ctx is cancelled.
func (s *RedisSink) Subscribe(ctx context.Context, onMessage func(channel string, payload string)) error {
	if s.rdb == nil {
		return nil
	}
	sub := s.rdb.PSubscribe(ctx, ChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.ErrorContext(ctx, "Event subscriber panicked",
								slog.String("panic", fmt.Sprint(r)),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
