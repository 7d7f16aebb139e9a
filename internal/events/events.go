// Package events publishes domain events after their writes commit.
// Delivery is best effort and happens on a background dispatcher: a full
// queue or a failed send is logged and counted, never returned to the caller.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"errors"
	"log/slog"
	"sync"
	"time"

	"taskbuddy/internal/config"
	"taskbuddy/internal/middleware"
	"taskbuddy/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event types.
const (
	WorkoutCompleted    = "workout.completed"
	FriendshipRequested = "friendship.requested"
	FriendshipResponded = "friendship.responded"
	PostCreated         = "post.created"
	PostLiked           = "post.liked"
	CommentCreated      = "comment.created"
)

// Event is the envelope written to every sink.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	UserID     uint        `json:"user_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// New builds an event with a fresh id and timestamp.
func New(eventType string, userID uint, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Key is the partition key for the event: the acting user.
func (e Event) Key() string {
	return fmt.Sprintf("%d", e.UserID)
}

// Sink delivers encoded events somewhere.
type Sink interface {
	Name() string
	Send(ctx context.Context, e Event, payload []byte) error
	Close() error
}

// Publisher fans committed domain events out to a sink.
type Publisher interface {
	Publish(ctx context.Context, e Event)
	Close() error
}

// Dispatcher defaults.
const (
	DefaultQueueSize   = 1024
	DefaultSendTimeout = 2 * time.Second
)

var errQueueFull = errors.New("event queue full")

// PublisherOptions tunes the background dispatcher.
type PublisherOptions struct {
	QueueSize   int
	SendTimeout time.Duration
}

type queued struct {
	ctx   context.Context
	event Event
}

type publisher struct {
	sink    Sink
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan queued
	done   chan struct{}
}

// NewPublisher wraps sink with the default dispatcher settings. A nil sink
// publishes nothing.
func NewPublisher(sink Sink) Publisher {
	return NewPublisherWithOptions(sink, PublisherOptions{})
}

// NewPublisherWithOptions wraps sink and starts its dispatcher. Close stops it.
func NewPublisherWithOptions(sink Sink, opts PublisherOptions) Publisher {
	if sink == nil {
		return Noop()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}

	p := &publisher{
		sink:    sink,
		timeout: opts.SendTimeout,
		queue:   make(chan queued, opts.QueueSize),
		done:    make(chan struct{}),
	}
	go p.dispatch()
	return p
}

// Publish enqueues e and returns immediately. The request context only
// contributes its values (request and trace ids), not its deadline.
func (p *publisher) Publish(ctx context.Context, e Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.queue <- queued{ctx: context.WithoutCancel(ctx), event: e}:
	default:
		p.fail(ctx, e, errQueueFull)
	}
}

func (p *publisher) dispatch() {
	defer close(p.done)
	for q := range p.queue {
		p.send(q.ctx, q.event)
	}
}

func (p *publisher) send(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.fail(ctx, e, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.sink.Send(ctx, e, payload); err != nil {
		p.fail(ctx, e, err)
	}
}

func (p *publisher) fail(ctx context.Context, e Event, err error) {
	observability.EventPublishFailures.WithLabelValues(p.sink.Name(), e.Type).Inc()
	middleware.Logger.WarnContext(ctx, "Failed to publish event",
		slog.String("sink", p.sink.Name()),
		slog.String("event_type", e.Type),
		slog.String("event_id", e.ID),
		slog.String("error", err.Error()),
	)
}

// Close drains queued events, then closes the sink.
func (p *publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.sink.Close()
}

type noop struct{}

// Noop returns a Publisher that drops every event.
func Noop() Publisher { return noop{} }

func (noop) Publish(context.Context, Event) {}
func (noop) Close() error { return nil }

// FromConfig selects the sink named by EVENTS_SINK. The redis sink needs a
// live client; without one events are dropped.
func FromConfig(cfg *config.Config, rdb *redis.Client) Publisher {
	switch cfg.EventsSink {
	case "redis":
		if rdb == nil {
			middleware.Logger.Warn("EVENTS_SINK=redis but Redis is unavailable, events disabled")
			return Noop()
		}
		return NewPublisher(NewRedisSink(rdb))
	case "kafka":
		return NewPublisher(NewKafkaSink(cfg.KafkaBrokerList(), cfg.KafkaTopicPrefix))
	default:
		return Noop()
	}
}
