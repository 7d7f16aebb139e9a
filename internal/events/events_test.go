package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"taskbuddy/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu       sync.Mutex
	events   []Event
	payloads [][]byte
	err      error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(_ context.Context, e Event, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func TestPublisher_EncodesEnvelope(t *testing.T) {
	sink := &recordingSink{}
	p := NewPublisher(sink)

	e := New(WorkoutCompleted, 7, map[string]interface{}{"workout_type": "Boxing"})
	p.Publish(context.Background(), e)
	require.NoError(t, p.Close())

	require.Len(t, sink.payloads, 1)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(sink.payloads[0], &decoded))
	assert.Equal(t, "workout.completed", decoded["type"])
	assert.Equal(t, float64(7), decoded["user_id"])
	assert.Equal(t, e.ID, decoded["id"])
	assert.Equal(t, "Boxing", decoded["data"].(map[string]interface{})["workout_type"])
}

func TestPublisher_SinkErrorIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	p := NewPublisher(sink)

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), New(PostLiked, 1, nil))
	})
	require.NoError(t, p.Close())
	assert.Empty(t, sink.events)
}

func TestPublisher_PublishAfterCloseIsDropped(t *testing.T) {
	sink := &recordingSink{}
	p := NewPublisher(sink)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	p.Publish(context.Background(), New(PostLiked, 1, nil))
	assert.Empty(t, sink.events)
}

// blockingWriter never completes a write until its context ends.
type blockingWriter struct {
	calls chan struct{}
}

func (w *blockingWriter) WriteMessages(ctx context.Context, _ string, _ ...kafka.Message) error {
	w.calls <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func (w *blockingWriter) Close() error { return nil }

func TestPublisher_StalledBrokerDoesNotBlockCaller(t *testing.T) {
	w := &blockingWriter{calls: make(chan struct{}, 8)}
	p := NewPublisherWithOptions(newKafkaSink(w, "tb"), PublisherOptions{SendTimeout: 50 * time.Millisecond})

	start := time.Now()
	for i := 0; i < 3; i++ {
		p.Publish(context.Background(), New(WorkoutCompleted, 1, nil))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	select {
	case <-w.calls:
	case <-time.After(time.Second):
		t.Fatal("dispatcher never reached the writer")
	}

	// Each stalled send is bounded by SendTimeout, so Close drains promptly.
	start = time.Now()
	require.NoError(t, p.Close())
	assert.Less(t, time.Since(start), time.Second)
}

func TestPublisher_CancelledRequestStillDelivers(t *testing.T) {
	sink := &recordingSink{}
	p := NewPublisher(sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Publish(ctx, New(CommentCreated, 2, nil))
	require.NoError(t, p.Close())

	require.Len(t, sink.events, 1)
}

func TestPublisher_FullQueueDropsWithoutBlocking(t *testing.T) {
	w := &blockingWriter{calls: make(chan struct{}, 16)}
	p := NewPublisherWithOptions(newKafkaSink(w, "tb"), PublisherOptions{QueueSize: 1, SendTimeout: 50 * time.Millisecond})

	start := time.Now()
	for i := 0; i < 10; i++ {
		p.Publish(context.Background(), New(PostCreated, 1, nil))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	require.NoError(t, p.Close())
	assert.Less(t, len(w.calls), 10)
}

func TestNewPublisher_NilSinkIsNoop(t *testing.T) {
	p := NewPublisher(nil)
	p.Publish(context.Background(), New(PostCreated, 1, nil))
	assert.NoError(t, p.Close())
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, "42", New(CommentCreated, 42, nil).Key())
}

func TestRedisSink_PublishAndSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	sink := NewRedisSink(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	require.NoError(t, sink.Subscribe(ctx, func(channel string, payload string) {
		if channel == Channel(FriendshipRequested) {
			received <- payload
		}
	}))

	pub := NewPublisher(sink)
	defer func() { _ = pub.Close() }()
	pub.Publish(context.Background(), New(FriendshipRequested, 3, map[string]uint{"addressee_id": 4}))

	select {
	case payload := <-received:
		assert.Contains(t, payload, `"type":"friendship.requested"`)
		assert.Contains(t, payload, `"addressee_id":4`)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestRedisSink_SubscriberSurvivesPanic(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 2)
	sink := NewRedisSink(rdb)
	require.NoError(t, sink.Subscribe(ctx, func(channel string, payload string) {
		if channel == Channel(PostCreated) {
			panic("bad handler")
		}
		received <- channel
	}))

	require.NoError(t, sink.Send(ctx, New(PostCreated, 1, nil), []byte("{}")))
	require.NoError(t, sink.Send(ctx, New(PostLiked, 1, nil), []byte("{}")))

	select {
	case channel := <-received:
		assert.Equal(t, Channel(PostLiked), channel)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber stopped after a panic")
	}
}

func TestRedisSink_NilClient(t *testing.T) {
	sink := NewRedisSink(nil)
	assert.NoError(t, sink.Send(context.Background(), New(PostCreated, 1, nil), []byte("{}")))
	assert.NoError(t, sink.Subscribe(context.Background(), func(string, string) {}))
}

type fakeWriter struct {
	topic  string
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	w.topic = topic
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSink_TopicAndKey(t *testing.T) {
	w := &fakeWriter{}
	sink := newKafkaSink(w, "taskbuddy.")

	e := New(PostLiked, 9, nil)
	require.NoError(t, sink.Send(context.Background(), e, []byte(`{"x":1}`)))

	assert.Equal(t, "taskbuddy.post.liked", w.topic)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "9", string(w.msgs[0].Key))
	assert.Equal(t, `{"x":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
}

func TestKafkaSink_EmptyPrefix(t *testing.T) {
	sink := newKafkaSink(&fakeWriter{}, "")
	assert.Equal(t, "comment.created", sink.Topic(CommentCreated))
}

func TestKafkaProducer_ReusesWriterPerTopic(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"})
	a := p.writerForTopic("a")
	assert.Same(t, a, p.writerForTopic("a"))
	assert.NotSame(t, a, p.writerForTopic("b"))
	assert.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func TestFromConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	tests := []struct {
		name string
		cfg  *config.Config
		rdb  *redis.Client
		noop bool
	}{
		{"none", &config.Config{EventsSink: "none"}, rdb, true},
		{"empty", &config.Config{}, rdb, true},
		{"redis without client", &config.Config{EventsSink: "redis"}, nil, true},
		{"redis", &config.Config{EventsSink: "redis"}, rdb, false},
		{"kafka", &config.Config{EventsSink: "kafka", KafkaBrokers: "localhost:9092", KafkaTopicPrefix: "tb"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromConfig(tt.cfg, tt.rdb)
			_, isNoop := p.(noop)
			assert.Equal(t, tt.noop, isNoop)
			assert.NoError(t, p.Close())
		})
	}
}
