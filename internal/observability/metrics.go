// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkoutsCompleted counts committed workout completions by workout type.
	WorkoutsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbuddy_workouts_completed_total",
		Help: "Total number of committed workout completions",
	}, []string{"workout_type"})

	// FeedActions counts committed feed writes by action (post, like, comment).
	FeedActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbuddy_feed_actions_total",
		Help: "Total number of committed social feed writes",
	}, []string{"action"})

	// FriendRequests counts friend requests by outcome.
	FriendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbuddy_friend_requests_total",
		Help: "Total number of friend requests by outcome",
	}, []string{"outcome"})

	// TransactionRollbacks counts grouped writes that were rolled back.
	TransactionRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbuddy_transaction_rollbacks_total",
		Help: "Total number of rolled back multi-statement writes",
	}, []string{"operation"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbuddy_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// EventPublishFailures counts domain events that could not be delivered.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbuddy_event_publish_failures_total",
		Help: "Total number of domain events that failed to publish",
	}, []string{"sink", "event_type"})
)
