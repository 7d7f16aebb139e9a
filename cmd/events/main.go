// Command events tails the domain events published on Redis, one log line
// per event, until interrupted. It needs EVENTS_SINK=redis on the API side.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"taskbuddy/internal/cache"
	"taskbuddy/internal/config"
	"taskbuddy/internal/events"
	"taskbuddy/internal/middleware"
)

func main() {
	eventType := flag.String("type", "", "only show this event type (e.g. workout.completed)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()
	if rdb == nil {
		log.Fatal("Redis is unavailable; set REDIS_URL")
	}
	defer func() { _ = rdb.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = events.NewRedisSink(rdb).Subscribe(ctx, func(channel, payload string) {
		got := strings.TrimPrefix(channel, events.ChannelPrefix)
		if *eventType != "" && got != *eventType {
			return
		}
		middleware.Logger.Info("Event received",
			slog.String("event_type", got),
			slog.String("payload", payload),
		)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	log.Printf("Listening on %s*", events.ChannelPrefix)
	<-ctx.Done()
}
