package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"taskbuddy/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// generationTTL outlives any in-flight fill.
const generationTTL = 10 * time.Minute

var errStaleFill = errors.New("cache entry invalidated during fill")

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generationKey(key string) string {
	return key + ":gen"
}

func generation(ctx context.Context, g getter, key string) int64 {
	n, err := g.Get(ctx, generationKey(key)).Int64()
	if err != nil {
		return 0
	}
	return n
}

// Aside loads key into dest, falling back to fetch on a miss. fetch must
// populate dest; its result is stored for ttl unless key was invalidated
// while fetch ran. Redis failures degrade to calling fetch and are never
// returned.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jerr := json.Unmarshal(raw, dest); jerr == nil {
			return nil
		}
		middleware.Logger.WarnContext(ctx, "Discarding undecodable cache entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		middleware.Logger.WarnContext(ctx, "Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	seen := generation(ctx, client, key)
	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	err = client.Watch(ctx, func(tx *redis.Tx) error {
		if generation(ctx, tx, key) != seen {
			return errStaleFill
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, generationKey(key))

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		middleware.Logger.DebugContext(ctx, "Skipping stale cache fill", slog.String("key", key))
	default:
		middleware.Logger.WarnContext(ctx, "Cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}
