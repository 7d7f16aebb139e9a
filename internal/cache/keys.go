package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix        = "user:%d"
	UserStatsKeyPrefix   = "user:%d:stats"
	UserProfileKeyPrefix = "profile:%s"
)

const (
	UserTTL      = 5 * time.Minute
	UserStatsTTL = 1 * time.Minute
	ProfileTTL   = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserStatsKey(userID uint) string {
	return fmt.Sprintf(UserStatsKeyPrefix, userID)
}

func UserProfileKey(username string) string {
	return fmt.Sprintf(UserProfileKeyPrefix, username)
}

// Invalidate deletes keys and bumps their generations so fills that read
// the old rows are discarded.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	_, _ = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, generationKey(key))
			pipe.Expire(ctx, generationKey(key), generationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
}

// InvalidateUser drops every cached view of the user's row and counters.
func InvalidateUser(ctx context.Context, userID uint, username string) {
	keys := []string{UserKey(userID), UserStatsKey(userID)}
	if username != "" {
		keys = append(keys, UserProfileKey(username))
	}
	Invalidate(ctx, keys...)
}
