//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"taskbuddy/internal/database"
	"taskbuddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("taskbuddy"),
		postgrescontainer.WithUsername("taskbuddy"),
		postgrescontainer.WithPassword("taskbuddy"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var db *gorm.DB
	deadline := time.Now().Add(30 * time.Second)
	for {
		db, err = gorm.Open(postgres.Open(connStr), &gorm.Config{Logger: database.NewGormLogger(logger.Silent)})
		if err == nil {
			if err = database.Ping(ctx, db); err == nil {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("postgres not ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	require.NoError(t, database.ApplySchema(ctx, db))
	return db
}

func TestPostgres_MigrationsAreIdempotent(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, database.RunMigrations(ctx, db))
	pending, err := database.PendingMigrations(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPostgres_LedgerAndFeed(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	alice := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	bob := &models.User{Username: "bob", Email: "bob@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	err := users.Create(ctx, &models.User{Username: "alice", Email: "dup@example.com", Password: "hash"})
	assert.True(t, models.HasCode(err, models.CodeConflict))

	t.Run("concurrent completions do not lose updates", func(t *testing.T) {
		workouts := NewWorkoutRepository(db)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := workouts.Complete(ctx, alice.ID, "Boxing")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stats, err := users.GetStats(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, stats.WorkoutsCompleted)
		assert.Equal(t, 10, stats.CurrentStreak)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := NewWorkoutRepository(db).Complete(ctx, 999999, "Boxing")
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})

	t.Run("reverse friendship hits the pair index", func(t *testing.T) {
		friends := NewFriendRepository(db)
		_, err := friends.CreateRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)

		err = db.WithContext(ctx).Create(&models.Friendship{RequesterID: bob.ID, AddresseeID: alice.ID, Status: models.FriendshipStatusPending}).Error
		assert.True(t, isUniqueConstraintError(err))
	})

	t.Run("opposite requests race to one edge", func(t *testing.T) {
		carol := &models.User{Username: "carol", Email: "carol@example.com", Password: "hash"}
		require.NoError(t, users.Create(ctx, carol))
		friends := NewFriendRepository(db)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				from, to := alice.ID, carol.ID
				if i%2 == 1 {
					from, to = to, from
				}
				_, err := friends.CreateRequest(ctx, from, to)
				if err != nil {
					assert.True(t, models.HasCode(err, models.CodeConflict), "unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		var edges int64
		require.NoError(t, db.Model(&models.Friendship{}).
			Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)", alice.ID, carol.ID, carol.ID, alice.ID).
			Count(&edges).Error)
		assert.Equal(t, int64(1), edges)
	})

	t.Run("double like", func(t *testing.T) {
		posts := NewPostRepository(db)
		post := &models.Post{UserID: alice.ID, Content: "hello"}
		require.NoError(t, posts.Create(ctx, post))

		_, err := posts.Like(ctx, post.ID, bob.ID)
		require.NoError(t, err)
		_, err = posts.Like(ctx, post.ID, bob.ID)
		assert.True(t, models.HasCode(err, models.CodeConflict))

		got, err := posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikesCount)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("search", func(t *testing.T) {
		results, err := users.Search(ctx, "BO", alice.ID)
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NotNil(t, results[0].FriendshipStatus)
		assert.Equal(t, models.FriendshipStatusPending, *results[0].FriendshipStatus)
	})
}
