package repository

import (
	"context"
	"testing"

	"taskbuddy/internal/models"
	"taskbuddy/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateDuplicateUsername(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Email: "a@x.com", Password: "h"}))

	err := repo.Create(ctx, &models.User{Username: "alice", Email: "other@x.com", Password: "h"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeConflict))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_UsernameIsCaseSensitive(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "alice")

	got, err := repo.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotEmpty(t, got.Password)
}

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Empty(t, got.Password)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_GetStats(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	require.NoError(t, db.Model(alice).Updates(map[string]interface{}{"workouts_completed": 4, "current_streak": 2, "achievements_earned": 1}).Error)

	stats, err := repo.GetStats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{WorkoutsCompleted: 4, AchievementsEarned: 1, CurrentStreak: 2}, *stats)

	_, err = repo.GetStats(ctx, 12345)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_Search(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "Bobby")
	carol := testutil.CreateUser(t, db, "bob_carol")
	testutil.CreateUser(t, db, "dave")

	require.NoError(t, db.Create(&models.Friendship{RequesterID: bob.ID, AddresseeID: alice.ID, Status: models.FriendshipStatusPending}).Error)

	results, err := repo.Search(ctx, "BOB", alice.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, bob.ID, results[0].ID)
	require.NotNil(t, results[0].FriendshipStatus)
	assert.Equal(t, models.FriendshipStatusPending, *results[0].FriendshipStatus)

	assert.Equal(t, carol.ID, results[1].ID)
	assert.Nil(t, results[1].FriendshipStatus)
}

func TestUserRepository_SearchWildcardsAreLiteral(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "bob_carol")
	testutil.CreateUser(t, db, "bobxcarol")

	results, err := repo.Search(ctx, "b_c", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bob_carol", results[0].Username)

	results, err = repo.Search(ctx, "%", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUserRepository_SearchCapsResults(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)

	for _, name := range []string{"user01", "user02", "user03", "user04", "user05", "user06", "user07", "user08", "user09", "user10", "user11", "user12"} {
		testutil.CreateUser(t, db, name)
	}

	results, err := repo.Search(context.Background(), "user", 0)
	require.NoError(t, err)
	assert.Len(t, results, SearchLimit)
}
