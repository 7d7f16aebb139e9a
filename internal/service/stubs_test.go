package service

import (
	"context"

	"taskbuddy/internal/events"
	"taskbuddy/internal/models"

	"github.com/stretchr/testify/mock"
)

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getStatsFn      func(context.Context, uint) (*models.Stats, error)
	searchFn        func(context.Context, string, uint) ([]models.UserSummary, error)
	countFn         func(context.Context) (int64, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetStats(ctx context.Context, id uint) (*models.Stats, error) {
	return s.getStatsFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, term string, currentUserID uint) ([]models.UserSummary, error) {
	return s.searchFn(ctx, term, currentUserID)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

type workoutRepoStub struct {
	completeFn   func(context.Context, uint, string) (*models.User, error)
	listByUserFn func(context.Context, uint, int) ([]models.CompletedWorkout, error)
}

func (s *workoutRepoStub) Complete(ctx context.Context, userID uint, workoutType string) (*models.User, error) {
	return s.completeFn(ctx, userID, workoutType)
}
func (s *workoutRepoStub) ListByUser(ctx context.Context, userID uint, limit int) ([]models.CompletedWorkout, error) {
	return s.listByUserFn(ctx, userID, limit)
}

type friendRepoStub struct {
	createRequestFn             func(context.Context, uint, uint) (*models.Friendship, error)
	getByIDFn                   func(context.Context, uint) (*models.Friendship, error)
	getFriendshipBetweenUsersFn func(context.Context, uint, uint) (*models.Friendship, error)
	getFriendsFn                func(context.Context, uint) ([]models.User, error)
	transitionStatusFn          func(context.Context, uint, models.FriendshipStatus, models.FriendshipStatus) error
}

func (s *friendRepoStub) CreateRequest(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
	return s.createRequestFn(ctx, requesterID, addresseeID)
}
func (s *friendRepoStub) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	return s.getByIDFn(ctx, id)
}
func (s *friendRepoStub) GetFriendshipBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	return s.getFriendshipBetweenUsersFn(ctx, userID1, userID2)
}
func (s *friendRepoStub) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.getFriendsFn(ctx, userID)
}
func (s *friendRepoStub) TransitionStatus(ctx context.Context, friendshipID uint, from, to models.FriendshipStatus) error {
	return s.transitionStatusFn(ctx, friendshipID, from, to)
}

type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint) (*models.Post, error)
	listFn    func(context.Context) ([]models.Post, error)
	likeFn    func(context.Context, uint, uint) (int, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context) ([]models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Like(ctx context.Context, postID, userID uint) (int, error) {
	return s.likeFn(ctx, postID, userID)
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e events.Event) {
	m.Called(ctx, e)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == eventType })
}
