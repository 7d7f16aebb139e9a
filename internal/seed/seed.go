// Package seed populates a database with demo data for development.
// Every write goes through the repositories, so counters stay consistent.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskbuddy/internal/catalog"
	"taskbuddy/internal/middleware"
	"taskbuddy/internal/models"
	"taskbuddy/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	PostsPerUser    int
	WorkoutsPerUser int
	FriendsPerUser  int
	LikesPerPost    int
	CommentsPerPost int
	ShouldClean     bool
	RandomSeed      int64
	BcryptCost      int
	WorkoutTypes    []string
	Catalog         *catalog.Catalog
}

// Summary counts what a run created.
type Summary struct {
	Users       int
	Workouts    int
	Friendships int
	Posts       int
	Likes       int
	Comments    int
	// TotalUsers is the users table size after the run, seeded or not.
	TotalUsers int64
}

// Seeder writes demo data through the repositories.
type Seeder struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	opts     Options
	users    repository.UserRepository
	workouts repository.WorkoutRepository
	friends  repository.FriendRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewSeeder creates a Seeder. A zero RandomSeed uses the current time.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	if opts.RandomSeed == 0 {
		opts.RandomSeed = time.Now().UnixNano()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if len(opts.WorkoutTypes) == 0 {
		c := opts.Catalog
		if c == nil {
			var err error
			if c, err = catalog.Default(); err != nil {
				return nil, err
			}
		}
		for _, d := range c.Disciplines {
			opts.WorkoutTypes = append(opts.WorkoutTypes, d.Name)
		}
	}

	return &Seeder{
		db:       db,
		faker:    gofakeit.New(opts.RandomSeed),
		opts:     opts,
		users:    repository.NewUserRepository(db),
		workouts: repository.NewWorkoutRepository(db),
		friends:  repository.NewFriendRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
	}, nil
}

// ClearAll deletes every row from the application tables, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, table := range []string{"comments", "likes", "posts", "completed_workouts", "friendships", "users"} {
		if err := s.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	middleware.Logger.Info("Cleared application tables")
	return nil
}

// Run seeds users, workouts, friendships and the feed.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	sum := &Summary{}
	users, err := s.seedUsers(ctx, sum)
	if err != nil {
		return sum, err
	}
	if err := s.seedWorkouts(ctx, users, sum); err != nil {
		return sum, err
	}
	if err := s.seedFriendships(ctx, users, sum); err != nil {
		return sum, err
	}
	if err := s.seedFeed(ctx, users, sum); err != nil {
		return sum, err
	}
	if sum.TotalUsers, err = s.users.Count(ctx); err != nil {
		return sum, err
	}

	middleware.Logger.Info("Seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("workouts", sum.Workouts),
		slog.Int("friendships", sum.Friendships),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
		slog.Int64("total_users", sum.TotalUsers),
	)
	return sum, nil
}

func (s *Seeder) seedUsers(ctx context.Context, sum *Summary) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", s.faker.Username(), i),
			Email:    s.faker.Email(),
			Password: string(hash),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return users, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
		sum.Users++
	}
	return users, nil
}

func (s *Seeder) seedWorkouts(ctx context.Context, users []*models.User, sum *Summary) error {
	for _, u := range users {
		for i := 0; i < s.opts.WorkoutsPerUser; i++ {
			workoutType := s.faker.RandomString(s.opts.WorkoutTypes)
			if _, err := s.workouts.Complete(ctx, u.ID, workoutType); err != nil {
				return fmt.Errorf("seed workout: %w", err)
			}
			sum.Workouts++
		}
	}
	return nil
}

// seedFriendships sends requests to the next users in a ring and accepts
// roughly half of them. Existing edges are skipped.
func (s *Seeder) seedFriendships(ctx context.Context, users []*models.User, sum *Summary) error {
	n := len(users)
	for i, u := range users {
		for k := 1; k <= s.opts.FriendsPerUser && k < n; k++ {
			other := users[(i+k)%n]
			f, err := s.friends.CreateRequest(ctx, u.ID, other.ID)
			if models.HasCode(err, models.CodeConflict) {
				continue
			}
			if err != nil {
				return fmt.Errorf("seed friendship: %w", err)
			}
			sum.Friendships++
			if s.faker.Bool() {
				if err := s.friends.TransitionStatus(ctx, f.ID, models.FriendshipStatusPending, models.FriendshipStatusAccepted); err != nil {
					return fmt.Errorf("accept friendship: %w", err)
				}
			}
		}
	}
	return nil
}

func (s *Seeder) seedFeed(ctx context.Context, users []*models.User, sum *Summary) error {
	n := len(users)
	for i, author := range users {
		for p := 0; p < s.opts.PostsPerUser; p++ {
			post := &models.Post{
				UserID:  author.ID,
				Content: s.faker.Sentence(12),
			}
			if s.faker.Bool() {
				url := fmt.Sprintf("https://picsum.photos/seed/%s/800/800", s.faker.UUID())
				post.ImageURL = &url
			}
			if err := s.posts.Create(ctx, post); err != nil {
				return fmt.Errorf("seed post: %w", err)
			}
			sum.Posts++

			for k := 1; k <= s.opts.LikesPerPost && k < n; k++ {
				if _, err := s.posts.Like(ctx, post.ID, users[(i+k)%n].ID); err != nil {
					return fmt.Errorf("seed like: %w", err)
				}
				sum.Likes++
			}
			for k := 1; k <= s.opts.CommentsPerPost && n > 1; k++ {
				c := &models.Comment{
					PostID:  post.ID,
					UserID:  users[(i+k)%n].ID,
					Content: s.faker.Sentence(6),
				}
				if err := s.comments.Create(ctx, c); err != nil {
					return fmt.Errorf("seed comment: %w", err)
				}
				sum.Comments++
			}
		}
	}
	return nil
}
