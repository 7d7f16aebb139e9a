package service

import (
	"context"
	"strings"

	"taskbuddy/internal/events"
	"taskbuddy/internal/models"
	"taskbuddy/internal/observability"
	"taskbuddy/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PostService owns posts and likes in the social feed.
type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	publisher events.Publisher
}

// CreatePostInput carries the fields of a new post.
type CreatePostInput struct {
	UserID   uint
	Content  string
	ImageURL *string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, publisher events.Publisher) *PostService {
	if publisher == nil {
		publisher = events.Noop()
	}
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// CreatePost publishes a post with zeroed counters.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if in.UserID == 0 || content == "" {
		return nil, models.NewValidationError("user_id and content are required")
	}
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:  in.UserID,
		Content: content,
	}
	if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) != "" {
		url := strings.TrimSpace(*in.ImageURL)
		post.ImageURL = &url
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	observability.FeedActions.WithLabelValues("post").Inc()
	s.publisher.Publish(ctx, events.New(events.PostCreated, created.UserID, map[string]interface{}{
		"post_id": created.ID,
	}))
	return created, nil
}

// ListPosts returns every post newest-first.
func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.List(ctx)
}

// LikePost records userID's like on postID. Liking twice is a conflict.
func (s *PostService) LikePost(ctx context.Context, postID, userID uint) (err error) {
	if postID == 0 || userID == 0 {
		return models.NewValidationError("Post ID and user_id are required")
	}

	ctx, finish := observability.StartSpan(ctx, "PostService.LikePost",
		attribute.Int("post.id", int(postID)),
		attribute.Int("user.id", int(userID)),
	)
	defer func() { finish(err) }()

	likes, err := s.postRepo.Like(ctx, postID, userID)
	if err != nil {
		return err
	}

	observability.FeedActions.WithLabelValues("like").Inc()
	s.publisher.Publish(ctx, events.New(events.PostLiked, userID, map[string]interface{}{
		"post_id":     postID,
		"likes_count": likes,
	}))
	return nil
}
