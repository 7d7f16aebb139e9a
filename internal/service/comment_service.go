package service

import (
	"context"
	"strings"

	"taskbuddy/internal/events"
	"taskbuddy/internal/models"
	"taskbuddy/internal/observability"
	"taskbuddy/internal/repository"
)

// CommentService owns comments on posts.
type CommentService struct {
	commentRepo repository.CommentRepository
	publisher   events.Publisher
}

func NewCommentService(commentRepo repository.CommentRepository, publisher events.Publisher) *CommentService {
	if publisher == nil {
		publisher = events.Noop()
	}
	return &CommentService{
		commentRepo: commentRepo,
		publisher:   publisher,
	}
}

// AddComment appends a comment and bumps the post's comments_count atomically.
func (s *CommentService) AddComment(ctx context.Context, postID, userID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if postID == 0 || userID == 0 || content == "" {
		return nil, models.NewValidationError("user_id and content are required")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	observability.FeedActions.WithLabelValues("comment").Inc()
	s.publisher.Publish(ctx, events.New(events.CommentCreated, userID, map[string]interface{}{
		"post_id":    postID,
		"comment_id": comment.ID,
	}))
	return comment, nil
}

// ListComments returns the post's comments oldest-first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if postID == 0 {
		return nil, models.NewValidationError("Post ID is required")
	}
	return s.commentRepo.ListByPost(ctx, postID)
}
