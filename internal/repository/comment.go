package repository

import (
	"context"
	"errors"

	"taskbuddy/internal/models"
	"taskbuddy/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create resolves the author, inserts the comment and bumps the post's
// comments_count in one transaction. Nothing is read after commit.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, comment.PostID); err != nil {
			return err
		}

		var author models.User
		if err := tx.Select("id", "username").First(&author, comment.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", comment.UserID)
			}
			return models.NewInternalError(err)
		}
		comment.Username = author.Username

		if err := tx.Create(comment).Error; err != nil {
			if isForeignKeyError(err) {
				return models.NewNotFoundError("User", comment.UserID)
			}
			return models.NewInternalError(err)
		}

		if err := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		observability.TransactionRollbacks.WithLabelValues("add_comment").Inc()
		comment.Username = ""
		return asAppError(err)
	}
	return nil
}

// ListByPost returns the post's comments oldest-first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("comments.*, users.username AS username").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC, comments.id ASC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
