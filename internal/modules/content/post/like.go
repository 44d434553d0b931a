package post

import (
	"context"
	"errors"

	"github.com/blogd/blogd/internal/database"
	"github.com/blogd/blogd/internal/models"
	"gorm.io/gorm"
)

// ToggleLike likes the post for viewer, or unlikes it when a like exists.
// The like row and likes_count move together in one transaction. Drafts the
// viewer cannot read report errPostNotFound.
func (s *Service) ToggleLike(ctx context.Context, postID string, viewer Actor) (bool, int, error) {
	var liked bool
	userID := viewer.UserID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := visiblePost(tx, postID, viewer); err != nil {
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error
		}

		liked = true
		if err := tx.Create(&models.Like{PostID: postID, UserID: userID}).Error; err != nil {
			// A concurrent request already inserted the same like.
			if database.IsDuplicateKey(err) {
				return nil
			}
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		return false, 0, err
	}

	count, err := s.likesCount(ctx, postID)
	return liked, count, err
}

// LikeStatus reports the counter and whether viewer has liked the post.
// An anonymous viewer has never liked anything.
func (s *Service) LikeStatus(ctx context.Context, postID string, viewer Actor) (bool, int, error) {
	post, err := visiblePost(s.db.WithContext(ctx), postID, viewer)
	if err != nil {
		return false, 0, err
	}
	if viewer.UserID == "" {
		return false, post.LikesCount, nil
	}
	var n int64
	err = s.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, viewer.UserID).
		Count(&n).Error
	return n > 0, post.LikesCount, err
}

// ReconcileLikeCounts resets every likes_count to the number of like rows.
func (s *Service) ReconcileLikeCounts(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Exec(
		`UPDATE posts SET likes_count = (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)`,
	)
	return res.RowsAffected, res.Error
}

func (s *Service) likesCount(ctx context.Context, postID string) (int, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id", "likes_count").First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errPostNotFound
		}
		return 0, err
	}
	return post.LikesCount, nil
}

func visiblePost(db *gorm.DB, postID string, viewer Actor) (*models.Post, error) {
	var post models.Post
	err := db.Select("id", "author_id", "published", "likes_count").First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if !Visible(&post, viewer) {
		return nil, errPostNotFound
	}
	return &post, nil
}
