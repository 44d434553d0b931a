package comment

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/blogd/blogd/internal/models"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Create stores a comment with author copied from the caller's session.
// The post id is not checked against the posts table.
func (s *Service) Create(ctx context.Context, author models.CommentAuthor, dto *CreateCommentDTO) (*models.Comment, error) {
	content := strings.TrimSpace(dto.Content)
	postID := strings.TrimSpace(dto.PostID)
	if content == "" || postID == "" {
		return nil, errContentRequired
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return nil, errContentTooLong
	}

	c := models.Comment{
		Content: content,
		Author:  author,
		PostID:  postID,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Update rewrites the content for the comment's own author. It returns
// (nil, nil) when the comment does not exist.
func (s *Service) Update(ctx context.Context, id, userID string, dto *UpdateCommentDTO) (*models.Comment, error) {
	content := strings.TrimSpace(dto.Content)
	if content == "" {
		return nil, errContentRequired
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return nil, errContentTooLong
	}

	c, err := s.GetByID(ctx, id)
	if err != nil || c == nil {
		return c, err
	}
	if c.Author.ID != userID {
		return nil, errForbidden
	}

	err = s.db.WithContext(ctx).Model(c).Updates(map[string]interface{}{
		"content":   content,
		"is_edited": true,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the comment for its own author only.
func (s *Service) Delete(ctx context.Context, id, userID string) (bool, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil || c == nil {
		return false, err
	}
	if c.Author.ID != userID {
		return true, errForbidden
	}
	return true, s.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error
}

// AdminList returns every comment, newest first, with its post resolved.
func (s *Service) AdminList(ctx context.Context) ([]adminComment, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(comments))
	seen := make(map[string]struct{}, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.PostID]; !ok {
			seen[c.PostID] = struct{}{}
			ids = append(ids, c.PostID)
		}
	}

	posts := map[string]postRef{}
	if len(ids) > 0 {
		var rows []postRef
		if err := s.db.WithContext(ctx).Model(&models.Post{}).
			Select("id", "title", "slug").
			Where("id IN ?", ids).
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			posts[r.ID] = r
		}
	}

	out := make([]adminComment, len(comments))
	for i, c := range comments {
		ref, ok := posts[c.PostID]
		if !ok {
			ref = postRef{ID: c.PostID, Title: deletedPostTitle}
		}
		out[i] = adminComment{Comment: c, Post: ref}
	}
	return out, nil
}

// AdminDelete removes any comment regardless of author.
func (s *Service) AdminDelete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
