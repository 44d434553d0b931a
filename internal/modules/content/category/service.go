package category

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/blogd/blogd/internal/database"
	"github.com/blogd/blogd/internal/models"
	"github.com/blogd/blogd/internal/pkg/slug"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	cats := []models.Category{}
	return cats, s.db.WithContext(ctx).Order("name ASC").Find(&cats).Error
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// GetBySlug returns (nil, nil) for an unknown slug.
func (s *Service) GetBySlug(ctx context.Context, value string) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, "slug = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// nameTaken compares case-insensitively, ignoring the row with excludeID.
// Folding happens in Go because SQLite's LOWER only folds ASCII.
func (s *Service) nameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Category{})
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var names []string
	if err := q.Pluck("name", &names).Error; err != nil {
		return false, err
	}
	for _, existing := range names {
		if strings.EqualFold(existing, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateCategoryDTO) (*models.Category, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, errNameRequired
	}
	desc := strings.TrimSpace(dto.Description)
	if utf8.RuneCountInString(desc) > maxDescriptionLength {
		return nil, errDescriptionTooLong
	}

	taken, err := s.nameTaken(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errCategoryExists
	}

	cat := models.Category{
		Name:        name,
		Slug:        slug.Category(name),
		Description: desc,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		// Two names can differ yet share a slug ("C++" and "C").
		if database.IsDuplicateKey(err) {
			return nil, errCategoryExists
		}
		return nil, err
	}
	return &cat, nil
}

// Update returns (nil, nil) when the category does not exist.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateCategoryDTO) (*models.Category, error) {
	cat, err := s.GetByID(ctx, id)
	if err != nil || cat == nil {
		return cat, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, errNameRequired
		}
		taken, err := s.nameTaken(ctx, name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errCategoryExists
		}
		updates["name"] = name
		updates["slug"] = slug.Category(name)
	}
	if dto.Description != nil {
		desc := strings.TrimSpace(*dto.Description)
		if utf8.RuneCountInString(desc) > maxDescriptionLength {
			return nil, errDescriptionTooLong
		}
		updates["description"] = desc
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(cat).Updates(updates).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return nil, errCategoryExists
			}
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

// Delete leaves posts pointing at the category untouched.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	return res.RowsAffected > 0, res.Error
}

// ReconcileCounts recomputes every post_count from the posts table.
func (s *Service) ReconcileCounts(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Exec(
		`UPDATE categories SET post_count = (SELECT COUNT(*) FROM posts WHERE posts.category_id = categories.id)`,
	)
	return res.RowsAffected, res.Error
}
