package post

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/blogd/blogd/internal/database"
	"github.com/blogd/blogd/internal/models"
	"github.com/blogd/blogd/internal/pkg/markdown"
	"github.com/blogd/blogd/internal/pkg/pagination"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/blogd/blogd/internal/pkg/slug"
	"gorm.io/gorm"
)

// Service handles post business logic.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "email") }).
		Preload("Category", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "slug") }).
		Preload("Tags")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC")
}

// List returns published posts plus the viewer's own drafts. page is nil
// when the caller wants the whole list.
func (s *Service) List(ctx context.Context, viewerID string, lq ListQuery, page *pagination.Query) ([]models.Post, *response.Pagination, error) {
	posts := []models.Post{}
	tx := s.db.WithContext(ctx).Model(&models.Post{})

	if viewerID != "" {
		tx = tx.Where("posts.published = ? OR posts.author_id = ?", true, viewerID)
	} else {
		tx = tx.Where("posts.published = ?", true)
	}

	if lq.Category != "" {
		var cat models.Category
		err := s.db.WithContext(ctx).Select("id").First(&cat, "slug = ?", lq.Category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if page == nil {
				return posts, nil, nil
			}
			return posts, &response.Pagination{CurrentPage: page.Page, Size: page.Size}, nil
		}
		if err != nil {
			return nil, nil, err
		}
		tx = tx.Where("posts.category_id = ?", cat.ID)
	}
	if lq.Tag != "" {
		tagged := s.db.Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", lq.Tag)
		tx = tx.Where("posts.id IN (?)", tagged)
	}

	if page == nil {
		err := tx.Scopes(withRelations, newestFirst).Find(&posts).Error
		return posts, nil, err
	}
	pag, err := pagination.Paginate(tx, *page, &posts, withRelations, newestFirst)
	if err != nil {
		return nil, nil, err
	}
	return posts, &pag, nil
}

// ListAll is the admin view: drafts included, newest first.
func (s *Service) ListAll(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	err := s.db.WithContext(ctx).Model(&models.Post{}).Scopes(withRelations, newestFirst).Find(&posts).Error
	return posts, err
}

// GetByID returns (nil, nil) when no post has the id.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.first(ctx, "posts.id = ?", id)
}

func (s *Service) GetBySlug(ctx context.Context, value string) (*models.Post, error) {
	return s.first(ctx, "posts.slug = ?", value)
}

func (s *Service) first(ctx context.Context, query string, arg string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Scopes(withRelations).Where(query, arg).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Visible reports whether viewer may read p; drafts are for their author and admins.
func Visible(p *models.Post, viewer Actor) bool {
	return p.Published || viewer.IsAdmin || (viewer.UserID != "" && viewer.UserID == p.AuthorID)
}

// RenderHTML renders the post body, or returns ("", nil) for an unknown id.
func (s *Service) RenderHTML(ctx context.Context, id string) (*models.Post, string, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil || post == nil {
		return nil, "", err
	}
	html, err := markdown.Render(post.Content)
	return post, html, err
}

// Create inserts a post, bumps its category counter and attaches tags.
func (s *Service) Create(ctx context.Context, authorID string, dto *CreatePostDTO) (*models.Post, error) {
	categoryID := strings.TrimSpace(dto.Category)
	if categoryID == "" {
		return nil, errCategoryRequired
	}
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return nil, errTitleRequired
	}
	if strings.TrimSpace(dto.Content) == "" {
		return nil, errContentRequired
	}
	tags, err := normalizeTags(dto.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	slugValue, err := s.uniqueSlug(ctx, title, "")
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Title:      title,
		Slug:       slugValue,
		Content:    dto.Content,
		Excerpt:    excerptFor(dto.Excerpt, dto.Content),
		AuthorID:   authorID,
		CategoryID: categoryID,
	}
	if dto.Published != nil {
		post.Published = *dto.Published
	}

	for attempt := 0; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit("Tags").Create(&post).Error; err != nil {
				return err
			}
			if err := bumpCategory(tx, categoryID, 1); err != nil {
				return err
			}
			return replaceTags(tx, &post, tags)
		})
		if err == nil {
			break
		}
		if !database.IsDuplicateKey(err) {
			return nil, err
		}
		if attempt > 0 {
			return nil, errSlugConflict
		}
		// Another writer took the slug between the check and the insert.
		if post.Slug, err = s.uniqueSlug(ctx, title, ""); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, post.ID)
}

// Update applies dto for the author or an admin. It returns (nil, nil)
// when the post does not exist.
func (s *Service) Update(ctx context.Context, id string, actor Actor, dto *UpdatePostDTO) (*models.Post, error) {
	return s.update(ctx, id, actor, dto, nil)
}

// update validates dto before any write. columns are raw column values
// written in the same transaction without touching updated_at.
func (s *Service) update(ctx context.Context, id string, actor Actor, dto *UpdatePostDTO, columns map[string]interface{}) (*models.Post, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil || post == nil {
		return post, err
	}
	if !actor.IsAdmin && post.AuthorID != actor.UserID {
		return nil, errForbidden
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		title := strings.TrimSpace(*dto.Title)
		if title == "" {
			return nil, errTitleRequired
		}
		if title != post.Title {
			slugValue, err := s.uniqueSlug(ctx, title, post.ID)
			if err != nil {
				return nil, err
			}
			updates["title"] = title
			updates["slug"] = slugValue
		}
	}
	if dto.Content != nil {
		if strings.TrimSpace(*dto.Content) == "" {
			return nil, errContentRequired
		}
		updates["content"] = *dto.Content
		if dto.Excerpt == nil && post.Excerpt == markdown.Excerpt(post.Content, markdown.DefaultExcerptLength) {
			updates["excerpt"] = markdown.Excerpt(*dto.Content, markdown.DefaultExcerptLength)
		}
	}
	if dto.Excerpt != nil {
		content := post.Content
		if dto.Content != nil {
			content = *dto.Content
		}
		updates["excerpt"] = excerptFor(*dto.Excerpt, content)
	}
	if dto.Published != nil {
		updates["published"] = *dto.Published
	}
	var tags []string
	if dto.Tags != nil {
		if tags, err = normalizeTags(dto.Tags); err != nil {
			return nil, err
		}
	}

	newCategory := ""
	if dto.Category != nil {
		newCategory = strings.TrimSpace(*dto.Category)
		if newCategory == "" {
			return nil, errCategoryRequired
		}
		if newCategory != post.CategoryID {
			if err := s.requireCategory(ctx, newCategory); err != nil {
				return nil, err
			}
			updates["category_id"] = newCategory
		}
	}

	apply := func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if len(columns) > 0 {
			if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumns(columns).Error; err != nil {
				return err
			}
		}
		if _, moved := updates["category_id"]; moved {
			if err := bumpCategory(tx, post.CategoryID, -1); err != nil {
				return err
			}
			if err := bumpCategory(tx, newCategory, 1); err != nil {
				return err
			}
		}
		if dto.Tags != nil {
			return replaceTags(tx, post, tags)
		}
		return nil
	}

	for attempt := 0; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(apply)
		if err == nil {
			break
		}
		if !database.IsDuplicateKey(err) {
			return nil, err
		}
		title, retitled := updates["title"].(string)
		if attempt > 0 || !retitled {
			return nil, errSlugConflict
		}
		slugValue, err := s.uniqueSlug(ctx, title, post.ID)
		if err != nil {
			return nil, err
		}
		updates["slug"] = slugValue
	}
	return s.GetByID(ctx, id)
}

// AdminPatch merges the whitelisted fields without an ownership check.
func (s *Service) AdminPatch(ctx context.Context, id string, dto *AdminPatchDTO) (*models.Post, error) {
	var columns map[string]interface{}
	if dto.LikesCount != nil {
		count := *dto.LikesCount
		if count < 0 {
			count = 0
		}
		columns = map[string]interface{}{"likes_count": count}
	}
	return s.update(ctx, id, Actor{IsAdmin: true}, &UpdatePostDTO{
		Title:     dto.Title,
		Content:   dto.Content,
		Excerpt:   dto.Excerpt,
		Category:  dto.Category,
		Published: dto.Published,
	}, columns)
}

// Delete removes the post for its author or an admin. Comments and likes are left behind.
func (s *Service) Delete(ctx context.Context, id string, actor Actor) (bool, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id", "author_id", "category_id").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if !actor.IsAdmin && post.AuthorID != actor.UserID {
		return true, errForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, "id = ?", post.ID).Error; err != nil {
			return err
		}
		return bumpCategory(tx, post.CategoryID, -1)
	})
	return true, err
}

// ListTags returns every tag with the number of posts carrying it.
func (s *Service) ListTags(ctx context.Context) ([]TagCount, error) {
	rows := []TagCount{}
	err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Select("tags.id, tags.name, COUNT(post_tags.post_id) AS post_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("tags.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (s *Service) requireCategory(ctx context.Context, id string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errCategoryNotFound
	}
	return nil
}

// uniqueSlug derives a slug from title and suffixes it until no other post holds it.
func (s *Service) uniqueSlug(ctx context.Context, title, excludeID string) (string, error) {
	return slug.Unique(slug.Post(title), func(candidate string) (bool, error) {
		q := s.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", candidate)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		var count int64
		err := q.Count(&count).Error
		return count > 0, err
	})
}

func excerptFor(explicit, content string) string {
	if e := strings.TrimSpace(explicit); e != "" {
		return e
	}
	return markdown.Excerpt(content, markdown.DefaultExcerptLength)
}

// bumpCategory moves post_count by delta, never below zero.
func bumpCategory(tx *gorm.DB, categoryID string, delta int) error {
	expr := gorm.Expr("post_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN post_count >= ? THEN post_count - ? ELSE 0 END", -delta, -delta)
	}
	return tx.Model(&models.Category{}).Where("id = ?", categoryID).UpdateColumn("post_count", expr).Error
}

// normalizeTags trims, drops empties and de-duplicates case-insensitively.
func normalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		name := strings.TrimSpace(t)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > maxTagLength {
			return nil, errTagTooLong
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// replaceTags upserts tags by name and makes them the post's full set.
func replaceTags(tx *gorm.DB, post *models.Post, names []string) error {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return tx.Model(post).Association("Tags").Clear()
	}
	return tx.Model(post).Association("Tags").Replace(tags)
}
