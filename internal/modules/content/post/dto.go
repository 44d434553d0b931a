package post

import (
	"time"

	"github.com/blogd/blogd/internal/models"
)

// CreatePostDTO is the request body for creating a post. Category comes
// first so a missing category is reported before a missing title.
type CreatePostDTO struct {
	Category  string   `json:"category" binding:"required"`
	Title     string   `json:"title" binding:"required"`
	Content   string   `json:"content" binding:"required"`
	Excerpt   string   `json:"excerpt"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
}

// UpdatePostDTO is the body of PUT /posts/:id. Absent fields are left alone.
type UpdatePostDTO struct {
	Title     *string  `json:"title"`
	Content   *string  `json:"content"`
	Excerpt   *string  `json:"excerpt"`
	Category  *string  `json:"category"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
}

// AdminPatchDTO is the whitelist admins may merge into a post.
type AdminPatchDTO struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Excerpt    *string `json:"excerpt"`
	Published  *bool   `json:"published"`
	Category   *string `json:"category"`
	LikesCount *int    `json:"likesCount"`
}

// ListQuery holds query params for listing posts.
type ListQuery struct {
	Category string `form:"category"`
	Tag      string `form:"tag"`
}

// Actor is whoever is attempting a write.
type Actor struct {
	UserID  string
	IsAdmin bool
}

type authorRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type categoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// postResponse is the API response shape for a post.
type postResponse struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Slug       string       `json:"slug"`
	Content    string       `json:"content"`
	Excerpt    string       `json:"excerpt"`
	Published  bool         `json:"published"`
	AuthorID   string       `json:"authorId"`
	Author     *authorRef   `json:"author"`
	CategoryID string       `json:"categoryId"`
	Category   *categoryRef `json:"category"`
	LikesCount int          `json:"likesCount"`
	Tags       []string     `json:"tags"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func toResponse(p *models.Post) postResponse {
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, t.Name)
	}
	resp := postResponse{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Content:    p.Content,
		Excerpt:    p.Excerpt,
		Published:  p.Published,
		AuthorID:   p.AuthorID,
		CategoryID: p.CategoryID,
		LikesCount: p.LikesCount,
		Tags:       tags,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Author != nil {
		resp.Author = &authorRef{ID: p.Author.ID, Name: p.Author.DisplayName(), Email: p.Author.Email}
	}
	if p.Category != nil {
		resp.Category = &categoryRef{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug}
	}
	return resp
}

func toResponses(posts []models.Post) []postResponse {
	items := make([]postResponse, len(posts))
	for i := range posts {
		items[i] = toResponse(&posts[i])
	}
	return items
}

// TagCount is one row of GET /tags.
type TagCount struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"postCount"`
}

type likeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}
