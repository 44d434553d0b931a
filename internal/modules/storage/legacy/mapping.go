package legacy

import (
	"strings"

	"github.com/blogd/blogd/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// idNamespace seeds the UUIDv5 derived from each ObjectID, so re-imports hit the same rows.
var idNamespace = uuid.MustParse("6f1d8c2e-4b7a-5e39-9c0d-2a8b1f3e7d45")

func mapID(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return uuid.NewSHA1(idNamespace, []byte(oid.Hex())).String()
}

// mapRef maps a hex id stored as a plain string. Anything else is kept verbatim.
func mapRef(raw string) string {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return mapID(oid)
}

func mapUser(doc legacyUser) models.User {
	role, ok := models.ParseRole(doc.Role)
	if !ok {
		role = models.RoleWriter
	}
	return models.User{
		Base:     models.Base{ID: mapID(doc.ID), CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
		Email:    strings.ToLower(strings.TrimSpace(doc.Email)),
		Password: doc.Password,
		Name:     strings.TrimSpace(doc.Name),
		Role:     role,
		Blocked:  doc.Blocked,
		Avatar:   doc.Avatar,
		Bio:      doc.Bio,
		Social: models.Social{
			Twitter:  doc.Social.Twitter,
			GitHub:   doc.Social.GitHub,
			LinkedIn: doc.Social.LinkedIn,
		},
	}
}

func mapCategory(doc legacyCategory) models.Category {
	active := true
	if doc.IsActive != nil {
		active = *doc.IsActive
	}
	return models.Category{
		Base:        models.Base{ID: mapID(doc.ID), CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
		Name:        strings.TrimSpace(doc.Name),
		Slug:        strings.ToLower(doc.Slug),
		Description: doc.Description,
		PostCount:   doc.PostCount,
		IsActive:    active,
	}
}

func mapTag(doc legacyTag) models.Tag {
	return models.Tag{
		Base: models.Base{ID: mapID(doc.ID), CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
		Name: strings.TrimSpace(doc.Name),
	}
}

// mapPost returns the post and its tag ids. Tag links are written separately.
func mapPost(doc legacyPost) (models.Post, []string) {
	tagIDs := make([]string, 0, len(doc.Tags))
	seen := make(map[string]struct{}, len(doc.Tags))
	for _, oid := range doc.Tags {
		id := mapID(oid)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		tagIDs = append(tagIDs, id)
	}
	likes := doc.LikesCount
	if likes < 0 {
		likes = 0
	}
	return models.Post{
		Base:       models.Base{ID: mapID(doc.ID), CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
		Title:      doc.Title,
		Slug:       doc.Slug,
		Content:    doc.Content,
		Excerpt:    doc.Excerpt,
		Published:  doc.Published,
		AuthorID:   mapID(doc.Author),
		CategoryID: mapID(doc.Category),
		LikesCount: likes,
	}, tagIDs
}

func mapComment(doc legacyComment) models.Comment {
	return models.Comment{
		Base:    models.Base{ID: mapID(doc.ID), CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
		Content: doc.Content,
		Author: models.CommentAuthor{
			ID:     mapRef(doc.Author.ID),
			Name:   doc.Author.Name,
			Email:  doc.Author.Email,
			Avatar: doc.Author.Avatar,
		},
		PostID:   mapRef(doc.PostID),
		IsEdited: doc.IsEdited,
	}
}

func mapLike(doc legacyLike) models.Like {
	return models.Like{
		Base:   models.Base{ID: mapID(doc.ID), CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt},
		PostID: mapID(doc.PostID),
		UserID: mapID(doc.UserID),
	}
}
