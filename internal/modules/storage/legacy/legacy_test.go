package legacy

import (
	"testing"
	"time"

	"github.com/blogd/blogd/internal/models"
	"github.com/blogd/blogd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMapIDStable(t *testing.T) {
	oid := primitive.NewObjectID()
	first := mapID(oid)
	assert.Len(t, first, 36)
	assert.Equal(t, first, mapID(oid))
	assert.Equal(t, first, mapRef(oid.Hex()))
	assert.NotEqual(t, first, mapID(primitive.NewObjectID()))
	assert.Empty(t, mapID(primitive.NilObjectID))
	assert.Equal(t, "not-an-id", mapRef("not-an-id"))
}

func TestMapUser(t *testing.T) {
	u := mapUser(legacyUser{
		ID:       primitive.NewObjectID(),
		Email:    " Ann@Example.com ",
		Password: "$2a$10$hash",
		Role:     "superuser",
		Social:   legacySocial{GitHub: "ann"},
	})
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, models.RoleWriter, u.Role)
	assert.Equal(t, "ann", u.Social.GitHub)

	admin := mapUser(legacyUser{ID: primitive.NewObjectID(), Role: "admin"})
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestMapPostDedupsTags(t *testing.T) {
	tag := primitive.NewObjectID()
	p, tagIDs := mapPost(legacyPost{
		ID:         primitive.NewObjectID(),
		Title:      "T",
		Slug:       "t",
		Tags:       []primitive.ObjectID{tag, tag, primitive.NilObjectID},
		LikesCount: -3,
	})
	assert.Equal(t, []string{mapID(tag)}, tagIDs)
	assert.Equal(t, 0, p.LikesCount)
}

func TestMapCategoryDefaultsActive(t *testing.T) {
	c := mapCategory(legacyCategory{ID: primitive.NewObjectID(), Name: " Go ", Slug: "GO"})
	assert.True(t, c.IsActive)
	assert.Equal(t, "Go", c.Name)
	assert.Equal(t, "go", c.Slug)

	inactive := false
	c = mapCategory(legacyCategory{ID: primitive.NewObjectID(), Name: "Old", Slug: "old", IsActive: &inactive})
	assert.False(t, c.IsActive)
}

func TestLegacyDocumentsDecode(t *testing.T) {
	postID := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":      primitive.NewObjectID(),
		"content":  "hi",
		"postId":   postID.Hex(),
		"isEdited": true,
		"author":   bson.M{"id": "u1", "name": "Ann", "email": "a@x.io"},
	})
	require.NoError(t, err)

	var doc legacyComment
	require.NoError(t, bson.Unmarshal(raw, &doc))
	c := mapComment(doc)
	assert.Equal(t, mapID(postID), c.PostID)
	assert.Equal(t, "Ann", c.Author.Name)
	assert.True(t, c.IsEdited)
}

func TestWriteUpserts(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	user := legacyUser{ID: primitive.NewObjectID(), Email: "w@example.com", Password: "x", Role: "WRITER", CreatedAt: now}
	cat := legacyCategory{ID: primitive.NewObjectID(), Name: "Go", Slug: "go", PostCount: 1}
	tag := legacyTag{ID: primitive.NewObjectID(), Name: "golang"}
	post := legacyPost{
		ID:         primitive.NewObjectID(),
		Title:      "Hello",
		Slug:       "hello",
		Content:    "body",
		Published:  true,
		Author:     user.ID,
		Category:   cat.ID,
		Tags:       []primitive.ObjectID{tag.ID},
		LikesCount: 1,
	}
	like := legacyLike{ID: primitive.NewObjectID(), PostID: post.ID, UserID: user.ID}
	var comment legacyComment
	comment.ID = primitive.NewObjectID()
	comment.Content = "nice"
	comment.PostID = post.ID.Hex()
	comment.Author.ID = user.ID.Hex()

	run := func() *Report {
		report := &Report{}
		require.NoError(t, write(db, report,
			[]legacyUser{user},
			[]legacyCategory{cat},
			[]legacyTag{tag},
			[]legacyPost{post},
			[]legacyComment{comment},
			[]legacyLike{like},
		))
		return report
	}

	report := run()
	assert.Equal(t, Report{Users: 1, Categories: 1, Tags: 1, Posts: 1, PostTags: 1, Comments: 1, Likes: 1}, *report)

	post.Title = "Hello again"
	run()

	var posts []models.Post
	require.NoError(t, db.Preload("Tags").Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello again", posts[0].Title)
	assert.Equal(t, mapID(user.ID), posts[0].AuthorID)
	require.Len(t, posts[0].Tags, 1)
	assert.Equal(t, "golang", posts[0].Tags[0].Name)

	var likes, comments int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Equal(t, int64(1), likes)
	assert.Equal(t, int64(1), comments)

	var c models.Comment
	require.NoError(t, db.First(&c).Error)
	assert.Equal(t, mapID(user.ID), c.Author.ID)
}
