package legacy

import (
	"context"
	"fmt"
	"time"

	"github.com/blogd/blogd/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Import copies a document-store deployment into db. Rows are upserted by
// derived id, so running it twice is harmless.
func Import(ctx context.Context, mongoURI, dbName string, db *gorm.DB) (*Report, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return importFrom(ctx, client.Database(dbName), db)
}

func importFrom(ctx context.Context, src *mongo.Database, db *gorm.DB) (*Report, error) {
	users, err := readAll[legacyUser](ctx, src, collUsers)
	if err != nil {
		return nil, err
	}
	categories, err := readAll[legacyCategory](ctx, src, collCategories)
	if err != nil {
		return nil, err
	}
	tags, err := readAll[legacyTag](ctx, src, collTags)
	if err != nil {
		return nil, err
	}
	posts, err := readAll[legacyPost](ctx, src, collPosts)
	if err != nil {
		return nil, err
	}
	comments, err := readAll[legacyComment](ctx, src, collComments)
	if err != nil {
		return nil, err
	}
	likes, err := readAll[legacyLike](ctx, src, collLikes)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return write(tx, report, users, categories, tags, posts, comments, likes)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("legacy import finished",
		zap.Int("users", report.Users),
		zap.Int("posts", report.Posts),
		zap.Int("comments", report.Comments),
		zap.Int("likes", report.Likes),
	)
	return report, nil
}

func write(
	tx *gorm.DB,
	report *Report,
	users []legacyUser,
	categories []legacyCategory,
	tags []legacyTag,
	posts []legacyPost,
	comments []legacyComment,
	likes []legacyLike,
) error {
	upsert := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}

	userRows := make([]models.User, 0, len(users))
	for _, doc := range users {
		userRows = append(userRows, mapUser(doc))
	}
	if err := createBatches(tx.Clauses(upsert), &userRows, len(userRows)); err != nil {
		return fmt.Errorf("import users: %w", err)
	}
	report.Users = len(userRows)

	categoryRows := make([]models.Category, 0, len(categories))
	for _, doc := range categories {
		categoryRows = append(categoryRows, mapCategory(doc))
	}
	if err := createBatches(tx.Clauses(upsert), &categoryRows, len(categoryRows)); err != nil {
		return fmt.Errorf("import categories: %w", err)
	}
	report.Categories = len(categoryRows)

	tagRows := make([]models.Tag, 0, len(tags))
	for _, doc := range tags {
		tagRows = append(tagRows, mapTag(doc))
	}
	if err := createBatches(tx.Clauses(upsert), &tagRows, len(tagRows)); err != nil {
		return fmt.Errorf("import tags: %w", err)
	}
	report.Tags = len(tagRows)

	postRows := make([]models.Post, 0, len(posts))
	links := make([]map[string]interface{}, 0)
	for _, doc := range posts {
		post, tagIDs := mapPost(doc)
		postRows = append(postRows, post)
		for _, tagID := range tagIDs {
			links = append(links, map[string]interface{}{"post_id": post.ID, "tag_id": tagID})
		}
	}
	if err := createBatches(tx.Omit("Tags").Clauses(upsert), &postRows, len(postRows)); err != nil {
		return fmt.Errorf("import posts: %w", err)
	}
	report.Posts = len(postRows)
	if len(links) > 0 {
		if err := tx.Table("post_tags").Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return fmt.Errorf("import post tags: %w", err)
		}
	}
	report.PostTags = len(links)

	commentRows := make([]models.Comment, 0, len(comments))
	for _, doc := range comments {
		commentRows = append(commentRows, mapComment(doc))
	}
	if err := createBatches(tx.Clauses(upsert), &commentRows, len(commentRows)); err != nil {
		return fmt.Errorf("import comments: %w", err)
	}
	report.Comments = len(commentRows)

	likeRows := make([]models.Like, 0, len(likes))
	for _, doc := range likes {
		likeRows = append(likeRows, mapLike(doc))
	}
	// A (post, user) pair already present under another id is skipped.
	if err := createBatches(tx.Clauses(clause.OnConflict{DoNothing: true}), &likeRows, len(likeRows)); err != nil {
		return fmt.Errorf("import likes: %w", err)
	}
	report.Likes = len(likeRows)
	return nil
}

func createBatches(tx *gorm.DB, rows interface{}, n int) error {
	if n == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}

func readAll[T any](ctx context.Context, src *mongo.Database, name string) ([]T, error) {
	cur, err := src.Collection(name).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}
