package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostRepository struct {
	collection *mongo.Collection
}

var _ PostStore = (*PostRepository)(nil)

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{collection: db.Collection("posts")}
}

// newestFirst orders by posted_date and breaks ties on _id so that pages
// are deterministic.
var newestFirst = bson.D{{Key: "posted_date", Value: -1}, {Key: "_id", Value: -1}}

func (r *PostRepository) CreatePost(ctx context.Context, post *models.FeedPost) error {
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetPostByID(ctx context.Context, id string) (*models.FeedPost, error) {
	var post models.FeedPost
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// FindByAuthors returns the newest posts whose author is in authorIDs.
func (r *PostRepository) FindByAuthors(ctx context.Context, authorIDs []string, limit int) ([]models.FeedPost, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"user_id": bson.M{"$in": authorIDs}}, limit)
}

func (r *PostRepository) FindRecent(ctx context.Context, limit int) ([]models.FeedPost, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *PostRepository) find(ctx context.Context, filter bson.M, limit int) ([]models.FeedPost, error) {
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []models.FeedPost
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// AddLike reports whether the like was added; false means the post is
// missing or already liked by userID.
func (r *PostRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID, "likes": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": userID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to like post: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to unlike post: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// AppendComment pushes to the end of the comment list; false means no such post.
func (r *PostRepository) AppendComment(ctx context.Context, postID string, comment models.Comment) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to add comment: %w", err)
	}
	return res.MatchedCount == 1, nil
}
