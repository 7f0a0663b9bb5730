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

// FollowRepository stores one document per edge, keyed by
// "<follower>:<followee>". The follower_id and followee_id indexes give the
// following and followers views of the same document.
type FollowRepository struct {
	collection *mongo.Collection
}

var _ FollowStore = (*FollowRepository)(nil)

func NewFollowRepository(db *mongo.Database) *FollowRepository {
	return &FollowRepository{
		collection: db.Collection("follows"),
	}
}

func (r *FollowRepository) GetFollow(ctx context.Context, followerID, followeeID string) (*models.Follow, error) {
	var follow models.Follow
	err := r.collection.FindOne(ctx, bson.M{"_id": models.FollowKey(followerID, followeeID)}).Decode(&follow)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find follow: %w", err)
	}
	return &follow, nil
}

func (r *FollowRepository) InsertFollow(ctx context.Context, follow *models.Follow) error {
	follow.ID = models.FollowKey(follow.FollowerID, follow.FolloweeID)
	if _, err := r.collection.InsertOne(ctx, follow); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert follow: %w", err)
	}
	return nil
}

func (r *FollowRepository) DeleteFollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": models.FollowKey(followerID, followeeID)})
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}
	return res.DeletedCount == 1, nil
}

func (r *FollowRepository) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	return r.listSide(ctx, bson.M{"follower_id": userID}, "followee_id")
}

func (r *FollowRepository) ListFollowers(ctx context.Context, userID string) ([]string, error) {
	return r.listSide(ctx, bson.M{"followee_id": userID}, "follower_id")
}

func (r *FollowRepository) listSide(ctx context.Context, filter bson.M, field string) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetProjection(bson.M{field: 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve follows: %w", err)
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var row bson.M
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		if id, ok := row[field].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, cursor.Err()
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"follower_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return n, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"followee_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return n, nil
}
