package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WishlistRepository struct {
	collection *mongo.Collection
}

var _ WishlistStore = (*WishlistRepository)(nil)

func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	return &WishlistRepository{collection: db.Collection("wishlist")}
}

// UpsertEntry replaces any entry with the same (user, wine) key.
func (r *WishlistRepository) UpsertEntry(ctx context.Context, entry *models.WishlistEntry) error {
	entry.ID = models.WishlistKey(entry.UserID, entry.WineID)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry, opts); err != nil {
		logrus.WithError(err).WithField("entry", entry.ID).Error("Failed to upsert wishlist entry")
		return fmt.Errorf("failed to upsert wishlist entry: %w", err)
	}
	return nil
}

func (r *WishlistRepository) DeleteEntry(ctx context.Context, userID, wineID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": models.WishlistKey(userID, wineID)})
	if err != nil {
		return fmt.Errorf("failed to delete wishlist entry: %w", err)
	}
	return nil
}

func (r *WishlistRepository) ListEntries(ctx context.Context, userID string) ([]models.WishlistEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.WishlistEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist: %w", err)
	}
	return entries, nil
}
