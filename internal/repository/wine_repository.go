package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WineRepository struct {
	collection *mongo.Collection
}

var _ WineStore = (*WineRepository)(nil)

func NewWineRepository(db *mongo.Database) *WineRepository {
	return &WineRepository{collection: db.Collection("wines")}
}

func (r *WineRepository) CreateWine(ctx context.Context, wine *models.Wine) error {
	if _, err := r.collection.InsertOne(ctx, wine); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create wine: %w", err)
	}
	return nil
}

func (r *WineRepository) GetWineByID(ctx context.Context, id string) (*models.Wine, error) {
	var wine models.Wine
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&wine)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wine: %w", err)
	}
	return &wine, nil
}

func (r *WineRepository) GetWinesByUser(ctx context.Context, userID string) ([]models.Wine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get wines: %w", err)
	}
	defer cursor.Close(ctx)

	var wines []models.Wine
	if err := cursor.All(ctx, &wines); err != nil {
		return nil, fmt.Errorf("failed to decode wines: %w", err)
	}
	return wines, nil
}

func (r *WineRepository) UpdateWineFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithError(err).WithField("wineID", id).Error("Failed to update wine")
		return fmt.Errorf("failed to update wine: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrWineNotFound
	}
	return nil
}
