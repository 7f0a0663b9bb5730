package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectDB connects to MongoDB and makes sure the indexes exist.
// Transactions require the deployment to be a replica set.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	if err := EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	logrus.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return db, nil
}

const (
	usernameIndex = "username_lower_unique"
	// Non-unique index created by earlier releases on the same key.
	legacyUsernameIndex = "username_lower_1"
)

// dropIndex removes name and treats a missing index or collection as done.
func dropIndex(ctx context.Context, coll *mongo.Collection, name string) error {
	_, err := coll.Indexes().DropOne(ctx, name)
	var cmdErr mongo.CommandError
	if err == nil || (errors.As(err, &cmdErr) && (cmdErr.Code == 26 || cmdErr.Code == 27)) {
		return nil
	}
	return fmt.Errorf("failed to drop index %s: %w", name, err)
}

// EnsureIndexes creates the secondary indexes every query path relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			// Legacy documents have no username_lower until the backfill
			// runs, so only non-empty keys take part in the constraint.
			{
				Keys: bson.D{{Key: "username_lower", Value: 1}},
				Options: options.Index().
					SetName(usernameIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"username_lower": bson.M{"$gt": ""}}),
			},
		},
		"follows": {
			{Keys: bson.D{{Key: "follower_id", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "followee_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		"follow_events": {
			{Keys: bson.D{{Key: "processed_at", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		"posts": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "posted_date", Value: -1}}},
			{Keys: bson.D{{Key: "posted_date", Value: -1}, {Key: "_id", Value: -1}}},
		},
		"wines": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "added_date", Value: -1}}},
		},
		"wishlist": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	if err := dropIndex(ctx, db.Collection("users"), legacyUsernameIndex); err != nil {
		return err
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
