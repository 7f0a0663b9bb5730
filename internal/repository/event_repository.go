package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository is the follow-event outbox plus the processed-event
// dedup table.
type EventRepository struct {
	events    *mongo.Collection
	processed *mongo.Collection
}

var _ EventStore = (*EventRepository)(nil)

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{
		events:    db.Collection("follow_events"),
		processed: db.Collection("processed_events"),
	}
}

func (r *EventRepository) AppendEvent(ctx context.Context, event *models.FollowEvent) error {
	if _, err := r.events.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to append follow event: %w", err)
	}
	return nil
}

// PendingEvents returns unprocessed events, oldest first.
func (r *EventRepository) PendingEvents(ctx context.Context, limit int) ([]models.FollowEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.events.Find(ctx, bson.M{"processed_at": bson.M{"$exists": false}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.FollowEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) PendingEventsFor(ctx context.Context, userID string) ([]models.FollowEvent, error) {
	filter := bson.M{
		"processed_at": bson.M{"$exists": false},
		"$or": bson.A{
			bson.M{"follower_id": userID},
			bson.M{"followee_id": userID},
		},
	}
	cursor, err := r.events.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending events for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var events []models.FollowEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) MarkProcessed(ctx context.Context, eventID string, at time.Time) error {
	_, err := r.events.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{"processed_at": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (r *EventRepository) ClaimEvent(ctx context.Context, eventID string, at time.Time) (bool, error) {
	_, err := r.processed.InsertOne(ctx, bson.M{"_id": eventID, "processed_at": at})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to claim event: %w", err)
	}
	return true, nil
}
