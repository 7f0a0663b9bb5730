package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationNewFollower     = "new_follower"
	NotificationWineRecommended = "wine_recommended"
	NotificationPostLiked       = "post_liked"
	NotificationPostCommented   = "post_commented"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Type      string             `bson:"type" json:"type"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	TargetID  string             `bson:"target_id,omitempty" json:"target_id,omitempty"` // wine or post id
	Message   string             `bson:"message" json:"message"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"` // For auto-deletion after 7 days
}
