package models

import (
	"strings"
	"time"
)

// Follow is the canonical edge follower -> followee. Reverse lookups go
// through the followee_id index, so both directions come from one document.
type Follow struct {
	ID         string    `bson:"_id" json:"id"`
	FollowerID string    `bson:"follower_id" json:"follower_id"`
	FolloweeID string    `bson:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// keyPartEscaper keeps ':' unique as the separator of composite keys, so
// ("a:b", "c") and ("a", "b:c") cannot collide. Plain ids are unchanged.
var keyPartEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

func compositeKey(a, b string) string {
	return keyPartEscaper.Replace(a) + ":" + keyPartEscaper.Replace(b)
}

func FollowKey(followerID, followeeID string) string {
	return compositeKey(followerID, followeeID)
}

type FollowEventType string

const (
	FollowCreated FollowEventType = "created"
	FollowDeleted FollowEventType = "deleted"
)

// FollowEvent is written in the same transaction as the edge mutation and
// consumed by the counter reconciler.
type FollowEvent struct {
	ID          string          `bson:"_id" json:"id"`
	Type        FollowEventType `bson:"type" json:"type"`
	FollowerID  string          `bson:"follower_id" json:"follower_id"`
	FolloweeID  string          `bson:"followee_id" json:"followee_id"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
}

func (e FollowEvent) Delta() int64 {
	if e.Type == FollowDeleted {
		return -1
	}
	return 1
}
