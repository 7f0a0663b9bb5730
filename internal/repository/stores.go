package repository

import (
	"context"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Point reads return (nil, nil) when the document does not exist. Inserts
// that collide on _id return models.ErrAlreadyExists.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserFields(ctx context.Context, id string, fields map[string]interface{}) error
	SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]models.User, error)
	AddWineTasted(ctx context.Context, userID, wineID string) error
	PullLegacyWishlist(ctx context.Context, userID, wineID string) error
	// LegacyWishlist returns the schema v1 wishlist array, empty once migrated.
	LegacyWishlist(ctx context.Context, userID string) ([]string, error)
	IncrementCounter(ctx context.Context, userID string, counter models.Counter, delta int64) error
	SetCounters(ctx context.Context, userID string, following, followers int64) error
	ListUserIDs(ctx context.Context) ([]string, error)
	FindOutdated(ctx context.Context, limit int) ([]MigratedUser, error)
	SaveMigrated(ctx context.Context, user *models.User) error
}

type WineStore interface {
	CreateWine(ctx context.Context, wine *models.Wine) error
	GetWineByID(ctx context.Context, id string) (*models.Wine, error)
	GetWinesByUser(ctx context.Context, userID string) ([]models.Wine, error)
	UpdateWineFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type PostStore interface {
	CreatePost(ctx context.Context, post *models.FeedPost) error
	GetPostByID(ctx context.Context, id string) (*models.FeedPost, error)
	FindByAuthors(ctx context.Context, authorIDs []string, limit int) ([]models.FeedPost, error)
	FindRecent(ctx context.Context, limit int) ([]models.FeedPost, error)
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	AppendComment(ctx context.Context, postID string, comment models.Comment) (bool, error)
}

type FollowStore interface {
	GetFollow(ctx context.Context, followerID, followeeID string) (*models.Follow, error)
	InsertFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowing(ctx context.Context, userID string) ([]string, error)
	ListFollowers(ctx context.Context, userID string) ([]string, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
}

type EventStore interface {
	AppendEvent(ctx context.Context, event *models.FollowEvent) error
	PendingEvents(ctx context.Context, limit int) ([]models.FollowEvent, error)
	// PendingEventsFor returns the unprocessed events on either side of userID.
	PendingEventsFor(ctx context.Context, userID string) ([]models.FollowEvent, error)
	MarkProcessed(ctx context.Context, eventID string, at time.Time) error
	// ClaimEvent records eventID in the dedup table. It returns false when
	// the event was already claimed by an earlier delivery.
	ClaimEvent(ctx context.Context, eventID string, at time.Time) (bool, error)
}

type WishlistStore interface {
	UpsertEntry(ctx context.Context, entry *models.WishlistEntry) error
	DeleteEntry(ctx context.Context, userID, wineID string) error
	ListEntries(ctx context.Context, userID string) ([]models.WishlistEntry, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID string, id primitive.ObjectID) error
	DeleteNotification(ctx context.Context, userID string, id primitive.ObjectID) error
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}
