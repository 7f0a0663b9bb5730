package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// prefixSentinel closes the username range scan [prefix, prefix+sentinel).
const prefixSentinel = "\uf8ff"

// usernameConflict reports a duplicate key on the unique username_lower
// index, as opposed to a duplicate _id.
func usernameConflict(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), "username_lower")
}

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

var _ UserStore = (*UserRepository)(nil)

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// userDocument is the stored shape, including fields written by schema
// version 1 (follow and wishlist arrays on the user, no counters).
type userDocument struct {
	models.User     `bson:",inline"`
	LegacyFollowing []string `bson:"following,omitempty"`
	LegacyFollowers []string `bson:"followers,omitempty"`
	LegacyWishlist  []string `bson:"wishlist,omitempty"`
}

// MigratedUser is a user upgraded to the current schema plus the legacy
// arrays the backfill still has to move into their own collections.
type MigratedUser struct {
	User            models.User
	LegacyFollowing []string
	LegacyWishlist  []string
}

// migrateUserDoc is the only place that knows about older user layouts.
func migrateUserDoc(doc *userDocument) MigratedUser {
	u := doc.User
	if u.SchemaVersion < models.UserSchemaVersion {
		if u.FollowingCount == 0 {
			u.FollowingCount = int64(len(doc.LegacyFollowing))
		}
		if u.FollowersCount == 0 {
			u.FollowersCount = int64(len(doc.LegacyFollowers))
		}
		if u.UsernameLower == "" {
			u.UsernameLower = models.NormalizeUsername(u.Username)
		}
		u.SchemaVersion = models.UserSchemaVersion
	}
	if !u.PrivacyLevel.Valid() {
		u.PrivacyLevel = models.PrivacyPublic
	}
	if u.WinesTasted == nil {
		u.WinesTasted = []string{}
	}
	return MigratedUser{
		User:            u,
		LegacyFollowing: doc.LegacyFollowing,
		LegacyWishlist:  doc.LegacyWishlist,
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.UsernameLower = models.NormalizeUsername(user.Username)
	user.SchemaVersion = models.UserSchemaVersion
	if user.WinesTasted == nil {
		user.WinesTasted = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if usernameConflict(err) {
			return models.ErrUsernameTaken
		}
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAlreadyExists
		}
		logrus.WithError(err).Error("Failed to insert user into database")
		return fmt.Errorf("failed to insert user: %w", err)
	}

	logrus.WithField("userID", user.ID).Info("User inserted successfully")
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id,
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}

	migrated := migrateUserDoc(&doc)
	return &migrated.User, nil
}

// UpdateUserFields sets the given fields. A changed username also rewrites
// the lowercase search key.
func (r *UserRepository) UpdateUserFields(ctx context.Context, id string, fields map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	if username, ok := fields["username"].(string); ok {
		set["username_lower"] = models.NormalizeUsername(username)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if usernameConflict(err) {
		return models.ErrUsernameTaken
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id,
			"error":  err,
		}).Error("Failed to update user")
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}

	logrus.WithField("userID", id).Info("User updated successfully")
	return nil
}

// SearchByUsernamePrefix runs a range scan over the lowercase username index.
func (r *UserRepository) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]models.User, error) {
	filter := bson.M{"username_lower": bson.M{
		"$gte": prefix,
		"$lt":  prefix + prefixSentinel,
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "username_lower", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, migrateUserDoc(&doc).User)
	}
	return users, cursor.Err()
}

// AddWineTasted appends wineID to wines_tasted unless already present;
// $addToSet keeps the order of first addition.
func (r *UserRepository) AddWineTasted(ctx context.Context, userID, wineID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"wines_tasted": wineID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add tasted wine: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// PullLegacyWishlist removes wineID from the schema v1 wishlist array.
func (r *UserRepository) PullLegacyWishlist(ctx context.Context, userID, wineID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"wishlist": wineID}},
	)
	if err != nil {
		return fmt.Errorf("failed to pull legacy wishlist entry: %w", err)
	}
	return nil
}

func (r *UserRepository) LegacyWishlist(ctx context.Context, userID string) ([]string, error) {
	var doc struct {
		Wishlist []string `bson:"wishlist"`
	}
	opts := options.FindOne().SetProjection(bson.M{"wishlist": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy wishlist: %w", err)
	}
	return doc.Wishlist, nil
}

// IncrementCounter applies an atomic $inc, never a read-modify-write.
func (r *UserRepository) IncrementCounter(ctx context.Context, userID string, counter models.Counter, delta int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{string(counter): delta}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", counter, err)
	}
	return nil
}

func (r *UserRepository) SetCounters(ctx context.Context, userID string, following, followers int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			string(models.FollowingCounter): following,
			string(models.FollowersCounter): followers,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set counters: %w", err)
	}
	return nil
}

func (r *UserRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode user id: %w", err)
		}
		ids = append(ids, row.ID)
	}
	return ids, cursor.Err()
}

// FindOutdated returns users still stored with an older schema version.
func (r *UserRepository) FindOutdated(ctx context.Context, limit int) ([]MigratedUser, error) {
	filter := bson.M{"$or": []bson.M{
		{"schema_version": bson.M{"$exists": false}},
		{"schema_version": bson.M{"$lt": models.UserSchemaVersion}},
	}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to find outdated users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []MigratedUser
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, migrateUserDoc(&doc))
	}
	return users, cursor.Err()
}

// SaveMigrated persists an upgraded user and drops the legacy arrays.
func (r *UserRepository) SaveMigrated(ctx context.Context, user *models.User) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{
			"$set": bson.M{
				"username":        user.Username,
				"username_lower":  user.UsernameLower,
				"following_count": user.FollowingCount,
				"followers_count": user.FollowersCount,
				"privacy_level":   user.PrivacyLevel,
				"wines_tasted":    user.WinesTasted,
				"schema_version":  user.SchemaVersion,
				"updated_at":      time.Now(),
			},
			"$unset": bson.M{"following": "", "followers": "", "wishlist": ""},
		},
	)
	if usernameConflict(err) {
		return models.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to save migrated user %s: %w", user.ID, err)
	}
	return nil
}
