package repository_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/database"
	"github.com/Dias221467/Tenvin_Social/internal/jobs"
	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/Dias221467/Tenvin_Social/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Needs a replica set, e.g. MONGO_TEST_URI=mongodb://localhost:27017/?replicaSet=rs0
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("tenvin_test_" + uuid.NewString()[:8])
	require.NoError(t, database.EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMongoFollowLedgerAndReconciler(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	events := repository.NewEventRepository(db)
	tx := repository.NewTxRunner(db)

	for _, id := range []string{"alice", "bob"} {
		require.NoError(t, users.CreateUser(ctx, &models.User{ID: id, Username: strings.ToUpper(id[:1]) + id[1:]}))
	}

	notifier := services.NewNotificationService(repository.NewNotificationRepository(db))
	followService := services.NewFollowService(follows, events, users, tx, notifier)

	created, err := followService.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = followService.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, created)

	followers, err := follows.ListFollowers(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, followers)

	reconciler := jobs.NewCounterReconciler(events, users, follows, tx)
	applied, err := reconciler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	alice, err := users.GetUserByID(ctx, "alice")
	require.NoError(t, err)
	bob, err := users.GetUserByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.FollowingCount)
	assert.Equal(t, int64(1), bob.FollowersCount)

	// Nothing left to apply.
	applied, err = reconciler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestMongoClaimEventOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	events := repository.NewEventRepository(db)

	first, err := events.ClaimEvent(ctx, "evt-1", time.Now())
	require.NoError(t, err)
	assert.True(t, first)

	second, err := events.ClaimEvent(ctx, "evt-1", time.Now())
	require.NoError(t, err)
	assert.False(t, second)
}

func TestMongoSearchByUsernamePrefix(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)

	for _, name := range []string{"Marcel", "marguerite", "Bruno"} {
		require.NoError(t, users.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: name}))
	}

	found, err := users.SearchByUsernamePrefix(ctx, "mar", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Marcel", found[0].Username)
	assert.Equal(t, "marguerite", found[1].Username)
}

func TestMongoUsernameUniqueIgnoringCase(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)

	require.NoError(t, users.CreateUser(ctx, &models.User{ID: "u1", Username: "Anna"}))

	err := users.CreateUser(ctx, &models.User{ID: "u2", Username: "anna"})
	assert.ErrorIs(t, err, models.ErrUsernameTaken)

	err = users.CreateUser(ctx, &models.User{ID: "u1", Username: "Other"})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)
	assert.NotErrorIs(t, err, models.ErrUsernameTaken)

	require.NoError(t, users.CreateUser(ctx, &models.User{ID: "u2", Username: "Bruno"}))
	err = users.UpdateUserFields(ctx, "u2", map[string]interface{}{"username": "ANNA"})
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
}
