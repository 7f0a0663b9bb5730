package jobs

import (
	"context"
	"testing"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaBackfillMovesLegacyArrays(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutUser(models.User{ID: "bob", Username: "Bob"})
	store.PutLegacyUser(models.User{ID: "alice", Username: "Alice"}, []string{"bob", "alice", "bob"}, []string{"w1", "w2"})
	ctx := context.Background()

	n, err := NewSchemaBackfill(store, store, store).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	edge, err := store.GetFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.NotNil(t, edge)
	assert.Equal(t, 1, store.FollowCount(), "self and duplicate entries are dropped")

	_, onWishlist := store.WishlistEntry("alice", "w2")
	assert.True(t, onWishlist)
	legacy, err := store.LegacyWishlist(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, legacy)

	alice, _ := store.User("alice")
	assert.Equal(t, models.UserSchemaVersion, alice.SchemaVersion)
	assert.Equal(t, "alice", alice.UsernameLower)
	assert.Equal(t, int64(1), alice.FollowingCount)

	n, err = NewSchemaBackfill(store, store, store).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSchemaBackfillStopsOnError(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutLegacyUser(models.User{ID: "alice", Username: "Alice"}, []string{"bob"}, nil)
	store.Fail("SaveMigrated", errStoreDown)

	_, err := NewSchemaBackfill(store, store, store).Run(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSchemaBackfillSuffixesDuplicateUsername(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutUser(models.User{ID: "current", Username: "alice"})
	store.PutLegacyUser(models.User{ID: "legacy", Username: "Alice"}, nil, nil)

	n, err := NewSchemaBackfill(store, store, store).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	legacy, _ := store.User("legacy")
	assert.Equal(t, "Alice2", legacy.Username)
	assert.Equal(t, "alice2", legacy.UsernameLower)
	assert.Equal(t, models.UserSchemaVersion, legacy.SchemaVersion)
}
