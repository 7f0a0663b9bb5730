package services

import (
	"context"
	"testing"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWishlistService(store *testutil.MemStore) *WishlistService {
	return NewWishlistService(store, store, NewNotificationService(store))
}

func TestAddToWishlistIsIdempotent(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "u")
	svc := newWishlistService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddToWishlist(ctx, "u", "w", ""))
	first, _ := store.WishlistEntry("u", "w")
	require.NoError(t, svc.AddToWishlist(ctx, "u", "w", ""))

	entries, err := svc.ListWishlist(ctx, "u")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].CreatedAt.Before(first.CreatedAt))
	assert.Nil(t, entries[0].RecommendedBy)
}

func TestRemoveFromWishlistAbsentIsFine(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newWishlistService(store)
	assert.NoError(t, svc.RemoveFromWishlist(context.Background(), "u", "w"))
}

func TestMarkTastedMovesWine(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "u")
	svc := newWishlistService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddToWishlist(ctx, "u", "w1", ""))
	require.NoError(t, svc.MarkTasted(ctx, "u", "w2"))
	require.NoError(t, svc.MarkTasted(ctx, "u", "w1"))
	require.NoError(t, svc.MarkTasted(ctx, "u", "w2"))

	tasted, err := svc.ListTasted(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"w2", "w1"}, tasted, "first-addition order, no duplicates")

	_, onWishlist := store.WishlistEntry("u", "w1")
	assert.False(t, onWishlist)
}

func TestMarkTastedKeepsTastedWhenWishlistDeleteFails(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "u")
	svc := newWishlistService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddToWishlist(ctx, "u", "w", ""))
	store.Fail("DeleteEntry", errStoreDown)

	err := svc.MarkTasted(ctx, "u", "w")
	require.ErrorIs(t, err, errStoreDown)

	user, _ := store.User("u")
	assert.Contains(t, user.WinesTasted, "w")
}

func TestMarkTastedFirstStepFailureLeavesWishlist(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "u")
	svc := newWishlistService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddToWishlist(ctx, "u", "w", ""))
	store.Fail("AddWineTasted", errStoreDown)

	require.Error(t, svc.MarkTasted(ctx, "u", "w"))
	_, onWishlist := store.WishlistEntry("u", "w")
	assert.True(t, onWishlist)
	assert.Zero(t, store.Calls("DeleteEntry"))
}

func TestMarkTastedClearsLegacyWishlist(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutLegacyUser(models.User{ID: "u", Username: "u"}, nil, []string{"w", "other"})
	svc := newWishlistService(store)

	ctx := context.Background()

	require.NoError(t, svc.MarkTasted(ctx, "u", "w"))
	legacy, err := store.LegacyWishlist(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, legacy)
}

func TestListWishlistIncludesLegacyEntries(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutLegacyUser(models.User{ID: "u", Username: "u"}, nil, []string{"old", "both"})
	svc := newWishlistService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddToWishlist(ctx, "u", "both", ""))
	require.NoError(t, svc.AddToWishlist(ctx, "u", "new", ""))

	entries, err := svc.ListWishlist(ctx, "u")
	require.NoError(t, err)
	wineIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		wineIDs = append(wineIDs, e.WineID)
	}
	assert.Equal(t, []string{"old", "both", "new"}, wineIDs, "legacy entries first, each wine once")

	require.NoError(t, svc.RemoveFromWishlist(ctx, "u", "old"))
	entries, err = svc.ListWishlist(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecommend(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "sender", "target")
	svc := newWishlistService(store)
	ctx := context.Background()

	require.NoError(t, svc.Recommend(ctx, "sender", "target", "w"))

	entry, ok := store.WishlistEntry("target", "w")
	require.True(t, ok)
	require.NotNil(t, entry.RecommendedBy)
	assert.Equal(t, "sender", *entry.RecommendedBy)

	notifs := store.Notifications()
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationWineRecommended, notifs[0].Type)
	assert.Equal(t, "w", notifs[0].TargetID)

	err := svc.Recommend(ctx, "sender", "ghost", "w")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	_, ok = store.WishlistEntry("ghost", "w")
	assert.False(t, ok)
}

func TestWishlistRejectsEmptyIDs(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newWishlistService(store)
	ctx := context.Background()

	assert.ErrorIs(t, svc.AddToWishlist(ctx, "", "w", ""), models.ErrInvalidInput)
	assert.ErrorIs(t, svc.MarkTasted(ctx, "u", ""), models.ErrInvalidInput)
	assert.ErrorIs(t, svc.Recommend(ctx, "a", "", "w"), models.ErrInvalidInput)
	assert.Zero(t, store.TotalCalls())
}
