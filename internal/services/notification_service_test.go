package services

import (
	"context"
	"testing"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotifySkipsSelfAndSwallowsErrors(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewNotificationService(store)
	ctx := context.Background()

	svc.Notify(ctx, "u", models.NotificationPostLiked, "u", "p", "self")
	assert.Empty(t, store.Notifications())

	store.Fail("CreateNotification", errStoreDown)
	svc.Notify(ctx, "u", models.NotificationPostLiked, "v", "p", "dropped")
	assert.Empty(t, store.Notifications())
}

func TestNotificationLifecycle(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewNotificationService(store)
	ctx := context.Background()

	require.NoError(t, svc.CreateNotification(ctx, "u", models.NotificationNewFollower, "v", "v", "hello"))
	list, err := svc.GetUserNotifications(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	require.NoError(t, svc.MarkNotificationAsRead(ctx, "u", id))
	assert.ErrorIs(t, svc.MarkNotificationAsRead(ctx, "someone-else", id), models.ErrNotificationNotFound)

	list, _ = svc.GetUserNotifications(ctx, "u")
	assert.True(t, list[0].Read)

	assert.ErrorIs(t, svc.DeleteNotification(ctx, "u", primitive.NewObjectID()), models.ErrNotificationNotFound)
	require.NoError(t, svc.DeleteNotification(ctx, "u", id))

	require.NoError(t, svc.CreateNotification(ctx, "u", models.NotificationNewFollower, "v", "v", "again"))
	store.ExpireNotifications()
	list, _ = svc.GetUserNotifications(ctx, "u")
	assert.Empty(t, list)
	require.NoError(t, svc.DeleteExpiredNotifications(ctx))
	assert.Empty(t, store.Notifications())
}
