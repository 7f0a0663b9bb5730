package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeIsAnInvolution(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "author", "fan")
	store.PutPost(post("p", "author", time.Now()))
	svc := NewPostService(store, store, NewNotificationService(store))
	ctx := context.Background()

	liked, err := svc.ToggleLike(ctx, "p", "fan")
	require.NoError(t, err)
	assert.True(t, liked)

	p, _ := store.Post("p")
	assert.Equal(t, []string{"fan"}, p.Likes)

	liked, err = svc.ToggleLike(ctx, "p", "fan")
	require.NoError(t, err)
	assert.False(t, liked)

	p, _ = store.Post("p")
	assert.Empty(t, p.Likes)

	notifs := store.Notifications()
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationPostLiked, notifs[0].Type)
	assert.Equal(t, "author", notifs[0].UserID)
}

func TestToggleLikeOwnPostDoesNotNotify(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "author")
	store.PutPost(post("p", "author", time.Now()))
	svc := NewPostService(store, store, NewNotificationService(store))

	_, err := svc.ToggleLike(context.Background(), "p", "author")
	require.NoError(t, err)
	assert.Empty(t, store.Notifications())
}

func TestToggleLikeMissingPost(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewPostService(store, store, nil)

	_, err := svc.ToggleLike(context.Background(), "nope", "fan")
	assert.ErrorIs(t, err, models.ErrPostNotFound)
}

func TestAddCommentAppendsInOrder(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "author", "fan")
	store.PutPost(post("p", "author", time.Now()))
	svc := NewPostService(store, store, NewNotificationService(store))
	ctx := context.Background()

	first, err := svc.AddComment(ctx, "p", "fan", &models.AddCommentInput{Text: "great pick"})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "p", "author", &models.AddCommentInput{Text: "thanks"})
	require.NoError(t, err)

	p, _ := store.Post("p")
	require.Len(t, p.Comments, 2)
	assert.Equal(t, first.ID, p.Comments[0].ID)
	assert.Equal(t, "fan", p.Comments[0].Username)
	assert.Equal(t, "thanks", p.Comments[1].Text)

	assert.Len(t, store.Notifications(), 1)
}

func TestAddCommentValidation(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "fan")
	store.PutPost(post("p", "author", time.Now()))
	svc := NewPostService(store, store, nil)
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "p", "fan", &models.AddCommentInput{Text: ""})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.AddComment(ctx, "p", "fan", &models.AddCommentInput{Text: strings.Repeat("x", 1001)})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.AddComment(ctx, "missing", "fan", &models.AddCommentInput{Text: "hi"})
	assert.ErrorIs(t, err, models.ErrPostNotFound)
}
