package services

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedService(store *testutil.MemStore) *FeedService {
	return NewFeedService(store, store, store, 10, 50)
}

func TestGetFeedMergesAcrossBatches(t *testing.T) {
	store := testutil.NewMemStore()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var want []string
	for i := 0; i < 12; i++ {
		author := fmt.Sprintf("friend-%02d", i)
		store.PutFollow("viewer", author)
		// Out-of-order timestamps so that batch order differs from feed order.
		at := base.Add(time.Duration((i*7)%12) * time.Minute)
		store.PutPost(post("p-"+author, author, at))
		want = append(want, "p-"+author)
	}
	store.PutPost(post("p-own", "viewer", base.Add(time.Hour)))
	store.PutPost(post("p-stranger", "stranger", base.Add(2*time.Hour)))

	feed, err := newFeedService(store).GetFeed(context.Background(), "viewer")
	require.NoError(t, err)

	require.Len(t, feed, 13)
	assert.Equal(t, "p-own", feed[0].ID)
	assert.ElementsMatch(t, append(want, "p-own"), postIDs(feed))
	assert.True(t, sort.SliceIsSorted(feed, func(i, j int) bool {
		return feed[i].PostedDate.After(feed[j].PostedDate)
	}))
	assert.Equal(t, 2, store.Calls("FindByAuthors"), "13 authors need two batches")
}

func TestGetFeedEmptyForLonelyViewer(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutPost(post("p1", "someone-else", time.Now()))

	feed, err := newFeedService(store).GetFeed(context.Background(), "viewer")
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
	assert.Zero(t, store.Calls("FindRecent"), "a signed-in viewer never gets the global feed")
}

func TestGetFeedAnonymousGetsGlobalTimeline(t *testing.T) {
	store := testutil.NewMemStore()
	now := time.Now()
	store.PutPost(post("old", "a", now.Add(-time.Hour)))
	store.PutPost(post("new", "b", now))

	feed, err := newFeedService(store).GetFeed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, postIDs(feed))
}

func TestGetFeedTruncatesAndBreaksTies(t *testing.T) {
	store := testutil.NewMemStore()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		author := fmt.Sprintf("u%02d", i%15)
		store.PutFollow("viewer", author)
		store.PutPost(post(fmt.Sprintf("p%02d", i), author, at))
	}

	feed, err := NewFeedService(store, store, store, 10, 50).GetFeed(context.Background(), "viewer")
	require.NoError(t, err)
	require.Len(t, feed, 50)
	assert.Equal(t, "p59", feed[0].ID)
	assert.Equal(t, "p10", feed[49].ID)
}

func TestGetFeedDegradesOnStoreFailure(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutFollow("viewer", "friend")
	store.PutPost(post("p1", "friend", time.Now()))
	svc := newFeedService(store)

	store.Fail("FindByAuthors", errStoreDown)
	feed, err := svc.GetFeed(context.Background(), "viewer")
	require.NoError(t, err)
	assert.Empty(t, feed)

	store.Fail("FindByAuthors", nil)
	store.Fail("ListFollowing", errStoreDown)
	feed, err = svc.GetFeed(context.Background(), "viewer")
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestMergeNewestDropsDuplicates(t *testing.T) {
	at := time.Now()
	a := post("a", "x", at)
	b := post("b", "y", at.Add(time.Second))

	merged := mergeNewest([][]models.FeedPost{{a, b}, {b}}, 50)
	assert.Equal(t, []string{"b", "a"}, postIDs(merged))
}

func TestResolveWinesKeepsOrderAndSkipsMissing(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutWine(models.Wine{ID: "w1", UserID: "u"})
	store.PutWine(models.Wine{ID: "w2", UserID: "u"})
	store.PutWine(models.Wine{ID: "w3", UserID: "u"})
	store.PutWine(models.Wine{ID: "w4", UserID: "u"})
	store.Fail("GetWineByID:w4", errStoreDown)

	posts := []models.FeedPost{
		{ID: "p1", WineID: "w3"},
		{ID: "p2", WineID: "w1"},
		{ID: "p3", WineID: "w3"},
		{ID: "p4", WineID: "gone"},
		{ID: "p5", WineID: "w2"},
		{ID: "p6", WineID: "w4"},
	}

	wines := newFeedService(store).ResolveWines(context.Background(), posts, []string{"w2"})

	ids := make([]string, 0, len(wines))
	for _, w := range wines {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"w3", "w1"}, ids)
	assert.Equal(t, 4, store.Calls("GetWineByID"), "known and duplicate ids are not fetched")
}

func TestPartition(t *testing.T) {
	ids := make([]string, 23)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	chunks := partition(ids, 10)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 10)
	assert.Len(t, chunks[2], 3)
	assert.Nil(t, partition(nil, 10))
}
