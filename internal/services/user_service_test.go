package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/cache"
	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/testutil"
	jwtutil "github.com/Dias221467/Tenvin_Social/pkg/jwt"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usernames(users []models.PublicUser) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

func seedSearchUsers(store *testutil.MemStore) {
	for _, name := range []string{"Anna", "ANNABELLE", "Banana", "annie", "Bob"} {
		store.PutUser(models.User{ID: "id-" + name, Username: name})
	}
}

func TestSearchUsersCaseInsensitivePrefix(t *testing.T) {
	store := testutil.NewMemStore()
	seedSearchUsers(store)
	svc := NewUserService(store, nil, 3, 20)

	got := svc.SearchUsers(context.Background(), "", "ann", 20)
	assert.ElementsMatch(t, []string{"Anna", "ANNABELLE", "annie"}, usernames(got))
	assert.NotContains(t, usernames(got), "Banana")

	got = svc.SearchUsers(context.Background(), "", "  ANNA ", 20)
	assert.ElementsMatch(t, []string{"Anna", "ANNABELLE"}, usernames(got))
}

func TestSearchUsersShortQuerySkipsStore(t *testing.T) {
	store := testutil.NewMemStore()
	seedSearchUsers(store)
	svc := NewUserService(store, nil, 3, 20)

	assert.Empty(t, svc.SearchUsers(context.Background(), "", "an", 20))
	assert.Zero(t, store.Calls("SearchByUsernamePrefix"))
}

func TestSearchUsersExcludesViewerAndHonoursLimit(t *testing.T) {
	store := testutil.NewMemStore()
	seedSearchUsers(store)
	svc := NewUserService(store, nil, 3, 20)

	got := svc.SearchUsers(context.Background(), "id-ANNABELLE", "ann", 2)
	require.Len(t, got, 2)
	assert.NotContains(t, usernames(got), "ANNABELLE")
}

func TestSearchUsersDegradesOnFailure(t *testing.T) {
	store := testutil.NewMemStore()
	store.Fail("SearchByUsernamePrefix", errStoreDown)
	svc := NewUserService(store, nil, 3, 20)

	got := svc.SearchUsers(context.Background(), "", "ann", 20)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchUsersUsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := testutil.NewMemStore()
	seedSearchUsers(store)
	svc := NewUserService(store, cache.NewSearchCache(rdb, time.Minute), 3, 20)
	ctx := context.Background()

	first := svc.SearchUsers(ctx, "", "ann", 20)
	second := svc.SearchUsers(ctx, "", "ANN", 20)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Calls("SearchByUsernamePrefix"))

	mr.FlushAll()
	svc.SearchUsers(ctx, "", "ann", 20)
	assert.Equal(t, 2, store.Calls("SearchByUsernamePrefix"), "cache loss only costs a query")
}

func TestEnsureUserCreatesOnce(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewUserService(store, nil, 3, 20)
	ctx := context.Background()
	claims := &jwtutil.Claims{UserID: "u1", Email: "sommelier@example.com", Picture: "https://img.example.com/u1.jpg"}

	user, created, err := svc.EnsureUser(ctx, claims)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "sommelier", user.Username)
	assert.Equal(t, models.PrivacyPublic, user.PrivacyLevel)
	assert.Zero(t, user.FollowersCount)
	require.NotNil(t, user.ProfileImageURL)

	again, created, err := svc.EnsureUser(ctx, claims)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	_, _, err = svc.EnsureUser(ctx, &jwtutil.Claims{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUpdateProfile(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "alice", "bob")
	svc := NewUserService(store, nil, 3, 20)
	ctx := context.Background()

	name := "Alicia"
	level := models.PrivacySecret
	user, err := svc.UpdateProfile(ctx, "alice", &models.UpdateProfileInput{Username: &name, PrivacyLevel: &level})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.Username)
	assert.Equal(t, models.PrivacySecret, user.PrivacyLevel)

	found := svc.SearchUsers(ctx, "", "alic", 20)
	assert.Equal(t, []string{"Alicia"}, usernames(found))

	taken := "BOB"
	_, err = svc.UpdateProfile(ctx, "alice", &models.UpdateProfileInput{Username: &taken})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	bad := models.PrivacyLevel("everyone")
	_, err = svc.UpdateProfile(ctx, "alice", &models.UpdateProfileInput{PrivacyLevel: &bad})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestGetUsersByIDsPreservesOrder(t *testing.T) {
	store := testutil.NewMemStore()
	seedUsers(store, "a", "b", "c")
	store.Fail("GetUserByID:b", errStoreDown)
	svc := NewUserService(store, nil, 3, 20)

	got := svc.GetUsersByIDs(context.Background(), []string{"c", "missing", "b", "a", "c"})
	assert.Equal(t, []string{"c", "a"}, usernames(got))

	_, err := svc.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func newCachedUserService(t *testing.T, store *testutil.MemStore) *UserService {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewUserService(store, cache.NewSearchCache(rdb, time.Minute), 3, 20)
}

func TestEnsureUserUsernamesUniqueIgnoringCase(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewUserService(store, nil, 3, 20)
	ctx := context.Background()

	first, created, err := svc.EnsureUser(ctx, &jwtutil.Claims{UserID: "u1", Username: "Anna"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Anna", first.Username)

	second, created, err := svc.EnsureUser(ctx, &jwtutil.Claims{UserID: "u2", Username: "anna"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "anna2", second.Username)

	found := svc.SearchUsers(ctx, "", "anna", 20)
	assert.ElementsMatch(t, []string{"Anna", "anna2"}, usernames(found))

	taken := "ANNA"
	_, err = svc.UpdateProfile(ctx, "u2", &models.UpdateProfileInput{Username: &taken})
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	own := "ANNA2"
	renamed, err := svc.UpdateProfile(ctx, "u2", &models.UpdateProfileInput{Username: &own})
	require.NoError(t, err, "changing only the case of your own name is allowed")
	assert.Equal(t, "ANNA2", renamed.Username)
}

func TestEnsureUserConcurrentSignInsGetDistinctNames(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewUserService(store, nil, 3, 20)
	ctx := context.Background()

	const signIns = 8
	names := make([]string, signIns)
	errs := make([]error, signIns)
	var wg sync.WaitGroup
	for i := 0; i < signIns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, _, err := svc.EnsureUser(ctx, &jwtutil.Claims{UserID: fmt.Sprintf("u%d", i), Username: "Anna"})
			errs[i] = err
			if err == nil {
				names[i] = models.NormalizeUsername(user.Username)
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range names {
		require.NoError(t, errs[i])
		assert.False(t, seen[names[i]], "duplicate username %q", names[i])
		seen[names[i]] = true
	}
}

func TestSearchCacheFollowsUsernameChanges(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutUser(models.User{ID: "u1", Username: "Anna"})
	svc := newCachedUserService(t, store)
	ctx := context.Background()

	assert.Equal(t, []string{"Anna"}, usernames(svc.SearchUsers(ctx, "", "ann", 20)))

	zed := "Zed"
	_, err := svc.UpdateProfile(ctx, "u1", &models.UpdateProfileInput{Username: &zed})
	require.NoError(t, err)
	_, _, err = svc.EnsureUser(ctx, &jwtutil.Claims{UserID: "u2", Username: "Annie"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Annie"}, usernames(svc.SearchUsers(ctx, "", "ann", 20)))
	assert.Equal(t, []string{"Zed"}, usernames(svc.SearchUsers(ctx, "", "zed", 20)))
}

func TestProfileChangesWithoutRenameKeepCache(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutUser(models.User{ID: "u1", Username: "Anna"})
	svc := newCachedUserService(t, store)
	ctx := context.Background()

	svc.SearchUsers(ctx, "", "ann", 20)
	level := models.PrivacyPrivate
	_, err := svc.UpdateProfile(ctx, "u1", &models.UpdateProfileInput{PrivacyLevel: &level})
	require.NoError(t, err)
	svc.SearchUsers(ctx, "", "ann", 20)

	assert.Equal(t, 1, store.Calls("SearchByUsernamePrefix"))
}
