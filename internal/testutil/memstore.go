// Package testutil provides an in-memory implementation of every repository
// interface for service and job tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repository.UserStore         = (*MemStore)(nil)
	_ repository.WineStore         = (*MemStore)(nil)
	_ repository.PostStore         = (*MemStore)(nil)
	_ repository.FollowStore       = (*MemStore)(nil)
	_ repository.EventStore        = (*MemStore)(nil)
	_ repository.WishlistStore     = (*MemStore)(nil)
	_ repository.NotificationStore = (*MemStore)(nil)
	_ repository.TxRunner          = (*MemStore)(nil)
)

// MemStore keeps every collection in maps. WithTransaction serialises
// transactions and restores a snapshot when fn fails.
type MemStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	data state

	failures map[string]error
	calls    map[string]int
}

type state struct {
	users           map[string]models.User
	legacyFollowing map[string][]string
	legacyWishlist  map[string][]string
	wines           map[string]models.Wine
	posts           map[string]models.FeedPost
	follows         map[string]models.Follow
	events          []models.FollowEvent
	processed       map[string]time.Time
	wishlist        map[string]models.WishlistEntry
	notifications   []models.Notification
}

func NewMemStore() *MemStore {
	return &MemStore{
		data: state{
			users:           map[string]models.User{},
			legacyFollowing: map[string][]string{},
			legacyWishlist:  map[string][]string{},
			wines:           map[string]models.Wine{},
			posts:           map[string]models.FeedPost{},
			follows:         map[string]models.Follow{},
			processed:       map[string]time.Time{},
			wishlist:        map[string]models.WishlistEntry{},
		},
		failures: map[string]error{},
		calls:    map[string]int{},
	}
}

// Fail makes op return err. op is a method name, optionally suffixed with
// ":<id>" to fail only for that id. A nil err clears the failure.
func (s *MemStore) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns how many times op was invoked.
func (s *MemStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls counts every store call made so far.
func (s *MemStore) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// enter must be called with s.mu held.
func (s *MemStore) enter(op string, ids ...string) error {
	s.calls[op]++
	for _, id := range ids {
		if err, ok := s.failures[op+":"+id]; ok {
			return err
		}
	}
	return s.failures[op]
}

func (s *MemStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (st state) clone() state {
	out := state{
		users:           make(map[string]models.User, len(st.users)),
		legacyFollowing: make(map[string][]string, len(st.legacyFollowing)),
		legacyWishlist:  make(map[string][]string, len(st.legacyWishlist)),
		wines:           make(map[string]models.Wine, len(st.wines)),
		posts:           make(map[string]models.FeedPost, len(st.posts)),
		follows:         make(map[string]models.Follow, len(st.follows)),
		events:          make([]models.FollowEvent, len(st.events)),
		processed:       make(map[string]time.Time, len(st.processed)),
		wishlist:        make(map[string]models.WishlistEntry, len(st.wishlist)),
		notifications:   make([]models.Notification, len(st.notifications)),
	}
	for k, v := range st.users {
		v.WinesTasted = append([]string(nil), v.WinesTasted...)
		out.users[k] = v
	}
	for k, v := range st.legacyFollowing {
		out.legacyFollowing[k] = append([]string(nil), v...)
	}
	for k, v := range st.legacyWishlist {
		out.legacyWishlist[k] = append([]string(nil), v...)
	}
	for k, v := range st.wines {
		out.wines[k] = v
	}
	for k, v := range st.posts {
		out.posts[k] = clonePost(v)
	}
	for k, v := range st.follows {
		out.follows[k] = v
	}
	copy(out.events, st.events)
	for k, v := range st.processed {
		out.processed[k] = v
	}
	for k, v := range st.wishlist {
		out.wishlist[k] = v
	}
	copy(out.notifications, st.notifications)
	return out
}

func clonePost(p models.FeedPost) models.FeedPost {
	p.Likes = append([]string(nil), p.Likes...)
	p.Comments = append([]models.Comment(nil), p.Comments...)
	return p
}

// Seeding helpers. They bypass failure injection and call counting.

func (s *MemStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.UsernameLower == "" {
		u.UsernameLower = models.NormalizeUsername(u.Username)
	}
	if u.SchemaVersion == 0 {
		u.SchemaVersion = models.UserSchemaVersion
	}
	if u.PrivacyLevel == "" {
		u.PrivacyLevel = models.PrivacyPublic
	}
	if u.WinesTasted == nil {
		u.WinesTasted = []string{}
	}
	s.data.users[u.ID] = u
}

// PutLegacyUser stores a schema v1 user carrying follow and wishlist arrays.
func (s *MemStore) PutLegacyUser(u models.User, following, wishlist []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.SchemaVersion = 1
	s.data.users[u.ID] = u
	s.data.legacyFollowing[u.ID] = following
	s.data.legacyWishlist[u.ID] = wishlist
}

func (s *MemStore) PutWine(w models.Wine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.wines[w.ID] = w
}

func (s *MemStore) PutPost(p models.FeedPost) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.posts[p.ID] = clonePost(p)
}

func (s *MemStore) PutFollow(followerID, followeeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.FollowKey(followerID, followeeID)
	s.data.follows[key] = models.Follow{ID: key, FollowerID: followerID, FolloweeID: followeeID, CreatedAt: time.Now()}
}

// Snapshot accessors.

func (s *MemStore) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	return u, ok
}

func (s *MemStore) Post(id string) (models.FeedPost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.posts[id]
	return clonePost(p), ok
}

func (s *MemStore) Events() []models.FollowEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FollowEvent(nil), s.data.events...)
}

func (s *MemStore) FollowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.follows)
}

func (s *MemStore) WishlistEntry(userID, wineID string) (models.WishlistEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data.wishlist[models.WishlistKey(userID, wineID)]
	return e, ok
}

func (s *MemStore) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.data.notifications...)
}

// UserStore

// usernameTaken mirrors the partial unique index on username_lower.
func (s *MemStore) usernameTaken(lower, exceptID string) bool {
	if lower == "" {
		return false
	}
	for id, u := range s.data.users {
		if id != exceptID && u.UsernameLower == lower {
			return true
		}
	}
	return false
}

func (s *MemStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateUser", user.ID); err != nil {
		return err
	}
	if _, ok := s.data.users[user.ID]; ok {
		return models.ErrAlreadyExists
	}
	if s.usernameTaken(models.NormalizeUsername(user.Username), user.ID) {
		return models.ErrUsernameTaken
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.UsernameLower = models.NormalizeUsername(user.Username)
	user.SchemaVersion = models.UserSchemaVersion
	if user.WinesTasted == nil {
		user.WinesTasted = []string{}
	}
	s.data.users[user.ID] = *user
	return nil
}

func (s *MemStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetUserByID", id); err != nil {
		return nil, err
	}
	u, ok := s.data.users[id]
	if !ok {
		return nil, nil
	}
	u.WinesTasted = append([]string{}, u.WinesTasted...)
	return &u, nil
}

func (s *MemStore) UpdateUserFields(_ context.Context, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateUserFields", id); err != nil {
		return err
	}
	u, ok := s.data.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	if username, ok := fields["username"].(string); ok && s.usernameTaken(models.NormalizeUsername(username), id) {
		return models.ErrUsernameTaken
	}
	for k, v := range fields {
		switch k {
		case "username":
			u.Username = v.(string)
			u.UsernameLower = models.NormalizeUsername(u.Username)
		case "profile_image_url":
			url := v.(string)
			u.ProfileImageURL = &url
		case "privacy_level":
			u.PrivacyLevel = v.(models.PrivacyLevel)
		}
	}
	u.UpdatedAt = time.Now()
	s.data.users[id] = u
	return nil
}

func (s *MemStore) SearchByUsernamePrefix(_ context.Context, prefix string, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SearchByUsernamePrefix"); err != nil {
		return nil, err
	}
	var out []models.User
	for _, u := range s.data.users {
		if strings.HasPrefix(u.UsernameLower, prefix) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UsernameLower < out[j].UsernameLower })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) AddWineTasted(_ context.Context, userID, wineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("AddWineTasted", userID); err != nil {
		return err
	}
	u, ok := s.data.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	for _, id := range u.WinesTasted {
		if id == wineID {
			return nil
		}
	}
	u.WinesTasted = append(append([]string{}, u.WinesTasted...), wineID)
	s.data.users[userID] = u
	return nil
}

func (s *MemStore) LegacyWishlist(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("LegacyWishlist", userID); err != nil {
		return nil, err
	}
	return append([]string(nil), s.data.legacyWishlist[userID]...), nil
}

func (s *MemStore) PullLegacyWishlist(_ context.Context, userID, wineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("PullLegacyWishlist", userID); err != nil {
		return err
	}
	kept := []string{}
	for _, id := range s.data.legacyWishlist[userID] {
		if id != wineID {
			kept = append(kept, id)
		}
	}
	s.data.legacyWishlist[userID] = kept
	return nil
}

func (s *MemStore) IncrementCounter(_ context.Context, userID string, counter models.Counter, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("IncrementCounter", userID); err != nil {
		return err
	}
	u, ok := s.data.users[userID]
	if !ok {
		return nil
	}
	switch counter {
	case models.FollowingCounter:
		u.FollowingCount += delta
	case models.FollowersCounter:
		u.FollowersCount += delta
	}
	s.data.users[userID] = u
	return nil
}

func (s *MemStore) SetCounters(_ context.Context, userID string, following, followers int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SetCounters", userID); err != nil {
		return err
	}
	u, ok := s.data.users[userID]
	if !ok {
		return nil
	}
	u.FollowingCount = following
	u.FollowersCount = followers
	s.data.users[userID] = u
	return nil
}

func (s *MemStore) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListUserIDs"); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.data.users))
	for id := range s.data.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemStore) FindOutdated(_ context.Context, limit int) ([]repository.MigratedUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindOutdated"); err != nil {
		return nil, err
	}
	var out []repository.MigratedUser
	for _, id := range sortedKeys(s.data.users) {
		u := s.data.users[id]
		if u.SchemaVersion >= models.UserSchemaVersion {
			continue
		}
		u.UsernameLower = models.NormalizeUsername(u.Username)
		if !u.PrivacyLevel.Valid() {
			u.PrivacyLevel = models.PrivacyPublic
		}
		if u.WinesTasted == nil {
			u.WinesTasted = []string{}
		}
		u.SchemaVersion = models.UserSchemaVersion
		out = append(out, repository.MigratedUser{
			User:            u,
			LegacyFollowing: append([]string(nil), s.data.legacyFollowing[id]...),
			LegacyWishlist:  append([]string(nil), s.data.legacyWishlist[id]...),
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemStore) SaveMigrated(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SaveMigrated", user.ID); err != nil {
		return err
	}
	if s.usernameTaken(user.UsernameLower, user.ID) {
		return models.ErrUsernameTaken
	}
	s.data.users[user.ID] = *user
	delete(s.data.legacyFollowing, user.ID)
	delete(s.data.legacyWishlist, user.ID)
	return nil
}

// WineStore

func (s *MemStore) CreateWine(_ context.Context, wine *models.Wine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateWine", wine.ID); err != nil {
		return err
	}
	if _, ok := s.data.wines[wine.ID]; ok {
		return models.ErrAlreadyExists
	}
	s.data.wines[wine.ID] = *wine
	return nil
}

func (s *MemStore) GetWineByID(_ context.Context, id string) (*models.Wine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetWineByID", id); err != nil {
		return nil, err
	}
	w, ok := s.data.wines[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *MemStore) GetWinesByUser(_ context.Context, userID string) ([]models.Wine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetWinesByUser", userID); err != nil {
		return nil, err
	}
	out := []models.Wine{}
	for _, w := range s.data.wines {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedDate.After(out[j].AddedDate) })
	return out, nil
}

func (s *MemStore) UpdateWineFields(_ context.Context, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateWineFields", id); err != nil {
		return err
	}
	w, ok := s.data.wines[id]
	if !ok {
		return models.ErrWineNotFound
	}
	for k, v := range fields {
		switch k {
		case "tasting_notes":
			w.TastingNotes = v.(string)
		case "rating":
			r := v.(float64)
			w.Rating = &r
		case "image_url":
			url := v.(string)
			w.ImageURL = &url
		}
	}
	s.data.wines[id] = w
	return nil
}

// PostStore

func (s *MemStore) CreatePost(_ context.Context, post *models.FeedPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreatePost", post.ID); err != nil {
		return err
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	s.data.posts[post.ID] = clonePost(*post)
	return nil
}

func (s *MemStore) GetPostByID(_ context.Context, id string) (*models.FeedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetPostByID", id); err != nil {
		return nil, err
	}
	p, ok := s.data.posts[id]
	if !ok {
		return nil, nil
	}
	p = clonePost(p)
	return &p, nil
}

func (s *MemStore) FindByAuthors(_ context.Context, authorIDs []string, limit int) ([]models.FeedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindByAuthors", authorIDs...); err != nil {
		return nil, err
	}
	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	return s.newestPosts(func(p models.FeedPost) bool { return authors[p.UserID] }, limit), nil
}

func (s *MemStore) FindRecent(_ context.Context, limit int) ([]models.FeedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindRecent"); err != nil {
		return nil, err
	}
	return s.newestPosts(func(models.FeedPost) bool { return true }, limit), nil
}

func (s *MemStore) newestPosts(keep func(models.FeedPost) bool, limit int) []models.FeedPost {
	out := []models.FeedPost{}
	for _, p := range s.data.posts {
		if keep(p) {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PostedDate.Equal(out[j].PostedDate) {
			return out[i].PostedDate.After(out[j].PostedDate)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemStore) AddLike(_ context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("AddLike", postID); err != nil {
		return false, err
	}
	p, ok := s.data.posts[postID]
	if !ok || p.LikedBy(userID) {
		return false, nil
	}
	p = clonePost(p)
	p.Likes = append(p.Likes, userID)
	s.data.posts[postID] = p
	return true, nil
}

func (s *MemStore) RemoveLike(_ context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("RemoveLike", postID); err != nil {
		return false, err
	}
	p, ok := s.data.posts[postID]
	if !ok || !p.LikedBy(userID) {
		return false, nil
	}
	likes := []string{}
	for _, id := range p.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	p = clonePost(p)
	p.Likes = likes
	s.data.posts[postID] = p
	return true, nil
}

func (s *MemStore) AppendComment(_ context.Context, postID string, comment models.Comment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("AppendComment", postID); err != nil {
		return false, err
	}
	p, ok := s.data.posts[postID]
	if !ok {
		return false, nil
	}
	p = clonePost(p)
	p.Comments = append(p.Comments, comment)
	s.data.posts[postID] = p
	return true, nil
}

// FollowStore

func (s *MemStore) GetFollow(_ context.Context, followerID, followeeID string) (*models.Follow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetFollow", followerID); err != nil {
		return nil, err
	}
	f, ok := s.data.follows[models.FollowKey(followerID, followeeID)]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (s *MemStore) InsertFollow(_ context.Context, follow *models.Follow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertFollow", follow.FollowerID); err != nil {
		return err
	}
	follow.ID = models.FollowKey(follow.FollowerID, follow.FolloweeID)
	if _, ok := s.data.follows[follow.ID]; ok {
		return models.ErrAlreadyExists
	}
	s.data.follows[follow.ID] = *follow
	return nil
}

func (s *MemStore) DeleteFollow(_ context.Context, followerID, followeeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteFollow", followerID); err != nil {
		return false, err
	}
	key := models.FollowKey(followerID, followeeID)
	if _, ok := s.data.follows[key]; !ok {
		return false, nil
	}
	delete(s.data.follows, key)
	return true, nil
}

func (s *MemStore) ListFollowing(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListFollowing", userID); err != nil {
		return nil, err
	}
	return s.followSide(func(f models.Follow) (string, bool) { return f.FolloweeID, f.FollowerID == userID }), nil
}

func (s *MemStore) ListFollowers(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListFollowers", userID); err != nil {
		return nil, err
	}
	return s.followSide(func(f models.Follow) (string, bool) { return f.FollowerID, f.FolloweeID == userID }), nil
}

func (s *MemStore) followSide(pick func(models.Follow) (string, bool)) []string {
	var edges []models.Follow
	for _, f := range s.data.follows {
		if _, ok := pick(f); ok {
			edges = append(edges, f)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].CreatedAt.Before(edges[j].CreatedAt)
		}
		return edges[i].ID < edges[j].ID
	})
	ids := []string{}
	for _, f := range edges {
		id, _ := pick(f)
		ids = append(ids, id)
	}
	return ids
}

func (s *MemStore) CountFollowing(ctx context.Context, userID string) (int64, error) {
	ids, err := s.ListFollowing(ctx, userID)
	return int64(len(ids)), err
}

func (s *MemStore) CountFollowers(ctx context.Context, userID string) (int64, error) {
	ids, err := s.ListFollowers(ctx, userID)
	return int64(len(ids)), err
}

// EventStore

func (s *MemStore) AppendEvent(_ context.Context, event *models.FollowEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("AppendEvent", event.FollowerID); err != nil {
		return err
	}
	s.data.events = append(s.data.events, *event)
	return nil
}

func (s *MemStore) PendingEvents(_ context.Context, limit int) ([]models.FollowEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("PendingEvents"); err != nil {
		return nil, err
	}
	out := []models.FollowEvent{}
	for _, e := range s.data.events {
		if e.ProcessedAt == nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) PendingEventsFor(_ context.Context, userID string) ([]models.FollowEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("PendingEventsFor", userID); err != nil {
		return nil, err
	}
	out := []models.FollowEvent{}
	for _, e := range s.data.events {
		if e.ProcessedAt == nil && (e.FollowerID == userID || e.FolloweeID == userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemStore) MarkProcessed(_ context.Context, eventID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("MarkProcessed", eventID); err != nil {
		return err
	}
	for i := range s.data.events {
		if s.data.events[i].ID == eventID {
			t := at
			s.data.events[i].ProcessedAt = &t
		}
	}
	return nil
}

func (s *MemStore) ClaimEvent(_ context.Context, eventID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ClaimEvent", eventID); err != nil {
		return false, err
	}
	if _, ok := s.data.processed[eventID]; ok {
		return false, nil
	}
	s.data.processed[eventID] = at
	return true, nil
}

// WishlistStore

func (s *MemStore) UpsertEntry(_ context.Context, entry *models.WishlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpsertEntry", entry.UserID); err != nil {
		return err
	}
	entry.ID = models.WishlistKey(entry.UserID, entry.WineID)
	s.data.wishlist[entry.ID] = *entry
	return nil
}

func (s *MemStore) DeleteEntry(_ context.Context, userID, wineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteEntry", userID); err != nil {
		return err
	}
	delete(s.data.wishlist, models.WishlistKey(userID, wineID))
	return nil
}

func (s *MemStore) ListEntries(_ context.Context, userID string) ([]models.WishlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListEntries", userID); err != nil {
		return nil, err
	}
	out := []models.WishlistEntry{}
	for _, e := range s.data.wishlist {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].WineID < out[j].WineID
	})
	return out, nil
}

// NotificationStore

func (s *MemStore) CreateNotification(_ context.Context, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateNotification", notif.UserID); err != nil {
		return err
	}
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(7 * 24 * time.Hour)
	s.data.notifications = append(s.data.notifications, *notif)
	return nil
}

func (s *MemStore) GetUserNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetUserNotifications", userID); err != nil {
		return nil, err
	}
	now := time.Now()
	out := []models.Notification{}
	for i := len(s.data.notifications) - 1; i >= 0; i-- {
		n := s.data.notifications[i]
		if n.UserID == userID && n.ExpiresAt.After(now) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *MemStore) MarkAsRead(_ context.Context, userID string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("MarkAsRead", userID); err != nil {
		return err
	}
	for i := range s.data.notifications {
		if s.data.notifications[i].ID == id && s.data.notifications[i].UserID == userID {
			s.data.notifications[i].Read = true
			return nil
		}
	}
	return models.ErrNotificationNotFound
}

func (s *MemStore) DeleteNotification(_ context.Context, userID string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteNotification", userID); err != nil {
		return err
	}
	for i, n := range s.data.notifications {
		if n.ID == id && n.UserID == userID {
			s.data.notifications = append(s.data.notifications[:i], s.data.notifications[i+1:]...)
			return nil
		}
	}
	return models.ErrNotificationNotFound
}

func (s *MemStore) DeleteExpiredNotifications(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteExpiredNotifications"); err != nil {
		return 0, err
	}
	now := time.Now()
	kept := s.data.notifications[:0]
	var removed int64
	for _, n := range s.data.notifications {
		if n.ExpiresAt.After(now) {
			kept = append(kept, n)
		} else {
			removed++
		}
	}
	s.data.notifications = kept
	return removed, nil
}

// ExpireNotifications moves every notification's expiry into the past.
func (s *MemStore) ExpireNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.notifications {
		s.data.notifications[i].ExpiresAt = time.Now().Add(-time.Minute)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
