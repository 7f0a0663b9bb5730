package services

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/testutil"
)

var errStoreDown = errors.New("store unavailable")

type countingListener struct {
	n atomic.Int32
}

func (l *countingListener) Trigger() { l.n.Add(1) }

func seedUsers(store *testutil.MemStore, names ...string) {
	for _, name := range names {
		store.PutUser(models.User{ID: name, Username: name, Email: name + "@example.com"})
	}
}

func post(id, author string, at time.Time) models.FeedPost {
	return models.FeedPost{
		ID:         id,
		WineID:     "wine-" + id,
		UserID:     author,
		Username:   author,
		PostedDate: at,
	}
}

func postIDs(posts []models.FeedPost) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
