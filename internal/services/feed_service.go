package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/metrics"
	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// FeedService assembles timelines. The post store accepts at most batchSize
// authors per "in" query, so the author set is split and the per-batch
// results are merged.
type FeedService struct {
	follows   repository.FollowStore
	posts     repository.PostStore
	wines     repository.WineStore
	batchSize int
	limit     int
}

func NewFeedService(follows repository.FollowStore, posts repository.PostStore, wines repository.WineStore, batchSize, limit int) *FeedService {
	return &FeedService{
		follows:   follows,
		posts:     posts,
		wines:     wines,
		batchSize: batchSize,
		limit:     limit,
	}
}

// GetFeed returns the newest posts by the viewer and everyone they follow.
// An empty viewerID gets the global timeline. Read failures yield an empty
// feed, never an error.
func (s *FeedService) GetFeed(ctx context.Context, viewerID string) ([]models.FeedPost, error) {
	start := time.Now()
	defer func() {
		metrics.FeedAssemblyLatency.Observe(time.Since(start).Seconds())
	}()

	if viewerID == "" {
		posts, err := s.posts.FindRecent(ctx, s.limit)
		if err != nil {
			logrus.WithError(err).Warn("Global feed query failed, returning empty feed")
			return []models.FeedPost{}, nil
		}
		return posts, nil
	}

	following, err := s.follows.ListFollowing(ctx, viewerID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"viewer": viewerID,
			"error":  err,
		}).Warn("Failed to resolve follow set, returning empty feed")
		return []models.FeedPost{}, nil
	}

	authors := dedupe(append([]string{viewerID}, following...))
	batches := partition(authors, s.batchSize)
	metrics.FeedBatches.Observe(float64(len(batches)))

	results := make([][]models.FeedPost, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			posts, err := s.posts.FindByAuthors(gctx, batch, s.limit)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			results[i] = posts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logrus.WithFields(logrus.Fields{
			"viewer": viewerID,
			"error":  err,
		}).Warn("Feed batch query failed, returning empty feed")
		return []models.FeedPost{}, nil
	}

	return mergeNewest(results, s.limit), nil
}

// mergeNewest unions the batches, drops duplicate post ids and keeps the
// limit newest posts. Equal timestamps are ordered by id, descending.
func mergeNewest(batches [][]models.FeedPost, limit int) []models.FeedPost {
	seen := make(map[string]struct{})
	merged := []models.FeedPost{}
	for _, batch := range batches {
		for _, post := range batch {
			if _, ok := seen[post.ID]; ok {
				continue
			}
			seen[post.ID] = struct{}{}
			merged = append(merged, post)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].PostedDate.Equal(merged[j].PostedDate) {
			return merged[i].PostedDate.After(merged[j].PostedDate)
		}
		return merged[i].ID > merged[j].ID
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// ResolveWines fetches the wines referenced by posts that are not in known.
// Wines come back in first-reference order; missing ones are skipped.
func (s *FeedService) ResolveWines(ctx context.Context, posts []models.FeedPost, known []string) []models.Wine {
	have := make(map[string]struct{}, len(known))
	for _, id := range known {
		have[id] = struct{}{}
	}

	var wanted []string
	for _, post := range posts {
		if _, ok := have[post.WineID]; ok {
			continue
		}
		wanted = append(wanted, post.WineID)
	}

	return fetchAll(ctx, dedupe(wanted), s.wines.GetWineByID)
}

// GetUserPosts lists one author's posts, newest first.
func (s *FeedService) GetUserPosts(ctx context.Context, userID string) ([]models.FeedPost, error) {
	posts, err := s.posts.FindByAuthors(ctx, []string{userID}, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user posts: %w", err)
	}
	return posts, nil
}
