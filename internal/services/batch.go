package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds every point-read fan-out.
const maxConcurrentReads = 16

// fetchAll runs fetch for every id concurrently and returns the found items
// in the order of ids. A failed or missing item is left out; the group never
// fails as a whole.
func fetchAll[T any](ctx context.Context, ids []string, fetch func(ctx context.Context, id string) (*T, error)) []T {
	slots := make([]*T, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, id := range ids {
		g.Go(func() error {
			item, err := fetch(gctx, id)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"id":    id,
					"error": err,
				}).Warn("Point read failed, treating item as absent")
				return nil
			}
			slots[i] = item
			return nil
		})
	}
	_ = g.Wait()

	out := make([]T, 0, len(ids))
	for _, item := range slots {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

// partition splits ids into consecutive chunks of at most size.
func partition(ids []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// dedupe keeps the first occurrence of every non-empty id.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
