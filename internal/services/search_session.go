package services

import (
	"context"
	"sync"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
)

// SearchResult is a completed search tagged with the generation that issued it.
type SearchResult struct {
	Generation uint64              `json:"generation"`
	Query      string              `json:"query"`
	Users      []models.PublicUser `json:"users"`
}

type SearchFunc func(ctx context.Context, query string) []models.PublicUser

// SearchSession runs type-ahead searches for one client. Every Submit starts
// a new generation and cancels the previous one; a result is delivered only
// while its generation is still the latest.
type SearchSession struct {
	search   SearchFunc
	deliver  func(SearchResult)
	debounce time.Duration

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// NewSearchSession creates a session. deliver is called with the session
// lock held, so calls never overlap.
func NewSearchSession(ctx context.Context, debounce time.Duration, search SearchFunc, deliver func(SearchResult)) *SearchSession {
	ctx, stop := context.WithCancel(ctx)
	return &SearchSession{
		search:   search,
		deliver:  deliver,
		debounce: debounce,
		ctx:      ctx,
		stop:     stop,
	}
}

// Submit supersedes any pending search and returns the new generation.
func (s *SearchSession) Submit(query string) uint64 {
	s.mu.Lock()
	if s.closed {
		gen := s.gen
		s.mu.Unlock()
		return gen
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx, gen, query)
	return gen
}

func (s *SearchSession) run(ctx context.Context, gen uint64, query string) {
	defer s.wg.Done()

	timer := time.NewTimer(s.debounce)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	users := s.search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen || ctx.Err() != nil {
		return
	}
	s.deliver(SearchResult{Generation: gen, Query: query, Users: users})
}

// Generation returns the latest issued generation.
func (s *SearchSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Close cancels all pending searches and waits for them to return.
func (s *SearchSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.stop()
	s.mu.Unlock()
	s.wg.Wait()
}
