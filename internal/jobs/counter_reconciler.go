package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/metrics"
	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/sirupsen/logrus"
)

const eventPageSize = 100

// errAlreadyApplied aborts the transaction of a redelivered event. The
// claim insert failed on a duplicate key, which poisons the transaction, so
// the event is marked processed afterwards on its own.
var errAlreadyApplied = errors.New("follow event already applied")

// CounterReconciler applies follow events from the outbox to the
// denormalized user counters. Every event moves the counters at most once.
type CounterReconciler struct {
	events  repository.EventStore
	users   repository.UserStore
	follows repository.FollowStore
	tx      repository.TxRunner

	mu     sync.Mutex
	nudges chan struct{}
	now    func() time.Time
}

func NewCounterReconciler(events repository.EventStore, users repository.UserStore, follows repository.FollowStore, tx repository.TxRunner) *CounterReconciler {
	return &CounterReconciler{
		events:  events,
		users:   users,
		follows: follows,
		tx:      tx,
		nudges:  make(chan struct{}, 1),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Trigger asks for a sweep without blocking. Nudges coalesce.
func (r *CounterReconciler) Trigger() {
	select {
	case r.nudges <- struct{}{}:
	default:
	}
}

// Start sweeps once and then after every nudge until ctx is done.
func (r *CounterReconciler) Start(ctx context.Context) {
	go func() {
		r.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.nudges:
				r.sweep(ctx)
			}
		}
	}()
}

func (r *CounterReconciler) sweep(ctx context.Context) {
	if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
		logrus.WithError(err).Error("Counter reconciliation failed, events will be retried")
	}
}

// RunOnce drains the pending events and returns how many were handled. It
// stops at the first failure; that event stays pending.
func (r *CounterReconciler) RunOnce(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drain(ctx)
}

func (r *CounterReconciler) drain(ctx context.Context) (int, error) {
	handled := 0
	for {
		events, err := r.events.PendingEvents(ctx, eventPageSize)
		if err != nil {
			return handled, fmt.Errorf("failed to load pending events: %w", err)
		}
		for _, event := range events {
			if err := r.Apply(ctx, event); err != nil {
				return handled, err
			}
			handled++
		}
		if len(events) < eventPageSize {
			return handled, nil
		}
	}
}

// Apply handles one delivery of event. Delivering the same event again is
// safe: the claim fails and the counters are left alone.
func (r *CounterReconciler) Apply(ctx context.Context, event models.FollowEvent) error {
	at := r.now()
	countable := event.FollowerID != "" && event.FolloweeID != "" && event.FollowerID != event.FolloweeID

	err := r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		claimed, err := r.events.ClaimEvent(ctx, event.ID, at)
		if err != nil {
			return err
		}
		if !claimed {
			return errAlreadyApplied
		}
		if countable {
			delta := event.Delta()
			if err := r.users.IncrementCounter(ctx, event.FollowerID, models.FollowingCounter, delta); err != nil {
				return err
			}
			if err := r.users.IncrementCounter(ctx, event.FolloweeID, models.FollowersCounter, delta); err != nil {
				return err
			}
		}
		return r.events.MarkProcessed(ctx, event.ID, at)
	})

	switch {
	case errors.Is(err, errAlreadyApplied):
		metrics.CounterEvents.WithLabelValues("duplicate").Inc()
		logrus.WithField("eventID", event.ID).Debug("Follow event already applied")
		return r.events.MarkProcessed(ctx, event.ID, at)
	case err != nil:
		metrics.CounterEvents.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to apply follow event %s: %w", event.ID, err)
	case !countable:
		metrics.CounterEvents.WithLabelValues("ignored").Inc()
		logrus.WithField("eventID", event.ID).Warn("Ignored follow event with invalid edge")
	default:
		metrics.CounterEvents.WithLabelValues("applied").Inc()
	}
	return nil
}

// Recount overwrites every user's counters with the ledger cardinalities.
// Events still pending are left out of the recounted value so that applying
// them later lands on the right number.
func (r *CounterReconciler) Recount(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.drain(ctx); err != nil {
		return err
	}

	ids, err := r.users.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	repaired := 0
	for _, id := range ids {
		if err := r.recountUser(ctx, id); err != nil {
			return err
		}
		repaired++
	}

	logrus.WithField("users", repaired).Info("Follow counters recounted")
	return nil
}

// recountUser reads the ledger and the user's pending events in one
// transaction. An edge committed after the drain has its event still
// pending, so its delta is subtracted here and added back when applied.
func (r *CounterReconciler) recountUser(ctx context.Context, id string) error {
	return r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		following, err := r.follows.CountFollowing(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count following for %s: %w", id, err)
		}
		followers, err := r.follows.CountFollowers(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count followers for %s: %w", id, err)
		}

		pending, err := r.events.PendingEventsFor(ctx, id)
		if err != nil {
			return err
		}
		for _, event := range pending {
			if event.FollowerID == event.FolloweeID {
				continue
			}
			if event.FollowerID == id {
				following -= event.Delta()
			}
			if event.FolloweeID == id {
				followers -= event.Delta()
			}
		}

		return r.users.SetCounters(ctx, id, following, followers)
	})
}
