package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/metrics"
	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// errNoChange aborts a ledger transaction whose precondition no longer holds.
var errNoChange = errors.New("follow edge precondition failed")

// EdgeListener is nudged after every committed edge mutation.
type EdgeListener interface {
	Trigger()
}

// FollowService is the relationship ledger. Each mutation writes the edge
// and its outbox event in one transaction.
type FollowService struct {
	follows  repository.FollowStore
	events   repository.EventStore
	users    repository.UserStore
	tx       repository.TxRunner
	listener EdgeListener
	notifier Notifier
}

func NewFollowService(follows repository.FollowStore, events repository.EventStore, users repository.UserStore, tx repository.TxRunner, notifier Notifier) *FollowService {
	return &FollowService{
		follows:  follows,
		events:   events,
		users:    users,
		tx:       tx,
		notifier: notifier,
	}
}

// SetListener registers the counter reconciler. It is set after
// construction because the reconciler is built from the same stores.
func (s *FollowService) SetListener(l EdgeListener) {
	s.listener = l
}

func validPair(followerID, followeeID string) bool {
	return followerID != "" && followeeID != "" && followerID != followeeID
}

// Follow reports whether a new edge was created. Self-edges and existing
// edges return false without error.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if !validPair(followerID, followeeID) {
		metrics.FollowMutations.WithLabelValues("follow", "rejected").Inc()
		return false, nil
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.follows.GetFollow(ctx, followerID, followeeID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errNoChange
		}

		now := time.Now().UTC()
		if err := s.follows.InsertFollow(ctx, &models.Follow{
			FollowerID: followerID,
			FolloweeID: followeeID,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		return s.events.AppendEvent(ctx, &models.FollowEvent{
			ID:         uuid.NewString(),
			Type:       models.FollowCreated,
			FollowerID: followerID,
			FolloweeID: followeeID,
			CreatedAt:  now,
		})
	})
	if errors.Is(err, errNoChange) || errors.Is(err, models.ErrAlreadyExists) {
		metrics.FollowMutations.WithLabelValues("follow", "noop").Inc()
		return false, nil
	}
	if err != nil {
		metrics.FollowMutations.WithLabelValues("follow", "error").Inc()
		logrus.WithFields(logrus.Fields{
			"follower": followerID,
			"followee": followeeID,
			"error":    err,
		}).Error("Follow transaction failed")
		return false, fmt.Errorf("failed to follow user: %w", err)
	}

	metrics.FollowMutations.WithLabelValues("follow", "changed").Inc()
	logrus.WithFields(logrus.Fields{
		"follower": followerID,
		"followee": followeeID,
	}).Info("Follow edge created")

	s.nudge()
	if s.notifier != nil {
		s.notifier.Notify(ctx, followeeID, models.NotificationNewFollower, followerID, followerID, "You have a new follower")
	}
	return true, nil
}

// Unfollow reports whether an edge was removed.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if !validPair(followerID, followeeID) {
		metrics.FollowMutations.WithLabelValues("unfollow", "rejected").Inc()
		return false, nil
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.follows.GetFollow(ctx, followerID, followeeID)
		if err != nil {
			return err
		}
		if existing == nil {
			return errNoChange
		}

		deleted, err := s.follows.DeleteFollow(ctx, followerID, followeeID)
		if err != nil {
			return err
		}
		if !deleted {
			return errNoChange
		}
		return s.events.AppendEvent(ctx, &models.FollowEvent{
			ID:         uuid.NewString(),
			Type:       models.FollowDeleted,
			FollowerID: followerID,
			FolloweeID: followeeID,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if errors.Is(err, errNoChange) {
		metrics.FollowMutations.WithLabelValues("unfollow", "noop").Inc()
		return false, nil
	}
	if err != nil {
		metrics.FollowMutations.WithLabelValues("unfollow", "error").Inc()
		logrus.WithFields(logrus.Fields{
			"follower": followerID,
			"followee": followeeID,
			"error":    err,
		}).Error("Unfollow transaction failed")
		return false, fmt.Errorf("failed to unfollow user: %w", err)
	}

	metrics.FollowMutations.WithLabelValues("unfollow", "changed").Inc()
	logrus.WithFields(logrus.Fields{
		"follower": followerID,
		"followee": followeeID,
	}).Info("Follow edge removed")

	s.nudge()
	return true, nil
}

func (s *FollowService) nudge() {
	if s.listener != nil {
		s.listener.Trigger()
	}
}

// IsFollowing checks the forward edge only.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	if !validPair(followerID, followeeID) {
		return false, nil
	}
	edge, err := s.follows.GetFollow(ctx, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return edge != nil, nil
}

func (s *FollowService) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.follows.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return ids, nil
}

func (s *FollowService) ListFollowers(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.follows.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return ids, nil
}

// FollowStats returns the denormalized counters, or the ledger
// cardinalities when exact is set.
func (s *FollowService) FollowStats(ctx context.Context, userID string, exact bool) (*models.FollowStats, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	stats := &models.FollowStats{
		UserID:         userID,
		FollowingCount: user.FollowingCount,
		FollowersCount: user.FollowersCount,
	}
	if !exact {
		return stats, nil
	}

	if stats.FollowingCount, err = s.follows.CountFollowing(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to count following: %w", err)
	}
	if stats.FollowersCount, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}
	stats.Exact = true
	return stats, nil
}
