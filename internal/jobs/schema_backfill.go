package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	backfillBatchSize = 200
	maxRenameAttempts = 20
)

// SchemaBackfill upgrades users stored with an older schema: legacy follow
// and wishlist arrays become documents in their own collections.
type SchemaBackfill struct {
	users    repository.UserStore
	follows  repository.FollowStore
	wishlist repository.WishlistStore
}

func NewSchemaBackfill(users repository.UserStore, follows repository.FollowStore, wishlist repository.WishlistStore) *SchemaBackfill {
	return &SchemaBackfill{
		users:    users,
		follows:  follows,
		wishlist: wishlist,
	}
}

// Run migrates outdated users until none are left and returns the count.
func (b *SchemaBackfill) Run(ctx context.Context) (int, error) {
	migrated := 0
	for {
		batch, err := b.users.FindOutdated(ctx, backfillBatchSize)
		if err != nil {
			return migrated, fmt.Errorf("failed to load outdated users: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		for i := range batch {
			if err := b.migrate(ctx, &batch[i]); err != nil {
				return migrated, err
			}
			migrated++
		}
	}

	if migrated > 0 {
		logrus.WithField("users", migrated).Info("User schema backfill completed")
	}
	return migrated, nil
}

func (b *SchemaBackfill) migrate(ctx context.Context, m *repository.MigratedUser) error {
	user := m.User
	now := time.Now().UTC()

	for _, followeeID := range m.LegacyFollowing {
		if followeeID == "" || followeeID == user.ID {
			continue
		}
		err := b.follows.InsertFollow(ctx, &models.Follow{
			FollowerID: user.ID,
			FolloweeID: followeeID,
			CreatedAt:  now,
		})
		if err != nil && !errors.Is(err, models.ErrAlreadyExists) {
			return fmt.Errorf("failed to migrate follow %s -> %s: %w", user.ID, followeeID, err)
		}
	}

	for _, wineID := range m.LegacyWishlist {
		if wineID == "" {
			continue
		}
		if err := b.wishlist.UpsertEntry(ctx, &models.WishlistEntry{
			UserID:    user.ID,
			WineID:    wineID,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to migrate wishlist of %s: %w", user.ID, err)
		}
	}

	// Followers are migrated from the other side's array; the nightly
	// recount settles that counter once every user is upgraded.
	following, err := b.follows.CountFollowing(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to count following for %s: %w", user.ID, err)
	}
	user.FollowingCount = following

	// Older releases did not enforce unique usernames, so a legacy name may
	// already belong to someone else. The user keeps it with a suffix.
	base := user.Username
	for attempt := 0; attempt < maxRenameAttempts; attempt++ {
		user.Username = models.UsernameCandidate(base, attempt)
		user.UsernameLower = models.NormalizeUsername(user.Username)

		err := b.users.SaveMigrated(ctx, &user)
		if errors.Is(err, models.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return err
		}
		if attempt > 0 {
			logrus.WithFields(logrus.Fields{
				"userID":   user.ID,
				"from":     base,
				"username": user.Username,
			}).Warn("Renamed legacy user with a duplicate username")
		}
		logrus.WithField("userID", user.ID).Debug("User migrated to current schema")
		return nil
	}
	return fmt.Errorf("failed to migrate %s: %w", user.ID, models.ErrUsernameTaken)
}
