package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/sirupsen/logrus"
)

type WishlistService struct {
	wishlist repository.WishlistStore
	users    repository.UserStore
	notifier Notifier
}

func NewWishlistService(wishlist repository.WishlistStore, users repository.UserStore, notifier Notifier) *WishlistService {
	return &WishlistService{
		wishlist: wishlist,
		users:    users,
		notifier: notifier,
	}
}

// AddToWishlist upserts the (user, wine) entry with a fresh created_at.
func (s *WishlistService) AddToWishlist(ctx context.Context, userID, wineID, recommendedBy string) error {
	if userID == "" || wineID == "" {
		return models.ErrInvalidInput
	}

	entry := &models.WishlistEntry{
		UserID:    userID,
		WineID:    wineID,
		CreatedAt: time.Now().UTC(),
	}
	if recommendedBy != "" {
		entry.RecommendedBy = &recommendedBy
	}

	if err := s.wishlist.UpsertEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"userID": userID,
		"wineID": wineID,
	}).Info("Wine added to wishlist")
	return nil
}

// RemoveFromWishlist succeeds when the entry is already gone.
func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, wineID string) error {
	if userID == "" || wineID == "" {
		return models.ErrInvalidInput
	}
	if err := s.wishlist.DeleteEntry(ctx, userID, wineID); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	if err := s.users.PullLegacyWishlist(ctx, userID, wineID); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

// MarkTasted records the wine as tasted, then drops it from the wishlist.
// If the second step fails the wine stays tasted and the error is returned.
func (s *WishlistService) MarkTasted(ctx context.Context, userID, wineID string) error {
	if userID == "" || wineID == "" {
		return models.ErrInvalidInput
	}

	if err := s.users.AddWineTasted(ctx, userID, wineID); err != nil {
		return fmt.Errorf("failed to mark wine as tasted: %w", err)
	}

	if err := s.RemoveFromWishlist(ctx, userID, wineID); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID,
			"wineID": wineID,
			"error":  err,
		}).Warn("Wine marked tasted but still on wishlist")
		return err
	}
	return nil
}

// Recommend puts wineID on the target's wishlist on behalf of senderID.
func (s *WishlistService) Recommend(ctx context.Context, senderID, targetUserID, wineID string) error {
	if senderID == "" || targetUserID == "" || wineID == "" {
		return models.ErrInvalidInput
	}

	target, err := s.users.GetUserByID(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("failed to load recommendation target: %w", err)
	}
	if target == nil {
		return models.ErrUserNotFound
	}

	if err := s.AddToWishlist(ctx, targetUserID, wineID, senderID); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, targetUserID, models.NotificationWineRecommended, senderID, wineID, "A wine was recommended to you")
	}
	return nil
}

func (s *WishlistService) ListWishlist(ctx context.Context, userID string) ([]models.WishlistEntry, error) {
	entries, err := s.wishlist.ListEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	legacy, err := s.users.LegacyWishlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return mergeLegacyWishlist(userID, legacy, entries), nil
}

// mergeLegacyWishlist puts the not yet migrated array entries first, since
// they predate every stored entry, and lists each wine once.
func mergeLegacyWishlist(userID string, legacy []string, entries []models.WishlistEntry) []models.WishlistEntry {
	if len(legacy) == 0 {
		return entries
	}

	byWine := make(map[string]models.WishlistEntry, len(entries))
	for _, e := range entries {
		byWine[e.WineID] = e
	}

	out := make([]models.WishlistEntry, 0, len(legacy)+len(entries))
	listed := make(map[string]bool, len(legacy)+len(entries))
	for _, wineID := range legacy {
		if wineID == "" || listed[wineID] {
			continue
		}
		listed[wineID] = true
		if e, ok := byWine[wineID]; ok {
			out = append(out, e)
			continue
		}
		out = append(out, models.WishlistEntry{
			ID:     models.WishlistKey(userID, wineID),
			UserID: userID,
			WineID: wineID,
		})
	}
	for _, e := range entries {
		if !listed[e.WineID] {
			listed[e.WineID] = true
			out = append(out, e)
		}
	}
	return out
}

func (s *WishlistService) ListTasted(ctx context.Context, userID string) ([]string, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user.WinesTasted, nil
}
