package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/Dias221467/Tenvin_Social/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const photoContentType = "image/jpeg"

// WineService records tastings. Every wine is created together with its
// feed post.
type WineService struct {
	wines  repository.WineStore
	posts  repository.PostStore
	users  repository.UserStore
	tx     repository.TxRunner
	images storage.ImageStore
}

func NewWineService(wines repository.WineStore, posts repository.PostStore, users repository.UserStore, tx repository.TxRunner, images storage.ImageStore) *WineService {
	return &WineService{
		wines:  wines,
		posts:  posts,
		users:  users,
		tx:     tx,
		images: images,
	}
}

// CreateWine stores a wine, its feed post and the author's tasted entry in
// one transaction. A failed photo upload is logged and the wine is saved
// without an image.
func (s *WineService) CreateWine(ctx context.Context, authorID string, input *models.CreateWineInput, image io.Reader) (*models.Wine, *models.FeedPost, error) {
	if err := input.Validate(); err != nil {
		return nil, nil, err
	}

	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load author: %w", err)
	}
	if author == nil {
		return nil, nil, models.ErrUserNotFound
	}

	now := time.Now().UTC()
	wine := &models.Wine{
		ID:           uuid.NewString(),
		Type:         input.Type,
		GrapeVariety: input.GrapeVariety,
		Domain:       input.Domain,
		Vintage:      input.Vintage,
		Region:       input.Region,
		TastingNotes: input.TastingNotes,
		Rating:       input.Rating,
		AddedDate:    now,
		UserID:       authorID,
	}

	if image != nil {
		url, err := s.images.Upload(ctx, storage.WinePhotoPath(wine.ID), photoContentType, image)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"wineID": wine.ID,
				"error":  err,
			}).Warn("Photo upload failed, saving wine without image")
		} else {
			wine.ImageURL = &url
		}
	}

	post := &models.FeedPost{
		ID:                  uuid.NewString(),
		WineID:              wine.ID,
		UserID:              authorID,
		Username:            author.Username,
		UserProfileImageURL: author.ProfileImageURL,
		PostedDate:          now,
		Likes:               []string{},
		Comments:            []models.Comment{},
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.wines.CreateWine(ctx, wine); err != nil {
			return err
		}
		if err := s.posts.CreatePost(ctx, post); err != nil {
			return err
		}
		return s.users.AddWineTasted(ctx, authorID, wine.ID)
	})
	if err != nil {
		logrus.WithError(err).WithField("author", authorID).Error("Failed to create wine")
		return nil, nil, fmt.Errorf("failed to create wine: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"wineID": wine.ID,
		"postID": post.ID,
		"author": authorID,
	}).Info("Wine and post created")
	return wine, post, nil
}

func (s *WineService) GetWine(ctx context.Context, id string) (*models.Wine, error) {
	wine, err := s.wines.GetWineByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load wine: %w", err)
	}
	if wine == nil {
		return nil, models.ErrWineNotFound
	}
	return wine, nil
}

func (s *WineService) ListUserWines(ctx context.Context, userID string) ([]models.Wine, error) {
	wines, err := s.wines.GetWinesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wines: %w", err)
	}
	return wines, nil
}

func (s *WineService) ownedWine(ctx context.Context, userID, wineID string) (*models.Wine, error) {
	wine, err := s.GetWine(ctx, wineID)
	if err != nil {
		return nil, err
	}
	if wine.UserID != userID {
		return nil, models.ErrForbidden
	}
	return wine, nil
}

// UpdateWine changes notes, rating or image. Only the owner may edit.
func (s *WineService) UpdateWine(ctx context.Context, userID, wineID string, input *models.UpdateWineInput) (*models.Wine, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	wine, err := s.ownedWine(ctx, userID, wineID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.TastingNotes != nil {
		fields["tasting_notes"] = *input.TastingNotes
	}
	if input.Rating != nil {
		fields["rating"] = *input.Rating
	}
	if input.ImageURL != nil {
		fields["image_url"] = *input.ImageURL
	}
	if len(fields) == 0 {
		return wine, nil
	}

	if err := s.wines.UpdateWineFields(ctx, wineID, fields); err != nil {
		return nil, err
	}
	return s.GetWine(ctx, wineID)
}

// AttachImage uploads a photo for an existing wine. Unlike CreateWine the
// upload error is returned.
func (s *WineService) AttachImage(ctx context.Context, userID, wineID string, image io.Reader) (*models.Wine, error) {
	if _, err := s.ownedWine(ctx, userID, wineID); err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, storage.WinePhotoPath(wineID), photoContentType, image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}
	if err := s.wines.UpdateWineFields(ctx, wineID, map[string]interface{}{"image_url": url}); err != nil {
		return nil, err
	}
	return s.GetWine(ctx, wineID)
}
