package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier is the best-effort side channel used by the other services.
type Notifier interface {
	Notify(ctx context.Context, userID, notifType, actorID, targetID, message string)
}

type NotificationService struct {
	repo repository.NotificationStore
}

var _ Notifier = (*NotificationService)(nil)

func NewNotificationService(repo repository.NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotification logs a new notification for a user
func (s *NotificationService) CreateNotification(ctx context.Context, userID, notifType, actorID, targetID, message string) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		ActorID:  actorID,
		TargetID: targetID,
		Message:  message,
		Read:     false,
	}
	return s.repo.CreateNotification(ctx, notif)
}

// Notify is CreateNotification with failures logged and dropped. Users are
// never notified about their own actions.
func (s *NotificationService) Notify(ctx context.Context, userID, notifType, actorID, targetID, message string) {
	if userID == "" || userID == actorID {
		return
	}
	if err := s.CreateNotification(ctx, userID, notifType, actorID, targetID, message); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID,
			"type":   notifType,
			"error":  err,
		}).Warn("Failed to create notification")
	}
}

// GetUserNotifications returns all unexpired notifications for a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, userID string, notifID primitive.ObjectID) error {
	return s.repo.MarkAsRead(ctx, userID, notifID)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID string, notifID primitive.ObjectID) error {
	return s.repo.DeleteNotification(ctx, userID, notifID)
}

// DeleteExpiredNotifications is called daily by the scheduler.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) error {
	n, err := s.repo.DeleteExpiredNotifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean up notifications: %w", err)
	}
	logrus.WithField("deleted", n).Info("Expired notifications removed")
	return nil
}
