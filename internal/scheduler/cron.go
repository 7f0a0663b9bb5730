// Package scheduler registers the periodic background jobs.
package scheduler

import (
	"context"

	"github.com/Dias221467/Tenvin_Social/internal/config"
	"github.com/Dias221467/Tenvin_Social/internal/jobs"
	"github.com/Dias221467/Tenvin_Social/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Start schedules counter reconciliation, the nightly recount and the
// notification cleanup. The returned cron must be stopped on shutdown.
func Start(ctx context.Context, cfg *config.Config, reconciler *jobs.CounterReconciler, notificationService *services.NotificationService) (*cron.Cron, error) {
	c := cron.New()

	// Safety net for events whose nudge was lost.
	if _, err := c.AddFunc(cfg.ReconcileSchedule, func() {
		if _, err := reconciler.RunOnce(ctx); err != nil {
			logrus.WithError(err).Error("Scheduled counter reconciliation failed")
		}
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(cfg.RecountSchedule, func() {
		if err := reconciler.Recount(ctx); err != nil {
			logrus.WithError(err).Error("Counter recount failed")
		}
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(cfg.CleanupSchedule, func() {
		if err := notificationService.DeleteExpiredNotifications(ctx); err != nil {
			logrus.WithError(err).Error("DeleteExpiredNotifications failed")
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	logrus.WithFields(logrus.Fields{
		"reconcile": cfg.ReconcileSchedule,
		"recount":   cfg.RecountSchedule,
		"cleanup":   cfg.CleanupSchedule,
	}).Info("Background jobs scheduled")
	return c, nil
}
