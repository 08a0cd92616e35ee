// Package reminder periodically tells the administrator how many submissions
// are waiting for review. Read-only over the store.
package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// PendingCounter reports the current pending-queue size.
type PendingCounter interface {
	PendingCount(ctx context.Context) (int, error)
}

// Notifier delivers the reminder text.
type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Reminder runs the scheduled pending-queue digest.
type Reminder struct {
	counter  PendingCounter
	notifier Notifier
	adminID  int64
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron
}

// New creates a reminder with a standard 5-field cron schedule.
func New(counter PendingCounter, notifier Notifier, adminID int64, schedule string, logger *slog.Logger) *Reminder {
	return &Reminder{
		counter:  counter,
		notifier: notifier,
		adminID:  adminID,
		schedule: schedule,
		logger:   logger,
	}
}

// Start schedules the digest and returns a cancel function. Scheduling
// errors (a bad cron spec) are returned immediately.
func (r *Reminder) Start(ctx context.Context) (func(), error) {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(r.schedule, func() { r.run(ctx) }); err != nil {
		return nil, fmt.Errorf("scheduling reminder %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.logger.Info("pending reminder scheduled", slog.String("schedule", r.schedule))

	return func() {
		stopCtx := r.cron.Stop()
		<-stopCtx.Done()
	}, nil
}

func (r *Reminder) run(ctx context.Context) {
	count, err := r.counter.PendingCount(ctx)
	if err != nil {
		r.logger.Error("pending reminder count failed", slog.String("error", err.Error()))
		return
	}
	if count == 0 {
		return
	}

	text := fmt.Sprintf("⏰ Reminder: %d submission(s) waiting for review. Use /admin for details.", count)
	if err := r.notifier.SendText(ctx, r.adminID, text); err != nil {
		r.logger.Error("pending reminder send failed", slog.String("error", err.Error()))
	}
}
