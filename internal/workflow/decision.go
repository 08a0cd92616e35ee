package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jkaninda/resourcebot/internal/domain"
)

// decidePending processes an admin approve/reject button on a pending key.
// A key no longer in pending means the submission was already decided (or the
// button is stale): the prompt caption is updated and nothing else happens,
// so double-clicks are idempotent.
func (e *Engine) decidePending(ctx context.Context, actor domain.Actor, action Action, cb Callback) error {
	var entry domain.Record
	found := false

	err := e.store.Update(ctx, domain.CollectionPending, func(pending map[string]domain.Record) bool {
		rec, ok := pending[action.Key]
		if !ok {
			return false
		}
		entry = rec
		found = true
		delete(pending, action.Key)
		if e.metrics != nil {
			e.metrics.PendingQueue.Set(float64(len(pending)))
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("removing pending record %s: %w", action.Key, err)
	}

	if !found {
		e.editCaption(ctx, cb.Message, "This resource is no longer pending.")
		return nil
	}

	if action.Kind == ActionApprove {
		return e.approveSubmission(ctx, actor, action.Key, entry, cb)
	}
	return e.rejectSubmission(ctx, actor, action.Key, entry, cb)
}

// approveSubmission moves the record into the approved catalog under a fresh
// key. Regenerating the key means any still-rendered Approve/Reject button
// for the old key resolves to "no longer pending", never to another record.
func (e *Engine) approveSubmission(ctx context.Context, actor domain.Actor, pendingKey string, entry domain.Record, cb Callback) error {
	approvedKey := newKey()
	err := e.store.Update(ctx, domain.CollectionApproved, func(approved map[string]domain.Record) bool {
		approved[approvedKey] = entry
		return true
	})
	if err != nil {
		return fmt.Errorf("inserting approved record %s: %w", approvedKey, err)
	}

	if e.metrics != nil {
		e.metrics.DecisionsTotal.WithLabelValues("approve").Inc()
	}
	e.logger.Info("submission approved",
		slog.String("pending_key", pendingKey),
		slog.String("approved_key", approvedKey),
		slog.String("course_code", entry.CourseCode),
		slog.Int64("admin_id", actor.ID),
	)

	e.editCaption(ctx, cb.Message, fmt.Sprintf("✅ Approved resource for %s from %s", entry.CourseCode, entry.UploaderName))

	caption := fmt.Sprintf(
		"✅ Your resource for %s has been approved!\n\nYou can find resources by typing !CourseCode (example: !CSE421)",
		entry.CourseCode)
	e.sendFile(ctx, entry.UploaderID, entry.FileKind, entry.FileID, caption, nil)
	return nil
}

// rejectSubmission discards the record; it was already removed from pending.
func (e *Engine) rejectSubmission(ctx context.Context, actor domain.Actor, pendingKey string, entry domain.Record, cb Callback) error {
	if e.metrics != nil {
		e.metrics.DecisionsTotal.WithLabelValues("reject").Inc()
	}
	e.logger.Info("submission rejected",
		slog.String("pending_key", pendingKey),
		slog.String("course_code", entry.CourseCode),
		slog.Int64("admin_id", actor.ID),
	)

	e.editCaption(ctx, cb.Message, fmt.Sprintf("❌ Rejected resource for %s from %s", entry.CourseCode, entry.UploaderName))

	caption := fmt.Sprintf("❌ Your resource for %s was rejected by admin.", entry.CourseCode)
	e.sendFile(ctx, entry.UploaderID, entry.FileKind, entry.FileID, caption, nil)
	return nil
}
