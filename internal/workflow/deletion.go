package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jkaninda/resourcebot/internal/dialog"
	"github.com/jkaninda/resourcebot/internal/domain"
)

// beginDeleteRequest handles the Request Delete button under a resource.
// The record snapshot rides in the requester's conversation state until the
// reason arrives; the approved collection stays the source of truth.
func (e *Engine) beginDeleteRequest(ctx context.Context, actor domain.Actor, action Action, cb Callback) error {
	approved, err := e.store.Load(ctx, domain.CollectionApproved)
	if err != nil {
		return fmt.Errorf("loading approved catalog: %w", err)
	}

	rec, ok := approved[action.Key]
	if !ok || !rec.WellFormed() {
		e.alert(ctx, cb.ID, "This resource no longer exists.")
		return nil
	}

	e.dialogs.Set(actor.ID, dialog.State{
		Step:        dialog.StepAwaitingDeleteReason,
		Resource:    rec,
		ResourceKey: action.Key,
	})
	e.sendText(ctx, actor.ID, "\U0001F4DD Please type the reason why you think this resource should be deleted:")
	return nil
}

// handleDeleteReason consumes the requester's reason text, forwards the
// request to the admin with the artifact attached, and confirms submission.
func (e *Engine) handleDeleteReason(ctx context.Context, actor domain.Actor, state dialog.State, reason string) error {
	e.dialogs.Clear(actor.ID)

	rec := state.Resource
	caption := fmt.Sprintf(
		"\U0001F5D1️ Delete Request Received\nCourse: %s\nRequested by: %s\n\nReason:\n%s\n\nApprove or Reject below:",
		rec.CourseCode, actor.Name, reason)

	e.sendFile(ctx, e.adminID, rec.FileKind, rec.FileID, caption, [][]Button{{
		{Label: "✅ Approve Delete", Action: Action{Kind: ActionDeleteApprove, Key: state.ResourceKey, RequesterID: actor.ID}},
		{Label: "❌ Reject Delete", Action: Action{Kind: ActionDeleteReject, Key: state.ResourceKey, RequesterID: actor.ID}},
	}})

	if e.metrics != nil {
		e.metrics.DeleteRequestsTotal.Inc()
	}
	e.logger.Info("delete request forwarded",
		slog.String("key", state.ResourceKey),
		slog.String("course_code", rec.CourseCode),
		slog.Int64("requester_id", actor.ID),
	)

	e.sendText(ctx, actor.ID, "✅ Your delete request has been sent to admin for review.")
	return nil
}

// approveDelete removes the record from the approved catalog and notifies the
// requester. A stale key is answered with an alert and nothing changes.
func (e *Engine) approveDelete(ctx context.Context, action Action, cb Callback) error {
	var rec domain.Record
	found := false

	err := e.store.Update(ctx, domain.CollectionApproved, func(approved map[string]domain.Record) bool {
		r, ok := approved[action.Key]
		if !ok {
			return false
		}
		rec = r
		found = true
		delete(approved, action.Key)
		return true
	})
	if err != nil {
		return fmt.Errorf("removing approved record %s: %w", action.Key, err)
	}

	if !found {
		e.alert(ctx, cb.ID, "This resource no longer exists.")
		return nil
	}

	if e.metrics != nil {
		e.metrics.DeleteDecisionsTotal.WithLabelValues("approve").Inc()
	}
	e.logger.Info("delete request approved",
		slog.String("key", action.Key),
		slog.String("course_code", rec.CourseCode),
		slog.Int64("requester_id", action.RequesterID),
	)

	e.editCaption(ctx, cb.Message, fmt.Sprintf("✅ Resource for %s deleted as per request.", rec.CourseCode))
	e.sendText(ctx, action.RequesterID, fmt.Sprintf(
		"✅ Your delete request for %s resource has been approved and removed.", rec.CourseCode))
	return nil
}

// rejectDelete starts the admin's reason dialogue; the store is untouched.
// A second delete_reject before the first reason is typed overwrites the
// pending context. Last request wins, a documented limitation.
func (e *Engine) rejectDelete(ctx context.Context, action Action, cb Callback) error {
	approved, err := e.store.Load(ctx, domain.CollectionApproved)
	if err != nil {
		return fmt.Errorf("loading approved catalog: %w", err)
	}

	rec, ok := approved[action.Key]
	if !ok {
		e.alert(ctx, cb.ID, "This resource no longer exists.")
		return nil
	}

	e.dialogs.Set(e.adminID, dialog.State{
		Step:            dialog.StepAwaitingRejectReason,
		RequesterID:     action.RequesterID,
		RequesterCourse: rec.CourseCode,
	})
	e.sendText(ctx, e.adminID, "✏️ Please type the reason why you are rejecting the delete request:")
	return nil
}

// handleRejectReason consumes the admin's free-text reason and forwards it
// to the original requester.
func (e *Engine) handleRejectReason(ctx context.Context, actor domain.Actor, state dialog.State, reason string) error {
	e.dialogs.Clear(actor.ID)

	if e.metrics != nil {
		e.metrics.DeleteDecisionsTotal.WithLabelValues("reject").Inc()
	}
	e.logger.Info("delete request rejected",
		slog.String("course_code", state.RequesterCourse),
		slog.Int64("requester_id", state.RequesterID),
	)

	e.sendText(ctx, state.RequesterID, fmt.Sprintf(
		"❌ Your delete request for %s was rejected.\nReason from admin:\n%s", state.RequesterCourse, reason))
	e.sendText(ctx, actor.ID, "✅ Rejection reason sent to requester.")
	return nil
}
