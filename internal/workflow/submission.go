package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jkaninda/resourcebot/internal/dialog"
	"github.com/jkaninda/resourcebot/internal/domain"
)

// beginUpload starts the contribution dialogue: idle → awaiting_course_code.
func (e *Engine) beginUpload(ctx context.Context, actor domain.Actor) {
	e.dialogs.Set(actor.ID, dialog.State{Step: dialog.StepAwaitingCourseCode})
	e.sendText(ctx, actor.ID, "Please send the course code (like CSE421) as text, I will tell what to do next.")
}

// handleCourseCode consumes the text message while awaiting_course_code.
// Any non-empty token is accepted; codes are never checked against a list.
func (e *Engine) handleCourseCode(ctx context.Context, actor domain.Actor, text string) {
	code := domain.NormalizeCourseCode(text)
	if code == "" {
		e.sendText(ctx, actor.ID, "Please send the course code as text (like CSE421).")
		return
	}

	e.dialogs.Set(actor.ID, dialog.State{Step: dialog.StepAwaitingFile, CourseCode: code})
	e.sendText(ctx, actor.ID, fmt.Sprintf(
		"Got course code: %s\nNow upload the file. Zipping all in one file is recommended instead of sending one by one", code))
}

// finishSubmission consumes the file while awaiting_file: a new pending
// record is created under a fresh key, saved, then the uploader is confirmed
// and the admin gets the decision prompt.
func (e *Engine) finishSubmission(ctx context.Context, actor domain.Actor, state dialog.State, fileID string, kind domain.FileKind) error {
	course := state.CourseCode
	e.dialogs.Clear(actor.ID)

	key := newKey()
	rec := domain.Record{
		CourseCode:   course,
		FileID:       fileID,
		FileKind:     kind,
		UploaderID:   actor.ID,
		UploaderName: actor.Name,
	}

	err := e.store.Update(ctx, domain.CollectionPending, func(pending map[string]domain.Record) bool {
		pending[key] = rec
		if e.metrics != nil {
			e.metrics.PendingQueue.Set(float64(len(pending)))
		}
		return true
	})
	if err != nil {
		e.sendText(ctx, actor.ID, "❗ Could not save your upload, please try again.")
		return fmt.Errorf("saving pending submission: %w", err)
	}

	if e.metrics != nil {
		e.metrics.SubmissionsTotal.Inc()
	}
	e.logger.Info("submission queued",
		slog.String("key", key),
		slog.String("course_code", course),
		slog.Int64("uploader_id", actor.ID),
	)

	e.sendText(ctx, actor.ID, fmt.Sprintf("File received for %s. Awaiting admin approval.", course))

	caption := fmt.Sprintf("\U0001F4E5 Pending resource:\nCourse: %s\nUploader: %s\n\nApprove or Reject below:", course, actor.Name)
	e.sendFile(ctx, e.adminID, kind, fileID, caption, [][]Button{{
		{Label: "✅ Approve", Action: Action{Kind: ActionApprove, Key: key}},
		{Label: "❌ Reject", Action: Action{Kind: ActionReject, Key: key}},
	}})
	return nil
}
