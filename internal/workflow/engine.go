// Package workflow implements the moderated resource-sharing workflow engine:
// the per-actor conversational state machines and the submission, decision,
// deletion, and lookup flows over the pending and approved collections.
//
// Every inbound message is dispatched by the transport gateway to exactly one
// handler, chosen first by the actor's current conversation step and then by
// message shape. Store mutations are saved before outward notifications, so a
// crash after a mutation never loses the commit but may duplicate a notice.
package workflow

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/jkaninda/resourcebot/internal/dialog"
	"github.com/jkaninda/resourcebot/internal/domain"
	"github.com/jkaninda/resourcebot/internal/store"
)

// Engine drives all workflows. Chats are private, so an actor's chat ID is
// the actor ID.
type Engine struct {
	store   store.Store
	dialogs *dialog.Tracker
	msgr    Messenger
	metrics *Metrics // nil when metrics are disabled
	logger  *slog.Logger
	adminID int64

	// rng picks cosmetic attribution labels. Guarded because handlers may
	// run concurrently; seedable so tests are deterministic.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine creates the workflow engine. metrics may be nil.
func NewEngine(st store.Store, dialogs *dialog.Tracker, msgr Messenger, adminID int64, metrics *Metrics, rng *rand.Rand, logger *slog.Logger) *Engine {
	return &Engine{
		store:   st,
		dialogs: dialogs,
		msgr:    msgr,
		metrics: metrics,
		logger:  logger,
		adminID: adminID,
		rng:     rng,
	}
}

// HandleCommand processes a named entry command.
func (e *Engine) HandleCommand(ctx context.Context, actor domain.Actor, command string) error {
	switch command {
	case "start":
		e.sendText(ctx, actor.ID, welcomeText)
	case "help":
		e.sendText(ctx, actor.ID, helpText)
	case "upload":
		e.beginUpload(ctx, actor)
	case "courselist":
		return e.handleCourseList(ctx, actor)
	case "admin":
		return e.handleAdminStatus(ctx, actor)
	default:
		e.sendText(ctx, actor.ID, unknownText)
	}
	return nil
}

// HandleText processes a plain text message. The actor's conversation step
// decides the interpretation before the content does, so a reason prompt is
// never misrouted into the lookup or upload paths.
func (e *Engine) HandleText(ctx context.Context, actor domain.Actor, text string) error {
	state := e.dialogs.Get(actor.ID)

	switch state.Step {
	case dialog.StepAwaitingDeleteReason:
		return e.handleDeleteReason(ctx, actor, state, text)

	case dialog.StepAwaitingCourseCode:
		e.handleCourseCode(ctx, actor, text)
		return nil

	case dialog.StepAwaitingFile:
		// Mid-upload text is an unexpected shape; re-instruct, keep the state.
		e.sendText(ctx, actor.ID, "Waiting for your file for "+state.CourseCode+". Send it now, or /upload to start over.")
		return nil

	case dialog.StepAwaitingRejectReason:
		return e.handleRejectReason(ctx, actor, state, text)
	}

	if code, ok := lookupQuery(text); ok {
		return e.handleLookup(ctx, actor, code)
	}

	e.sendText(ctx, actor.ID, unknownText)
	return nil
}

// HandleFile processes an inbound file attachment.
func (e *Engine) HandleFile(ctx context.Context, actor domain.Actor, fileID string, kind domain.FileKind) error {
	state := e.dialogs.Get(actor.ID)
	if state.Step != dialog.StepAwaitingFile {
		// No record is ever created outside the upload flow.
		e.sendText(ctx, actor.ID, "First send the course code as text using /upload!")
		return nil
	}
	return e.finishSubmission(ctx, actor, state, fileID, kind)
}

// HandleCallback processes a parsed button press.
func (e *Engine) HandleCallback(ctx context.Context, actor domain.Actor, action Action, cb Callback) error {
	switch action.Kind {
	case ActionApprove, ActionReject:
		return e.decidePending(ctx, actor, action, cb)
	case ActionRequestDelete:
		return e.beginDeleteRequest(ctx, actor, action, cb)
	case ActionDeleteApprove:
		return e.approveDelete(ctx, action, cb)
	case ActionDeleteReject:
		return e.rejectDelete(ctx, action, cb)
	}

	e.logger.Warn("unhandled callback action", slog.String("kind", string(action.Kind)))
	return nil
}

// PendingCount returns the size of the pending queue.
func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	pending, err := e.store.Load(ctx, domain.CollectionPending)
	if err != nil {
		return 0, err
	}
	if e.metrics != nil {
		e.metrics.PendingQueue.Set(float64(len(pending)))
	}
	return len(pending), nil
}

func newKey() string {
	return uuid.NewString()[:8]
}

// sendText logs a failed send and moves on; outbound sends never fail a
// workflow whose store mutation has already committed.
func (e *Engine) sendText(ctx context.Context, chatID int64, text string) {
	if err := e.msgr.SendText(ctx, chatID, text); err != nil {
		e.logger.Error("send text failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) sendFile(ctx context.Context, chatID int64, kind domain.FileKind, fileID, caption string, buttons [][]Button) {
	if err := e.msgr.SendFile(ctx, chatID, kind, fileID, caption, buttons); err != nil {
		e.logger.Error("send file failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) editCaption(ctx context.Context, ref MessageRef, caption string) {
	if err := e.msgr.EditCaption(ctx, ref, caption); err != nil {
		e.logger.Error("edit caption failed",
			slog.Int64("chat_id", ref.ChatID),
			slog.Int64("message_id", ref.MessageID),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) alert(ctx context.Context, callbackID, text string) {
	if err := e.msgr.Alert(ctx, callbackID, text); err != nil {
		e.logger.Error("answer callback failed", slog.String("error", err.Error()))
	}
}
