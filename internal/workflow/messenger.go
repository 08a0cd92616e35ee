package workflow

import (
	"context"

	"github.com/jkaninda/resourcebot/internal/domain"
)

// Button is one interactive button: a label and the action it triggers.
// Buttons render as ordered rows on the transport.
type Button struct {
	Label  string
	Action Action
}

// MessageRef points at a previously sent transport message so its caption
// can be edited in place.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

// Callback carries the transport context of a button press: the callback to
// answer and the message bearing the button.
type Callback struct {
	ID      string
	Message MessageRef
}

// Messenger is the outbound transport surface the engine needs. Sends are
// fire-and-forget from the workflow's perspective: a failed send after a
// committed store mutation is logged, never retried and never rolled back.
type Messenger interface {
	// SendText sends a plain text message to a chat.
	SendText(ctx context.Context, chatID int64, text string) error

	// SendFile resends a stored artifact with a caption and optional button
	// rows. kind selects the transport method (photo vs document).
	SendFile(ctx context.Context, chatID int64, kind domain.FileKind, fileID, caption string, buttons [][]Button) error

	// EditCaption replaces the caption of an earlier message, dropping its
	// buttons.
	EditCaption(ctx context.Context, ref MessageRef, caption string) error

	// Alert answers a button press with a popup notice.
	Alert(ctx context.Context, callbackID, text string) error
}
