package telegram

import (
	"encoding/json"
	"testing"

	"github.com/jkaninda/resourcebot/internal/workflow"
)

func TestCommandName(t *testing.T) {
	tests := map[string]string{
		"/start":                "start",
		"/upload@ResourceBot":   "upload",
		"/help extra words":     "help",
		"/courselist@Bot extra": "courselist",
	}
	for in, want := range tests {
		if got := commandName(in); got != want {
			t.Errorf("commandName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBestPhotoPicksHighestResolution(t *testing.T) {
	sizes := []PhotoSize{
		{FileID: "thumb", Width: 90, Height: 90},
		{FileID: "large", Width: 1280, Height: 960},
		{FileID: "medium", Width: 320, Height: 240},
	}
	if got := bestPhoto(sizes); got != "large" {
		t.Errorf("bestPhoto = %q, want large", got)
	}
}

func TestWebhookSecretIsStableAndOpaque(t *testing.T) {
	a := webhookSecret("token-a")
	if a != webhookSecret("token-a") {
		t.Error("secret path not deterministic")
	}
	if a == webhookSecret("token-b") {
		t.Error("different tokens share a secret path")
	}
	if len(a) != 32 {
		t.Errorf("secret path length = %d, want 32 hex chars", len(a))
	}
}

func TestKeyboardRendersActionPayloads(t *testing.T) {
	markup := keyboard([][]workflow.Button{{
		{Label: "Approve", Action: workflow.Action{Kind: workflow.ActionApprove, Key: "k1"}},
		{Label: "Reject", Action: workflow.Action{Kind: workflow.ActionReject, Key: "k1"}},
	}})
	if markup == nil || len(markup.InlineKeyboard) != 1 {
		t.Fatalf("markup = %+v", markup)
	}
	row := markup.InlineKeyboard[0]
	if row[0].CallbackData != "approve|k1" || row[1].CallbackData != "reject|k1" {
		t.Errorf("callback data = (%q, %q)", row[0].CallbackData, row[1].CallbackData)
	}

	if keyboard(nil) != nil {
		t.Error("empty button set should render no markup")
	}
}

func TestUpdateDecoding(t *testing.T) {
	payload := `{
		"update_id": 10,
		"message": {
			"message_id": 5,
			"from": {"id": 7, "first_name": "Nadia"},
			"chat": {"id": 7, "type": "private"},
			"photo": [
				{"file_id": "small", "width": 90, "height": 90},
				{"file_id": "big", "width": 800, "height": 600}
			]
		}
	}`
	var update Update
	if err := json.Unmarshal([]byte(payload), &update); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if update.Message == nil || len(update.Message.Photo) != 2 {
		t.Fatalf("update = %+v", update)
	}
	if got := bestPhoto(update.Message.Photo); got != "big" {
		t.Errorf("bestPhoto = %q", got)
	}

	cb := `{"update_id": 11, "callback_query": {"id": "q1", "from": {"id": 9, "first_name": "A"}, "data": "request_delete|k1"}}`
	if err := json.Unmarshal([]byte(cb), &update); err != nil {
		t.Fatalf("decode callback: %v", err)
	}
	action, err := workflow.ParseAction(update.CallbackQuery.Data)
	if err != nil {
		t.Fatalf("parse action from update: %v", err)
	}
	if action.Kind != workflow.ActionRequestDelete || action.Key != "k1" {
		t.Errorf("action = %+v", action)
	}
}
