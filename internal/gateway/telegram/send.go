package telegram

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jkaninda/resourcebot/internal/domain"
	"github.com/jkaninda/resourcebot/internal/workflow"
)

// The gateway implements workflow.Messenger.
var _ workflow.Messenger = (*Gateway)(nil)

// SendText implements workflow.Messenger.
func (g *Gateway) SendText(ctx context.Context, chatID int64, text string) error {
	return g.callAPI(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
}

// SendFile implements workflow.Messenger. Photos go through sendPhoto,
// everything else through sendDocument; file IDs are opaque handles Telegram
// resolves server-side, so nothing is re-uploaded.
func (g *Gateway) SendFile(ctx context.Context, chatID int64, kind domain.FileKind, fileID, caption string, buttons [][]workflow.Button) error {
	params := map[string]any{
		"chat_id": chatID,
		"caption": caption,
	}
	if markup := keyboard(buttons); markup != nil {
		params["reply_markup"] = markup
	}

	method := "sendDocument"
	params["document"] = fileID
	if kind == domain.FilePhoto {
		method = "sendPhoto"
		delete(params, "document")
		params["photo"] = fileID
	}
	return g.callAPI(ctx, method, params)
}

// EditCaption implements workflow.Messenger.
func (g *Gateway) EditCaption(ctx context.Context, ref workflow.MessageRef, caption string) error {
	return g.callAPI(ctx, "editMessageCaption", map[string]any{
		"chat_id":    ref.ChatID,
		"message_id": ref.MessageID,
		"caption":    caption,
	})
}

// Alert implements workflow.Messenger.
func (g *Gateway) Alert(ctx context.Context, callbackID, text string) error {
	return g.callAPI(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
		"text":              text,
		"show_alert":        true,
	})
}

func keyboard(buttons [][]workflow.Button) *InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	markup := &InlineKeyboardMarkup{InlineKeyboard: make([][]InlineKeyboardButton, 0, len(buttons))}
	for _, row := range buttons {
		rendered := make([]InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			rendered = append(rendered, InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Action.Encode(),
			})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, rendered)
	}
	return markup
}

func (g *Gateway) callAPI(ctx context.Context, method string, params map[string]any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram %s: encoding request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUpdateSize)).Decode(&result); err != nil {
		return fmt.Errorf("telegram %s: decoding response: %w", method, err)
	}
	if !result.OK {
		return fmt.Errorf("telegram %s: %s", method, result.Description)
	}
	return nil
}

func (g *Gateway) apiURL(method string) string {
	return fmt.Sprintf("https://api.telegram.org/bot%s/%s", g.config.BotToken, method)
}

func (c Config) pollTimeout() int {
	if c.PollTimeout > 0 {
		return c.PollTimeout
	}
	return defaultPollTimeout
}

// webhookSecret derives the webhook path from the bot token hash.
func webhookSecret(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:16]) // 32-char hex path
}
