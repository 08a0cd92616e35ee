// Package telegram implements the Telegram Bot API gateway for the resource
// bot using long polling or webhook mode.
//
// The gateway owns the transport boundary: it classifies each inbound update
// as command, text, file attachment, or button press, parses button payloads
// exactly once, and dispatches to the workflow engine. It also implements the
// engine's outbound Messenger surface (send-text, send-file with inline
// keyboards, edit-caption, callback alerts).
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jkaninda/resourcebot/internal/domain"
	"github.com/jkaninda/resourcebot/internal/workflow"
)

const (
	defaultPollTimeout = 30
	maxUpdateSize      = 256 << 10 // 256 KB
)

// Config configures the Telegram gateway.
type Config struct {
	BotToken    string // From TELEGRAM_BOT_TOKEN env var.
	WebhookURL  string // If set, use webhook mode. If empty, use long polling.
	ListenAddr  string // For webhook mode.
	PollTimeout int    // Long poll timeout in seconds. 0 = 30s default.
}

// Gateway is the Telegram gateway.
type Gateway struct {
	config     Config
	engine     *workflow.Engine
	logger     *slog.Logger
	httpClient *http.Client
	server     *http.Server // nil in polling mode
	cancel     context.CancelFunc
}

// NewGateway creates a Telegram gateway. The engine is attached afterwards
// via SetEngine because the engine's Messenger is the gateway itself.
func NewGateway(cfg Config, logger *slog.Logger) *Gateway {
	return &Gateway{
		config: cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.pollTimeout()+10) * time.Second,
		},
	}
}

// SetEngine attaches the workflow engine updates are dispatched to.
func (g *Gateway) SetEngine(e *workflow.Engine) { g.engine = e }

// Start registers the bot commands, then launches the gateway in webhook or
// long-polling mode and blocks.
func (g *Gateway) Start(ctx context.Context) error {
	ctx, g.cancel = context.WithCancel(ctx)

	if err := g.setMyCommands(ctx); err != nil {
		g.logger.Warn("registering bot commands failed", slog.String("error", err.Error()))
	}

	if g.config.WebhookURL != "" {
		return g.startWebhook(ctx)
	}
	return g.startPolling(ctx)
}

// Stop gracefully shuts down the gateway.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.cancel != nil {
		g.cancel()
	}
	if g.server != nil {
		g.logger.Info("telegram gateway stopping webhook server")
		return g.server.Shutdown(ctx)
	}
	g.logger.Info("telegram gateway stopping poller")
	return nil
}

func (g *Gateway) setMyCommands(ctx context.Context) error {
	type botCommand struct {
		Command     string `json:"command"`
		Description string `json:"description"`
	}
	return g.callAPI(ctx, "setMyCommands", map[string]any{
		"commands": []botCommand{
			{Command: "start", Description: "Start the bot"},
			{Command: "upload", Description: "Upload a new resource"},
			{Command: "help", Description: "Get instructions on using the bot"},
			{Command: "courselist", Description: "List courses with resources"},
		},
	})
}

// --- Long Polling ---

func (g *Gateway) startPolling(ctx context.Context) error {
	g.logger.Info("telegram gateway starting long polling",
		slog.Int("timeout", g.config.pollTimeout()),
	)

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		updates, err := g.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			g.logger.Error("telegram getUpdates failed", slog.String("error", err.Error()))
			time.Sleep(2 * time.Second)
			continue
		}

		for _, u := range updates {
			g.processUpdate(ctx, &u)
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
		}
	}
}

func (g *Gateway) getUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := map[string]any{
		"offset":  offset,
		"timeout": g.config.pollTimeout(),
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL("getUpdates"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUpdateSize)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding updates: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram API returned ok=false")
	}
	return result.Result, nil
}

// --- Webhook ---

func (g *Gateway) startWebhook(ctx context.Context) error {
	// Use a hash of the bot token as the webhook path to prevent unauthorized POSTs.
	secretPath := "/" + webhookSecret(g.config.BotToken)

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+secretPath, g.handleWebhook)

	g.server = &http.Server{
		Addr:              g.config.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g.logger.Info("telegram gateway starting webhook",
		slog.String("addr", g.config.ListenAddr),
	)

	err := g.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (g *Gateway) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateSize)).Decode(&update); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	g.processUpdate(r.Context(), &update)
	w.WriteHeader(http.StatusOK)
}

// --- Update Processing ---

// processUpdate classifies one update and dispatches it. A failing update is
// logged and dropped; nothing here may take down the poll loop or another
// actor's conversation.
func (g *Gateway) processUpdate(ctx context.Context, update *Update) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("panic while handling update",
				slog.Int64("update_id", update.UpdateID),
				slog.Any("panic", r),
			)
		}
	}()

	if update.CallbackQuery != nil {
		g.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		g.handleMessage(ctx, update.Message)
	}
}

func (g *Gateway) handleMessage(ctx context.Context, msg *Message) {
	if msg.From == nil {
		return
	}
	actor := domain.Actor{ID: msg.From.ID, Name: msg.From.FirstName}

	var err error
	switch {
	case msg.Document != nil:
		err = g.engine.HandleFile(ctx, actor, msg.Document.FileID, domain.FileDocument)

	case len(msg.Photo) > 0:
		err = g.engine.HandleFile(ctx, actor, bestPhoto(msg.Photo), domain.FilePhoto)

	case strings.HasPrefix(msg.Text, "/"):
		err = g.engine.HandleCommand(ctx, actor, commandName(msg.Text))

	case msg.Text != "":
		err = g.engine.HandleText(ctx, actor, strings.TrimSpace(msg.Text))

	default:
		return
	}

	if err != nil {
		g.logger.Error("message handling failed",
			slog.Int64("actor_id", actor.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (g *Gateway) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if cb.From == nil || cb.Data == "" {
		return
	}

	action, err := workflow.ParseAction(cb.Data)
	if err != nil {
		g.logger.Warn("dropping malformed callback payload",
			slog.Int64("actor_id", cb.From.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	actor := domain.Actor{ID: cb.From.ID, Name: cb.From.FirstName}
	ref := workflow.MessageRef{}
	if cb.Message != nil {
		ref = workflow.MessageRef{ChatID: cb.Message.Chat.ID, MessageID: cb.Message.MessageID}
	}

	if err := g.engine.HandleCallback(ctx, actor, action, workflow.Callback{ID: cb.ID, Message: ref}); err != nil {
		g.logger.Error("callback handling failed",
			slog.Int64("actor_id", actor.ID),
			slog.String("action", string(action.Kind)),
			slog.String("error", err.Error()),
		)
	}

	// A callback can be answered only once. If a workflow already raised an
	// alert for this press, this plain ack fails and that is fine.
	_ = g.callAPI(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": cb.ID})
}

// commandName extracts the bare command from "/upload" or "/upload@SomeBot args".
func commandName(text string) string {
	cmd := strings.Fields(text)[0]
	cmd = strings.TrimPrefix(cmd, "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd
}

// bestPhoto picks the highest-resolution representation Telegram offers.
func bestPhoto(sizes []PhotoSize) string {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best.FileID
}
