// Package telegram is chatrelay's Telegram intake channel: it turns an
// inbound Telegram Bot API webhook update into a call against the Message
// Handler (orchestrator.Handler), appending the new message to the
// conversation's stored history in the <USER>/<br> markup history.Parse
// expects (spec §4.2). Outbound delivery of the AI's decision is not this
// package's concern — that happens generically over HTTP through the
// conversation's configured Platform (dispatch.Dispatcher), not through
// the Telegram SDK.
package telegram

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/orchestrator"
	"github.com/hrygo/chatrelay/store"
)

// Config holds the Telegram channel's own configuration.
type Config struct {
	BotToken string
}

// Intake receives Telegram webhook updates and drives the orchestrator.
type Intake struct {
	bot     *tgbotapi.BotAPI
	db      *store.Store
	handler *orchestrator.Handler
}

// New constructs an Intake channel. The bot token authenticates outbound
// webhook management calls (SetWebhook/DeleteWebhook), not message replies.
func New(cfg Config, db *store.Store, handler *orchestrator.Handler) (*Intake, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, errors.Wrap(err, "telegram: failed to create bot client")
	}
	return &Intake{bot: bot, db: db, handler: handler}, nil
}

// HandleWebhook parses an inbound Telegram update, appends its text to the
// conversation's stored history, and runs it through the orchestrator.
func (in *Intake) HandleWebhook(ctx context.Context, r *http.Request) (*orchestrator.Response, error) {
	if !VerifyRequest(r) {
		return nil, errors.New("telegram: request failed verification")
	}
	defer r.Body.Close()

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return nil, errors.Wrap(err, "telegram: failed to decode update")
	}

	chatID := ExtractChatID(&update)
	if chatID == "" {
		return nil, errors.New("telegram: update carries no chat id")
	}

	text := messageText(&update)

	conv, err := in.db.GetConversationByExternalID(ctx, chatID)
	botID := ""
	fullHistory := ""
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrap(err, "telegram: failed to look up conversation")
		}
		created, cerr := in.db.CreateConversation(ctx, &store.Conversation{ConversationID: chatID})
		if cerr != nil {
			return nil, errors.Wrap(cerr, "telegram: failed to create conversation")
		}
		conv = created
	} else {
		botID = conv.BotID
		fullHistory = conv.History
	}

	newHistory := fullHistory + "<USER>" + text + "</USER><br>"

	resp := in.handler.Handle(ctx, orchestrator.Request{
		ConversationID: chatID,
		History:        newHistory,
		BotID:          botID,
	})

	newCount := conv.MessageCount + resp.ConsolidatedMessages
	if _, err := in.db.UpdateConversation(ctx, &store.UpdateConversation{
		ID:           conv.ID,
		History:      &newHistory,
		MessageCount: &newCount,
	}); err != nil {
		slog.Error("telegram: failed to persist conversation history", "chat_id", chatID, "error", err)
	}

	return resp, nil
}

func messageText(update *tgbotapi.Update) string {
	switch {
	case update.Message != nil:
		return update.Message.Text
	case update.EditedMessage != nil:
		return update.EditedMessage.Text
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Text
	default:
		return ""
	}
}

// SetWebhook registers webhookURL with Telegram as this bot's update sink.
func (in *Intake) SetWebhook(webhookURL string, dropPendingUpdates bool) error {
	parsed, err := url.Parse(webhookURL)
	if err != nil {
		return errors.Wrap(err, "telegram: invalid webhook url")
	}
	_, err = in.bot.Request(tgbotapi.WebhookConfig{URL: parsed, DropPendingUpdates: dropPendingUpdates})
	return err
}

// DeleteWebhook removes the currently registered webhook.
func (in *Intake) DeleteWebhook() error {
	_, err := in.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true})
	return err
}

// GetWebhookInfo reports the currently registered webhook, if any.
func (in *Intake) GetWebhookInfo() (tgbotapi.WebhookInfo, error) {
	return in.bot.GetWebhookInfo()
}

// VerifyRequest checks that an inbound HTTP request plausibly came from
// Telegram. The Bot API does not sign webhook payloads, so verification is
// limited to method and content type.
func VerifyRequest(r *http.Request) bool {
	if r.Method != http.MethodPost {
		slog.Warn("telegram webhook: invalid method", "method", r.Method, "remote_addr", r.RemoteAddr)
		return false
	}
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		slog.Warn("telegram webhook: invalid content type", "content_type", ct, "remote_addr", r.RemoteAddr)
		return false
	}
	return true
}

// ExtractChatID extracts the chat id from a Telegram update.
func ExtractChatID(update *tgbotapi.Update) string {
	var chat *tgbotapi.Chat
	switch {
	case update.Message != nil:
		chat = update.Message.Chat
	case update.EditedMessage != nil:
		chat = update.EditedMessage.Chat
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chat = update.CallbackQuery.Message.Chat
	}
	if chat != nil {
		return strconv.FormatInt(chat.ID, 10)
	}
	return ""
}
