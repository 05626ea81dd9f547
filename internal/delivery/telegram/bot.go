package telegram

import (
	"context"
	"strings"
	"sync"

	"github.com/NasaVasa/reservewatch/internal/notify"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	handlers    *Handlers
	pollTimeout int
}

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func NewBot(api *tgbotapi.BotAPI, handlers *Handlers, pollTimeout int) *Bot {
	return &Bot{api: api, handlers: handlers, pollTimeout: pollTimeout}
}

func (b *Bot) Start(ctx context.Context) error {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(config)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handlers.HandleUpdate(ctx, b.api, update)
		}
	}
}

// Sender is the part of the bot API used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers notifications to one chat. A notification with a tag that
// was already delivered edits that message instead of posting a new one.
type Notifier struct {
	api    Sender
	chatID int64
	logger *zap.Logger

	mu       sync.Mutex
	messages map[string]int
}

func NewNotifier(api Sender, chatID int64, logger *zap.Logger) *Notifier {
	return &Notifier{api: api, chatID: chatID, logger: logger, messages: make(map[string]int)}
}

func (n *Notifier) Name() string { return "telegram" }

func (n *Notifier) Send(ctx context.Context, notification notify.Notification) error {
	text := formatNotification(notification)

	n.mu.Lock()
	defer n.mu.Unlock()

	if messageID, ok := n.messages[notification.Tag]; ok {
		edit := tgbotapi.NewEditMessageText(n.chatID, messageID, text)
		_, err := n.api.Send(edit)
		if err == nil || strings.Contains(err.Error(), "message is not modified") {
			n.logger.Info("telegram notification replaced", zap.String("tag", notification.Tag), zap.Int("message_id", messageID))
			return nil
		}
		// The old message may have been deleted by the user; post a new one.
		n.logger.Warn("failed to edit notification", zap.String("tag", notification.Tag), zap.Error(err))
	}

	sent, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text))
	if err != nil {
		n.logger.Warn("failed to notify", zap.Int64("chat_id", n.chatID), zap.String("tag", notification.Tag), zap.Error(err))
		return err
	}
	n.messages[notification.Tag] = sent.MessageID
	n.logger.Info("telegram notification sent", zap.Int64("chat_id", n.chatID), zap.String("tag", notification.Tag))
	return nil
}

func formatNotification(n notify.Notification) string {
	var builder strings.Builder
	builder.WriteString(n.Title)
	if n.Body != "" {
		builder.WriteString("\n")
		builder.WriteString(n.Body)
	}
	if n.Link != "" {
		builder.WriteString("\n")
		builder.WriteString(n.Link)
	}
	return builder.String()
}
