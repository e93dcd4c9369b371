package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers review notifications to the editorial chat.
type Notifier interface {
	SendMessage(text string) error
	SendPendingReviewDigest(items []PendingReviewItem) error
}

// client is an implementation of Notifier.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a new Telegram notifier client.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage sends a message to the configured Telegram chat.
func (c *client) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(msg)
	return err
}

// SendPendingReviewDigest formats and sends the batched review digest. An
// empty batch sends nothing.
func (c *client) SendPendingReviewDigest(items []PendingReviewItem) error {
	digest := FormatPendingReviewDigest(items)
	if digest == "" {
		return nil
	}
	return c.SendMessage(digest)
}
