package notification

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// Sender delivers a text message to a tenant chat
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// TelegramSender posts messages through a Telegram bot
type TelegramSender struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramSender(token string) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}
	return &TelegramSender{bot: bot}, nil
}

func (t *TelegramSender) Send(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}
	return nil
}
