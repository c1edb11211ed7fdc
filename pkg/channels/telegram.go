package channels

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
)

type telegramSender struct {
	bot *bot.Bot
}

// NewTelegram builds a sender backed by the Telegram bot API.
func NewTelegram(token string) (Sender, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, err
	}
	return &telegramSender{bot: b}, nil
}

func (t *telegramSender) Name() string { return "telegram" }

func (t *telegramSender) Send(ctx context.Context, recipient, text string) error {
	var chatID any = recipient
	if id, err := strconv.ParseInt(recipient, 10, 64); err == nil {
		chatID = id
	}
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}
