package messaging

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v4"

	"engagesphere/pkg/logx"
)

type TelegramConfig struct {
	Token string
}

// TelegramClient sends messages through a bot. Send-only: the bot never
// polls for updates. Without a token it simulates.
type TelegramClient struct {
	bot *tele.Bot
	log logx.Logger
}

func NewTelegramClient(cfg TelegramConfig, log logx.Logger) (*TelegramClient, error) {
	c := &TelegramClient{log: log}
	if cfg.Token == "" {
		return c, nil
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	c.bot = b
	return c, nil
}

func (c *TelegramClient) Send(ctx context.Context, chatID int64, text string) error {
	if c.bot == nil {
		c.log.Info("simulated telegram send", logx.Int64("chat", chatID))
		return nil
	}
	if chatID == 0 {
		return errors.New("telegram: user has no chat id")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Send(tele.ChatID(chatID), text)
	if err != nil {
		return err
	}
	c.log.Debug("telegram sent", logx.Int64("chat", chatID))
	return nil
}
