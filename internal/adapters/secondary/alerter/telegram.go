package alerter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/telegram"
)

// Client алерты через отдельного бота в чат (или топик форума) оператора
type Client struct {
	telegramClient  *telegram.Client
	chatID          int64
	messageThreadID *int64
	log             *slog.Logger
}

// NewClient выключенный конфиг -> nil-клиент
func NewClient(cfg *Config, log *slog.Logger) *Client {
	if !cfg.Enabled() {
		return nil
	}

	tgClient := telegram.NewClient(&telegram.Config{
		BotToken:   cfg.BotToken,
		APIBaseURL: cfg.APIBaseURL,
	}, log)

	return &Client{
		telegramClient:  tgClient,
		chatID:          cfg.ChatID,
		messageThreadID: cfg.MessageThreadID,
		log:             log,
	}
}

func (c *Client) SendAlert(ctx context.Context, message string) error {
	if c == nil || c.telegramClient == nil {
		return fmt.Errorf("alerter client is not initialized")
	}

	_, err := c.telegramClient.SendMessageWithRequest(ctx, telegram.SendMessageRequest{
		ChatID:                c.chatID,
		MessageThreadID:       c.messageThreadID,
		Text:                  message,
		DisableWebPagePreview: true,
	})
	if err != nil {
		c.log.Warn("failed to send alert",
			"error", err,
			"chat_id", c.chatID,
			"message_thread_id", c.messageThreadID,
		)
		return fmt.Errorf("failed to send alert: %w", err)
	}

	c.log.Debug("alert sent", "chat_id", c.chatID)
	return nil
}
