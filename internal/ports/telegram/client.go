package telegram

import (
	"context"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
)

// IClient методы Bot API, которыми пользуется бот
type IClient interface {
	SendMessage(ctx context.Context, chatID int64, text string, buttons ...domain.InlineButton) error
	SetMyCommands(ctx context.Context, commands []domain.BotCommand) error
}
