package service

import (
	"context"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
)

// IBotService обработчики команд бота магазина
type IBotService interface {
	HandleStart(ctx context.Context, msg *domain.Message, payload string) error
	HandleHelp(ctx context.Context, msg *domain.Message) error
	HandleText(ctx context.Context, msg *domain.Message) error
}
