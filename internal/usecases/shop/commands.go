package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/orderlink"
)

// HandleStart /start [payload]; payload buy_<id> показывает сводку заказа
func (s *Service) HandleStart(ctx context.Context, msg *domain.Message, payload string) error {
	s.registerSender(ctx, msg)

	if productID, ok := orderlink.ParseStartPayload(strings.TrimSpace(payload)); ok {
		return s.replyOrder(ctx, msg.Chat.ID, productID)
	}
	return s.reply(ctx, msg.Chat.ID, welcomeText)
}

func (s *Service) HandleHelp(ctx context.Context, msg *domain.Message) error {
	s.registerSender(ctx, msg)
	return s.reply(ctx, msg.Chat.ID, helpText)
}

// HandleText любой текст вне команд получает справку
func (s *Service) HandleText(ctx context.Context, msg *domain.Message) error {
	return s.HandleHelp(ctx, msg)
}

func (s *Service) registerSender(ctx context.Context, msg *domain.Message) {
	if msg.From == nil {
		return
	}
	s.Register(ctx, msg.From)
}

func (s *Service) replyOrder(ctx context.Context, chatID int64, productID int64) error {
	product, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.Log.Warn("failed to fetch product for order", "error", err, "product_id", productID)
		}
		return s.reply(ctx, chatID, productNotFoundText)
	}

	price, err := product.PriceDecimal()
	if err != nil {
		s.Log.Warn("catalog returned malformed price", "error", err, "product_id", productID)
		return s.reply(ctx, chatID, productNotFoundText)
	}

	return s.reply(ctx, chatID, orderSummaryText(product.Name, product.ID, price))
}

// reply текст с кнопкой витрины (если витрина задана)
func (s *Service) reply(ctx context.Context, chatID int64, text string) error {
	var buttons []domain.InlineButton
	if s.storefrontURL != "" {
		buttons = append(buttons, domain.InlineButton{
			Text:   orderButtonText,
			URL:    s.storefrontURL,
			WebApp: s.webApp,
		})
	}

	if err := s.Telegram.SendMessage(ctx, chatID, text, buttons...); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// BotCommands меню команд бота
func BotCommands() []domain.BotCommand {
	return []domain.BotCommand{
		{Command: "start", Description: "Do'kon bilan tanishish"},
		{Command: "help", Description: "Yordam"},
	}
}
