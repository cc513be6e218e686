package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
)

const (
	commandStart = "start"
	commandHelp  = "help"
)

// HandleUpdate Основной метод для обработки всех типов обновлений.
// Сообщения одного чата не обрабатываются параллельно: webhook может прислать их одновременно
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}

	if update.Message != nil {
		if update.Message.Chat != nil {
			unlock := s.chats.lock(update.Message.Chat.ID)
			defer unlock()
		}
		return s.HandleMessage(ctx, update.Message, update.UpdateID)
	}

	return nil
}

// HandleMessage обрабатывает входящее сообщение - роутинг в usecase
func (s *Service) HandleMessage(ctx context.Context, message *domain.Message, updateID int64) error {
	if message.From == nil || message.From.IsBot {
		s.Log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}

	if message.Chat == nil || message.Chat.Type != "private" {
		chatType := ""
		if message.Chat != nil {
			chatType = message.Chat.Type
		}
		s.Log.Debug("ignoring message from group/chat",
			"update_id", updateID,
			"chat_type", chatType,
		)
		return nil
	}

	if message.Text == nil {
		return nil
	}

	text := strings.TrimSpace(*message.Text)
	if !IsCommand(text, message.Entities) {
		return s.Bot.HandleText(ctx, message)
	}

	command, payload := ParseCommand(text)
	s.Log.Debug("command received",
		"command", command,
		"external_id", message.From.ID,
		"update_id", updateID,
	)

	switch command {
	case commandStart:
		return s.Bot.HandleStart(ctx, message, payload)
	case commandHelp:
		return s.Bot.HandleHelp(ctx, message)
	default:
		return s.Bot.HandleText(ctx, message)
	}
}

// ParseCommand "/start@shop_bot buy_7" -> ("start", "buy_7")
func ParseCommand(text string) (string, string) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "/")

	command, payload, _ := strings.Cut(text, " ")
	if idx := strings.Index(command, "@"); idx != -1 {
		command = command[:idx]
	}

	return strings.ToLower(command), strings.TrimSpace(payload)
}

// IsCommand команда - bot_command в начале текста; без entities смотрим на "/"
func IsCommand(text string, entities []domain.Entity) bool {
	for _, e := range entities {
		if e.Type == "bot_command" && e.Offset == 0 {
			return true
		}
	}
	return len(entities) == 0 && len(text) > 1 && text[0] == '/'
}
