package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	kafkaPorts "github.com/admin/tg-bots/organic-shop/internal/ports/kafka"
)

// UserUpserter часть use case каталога, нужная для повтора регистрации
type UserUpserter interface {
	UpsertUser(ctx context.Context, in domain.UserUpsert) (*domain.User, bool, error)
}

// RegistrationHandler повторяет регистрации, которые бот не смог доставить
type RegistrationHandler struct {
	Users UserUpserter
	Log   *slog.Logger
}

func NewRegistrationHandler(users UserUpserter, log *slog.Logger) kafkaPorts.MessageHandler {
	return &RegistrationHandler{
		Users: users,
		Log:   log,
	}
}

// HandleMessage битое сообщение - бизнес-ошибка, повторять его нет смысла
func (h *RegistrationHandler) HandleMessage(ctx context.Context, key string, value []byte) error {
	var in domain.UserUpsert
	if err := json.Unmarshal(value, &in); err != nil {
		h.Log.Warn("skipping malformed registration", "error", err, "key", key)
		return domain.WrapBusinessError(fmt.Errorf("unmarshal registration: %w", err))
	}
	if in.ExternalID <= 0 {
		h.Log.Warn("skipping registration without external_id", "key", key)
		return domain.WrapBusinessError(fmt.Errorf("%w: external_id is required", domain.ErrInvalidArgument))
	}

	user, created, err := h.Users.UpsertUser(ctx, in)
	if err != nil {
		return fmt.Errorf("replay registration %d: %w", in.ExternalID, err)
	}

	h.Log.Info("dead-lettered registration replayed",
		"external_id", in.ExternalID,
		"user_id", user.ID,
		"created", created,
	)
	return nil
}
