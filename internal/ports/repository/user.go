package repository

import (
	"context"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/google/uuid"
)

// IUserRepo справочник пользователей бота.
// Create возвращает domain.ErrAlreadyExists, если external_id уже занят,
// методы чтения и изменения возвращают domain.ErrNotFound.
//
// Touch - запись upsert: атомарно меняет handle, display_name, locale и
// last_seen_at, active не трогает. Если сохранённый last_seen_at новее seenAt,
// запись не меняется и возвращается false.
// Patch - запись оператора: меняет только переданные поля, last_seen_at не трогает.
type IUserRepo interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Touch(ctx context.Context, externalID int64, in domain.UserUpsert, seenAt time.Time) (*domain.User, bool, error)
	Patch(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
