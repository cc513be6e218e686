package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/google/uuid"
)

// UpsertUser создаёт пользователя по external_id или обновляет изменяемые поля.
// Второе значение - true, если запись создана. Гонка двух первых вставок
// разрешается в пользу обновления уже созданной записи. Регистрация,
// увиденная раньше уже сохранённой (повтор из dead-letter), поля не перетирает.
func (s *Service) UpsertUser(ctx context.Context, in domain.UserUpsert) (*domain.User, bool, error) {
	if in.ExternalID <= 0 {
		return nil, false, fmt.Errorf("%w: external_id must be positive", domain.ErrInvalidArgument)
	}
	in = normalizeUpsert(in)
	seenAt := s.seenAt(in)

	user, err := s.touchUser(ctx, in, seenAt)
	if !errors.Is(err, domain.ErrNotFound) {
		return user, false, err
	}

	user = &domain.User{
		ID:           uuid.New(),
		ExternalID:   in.ExternalID,
		Active:       true,
		RegisteredAt: seenAt,
	}
	user.Apply(in, seenAt)

	err = s.Users.Create(ctx, user)
	if errors.Is(err, domain.ErrAlreadyExists) {
		s.Log.Debug("concurrent registration, falling back to update", "external_id", in.ExternalID)
		user, err := s.touchUser(ctx, in, seenAt)
		if err != nil {
			return nil, false, fmt.Errorf("failed to update user after insert race: %w", err)
		}
		return user, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	s.Log.Info("user registered", "user_id", user.ID, "external_id", user.ExternalID)
	return user, true, nil
}

// touchUser domain.ErrNotFound возвращается без обёртки
func (s *Service) touchUser(ctx context.Context, in domain.UserUpsert, seenAt time.Time) (*domain.User, error) {
	user, applied, err := s.Users.Touch(ctx, in.ExternalID, in, seenAt)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if !applied {
		s.Log.Info("outdated registration ignored",
			"external_id", in.ExternalID,
			"observed_at", seenAt,
			"last_seen_at", user.LastSeenAt,
		)
		return user, nil
	}
	s.Log.Debug("user seen", "user_id", user.ID, "external_id", user.ExternalID)
	return user, nil
}

// seenAt время наблюдения из запроса, но не позже часов каталога
func (s *Service) seenAt(in domain.UserUpsert) time.Time {
	now := s.now()
	if in.ObservedAt == nil || in.ObservedAt.IsZero() || in.ObservedAt.After(now) {
		return now
	}
	return in.ObservedAt.UTC()
}

// normalizeUpsert обрезает пробелы, пустые строки -> nil
func normalizeUpsert(in domain.UserUpsert) domain.UserUpsert {
	in.Handle = trimmedOrNil(in.Handle)
	in.DisplayName = trimmedOrNil(in.DisplayName)
	in.Locale = trimmedOrNil(in.Locale)
	if in.Handle != nil {
		h := strings.TrimPrefix(*in.Handle, "@")
		in.Handle = &h
	}
	return in
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.Users.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.Users.GetByID(ctx, id)
}

// UpdateUser правка оператором; меняются только переданные поля, last_seen_at не меняется
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	patch.Handle = trimmed(patch.Handle)
	patch.DisplayName = trimmed(patch.DisplayName)
	patch.Locale = trimmed(patch.Locale)

	user, err := s.Users.Patch(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.Log.Info("user updated by operator", "user_id", user.ID, "active", user.Active)
	return user, nil
}

// trimmed nil остаётся nil: поле в правке не передано
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.Users.Delete(ctx, id)
}
