package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User пользователь Telegram в справочнике каталога.
// ExternalID - Telegram ID, ключ для upsert, после создания не меняется.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ExternalID   int64     `json:"external_id" db:"external_id"`
	Handle       *string   `json:"handle" db:"handle"`
	DisplayName  *string   `json:"display_name" db:"display_name"`
	Locale       *string   `json:"locale" db:"locale"`
	Active       bool      `json:"active" db:"active"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	LastSeenAt   time.Time `json:"last_seen_at" db:"last_seen_at"`
}

// UserUpsert входные данные регистрации пользователя.
// Используется и ботом (тело POST), и dead-letter сообщениями в Kafka.
// ObservedAt - когда бот увидел пользователя; пусто - время обработки в каталоге.
type UserUpsert struct {
	ExternalID  int64      `json:"external_id"`
	Handle      *string    `json:"handle,omitempty"`
	DisplayName *string    `json:"display_name,omitempty"`
	Locale      *string    `json:"locale,omitempty"`
	ObservedAt  *time.Time `json:"observed_at,omitempty"`
}

// UserPatch изменения, которые может внести оператор.
// nil - поле не меняется, пустая строка - значение сбрасывается в NULL.
type UserPatch struct {
	Handle      *string
	DisplayName *string
	Locale      *string
	Active      *bool
}

// Apply перезаписывает изменяемые поля пользователя данными upsert
func (u *User) Apply(in UserUpsert, seenAt time.Time) {
	u.Handle = in.Handle
	u.DisplayName = in.DisplayName
	u.Locale = in.Locale
	u.LastSeenAt = seenAt
}

// ApplyPatch правка оператора; last_seen_at не трогает
func (u *User) ApplyPatch(patch UserPatch) {
	if patch.Handle != nil {
		u.Handle = nullIfEmpty(*patch.Handle)
	}
	if patch.DisplayName != nil {
		u.DisplayName = nullIfEmpty(*patch.DisplayName)
	}
	if patch.Locale != nil {
		u.Locale = nullIfEmpty(*patch.Locale)
	}
	if patch.Active != nil {
		u.Active = *patch.Active
	}
}

// IsEmpty в правке нет ни одного поля
func (p UserPatch) IsEmpty() bool {
	return p.Handle == nil && p.DisplayName == nil && p.Locale == nil && p.Active == nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// JoinName склеивает имя и фамилию через пробел, пустой результат -> nil
func JoinName(first string, last *string) *string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(first); s != "" {
		parts = append(parts, s)
	}
	if last != nil {
		if s := strings.TrimSpace(*last); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	name := strings.Join(parts, " ")
	return &name
}
