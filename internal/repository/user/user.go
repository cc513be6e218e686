package userRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/pg"
	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/ports/persistence"
	ports "github.com/admin/tg-bots/organic-shop/internal/ports/repository"
	"github.com/google/uuid"
)

type userColumns struct {
	TableName    string
	ID           string
	ExternalID   string
	Handle       string
	DisplayName  string
	Locale       string
	Active       string
	RegisteredAt string
	LastSeenAt   string
}

type Repository struct {
	db      persistence.Transactor
	Log     *slog.Logger
	columns userColumns
}

func New(db persistence.Transactor, log *slog.Logger) ports.IUserRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: userColumns{
			TableName:    "telegram_users",
			ID:           "id",
			ExternalID:   "external_id",
			Handle:       "handle",
			DisplayName:  "display_name",
			Locale:       "locale",
			Active:       "active",
			RegisteredAt: "registered_at",
			LastSeenAt:   "last_seen_at",
		},
	}
}

func (r *Repository) allColumns() string {
	return strings.Join([]string{
		r.columns.ID,
		r.columns.ExternalID,
		r.columns.Handle,
		r.columns.DisplayName,
		r.columns.Locale,
		r.columns.Active,
		r.columns.RegisteredAt,
		r.columns.LastSeenAt,
	}, ", ")
}

// Create вставляет пользователя, занятый external_id -> domain.ErrAlreadyExists
func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		user.ID,
		user.ExternalID,
		user.Handle,
		user.DisplayName,
		user.Locale,
		user.Active,
		user.RegisteredAt,
		user.LastSeenAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			r.Log.Debug("user already exists", "external_id", user.ExternalID)
			return fmt.Errorf("user with external_id %d: %w", user.ExternalID, domain.ErrAlreadyExists)
		}
		r.Log.Error("failed to create user", "error", err, "external_id", user.ExternalID)
		return fmt.Errorf("failed to create user: %w", err)
	}
	r.Log.Debug("user created", "id", user.ID, "external_id", user.ExternalID)
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, r.columns.ID, id)
}

func (r *Repository) GetByExternalID(ctx context.Context, externalID int64) (*domain.User, error) {
	return r.getOne(ctx, r.columns.ExternalID, externalID)
}

func (r *Repository) getOne(ctx context.Context, column string, value interface{}) (*domain.User, error) {
	var user domain.User
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		column)
	if err := r.db.Get(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s=%v: %w", column, value, domain.ErrNotFound)
		}
		r.Log.Error("failed to get user", "error", err, column, value)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// List пользователи от новых к старым
func (r *Repository) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0)
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC, %s`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.RegisteredAt,
		r.columns.ID)
	if err := r.db.Select(ctx, &users, query); err != nil {
		r.Log.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Touch строка блокируется до конца транзакции: параллельные upsert и правки
// оператора не перетирают чужие поля
func (r *Repository) Touch(ctx context.Context, externalID int64, in domain.UserUpsert, seenAt time.Time) (*domain.User, bool, error) {
	var (
		user    domain.User
		applied bool
	)

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
			r.allColumns(),
			r.columns.TableName,
			r.columns.ExternalID)
		if err := tx.Get(ctx, &user, query, externalID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("user external_id=%d: %w", externalID, domain.ErrNotFound)
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}

		if user.LastSeenAt.After(seenAt) {
			return nil
		}

		update := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5 WHERE %s = $1`,
			r.columns.TableName,
			r.columns.Handle,
			r.columns.DisplayName,
			r.columns.Locale,
			r.columns.LastSeenAt,
			r.columns.ID)
		if err := tx.Exec(ctx, update, user.ID, in.Handle, in.DisplayName, in.Locale, seenAt); err != nil {
			return fmt.Errorf("failed to touch user: %w", err)
		}
		user.Apply(in, seenAt)
		applied = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.Log.Error("failed to touch user", "error", err, "external_id", externalID)
		}
		return nil, false, err
	}

	if !applied {
		r.Log.Debug("stale registration skipped", "external_id", externalID, "seen_at", seenAt)
	}
	return &user, applied, nil
}

// Patch один UPDATE ... RETURNING только по переданным колонкам
func (r *Repository) Patch(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 4)
	args := []interface{}{id}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Handle != nil {
		set(r.columns.Handle, nullable(*patch.Handle))
	}
	if patch.DisplayName != nil {
		set(r.columns.DisplayName, nullable(*patch.DisplayName))
	}
	if patch.Locale != nil {
		set(r.columns.Locale, nullable(*patch.Locale))
	}
	if patch.Active != nil {
		set(r.columns.Active, *patch.Active)
	}

	var user domain.User
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1 RETURNING %s`,
		r.columns.TableName,
		strings.Join(sets, ", "),
		r.columns.ID,
		r.allColumns())
	if err := r.db.Get(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		r.Log.Error("failed to patch user", "error", err, "id", id)
		return nil, fmt.Errorf("failed to patch user: %w", err)
	}
	r.Log.Debug("user patched", "id", id, "columns", len(sets))
	return &user, nil
}

// nullable пустая строка -> NULL
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, r.columns.TableName, r.columns.ID)
	affected, err := r.db.ExecWithResult(ctx, query, id)
	if err != nil {
		r.Log.Error("failed to delete user", "error", err, "id", id)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	r.Log.Info("user deleted", "id", id)
	return nil
}
