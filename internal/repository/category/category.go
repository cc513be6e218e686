package categoryRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/ports/persistence"
	ports "github.com/admin/tg-bots/organic-shop/internal/ports/repository"
)

// selectCategories считает только доступные товары
const selectCategories = `
	SELECT c.id, c.name, c.description, c.created_at,
	       COUNT(p.id) FILTER (WHERE p.is_available) AS products_count
	FROM categories c
	LEFT JOIN products p ON p.category_id = c.id`

type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

func New(db persistence.Persistence, log *slog.Logger) ports.ICategoryRepo {
	return &Repository{db: db, Log: log}
}

func (r *Repository) List(ctx context.Context) ([]*domain.Category, error) {
	categories := make([]*domain.Category, 0)
	query := selectCategories + ` GROUP BY c.id ORDER BY c.name, c.id`
	if err := r.db.Select(ctx, &categories, query); err != nil {
		r.Log.Error("failed to list categories", "error", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var category domain.Category
	query := selectCategories + ` WHERE c.id = $1 GROUP BY c.id`
	if err := r.db.Get(ctx, &category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
		}
		r.Log.Error("failed to get category", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// Create заполняет ID и CreatedAt из RETURNING
func (r *Repository) Create(ctx context.Context, category *domain.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id, created_at`,
		category.Name, category.Description,
	).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		r.Log.Error("failed to create category", "error", err, "name", category.Name)
		return fmt.Errorf("failed to create category: %w", err)
	}
	r.Log.Info("category created", "id", category.ID, "name", category.Name)
	return nil
}

func (r *Repository) Update(ctx context.Context, category *domain.Category) error {
	affected, err := r.db.ExecWithResult(ctx,
		`UPDATE categories SET name = $2, description = $3 WHERE id = $1`,
		category.ID, category.Name, category.Description)
	if err != nil {
		r.Log.Error("failed to update category", "error", err, "id", category.ID)
		return fmt.Errorf("failed to update category: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", category.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete товары категории удаляются каскадом (FK ON DELETE CASCADE)
func (r *Repository) Delete(ctx context.Context, id int64) error {
	affected, err := r.db.ExecWithResult(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.Log.Error("failed to delete category", "error", err, "id", id)
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	r.Log.Info("category deleted", "id", id)
	return nil
}
