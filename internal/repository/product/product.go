package productRepo

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

type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

func New(db persistence.Persistence, log *slog.Logger) ports.IProductRepo {
	return &Repository{db: db, Log: log}
}

func (r *Repository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0)
	if err := r.db.Select(ctx, &products, query, args...); err != nil {
		r.Log.Error("failed to list products", "error", err, "ordering", filter.Ordering)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID при availableOnly недоступный товар считается отсутствующим
func (r *Repository) GetByID(ctx context.Context, id int64, availableOnly bool) (*domain.Product, error) {
	query := selectProducts + ` WHERE p.id = $1`
	if availableOnly {
		query += ` AND p.is_available`
	}

	var product domain.Product
	if err := r.db.Get(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		r.Log.Error("failed to get product", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// Create заполняет ID и метки времени; несуществующая категория -> domain.ErrInvalidArgument
func (r *Repository) Create(ctx context.Context, product *domain.Product) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, category_id, description, price, image, is_available)
		SELECT $1, c.id, $3, $4, $5, $6 FROM categories c WHERE c.id = $2
		RETURNING id, created_at, updated_at, (SELECT name FROM categories WHERE id = $2)`,
		product.Name, product.CategoryID, product.Description, product.Price, product.Image, product.IsAvailable,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt, &product.CategoryName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: category %d does not exist", domain.ErrInvalidArgument, product.CategoryID)
		}
		r.Log.Error("failed to create product", "error", err, "name", product.Name)
		return fmt.Errorf("failed to create product: %w", err)
	}
	r.Log.Info("product created", "id", product.ID, "name", product.Name)
	return nil
}

// Update перезаписывает все поля и обновляет updated_at
func (r *Repository) Update(ctx context.Context, product *domain.Product) error {
	var exists bool
	if err := r.db.Get(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, product.CategoryID); err != nil {
		r.Log.Error("failed to check category", "error", err, "category_id", product.CategoryID)
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: category %d does not exist", domain.ErrInvalidArgument, product.CategoryID)
	}

	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET name = $2, category_id = $3, description = $4, price = $5, image = $6, is_available = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		product.ID, product.Name, product.CategoryID, product.Description, product.Price, product.Image, product.IsAvailable,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %d: %w", product.ID, domain.ErrNotFound)
		}
		r.Log.Error("failed to update product", "error", err, "id", product.ID)
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	affected, err := r.db.ExecWithResult(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.Log.Error("failed to delete product", "error", err, "id", id)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	r.Log.Info("product deleted", "id", id)
	return nil
}
