package repository

import (
	"context"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
)

// ICategoryRepo категории вместе с числом доступных товаров
type ICategoryRepo interface {
	List(ctx context.Context) ([]*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	// Delete удаляет категорию вместе с её товарами
	Delete(ctx context.Context, id int64) error
}

type IProductRepo interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int64, availableOnly bool) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}
