package service

import (
	"context"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
)

// ICatalogClient API каталога со стороны бота
type ICatalogClient interface {
	// UpsertUser одна попытка регистрации, без повторов
	UpsertUser(ctx context.Context, in domain.UserUpsert) error
	// GetProduct возвращает domain.ErrNotFound для неизвестного или недоступного товара
	GetProduct(ctx context.Context, id int64) (*domain.ProductView, error)
}
