package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/shopspring/decimal"
)

const maxProductNameLength = 200

// NUMERIC(10, 2)
var maxPrice = decimal.RequireFromString("99999999.99")

// ListProducts публичная выборка: только доступные товары
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	filter.AvailableOnly = true
	return s.Products.List(ctx, filter)
}

// ListAllProducts выборка для администратора, включая скрытые товары
func (s *Service) ListAllProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	filter.AvailableOnly = false
	return s.Products.List(ctx, filter)
}

// GetProduct недоступный товар -> domain.ErrNotFound
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.Products.GetByID(ctx, id, true)
}

func (s *Service) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	name, err := validateName(in.Name, maxProductNameLength)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        name,
		CategoryID:  in.CategoryID,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		IsAvailable: in.IsAvailable,
	}
	if err := s.Products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	s.Log.Info("product created", "id", product.ID, "name", product.Name)
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := s.Products.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name, err := validateName(*patch.Name, maxProductNameLength)
		if err != nil {
			return nil, err
		}
		product.Name = name
	}
	if patch.CategoryID != nil {
		product.CategoryID = *patch.CategoryID
	}
	if patch.Description != nil {
		product.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		product.Price = *patch.Price
	}
	if patch.IsAvailable != nil {
		product.IsAvailable = *patch.IsAvailable
	}

	if err := s.Products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.Products.GetByID(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.Products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	if product.Image != nil {
		s.removeMedia(ctx, *product.Image)
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidArgument)
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: price has more than 2 decimal places", domain.ErrInvalidArgument)
	}
	if price.GreaterThan(maxPrice) {
		return fmt.Errorf("%w: price exceeds %s", domain.ErrInvalidArgument, maxPrice.StringFixed(2))
	}
	return nil
}

// ProductView ответ API: абсолютная ссылка на картинку и ссылка на заказ.
// mediaBaseURL - "<scheme>://<host>/media" без завершающего слеша.
func (s *Service) ProductView(p *domain.Product, mediaBaseURL string) domain.ProductView {
	view := domain.ProductView{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.CategoryID,
		CategoryName: p.CategoryName,
		Description:  p.Description,
		Price:        domain.FormatPrice(p.Price),
		IsAvailable:  p.IsAvailable,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Image != nil && *p.Image != "" {
		url := mediaBaseURL + "/" + strings.TrimPrefix(*p.Image, "/")
		view.Image = &url
	}
	if link, ok := s.links.Build(p.Name, p.ID, p.Price); ok {
		view.TelegramOrderLink = &link
	}
	return view
}
