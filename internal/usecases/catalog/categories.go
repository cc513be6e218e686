package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/ports/cache"
)

const (
	categoriesCacheKey    = "catalog:categories"
	maxCategoryNameLength = 100
)

// ListCategories с числом доступных товаров; при настроенном кэше читает из него
func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	if s.Cache != nil {
		if categories, ok := s.cachedCategories(ctx); ok {
			return categories, nil
		}
	}

	categories, err := s.Categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if s.Cache != nil {
		s.storeCategories(ctx, categories)
	}
	return categories, nil
}

func (s *Service) cachedCategories(ctx context.Context) ([]*domain.Category, bool) {
	raw, err := s.Cache.Get(ctx, categoriesCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.Log.Warn("category cache read failed", "error", err)
		}
		return nil, false
	}

	var categories []*domain.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		s.Log.Warn("category cache entry is corrupted", "error", err)
		return nil, false
	}
	return categories, true
}

func (s *Service) storeCategories(ctx context.Context, categories []*domain.Category) {
	raw, err := json.Marshal(categories)
	if err != nil {
		s.Log.Warn("failed to encode categories for cache", "error", err)
		return
	}
	if err := s.Cache.Set(ctx, categoriesCacheKey, raw, s.cacheTTL); err != nil {
		s.Log.Warn("category cache write failed", "error", err)
	}
}

// WarmCategoryCache пересчитывает закэшированный список категорий
func (s *Service) WarmCategoryCache(ctx context.Context) error {
	if s.Cache == nil {
		return nil
	}
	categories, err := s.Categories.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	raw, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	if err := s.Cache.Set(ctx, categoriesCacheKey, raw, s.cacheTTL); err != nil {
		return fmt.Errorf("failed to store categories: %w", err)
	}
	s.Log.Debug("category cache warmed", "count", len(categories))
	return nil
}

// invalidateCatalog любое изменение товаров или категорий меняет счётчики
func (s *Service) invalidateCatalog(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, categoriesCacheKey); err != nil {
		s.Log.Warn("failed to invalidate category cache", "error", err)
	}
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.Categories.GetByID(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	name, err := validateName(in.Name, maxCategoryNameLength)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{Name: name, Description: strings.TrimSpace(in.Description)}
	if err := s.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, patch domain.CategoryPatch) (*domain.Category, error) {
	category, err := s.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name, err := validateName(*patch.Name, maxCategoryNameLength)
		if err != nil {
			return nil, err
		}
		category.Name = name
	}
	if patch.Description != nil {
		category.Description = strings.TrimSpace(*patch.Description)
	}

	if err := s.Categories.Update(ctx, category); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.Categories.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func validateName(name string, maxLen int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > maxLen {
		return "", fmt.Errorf("%w: name is longer than %d characters", domain.ErrInvalidArgument, maxLen)
	}
	return name, nil
}
