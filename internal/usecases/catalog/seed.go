package catalog

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/shopspring/decimal"
)

type seedCategory struct {
	name        string
	description string
}

type seedProduct struct {
	name        string
	category    int // индекс в demoCategories
	price       string
	description string
}

var demoCategories = []seedCategory{
	{"Telefonlar", "Smartfon va aksessuarlar"},
	{"Noutbuklar", "Laptoplar va periferiyalar"},
	{"Maishiy texnika", "Uy uchun texnika"},
}

var demoProducts = []seedProduct{
	{"iPhone 14", 0, "10990000.00", "Yangi iPhone 14, 128GB"},
	{"Samsung Galaxy S23", 0, "8990000.00", "Flagman smartfon"},
	{"Lenovo IdeaPad 3", 1, "6490000.00", "Talabalar uchun qulay noutbuk"},
	{"Dyson Changyutgich", 2, "3990000.00", "Kuchli changyutgich"},
}

// SeedResult сколько записей создано при этом запуске
type SeedResult struct {
	CategoriesCreated int
	ProductsCreated   int
}

// SeedDemo демо-данные; существующие записи (по имени) не трогает, повторный запуск ничего не создаёт
func (s *Service) SeedDemo(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	existing, err := s.Categories.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list categories: %w", err)
	}
	byName := make(map[string]int64, len(existing))
	for _, c := range existing {
		if _, ok := byName[c.Name]; !ok {
			byName[c.Name] = c.ID
		}
	}

	ids := make([]int64, len(demoCategories))
	for i, dc := range demoCategories {
		if id, ok := byName[dc.name]; ok {
			ids[i] = id
			continue
		}
		category, err := s.CreateCategory(ctx, domain.CategoryInput{Name: dc.name, Description: dc.description})
		if err != nil {
			return result, fmt.Errorf("failed to seed category %q: %w", dc.name, err)
		}
		ids[i] = category.ID
		result.CategoriesCreated++
	}

	for _, dp := range demoProducts {
		categoryID := ids[dp.category]
		products, err := s.Products.List(ctx, domain.ProductFilter{CategoryID: &categoryID})
		if err != nil {
			return result, fmt.Errorf("failed to list products: %w", err)
		}
		if containsProduct(products, dp.name) {
			continue
		}

		_, err = s.CreateProduct(ctx, domain.ProductInput{
			Name:        dp.name,
			CategoryID:  categoryID,
			Description: dp.description,
			Price:       decimal.RequireFromString(dp.price),
			IsAvailable: true,
		})
		if err != nil {
			return result, fmt.Errorf("failed to seed product %q: %w", dp.name, err)
		}
		result.ProductsCreated++
	}

	s.Log.Info("demo data seeded",
		"categories_created", result.CategoriesCreated,
		"products_created", result.ProductsCreated,
	)
	return result, nil
}

func containsProduct(products []*domain.Product, name string) bool {
	for _, p := range products {
		if p.Name == name {
			return true
		}
	}
	return false
}
