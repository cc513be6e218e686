package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category категория товаров
type Category struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	CreatedAt     time.Time `db:"created_at"`
	ProductsCount int64     `db:"products_count"` // только доступные товары, вычисляется при чтении
}

// Product товар каталога
type Product struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	CategoryID   int64           `db:"category_id"`
	CategoryName string          `db:"category_name"`
	Description  string          `db:"description"`
	Price        decimal.Decimal `db:"price"`
	Image        *string         `db:"image"` // ключ объекта в хранилище медиа
	IsAvailable  bool            `db:"is_available"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// FormatPrice цена с двумя знаками после запятой: 10990000.00
func FormatPrice(price decimal.Decimal) string {
	return price.StringFixed(2)
}

// ProductOrdering сортировка списка товаров
type ProductOrdering string

const (
	OrderByPriceAsc      ProductOrdering = "price"
	OrderByPriceDesc     ProductOrdering = "-price"
	OrderByCreatedAtAsc  ProductOrdering = "created_at"
	OrderByCreatedAtDesc ProductOrdering = "-created_at"

	DefaultProductOrdering = OrderByCreatedAtDesc
)

// ParseProductOrdering пустая строка -> сортировка по умолчанию
func ParseProductOrdering(s string) (ProductOrdering, error) {
	switch o := ProductOrdering(s); o {
	case "":
		return DefaultProductOrdering, nil
	case OrderByPriceAsc, OrderByPriceDesc, OrderByCreatedAtAsc, OrderByCreatedAtDesc:
		return o, nil
	default:
		return "", fmt.Errorf("%w: unsupported ordering %q", ErrInvalidArgument, s)
	}
}

// ProductFilter параметры выборки товаров
type ProductFilter struct {
	AvailableOnly bool
	CategoryID    *int64
	Search        string
	Ordering      ProductOrdering
}

// CategoryInput поля категории, которые задаёт администратор
type CategoryInput struct {
	Name        string
	Description string
}

// ProductInput поля товара, которые задаёт администратор
type ProductInput struct {
	Name        string
	CategoryID  int64
	Description string
	Price       decimal.Decimal
	IsAvailable bool
}

// ProductPatch частичное изменение товара (nil - поле не меняется)
type ProductPatch struct {
	Name        *string
	CategoryID  *int64
	Description *string
	Price       *decimal.Decimal
	IsAvailable *bool
}

// TelegramConfig хэндлы, из которых строится ссылка на заказ
type TelegramConfig struct {
	BotUsername   string
	AdminUsername string
}

// CategoryPatch частичное изменение категории
type CategoryPatch struct {
	Name        *string
	Description *string
}

// ProductView товар в ответе API каталога.
// Price всегда с двумя знаками после запятой, TelegramOrderLink отсутствует, если ссылку не из чего построить.
type ProductView struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Category          int64     `json:"category"`
	CategoryName      string    `json:"category_name"`
	Description       string    `json:"description"`
	Price             string    `json:"price"`
	Image             *string   `json:"image"`
	IsAvailable       bool      `json:"is_available"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	TelegramOrderLink *string   `json:"telegram_order_link,omitempty"`
}

// PriceDecimal разбирает Price обратно в decimal
func (p *ProductView) PriceDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(p.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad price %q", ErrInvalidArgument, p.Price)
	}
	return d, nil
}

// CategoryView категория в ответе API каталога
type CategoryView struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ProductsCount int64     `json:"products_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewCategoryView(c *Category) CategoryView {
	return CategoryView{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		ProductsCount: c.ProductsCount,
		CreatedAt:     c.CreatedAt,
	}
}
