package productRepo

import (
	"fmt"
	"strings"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
)

const selectProducts = `
	SELECT p.id, p.name, p.category_id, c.name AS category_name, p.description,
	       p.price, p.image, p.is_available, p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id`

// orderClauses белый список сортировок, id - стабильный тай-брейк
var orderClauses = map[domain.ProductOrdering]string{
	domain.OrderByPriceAsc:      "p.price ASC, p.id ASC",
	domain.OrderByPriceDesc:     "p.price DESC, p.id DESC",
	domain.OrderByCreatedAtAsc:  "p.created_at ASC, p.id ASC",
	domain.OrderByCreatedAtDesc: "p.created_at DESC, p.id DESC",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildListQuery собирает выборку товаров по фильтру; неизвестная сортировка -> domain.ErrInvalidArgument
func buildListQuery(filter domain.ProductFilter) (string, []interface{}, error) {
	ordering := filter.Ordering
	if ordering == "" {
		ordering = domain.DefaultProductOrdering
	}
	orderBy, ok := orderClauses[ordering]
	if !ok {
		return "", nil, fmt.Errorf("%w: unsupported ordering %q", domain.ErrInvalidArgument, ordering)
	}

	var (
		where []string
		args  []interface{}
	)
	if filter.AvailableOnly {
		where = append(where, "p.is_available")
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}

	var sb strings.Builder
	sb.WriteString(selectProducts)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderBy)

	return sb.String(), args, nil
}
