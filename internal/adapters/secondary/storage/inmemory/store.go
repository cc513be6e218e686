package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	ports "github.com/admin/tg-bots/organic-shop/internal/ports/repository"
	"github.com/google/uuid"
)

// Store хранилище каталога в памяти процесса (CATALOG_STORAGE_DRIVER=memory).
// Ограничения те же, что у схемы postgres: уникальный external_id, каскадное удаление товаров.
type Store struct {
	mu sync.RWMutex

	now func() time.Time

	categories     map[int64]domain.Category
	products       map[int64]domain.Product
	users          map[uuid.UUID]domain.User
	userByExternal map[int64]uuid.UUID

	nextCategoryID int64
	nextProductID  int64
}

func NewStore() *Store {
	return &Store{
		now:            func() time.Time { return time.Now().UTC() },
		categories:     make(map[int64]domain.Category),
		products:       make(map[int64]domain.Product),
		users:          make(map[uuid.UUID]domain.User),
		userByExternal: make(map[int64]uuid.UUID),
	}
}

func (s *Store) Users() ports.IUserRepo          { return (*userRepo)(s) }
func (s *Store) Categories() ports.ICategoryRepo { return (*categoryRepo)(s) }
func (s *Store) Products() ports.IProductRepo    { return (*productRepo)(s) }

// Ping всегда успешен, нужен для /ready
func (s *Store) Ping(context.Context) error { return nil }

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.userByExternal[user.ExternalID]; ok {
		return domain.ErrAlreadyExists
	}
	r.users[user.ID] = *user
	r.userByExternal[user.ExternalID] = user.ID
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByExternalID(_ context.Context, externalID int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.userByExternal[externalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user := r.users[id]
	return &user, nil
}

func (r *userRepo) List(context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].RegisteredAt.Equal(users[j].RegisteredAt) {
			return users[i].RegisteredAt.After(users[j].RegisteredAt)
		}
		return users[i].ID.String() < users[j].ID.String()
	})
	return users, nil
}

func (r *userRepo) Touch(_ context.Context, externalID int64, in domain.UserUpsert, seenAt time.Time) (*domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.userByExternal[externalID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	stored := r.users[id]
	if stored.LastSeenAt.After(seenAt) {
		return &stored, false, nil
	}
	stored.Apply(in, seenAt)
	r.users[id] = stored
	return &stored, true, nil
}

func (r *userRepo) Patch(_ context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	stored.ApplyPatch(patch)
	r.users[id] = stored
	return &stored, nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	delete(r.userByExternal, user.ExternalID)
	return nil
}

type categoryRepo Store

// withCount вызывается под блокировкой
func (r *categoryRepo) withCount(c domain.Category) *domain.Category {
	c.ProductsCount = 0
	for _, p := range r.products {
		if p.CategoryID == c.ID && p.IsAvailable {
			c.ProductsCount++
		}
	}
	return &c
}

func (r *categoryRepo) List(context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, r.withCount(c))
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (r *categoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.withCount(c), nil
}

func (r *categoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextCategoryID++
	category.ID = r.nextCategoryID
	category.CreatedAt = r.now()
	category.ProductsCount = 0
	r.categories[category.ID] = *category
	return nil
}

func (r *categoryRepo) Update(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.categories[category.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Name = category.Name
	stored.Description = category.Description
	r.categories[category.ID] = stored

	for id, p := range r.products {
		if p.CategoryID == category.ID {
			p.CategoryName = category.Name
			r.products[id] = p
		}
	}
	return nil
}

func (r *categoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.categories, id)
	for pid, p := range r.products {
		if p.CategoryID == id {
			delete(r.products, pid)
		}
	}
	return nil
}

type productRepo Store

func (r *productRepo) List(_ context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	less, err := productLess(filter.Ordering)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.AvailableOnly && !p.IsAvailable {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		p := p
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool { return less(products[i], products[j]) })
	return products, nil
}

func productLess(ordering domain.ProductOrdering) (func(a, b *domain.Product) bool, error) {
	if ordering == "" {
		ordering = domain.DefaultProductOrdering
	}
	switch ordering {
	case domain.OrderByPriceAsc:
		return func(a, b *domain.Product) bool {
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c < 0
			}
			return a.ID < b.ID
		}, nil
	case domain.OrderByPriceDesc:
		return func(a, b *domain.Product) bool {
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c > 0
			}
			return a.ID > b.ID
		}, nil
	case domain.OrderByCreatedAtAsc:
		return func(a, b *domain.Product) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		}, nil
	case domain.OrderByCreatedAtDesc:
		return func(a, b *domain.Product) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}, nil
	default:
		_, err := domain.ParseProductOrdering(string(ordering))
		return nil, err
	}
}

func (r *productRepo) GetByID(_ context.Context, id int64, availableOnly bool) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok || (availableOnly && !p.IsAvailable) {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.categories[product.CategoryID]
	if !ok {
		return domain.ErrInvalidArgument
	}
	r.nextProductID++
	now := r.now()
	product.ID = r.nextProductID
	product.CategoryName = category.Name
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

func (r *productRepo) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	category, ok := r.categories[product.CategoryID]
	if !ok {
		return domain.ErrInvalidArgument
	}
	product.CategoryName = category.Name
	product.CreatedAt = stored.CreatedAt
	product.UpdatedAt = r.now()
	r.products[product.ID] = *product
	return nil
}

func (r *productRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}
