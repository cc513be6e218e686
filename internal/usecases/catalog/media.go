package catalog

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/ports/storage"
	"github.com/google/uuid"
)

const maxImageSize = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ErrMediaDisabled хранилище медиа не настроено
var ErrMediaDisabled = fmt.Errorf("%w: media storage is not configured", domain.ErrInvalidArgument)

// UploadProductImage кладёт картинку в хранилище и заменяет ею старую
func (s *Service) UploadProductImage(ctx context.Context, productID int64, body io.Reader, size int64, contentType string) (*domain.Product, error) {
	if s.Media == nil {
		return nil, ErrMediaDisabled
	}
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidArgument, contentType)
	}
	if size <= 0 || size > maxImageSize {
		return nil, fmt.Errorf("%w: image size must be between 1 byte and %d bytes", domain.ErrInvalidArgument, maxImageSize)
	}

	product, err := s.Products.GetByID(ctx, productID, false)
	if err != nil {
		return nil, err
	}

	key := path.Join("products", fmt.Sprintf("%d", productID), uuid.NewString()+ext)
	if err := s.Media.Put(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	previous := product.Image
	product.Image = &key
	if err := s.Products.Update(ctx, product); err != nil {
		s.removeMedia(ctx, key)
		return nil, err
	}

	if previous != nil && *previous != key {
		s.removeMedia(ctx, *previous)
	}
	s.Log.Info("product image uploaded", "product_id", productID, "key", key)
	return product, nil
}

// OpenMedia объект медиа-хранилища по ключу
func (s *Service) OpenMedia(ctx context.Context, key string) (*storage.Object, error) {
	if s.Media == nil {
		return nil, fmt.Errorf("media %s: %w", key, domain.ErrNotFound)
	}
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" {
		return nil, fmt.Errorf("%w: empty media key", domain.ErrInvalidArgument)
	}
	return s.Media.Open(ctx, key)
}

func (s *Service) removeMedia(ctx context.Context, key string) {
	if s.Media == nil {
		return
	}
	if err := s.Media.Remove(ctx, key); err != nil {
		s.Log.Warn("failed to remove media object", "error", err, "key", key)
	}
}
