package storage

import (
	"context"
	"io"
)

// Object содержимое объекта медиа-хранилища, Body закрывает вызывающий
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// IMediaStorage хранилище картинок товаров.
// Open возвращает domain.ErrNotFound, если объекта нет.
type IMediaStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (*Object, error)
	Remove(ctx context.Context, key string) error
}
