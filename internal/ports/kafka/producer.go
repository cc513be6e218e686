package kafka

import "context"

// IProducer отправка сообщений в топик, заданный в конфиге продюсера
type IProducer interface {
	Send(ctx context.Context, key string, value []byte) error
	Close() error
}
