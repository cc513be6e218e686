package kafka

import "context"

// MessageHandler обработчик сообщений consumer group.
// Бизнес-ошибки (domain.IsBusinessError) не ретраятся, сообщение помечается обработанным.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, value []byte) error
}
