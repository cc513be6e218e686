package telegram

import (
	"log/slog"
	"sync"

	"github.com/admin/tg-bots/organic-shop/internal/ports/service"
)

type Service struct {
	Bot service.IBotService
	Log *slog.Logger

	chats chatLocks
}

func New(bot service.IBotService, log *slog.Logger) *Service {
	return &Service{
		Bot: bot,
		Log: log,
	}
}

// chatLocks один обработчик на чат; запись удаляется, когда чат никто не ждёт
type chatLocks struct {
	mu    sync.Mutex
	locks map[int64]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

func (l *chatLocks) lock(chatID int64) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*chatLock)
	}
	c, ok := l.locks[chatID]
	if !ok {
		c = &chatLock{}
		l.locks[chatID] = c
	}
	c.refs++
	l.mu.Unlock()

	c.mu.Lock()
	return func() {
		c.mu.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()
		c.refs--
		if c.refs == 0 {
			delete(l.locks, chatID)
		}
	}
}
