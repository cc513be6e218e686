package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Persistence общий набор запросов для соединения и транзакции
type Persistence interface {
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) error
	ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error)
	NamedExec(ctx context.Context, query string, arg interface{}) error
	QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

type Transaction interface {
	Persistence
	Commit() error
	Rollback() error
}

// Transactor то, что умеет открывать транзакции (реализует только pg.DB)
type Transactor interface {
	Persistence
	WithTransaction(ctx context.Context, fn func(context.Context, Transaction) error) error
	Ping(ctx context.Context) error
}
