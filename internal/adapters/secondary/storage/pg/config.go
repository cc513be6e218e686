package pg

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	maxOpenConnections = 25
	maxIdleConnections = 5
	connMaxLifetime    = 5 * time.Minute
	connMaxIdleTime    = 1 * time.Minute
)

type Config struct {
	Host                   string `envconfig:"HOST" default:"localhost"`
	Port                   string `envconfig:"PORT" default:"5432"`
	Username               string `envconfig:"USERNAME" default:"postgres"`
	Password               string `envconfig:"PASSWORD"`
	Database               string `envconfig:"DATABASE" default:"organic_shop"`
	SSLMode                string `envconfig:"SSL_MODE" default:"disable"`
	StatementTimeoutMillis int    `envconfig:"STATEMENT_TIMEOUT" default:"30000"`
}

func (c *Config) dsn() string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		c.Host,
		c.Port,
		c.Username,
		c.Database,
		c.Password,
		c.SSLMode,
	)
}

// NewConnection пул соединений через pgx stdlib, statement_timeout задаётся параметром рантайма
func (c *Config) NewConnection() (*sqlx.DB, error) {
	connConfig, err := pgx.ParseConfig(c.dsn())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	if c.StatementTimeoutMillis > 0 {
		connConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", c.StatementTimeoutMillis)
	}

	db, err := sqlx.Connect("pgx", stdlib.RegisterConnConfig(connConfig))
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConnections)
	db.SetMaxIdleConns(maxIdleConnections)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	return db, nil
}
