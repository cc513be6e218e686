package service

import (
	"context"
)

// IAlerterService алерты в чат оператора
type IAlerterService interface {
	SendAlert(ctx context.Context, message string) error
}
