package alerter

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/alerter"
	"github.com/admin/tg-bots/organic-shop/internal/ports/service"
)

// Service добавляет к тексту алерта имя приложения
type Service struct {
	client *alerter.Client
	app    string
}

// New nil-клиент -> nil, вызывающие проверяют сервис на nil
func New(client *alerter.Client, app string) service.IAlerterService {
	if client == nil {
		return nil
	}
	return &Service{client: client, app: app}
}

func (s *Service) SendAlert(ctx context.Context, message string) error {
	return s.client.SendAlert(ctx, fmt.Sprintf("🚨 [%s]\n%s", s.app, message))
}
