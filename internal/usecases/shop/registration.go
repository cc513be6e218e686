package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/retry"
)

// Register регистрирует отправителя в каталоге с повторами.
// Ошибка никогда не возвращается: неудача уходит в dead-letter и в лог.
func (s *Service) Register(ctx context.Context, from *domain.TelegramUser) bool {
	in := from.ToUpsert()
	// повтор из dead-letter не должен перетереть более свежие данные
	observedAt := time.Now().UTC()
	in.ObservedAt = &observedAt

	attempts, err := retry.Do(ctx, s.registration.Retry, func(ctx context.Context, attempt int) error {
		attemptCtx := ctx
		if s.registration.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, s.registration.AttemptTimeout)
			defer cancel()
		}

		err := s.Catalog.UpsertUser(attemptCtx, in)
		if err != nil {
			s.Log.Warn("user registration attempt failed",
				"error", err,
				"external_id", in.ExternalID,
				"attempt", attempt,
			)
		}
		return err
	})
	if err == nil {
		s.Log.Debug("user registered", "external_id", in.ExternalID, "attempts", attempts)
		return true
	}

	s.deadLetter(ctx, in, attempts, err)
	return false
}

// deadLetter лог ERROR всегда; Kafka и алерт, если настроены
func (s *Service) deadLetter(ctx context.Context, in domain.UserUpsert, attempts int, cause error) {
	s.Log.Error("user registration dead-lettered",
		"error", cause,
		"external_id", in.ExternalID,
		"handle", in.Handle,
		"display_name", in.DisplayName,
		"locale", in.Locale,
		"attempts", attempts,
	)

	// контекст апдейта мог истечь, а публикация должна состояться
	ctx = context.WithoutCancel(ctx)

	if s.DeadLetters != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			s.Log.Error("failed to encode dead letter", "error", err, "external_id", in.ExternalID)
		} else if err := s.DeadLetters.Send(ctx, strconv.FormatInt(in.ExternalID, 10), payload); err != nil {
			s.Log.Error("failed to publish dead letter", "error", err, "external_id", in.ExternalID)
		}
	}

	if s.Alerter != nil {
		msg := fmt.Sprintf("User registration failed after %d attempts\nexternal_id: %d\nerror: %v",
			attempts, in.ExternalID, cause)
		if err := s.Alerter.SendAlert(ctx, msg); err != nil {
			s.Log.Warn("failed to send registration alert", "error", err)
		}
	}
}
