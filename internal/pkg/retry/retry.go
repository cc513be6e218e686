// Package retry ограниченное число попыток с экспоненциальной задержкой
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Policy struct {
	Attempts  int           // всего попыток, включая первую
	BaseDelay time.Duration // задержка перед второй попыткой, дальше удваивается
	MaxDelay  time.Duration // 0 - без ограничения
}

// permanentError ошибка, после которой повторять бессмысленно
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку как неповторяемую
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Delay задержка перед попыткой attempt (нумерация с 1, для первой попытки 0)
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 || p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay << (attempt - 2)
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		return p.MaxDelay
	}
	return d
}

// Do вызывает fn, пока она не вернёт nil, постоянную ошибку или не кончатся попытки.
// Возвращает число сделанных попыток и последнюю ошибку.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) (int, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if d := p.Delay(attempt); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempt - 1, fmt.Errorf("retry interrupted after %d attempts: %w", attempt-1, errors.Join(ctx.Err(), lastErr))
			case <-timer.C:
			}
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt, nil
		}
		if IsPermanent(lastErr) {
			return attempt, lastErr
		}
	}

	return attempts, lastErr
}
