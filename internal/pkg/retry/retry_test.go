package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPolicy_Delay(t *testing.T) {
	p := Policy{Attempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}

	expected := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for i, want := range expected {
		if got := p.Delay(i + 1); got != want {
			t.Errorf("attempt %d: expected delay %v, got %v", i+1, want, got)
		}
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	p := Policy{Attempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	attempts, err := Do(context.Background(), p, func(ctx context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 || calls != 3 {
		t.Errorf("expected 3 attempts, got attempts=%d calls=%d", attempts, calls)
	}
}

func TestDo_StopsOnPermanent(t *testing.T) {
	p := Policy{Attempts: 5, BaseDelay: time.Millisecond}
	boom := errors.New("bad request")

	attempts, err := Do(context.Background(), p, func(ctx context.Context, attempt int) error {
		return Permanent(boom)
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	p := Policy{Attempts: 2, BaseDelay: time.Millisecond}

	attempts, err := Do(context.Background(), p, func(ctx context.Context, attempt int) error {
		return errors.New("down")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	p := Policy{Attempts: 3, BaseDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	attempts, err := Do(ctx, p, func(ctx context.Context, attempt int) error {
		cancel()
		return errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}
