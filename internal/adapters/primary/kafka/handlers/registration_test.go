package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
	"github.com/google/uuid"
)

type fakeUpserter struct {
	calls []domain.UserUpsert
	err   error
}

func (f *fakeUpserter) UpsertUser(_ context.Context, in domain.UserUpsert) (*domain.User, bool, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, false, f.err
	}
	return &domain.User{ID: uuid.New(), ExternalID: in.ExternalID}, true, nil
}

func TestRegistrationHandler_Replays(t *testing.T) {
	users := &fakeUpserter{}
	h := NewRegistrationHandler(users, logger.Discard())

	err := h.HandleMessage(context.Background(), "42", []byte(`{"external_id":42,"handle":"ali","display_name":"Ali Valiyev"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users.calls) != 1 {
		t.Fatalf("expected one upsert, got %d", len(users.calls))
	}
	got := users.calls[0]
	if got.ExternalID != 42 || got.Handle == nil || *got.Handle != "ali" || *got.DisplayName != "Ali Valiyev" {
		t.Errorf("unexpected upsert %+v", got)
	}
}

func TestRegistrationHandler_KeepsObservationTime(t *testing.T) {
	users := &fakeUpserter{}
	h := NewRegistrationHandler(users, logger.Discard())

	err := h.HandleMessage(context.Background(), "42", []byte(`{"external_id":42,"observed_at":"2026-03-01T12:00:00Z"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := users.calls[0].ObservedAt; got == nil || !got.Equal(want) {
		t.Errorf("expected observed_at %v, got %v", want, got)
	}
}

func TestRegistrationHandler_MalformedIsBusinessError(t *testing.T) {
	users := &fakeUpserter{}
	h := NewRegistrationHandler(users, logger.Discard())

	for _, payload := range []string{`not json`, `{"handle":"x"}`} {
		err := h.HandleMessage(context.Background(), "k", []byte(payload))
		if !domain.IsBusinessError(err) {
			t.Errorf("payload %q: expected business error, got %v", payload, err)
		}
	}
	if len(users.calls) != 0 {
		t.Errorf("malformed payloads must not reach the use case")
	}
}

func TestRegistrationHandler_StoreFailureIsRetryable(t *testing.T) {
	users := &fakeUpserter{err: errors.New("db down")}
	h := NewRegistrationHandler(users, logger.Discard())

	err := h.HandleMessage(context.Background(), "42", []byte(`{"external_id":42}`))
	if err == nil || domain.IsBusinessError(err) {
		t.Fatalf("expected plain error, got %v", err)
	}
}
