package alerter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
)

func TestSendAlert_PostsToThread(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botALERT/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	thread := int64(9)
	client := NewClient(&Config{BotToken: "ALERT", ChatID: -100, MessageThreadID: &thread, APIBaseURL: srv.URL}, logger.Discard())

	if err := client.SendAlert(context.Background(), "registration dead-lettered"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["chat_id"] != float64(-100) || got["message_thread_id"] != float64(9) {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestSendAlert_NilClient(t *testing.T) {
	var client *Client
	if err := client.SendAlert(context.Background(), "x"); err == nil {
		t.Error("expected error from nil client")
	}
	if NewClient(nil, logger.Discard()) != nil {
		t.Error("nil config must produce nil client")
	}
	if NewClient(&Config{BotToken: "ALERT"}, logger.Discard()) != nil {
		t.Error("config without chat must produce nil client")
	}
}
