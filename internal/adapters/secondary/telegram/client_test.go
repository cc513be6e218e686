package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{BotToken: "TOKEN", APIBaseURL: srv.URL}, logger.Discard())
}

func TestSendMessage_URLAndWebAppButtons(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":5}}`))
	})

	err := client.SendMessage(context.Background(), 100, "salom",
		domain.InlineButton{Text: "Do'kon", URL: "https://shop.example"},
		domain.InlineButton{Text: "Mini app", URL: "https://app.example", WebApp: true},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := got["reply_markup"].(map[string]interface{})["inline_keyboard"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0].([]interface{})[0].(map[string]interface{})
	if first["url"] != "https://shop.example" || first["web_app"] != nil {
		t.Errorf("expected url button, got %v", first)
	}
	second := rows[1].([]interface{})[0].(map[string]interface{})
	webApp, ok := second["web_app"].(map[string]interface{})
	if !ok || webApp["url"] != "https://app.example" || second["url"] != nil {
		t.Errorf("expected web_app button, got %v", second)
	}
}

func TestSendMessage_WithoutButtonsOmitsMarkup(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})

	if err := client.SendMessage(context.Background(), 1, "help"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["reply_markup"]; ok {
		t.Errorf("reply_markup must be omitted: %v", got)
	}
}

func TestCall_APIErrorIsTyped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	})

	err := client.SendMessage(context.Background(), 1, "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 403 || apiErr.Method != "sendMessage" {
		t.Fatalf("expected APIError 403, got %v", err)
	}
}

func TestPoller_DeliversUpdatesAndAdvancesOffset(t *testing.T) {
	var (
		mu      sync.Mutex
		offsets []int64
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req getUpdatesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		offsets = append(offsets, req.Offset)
		call := len(offsets)
		mu.Unlock()

		if call == 1 {
			_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":10,"message":{"message_id":1,"chat":{"id":5,"type":"private"},"date":0,"text":"/start"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	received := make(chan *domain.Update, 1)
	poller := NewPoller(client, &Config{PollingTimeout: 1}, func(ctx context.Context, u *domain.Update) error {
		received <- u
		cancel()
		return nil
	}, logger.Discard())

	done := make(chan error, 1)
	go func() { done <- poller.Start(ctx) }()

	select {
	case u := <-received:
		if u.UpdateID != 10 || u.Message == nil || *u.Message.Text != "/start" {
			t.Errorf("unexpected update %+v", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("update was not delivered")
	}

	if err := <-done; err != nil {
		t.Fatalf("poller returned error: %v", err)
	}
	if poller.lastUpdateID != 11 {
		t.Errorf("expected next offset 11, got %d", poller.lastUpdateID)
	}
}

func TestPoller_HandlesUpdatesConcurrently(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(`{"ok":true,"result":[` +
				`{"update_id":1,"message":{"message_id":1,"chat":{"id":1,"type":"private"},"date":0,"text":"a"}},` +
				`{"update_id":2,"message":{"message_id":2,"chat":{"id":2,"type":"private"},"date":0,"text":"b"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// первый обработчик ждёт второго: последовательная обработка зависла бы
	secondStarted := make(chan struct{})
	var handled int32
	poller := NewPoller(client, &Config{PollingTimeout: 1, MaxConcurrentUpdates: 2}, func(ctx context.Context, u *domain.Update) error {
		if u.UpdateID == 1 {
			select {
			case <-secondStarted:
			case <-ctx.Done():
				return ctx.Err()
			}
		} else {
			close(secondStarted)
		}
		if atomic.AddInt32(&handled, 1) == 2 {
			cancel()
		}
		return nil
	}, logger.Discard())

	if err := poller.Start(ctx); err != nil {
		t.Fatalf("poller returned error: %v", err)
	}
	if atomic.LoadInt32(&handled) != 2 {
		t.Errorf("expected both updates handled, got %d", handled)
	}
}

func TestPoller_SerializesUpdatesOfOneChat(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(`{"ok":true,"result":[` +
				`{"update_id":1,"message":{"message_id":1,"chat":{"id":9,"type":"private"},"date":0,"text":"/start"}},` +
				`{"update_id":2,"message":{"message_id":2,"chat":{"id":9,"type":"private"},"date":0,"text":"salom"}},` +
				`{"update_id":3,"message":{"message_id":3,"chat":{"id":9,"type":"private"},"date":0,"text":"yana"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var (
		mu            sync.Mutex
		running, peak int
		order         []int64
	)
	poller := NewPoller(client, &Config{PollingTimeout: 1, MaxConcurrentUpdates: 4}, func(_ context.Context, u *domain.Update) error {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()

		if u.UpdateID == 1 {
			time.Sleep(100 * time.Millisecond)
		}

		mu.Lock()
		running--
		order = append(order, u.UpdateID)
		done := len(order) == 3
		mu.Unlock()
		if done {
			cancel()
		}
		return nil
	}, logger.Discard())

	if err := poller.Start(ctx); err != nil {
		t.Fatalf("poller returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak != 1 {
		t.Errorf("updates of one chat ran concurrently: peak %d", peak)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("expected updates in order [1 2 3], got %v", order)
	}
	if len(poller.chats) != 0 {
		t.Errorf("chat queue not released: %v", poller.chats)
	}
}
