package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
)

type recordingBot struct {
	calls    []string
	payloads []string
}

func (b *recordingBot) HandleStart(_ context.Context, _ *domain.Message, payload string) error {
	b.calls = append(b.calls, "start")
	b.payloads = append(b.payloads, payload)
	return nil
}

func (b *recordingBot) HandleHelp(context.Context, *domain.Message) error {
	b.calls = append(b.calls, "help")
	return nil
}

func (b *recordingBot) HandleText(context.Context, *domain.Message) error {
	b.calls = append(b.calls, "text")
	return nil
}

// slowBot считает одновременно работающие обработчики по чатам
type slowBot struct {
	recordingBot
	mu      sync.Mutex
	running map[int64]int
	peak    map[int64]int
}

func (b *slowBot) HandleText(_ context.Context, msg *domain.Message) error {
	b.mu.Lock()
	b.running[msg.Chat.ID]++
	if b.running[msg.Chat.ID] > b.peak[msg.Chat.ID] {
		b.peak[msg.Chat.ID] = b.running[msg.Chat.ID]
	}
	b.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	b.mu.Lock()
	b.running[msg.Chat.ID]--
	b.mu.Unlock()
	return nil
}

func message(text string, chatType string, entities ...domain.Entity) *domain.Update {
	return &domain.Update{
		UpdateID: 1,
		Message: &domain.Message{
			From:     &domain.TelegramUser{ID: 10, FirstName: "Ali"},
			Chat:     &domain.Chat{ID: 10, Type: chatType},
			Text:     &text,
			Entities: entities,
		},
	}
}

func TestRouting(t *testing.T) {
	cmd := domain.Entity{Type: "bot_command", Offset: 0, Length: 6}

	bot := &recordingBot{}
	s := New(bot, logger.Discard())
	ctx := context.Background()

	updates := []*domain.Update{
		message("/start", "private", cmd),
		message("/start buy_5", "private", cmd),
		message("/help", "private", domain.Entity{Type: "bot_command", Length: 5}),
		message("/unknown", "private", domain.Entity{Type: "bot_command", Length: 8}),
		message("salom", "private"),
		message("/start", "group", cmd),
	}
	for _, u := range updates {
		if err := s.HandleUpdate(ctx, u); err != nil {
			t.Fatalf("HandleUpdate: %v", err)
		}
	}

	want := []string{"start", "start", "help", "text", "text"}
	if len(bot.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", bot.calls, want)
	}
	for i := range want {
		if bot.calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, bot.calls[i], want[i])
		}
	}
	if bot.payloads[0] != "" || bot.payloads[1] != "buy_5" {
		t.Errorf("unexpected payloads %v", bot.payloads)
	}
}

func TestIgnoresBotsAndEmptyUpdates(t *testing.T) {
	bot := &recordingBot{}
	s := New(bot, logger.Discard())

	u := message("/start", "private")
	u.Message.From.IsBot = true
	if err := s.HandleUpdate(context.Background(), u); err != nil {
		t.Fatalf("HandleUpdate: %v", err)
	}
	if err := s.HandleUpdate(context.Background(), &domain.Update{UpdateID: 2}); err != nil {
		t.Fatalf("HandleUpdate: %v", err)
	}
	if err := s.HandleUpdate(context.Background(), nil); err == nil {
		t.Errorf("expected error for nil update")
	}
	if len(bot.calls) != 0 {
		t.Errorf("unexpected calls %v", bot.calls)
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in, command, payload string
	}{
		{"/start", "start", ""},
		{"/start@organic_shop_bot buy_12", "start", "buy_12"},
		{"/HELP", "help", ""},
		{"/start   buy_3 ", "start", "buy_3"},
	}
	for _, c := range cases {
		command, payload := ParseCommand(c.in)
		if command != c.command || payload != c.payload {
			t.Errorf("ParseCommand(%q) = (%q, %q), want (%q, %q)", c.in, command, payload, c.command, c.payload)
		}
	}
}

func TestIsCommandWithoutEntities(t *testing.T) {
	if !IsCommand("/start", nil) {
		t.Errorf("expected command")
	}
	if IsCommand("/", nil) || IsCommand("hello /start", nil) {
		t.Errorf("expected plain text")
	}
	if IsCommand("hi /start", []domain.Entity{{Type: "bot_command", Offset: 3, Length: 6}}) {
		t.Errorf("command not at start must be plain text")
	}
}

func TestHandleUpdate_OneChatAtATime(t *testing.T) {
	bot := &slowBot{running: make(map[int64]int), peak: make(map[int64]int)}
	s := New(bot, logger.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for _, chatID := range []int64{10, 11} {
			u := message("salom", "private")
			u.Message.Chat.ID = chatID
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.HandleUpdate(context.Background(), u); err != nil {
					t.Errorf("HandleUpdate: %v", err)
				}
			}()
		}
	}
	wg.Wait()

	for _, chatID := range []int64{10, 11} {
		if bot.peak[chatID] != 1 {
			t.Errorf("chat %d: %d handlers ran at once", chatID, bot.peak[chatID])
		}
	}
	if len(s.chats.locks) != 0 {
		t.Errorf("chat locks leaked: %d", len(s.chats.locks))
	}
}
