package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
	telegramService "github.com/admin/tg-bots/organic-shop/internal/services/telegram"
	"github.com/gin-gonic/gin"
)

type startCounter struct{ starts int }

func (b *startCounter) HandleStart(context.Context, *domain.Message, string) error {
	b.starts++
	return nil
}
func (b *startCounter) HandleHelp(context.Context, *domain.Message) error { return nil }
func (b *startCounter) HandleText(context.Context, *domain.Message) error { return nil }

const startUpdate = `{"update_id":1,"message":{"message_id":5,"from":{"id":7,"is_bot":false,"first_name":"Ali"},` +
	`"chat":{"id":7,"type":"private"},"date":0,"text":"/start","entities":[{"type":"bot_command","offset":0,"length":6}]}}`

func newRouter(bot *startCounter, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(telegramService.New(bot, logger.Discard()), secret, logger.Discard()).RegisterRoutes(r)
	return r
}

func post(r *gin.Engine, body, secret string) int {
	req := httptest.NewRequest(http.MethodPost, "/webhook/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(secretHeader, secret)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestWebhookDispatchesUpdate(t *testing.T) {
	bot := &startCounter{}
	r := newRouter(bot, "s3cret")

	if code := post(r, startUpdate, "s3cret"); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if bot.starts != 1 {
		t.Errorf("expected /start to be handled once, got %d", bot.starts)
	}
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	bot := &startCounter{}
	r := newRouter(bot, "s3cret")

	if code := post(r, startUpdate, "wrong"); code != http.StatusUnauthorized {
		t.Errorf("status = %d", code)
	}
	if code := post(r, startUpdate, ""); code != http.StatusUnauthorized {
		t.Errorf("status without header = %d", code)
	}
	if bot.starts != 0 {
		t.Errorf("update must not be handled")
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	r := newRouter(&startCounter{}, "")
	if code := post(r, "{", ""); code != http.StatusBadRequest {
		t.Errorf("status = %d", code)
	}
}
