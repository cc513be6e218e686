package telegram

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	telegramService "github.com/admin/tg-bots/organic-shop/internal/services/telegram"
	"github.com/gin-gonic/gin"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

type Controller struct {
	TgService *telegramService.Service
	Log       *slog.Logger

	secret string
}

// New secret - значение, переданное в setWebhook; пустой секрет не проверяется
func New(tgService *telegramService.Service, secret string, log *slog.Logger) *Controller {
	return &Controller{
		TgService: tgService,
		Log:       log,
		secret:    secret,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhook/", c.handleWebhook)
}

func (c *Controller) handleWebhook(ctx *gin.Context) {
	if c.secret != "" {
		got := ctx.GetHeader(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(c.secret)) != 1 {
			c.Log.Warn("webhook request with invalid secret token", "client_ip", ctx.ClientIP())
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret token"})
			return
		}
	}

	var update domain.Update
	if err := ctx.ShouldBindJSON(&update); err != nil {
		c.Log.Error("failed to bind webhook request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.Log.Debug("received webhook update", "update_id", update.UpdateID)

	if err := c.TgService.HandleUpdate(ctx.Request.Context(), &update); err != nil {
		// ошибку наружу не отдаём: на не-2xx Telegram пришлёт апдейт повторно
		c.Log.Error("failed to handle update",
			"error", err,
			"update_id", update.UpdateID,
		)
	}

	// Telegram ожидает 200 OK в ответ
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
