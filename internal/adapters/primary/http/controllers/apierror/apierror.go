package apierror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/gin-gonic/gin"
)

// Status HTTP-код для ошибки use case
func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Write отвечает {"error": ...}; текст внутренних ошибок наружу не отдаётся
func Write(ctx *gin.Context, log *slog.Logger, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			"error", err,
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
		)
		ctx.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	ctx.JSON(status, gin.H{"error": err.Error()})
}

// BadRequest ответ 400 на невалидный ввод
func BadRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": message})
}
