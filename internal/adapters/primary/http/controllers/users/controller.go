package usersController

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/apierror"
	"github.com/admin/tg-bots/organic-shop/internal/domain"
	catalogUsecase "github.com/admin/tg-bots/organic-shop/internal/usecases/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	CatalogService *catalogUsecase.Service
	Log            *slog.Logger
}

func New(catalogService *catalogUsecase.Service, log *slog.Logger) *Controller {
	return &Controller{
		CatalogService: catalogService,
		Log:            log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	users := router.Group("/api/telegram-users")
	{
		users.GET("/", c.list)
		users.POST("/", c.upsert)
		users.GET("/:id/", c.get)
		users.PATCH("/:id/", c.update)
		users.DELETE("/:id/", c.delete)
	}
}

// UpsertRequest тело регистрации.
// Поля user_id, username, first_name, last_name, language_code - формат старой версии бота.
type UpsertRequest struct {
	ExternalID  *int64     `json:"external_id"`
	Handle      *string    `json:"handle"`
	DisplayName *string    `json:"display_name"`
	Locale      *string    `json:"locale"`
	ObservedAt  *time.Time `json:"observed_at"`

	UserID       *int64  `json:"user_id"`
	Username     *string `json:"username"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	LanguageCode *string `json:"language_code"`
}

// ToUpsert новые поля приоритетнее старых; false - нет external_id
func (r *UpsertRequest) ToUpsert() (domain.UserUpsert, bool) {
	externalID := r.ExternalID
	if externalID == nil {
		externalID = r.UserID
	}
	if externalID == nil || *externalID <= 0 {
		return domain.UserUpsert{}, false
	}

	in := domain.UserUpsert{
		ExternalID:  *externalID,
		Handle:      firstNonNil(r.Handle, r.Username),
		DisplayName: r.DisplayName,
		Locale:      firstNonNil(r.Locale, r.LanguageCode),
		ObservedAt:  r.ObservedAt,
	}
	if in.DisplayName == nil && r.FirstName != nil {
		in.DisplayName = domain.JoinName(*r.FirstName, r.LastName)
	}
	return in, true
}

func firstNonNil(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// PatchRequest правка пользователя оператором
type PatchRequest struct {
	Handle      *string `json:"handle"`
	DisplayName *string `json:"display_name"`
	Locale      *string `json:"locale"`
	Active      *bool   `json:"active"`
}

func (c *Controller) list(ctx *gin.Context) {
	users, err := c.CatalogService.ListUsers(ctx.Request.Context())
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	ctx.JSON(http.StatusOK, users)
}

// upsert 201 - создан, 200 - обновлён
func (c *Controller) upsert(ctx *gin.Context) {
	var req UpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind telegram user request", "error", err)
		apierror.BadRequest(ctx, "invalid request body")
		return
	}

	in, ok := req.ToUpsert()
	if !ok {
		apierror.BadRequest(ctx, "external_id is required")
		return
	}

	user, created, err := c.CatalogService.UpsertUser(ctx.Request.Context(), in)
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, user)
}

func (c *Controller) get(ctx *gin.Context) {
	id, ok := c.pathUUID(ctx)
	if !ok {
		return
	}

	user, err := c.CatalogService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (c *Controller) update(ctx *gin.Context) {
	id, ok := c.pathUUID(ctx)
	if !ok {
		return
	}

	var req PatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(ctx, "invalid request body")
		return
	}

	user, err := c.CatalogService.UpdateUser(ctx.Request.Context(), id, domain.UserPatch{
		Handle:      req.Handle,
		DisplayName: req.DisplayName,
		Locale:      req.Locale,
		Active:      req.Active,
	})
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (c *Controller) delete(ctx *gin.Context) {
	id, ok := c.pathUUID(ctx)
	if !ok {
		return
	}

	if err := c.CatalogService.DeleteUser(ctx.Request.Context(), id); err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *Controller) pathUUID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
