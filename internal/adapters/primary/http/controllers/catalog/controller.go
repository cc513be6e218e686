package catalogController

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/apierror"
	"github.com/admin/tg-bots/organic-shop/internal/domain"
	catalogUsecase "github.com/admin/tg-bots/organic-shop/internal/usecases/catalog"
	"github.com/gin-gonic/gin"
)

const mediaPath = "/media"

type Controller struct {
	CatalogService *catalogUsecase.Service
	Log            *slog.Logger

	publicBaseURL string
}

// New publicBaseURL - адрес сайта для ссылок на медиа; пусто - берётся из запроса
func New(catalogService *catalogUsecase.Service, publicBaseURL string, log *slog.Logger) *Controller {
	return &Controller{
		CatalogService: catalogService,
		Log:            log,
		publicBaseURL:  NormalizeBaseURL(publicBaseURL),
	}
}

func NormalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/categories/", c.listCategories)
		api.GET("/categories/:id/", c.getCategory)
		api.GET("/products/", c.listProducts)
		api.GET("/products/:id/", c.getProduct)
		api.GET("/telegram-config/", c.telegramConfig)
	}
	router.GET(mediaPath+"/*key", c.media)
}

func (c *Controller) listCategories(ctx *gin.Context) {
	categories, err := c.CatalogService.ListCategories(ctx.Request.Context())
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}

	views := make([]domain.CategoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, domain.NewCategoryView(category))
	}
	ctx.JSON(http.StatusOK, views)
}

func (c *Controller) getCategory(ctx *gin.Context) {
	id, ok := PathID(ctx)
	if !ok {
		return
	}

	category, err := c.CatalogService.GetCategory(ctx.Request.Context(), id)
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, domain.NewCategoryView(category))
}

// listProducts ?category=<id>&search=<text>&ordering=price|-price|created_at|-created_at
func (c *Controller) listProducts(ctx *gin.Context) {
	filter, err := ParseProductFilter(ctx)
	if err != nil {
		apierror.BadRequest(ctx, err.Error())
		return
	}

	products, err := c.CatalogService.ListProducts(ctx.Request.Context(), filter)
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}

	baseURL := MediaBaseURL(ctx, c.publicBaseURL)
	views := make([]domain.ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, c.CatalogService.ProductView(product, baseURL))
	}
	ctx.JSON(http.StatusOK, views)
}

func (c *Controller) getProduct(ctx *gin.Context) {
	id, ok := PathID(ctx)
	if !ok {
		return
	}

	product, err := c.CatalogService.GetProduct(ctx.Request.Context(), id)
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, c.CatalogService.ProductView(product, MediaBaseURL(ctx, c.publicBaseURL)))
}

func (c *Controller) telegramConfig(ctx *gin.Context) {
	cfg := c.CatalogService.TelegramConfig()
	ctx.JSON(http.StatusOK, gin.H{
		"bot_username":   cfg.BotUsername,
		"admin_username": cfg.AdminUsername,
	})
}

// media отдаёт объект из хранилища как есть
func (c *Controller) media(ctx *gin.Context) {
	obj, err := c.CatalogService.OpenMedia(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			err = domain.ErrNotFound
		}
		apierror.Write(ctx, c.Log, err)
		return
	}
	defer obj.Body.Close()

	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}

// MediaBaseURL "<scheme>://<host>/media" с учётом X-Forwarded-Proto и X-Forwarded-Host.
// publicBaseURL (адрес сайта без слеша на конце) имеет приоритет над запросом.
func MediaBaseURL(ctx *gin.Context, publicBaseURL string) string {
	if publicBaseURL != "" {
		return publicBaseURL + mediaPath
	}

	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(ctx.GetHeader("X-Forwarded-Proto")); proto != "" {
		scheme = strings.ToLower(proto)
	}

	host := ctx.Request.Host
	if fwd := firstHeaderValue(ctx.GetHeader("X-Forwarded-Host")); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host + mediaPath
}

// firstHeaderValue первое значение из списка через запятую (цепочка прокси)
func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// ParseProductFilter фильтр публичного списка товаров из query
func ParseProductFilter(ctx *gin.Context) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		AvailableOnly: true,
		Search:        strings.TrimSpace(ctx.Query("search")),
	}

	if raw := strings.TrimSpace(ctx.Query("category")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, errors.New("category must be a positive integer")
		}
		filter.CategoryID = &id
	}

	ordering, err := domain.ParseProductOrdering(strings.TrimSpace(ctx.Query("ordering")))
	if err != nil {
		return filter, err
	}
	filter.Ordering = ordering

	return filter, nil
}

// PathID разбирает :id; при ошибке уже ответил 404
func PathID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
