package admin

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/apierror"
	catalogController "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/catalog"
	"github.com/admin/tg-bots/organic-shop/internal/domain"
	catalogUsecase "github.com/admin/tg-bots/organic-shop/internal/usecases/catalog"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const imageFormField = "image"

// Controller запись в каталог; все маршруты за basic auth
type Controller struct {
	CatalogService *catalogUsecase.Service
	Accounts       gin.Accounts
	Log            *slog.Logger

	publicBaseURL string
}

func New(
	catalogService *catalogUsecase.Service,
	accounts gin.Accounts,
	publicBaseURL string,
	log *slog.Logger,
) *Controller {
	return &Controller{
		CatalogService: catalogService,
		Accounts:       accounts,
		Log:            log,
		publicBaseURL:  catalogController.NormalizeBaseURL(publicBaseURL),
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/api/admin", gin.BasicAuth(c.Accounts))
	{
		admin.POST("/categories/", c.createCategory)
		admin.PATCH("/categories/:id/", c.updateCategory)
		admin.DELETE("/categories/:id/", c.deleteCategory)

		admin.GET("/products/", c.listProducts)
		admin.POST("/products/", c.createProduct)
		admin.PATCH("/products/:id/", c.updateProduct)
		admin.DELETE("/products/:id/", c.deleteProduct)
		admin.PUT("/products/:id/image", c.uploadImage)
	}
}

type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ProductRequest price принимается и числом, и строкой "10990000.00"
type ProductRequest struct {
	Name        *string          `json:"name"`
	Category    *int64           `json:"category"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
}

func (c *Controller) createCategory(ctx *gin.Context) {
	var req CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(ctx, "invalid request body")
		return
	}
	if req.Name == nil {
		apierror.BadRequest(ctx, "name is required")
		return
	}

	category, err := c.CatalogService.CreateCategory(ctx.Request.Context(), domain.CategoryInput{
		Name:        *req.Name,
		Description: deref(req.Description),
	})
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	c.Log.Info("category created", "category_id", category.ID, "admin", ctx.GetString(gin.AuthUserKey))
	ctx.JSON(http.StatusCreated, domain.NewCategoryView(category))
}

func (c *Controller) updateCategory(ctx *gin.Context) {
	id, ok := catalogController.PathID(ctx)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(ctx, "invalid request body")
		return
	}

	category, err := c.CatalogService.UpdateCategory(ctx.Request.Context(), id, domain.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, domain.NewCategoryView(category))
}

func (c *Controller) deleteCategory(ctx *gin.Context) {
	id, ok := catalogController.PathID(ctx)
	if !ok {
		return
	}

	if err := c.CatalogService.DeleteCategory(ctx.Request.Context(), id); err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	c.Log.Info("category deleted", "category_id", id, "admin", ctx.GetString(gin.AuthUserKey))
	ctx.Status(http.StatusNoContent)
}

// listProducts как публичный список, но с недоступными товарами
func (c *Controller) listProducts(ctx *gin.Context) {
	filter, err := catalogController.ParseProductFilter(ctx)
	if err != nil {
		apierror.BadRequest(ctx, err.Error())
		return
	}

	products, err := c.CatalogService.ListAllProducts(ctx.Request.Context(), filter)
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}

	baseURL := catalogController.MediaBaseURL(ctx, c.publicBaseURL)
	views := make([]domain.ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, c.CatalogService.ProductView(product, baseURL))
	}
	ctx.JSON(http.StatusOK, views)
}

func (c *Controller) createProduct(ctx *gin.Context) {
	var req ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(ctx, "invalid request body")
		return
	}
	if req.Name == nil || req.Category == nil || req.Price == nil {
		apierror.BadRequest(ctx, "name, category and price are required")
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	product, err := c.CatalogService.CreateProduct(ctx.Request.Context(), domain.ProductInput{
		Name:        *req.Name,
		CategoryID:  *req.Category,
		Description: deref(req.Description),
		Price:       *req.Price,
		IsAvailable: available,
	})
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	c.Log.Info("product created", "product_id", product.ID, "admin", ctx.GetString(gin.AuthUserKey))
	ctx.JSON(http.StatusCreated, c.view(ctx, product))
}

func (c *Controller) updateProduct(ctx *gin.Context) {
	id, ok := catalogController.PathID(ctx)
	if !ok {
		return
	}

	var req ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(ctx, "invalid request body")
		return
	}

	product, err := c.CatalogService.UpdateProduct(ctx.Request.Context(), id, domain.ProductPatch{
		Name:        req.Name,
		CategoryID:  req.Category,
		Description: req.Description,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, c.view(ctx, product))
}

func (c *Controller) deleteProduct(ctx *gin.Context) {
	id, ok := catalogController.PathID(ctx)
	if !ok {
		return
	}

	if err := c.CatalogService.DeleteProduct(ctx.Request.Context(), id); err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	c.Log.Info("product deleted", "product_id", id, "admin", ctx.GetString(gin.AuthUserKey))
	ctx.Status(http.StatusNoContent)
}

// uploadImage multipart/form-data, поле image
func (c *Controller) uploadImage(ctx *gin.Context) {
	id, ok := catalogController.PathID(ctx)
	if !ok {
		return
	}

	header, err := ctx.FormFile(imageFormField)
	if err != nil {
		apierror.BadRequest(ctx, fmt.Sprintf("multipart field %q is required", imageFormField))
		return
	}

	file, err := header.Open()
	if err != nil {
		apierror.Write(ctx, c.Log, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer file.Close()

	product, err := c.CatalogService.UploadProductImage(
		ctx.Request.Context(),
		id,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		apierror.Write(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, c.view(ctx, product))
}

func (c *Controller) view(ctx *gin.Context, product *domain.Product) domain.ProductView {
	return c.CatalogService.ProductView(product, catalogController.MediaBaseURL(ctx, c.publicBaseURL))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
