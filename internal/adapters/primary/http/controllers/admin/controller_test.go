package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"

	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
	"github.com/admin/tg-bots/organic-shop/internal/ports/storage"
	catalogUsecase "github.com/admin/tg-bots/organic-shop/internal/usecases/catalog"
	"github.com/gin-gonic/gin"
)

type memMedia map[string][]byte

func (m memMedia) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	m[key] = data
	return err
}

func (m memMedia) Open(_ context.Context, key string) (*storage.Object, error) {
	data, ok := m[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data))}, nil
}

func (m memMedia) Remove(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func newRouter() (*gin.Engine, memMedia) {
	gin.SetMode(gin.TestMode)
	store := inmemory.NewStore()
	media := memMedia{}
	svc := catalogUsecase.New(catalogUsecase.Deps{
		Users:      store.Users(),
		Categories: store.Categories(),
		Products:   store.Products(),
		Media:      media,
	}, logger.Discard())

	r := gin.New()
	New(svc, gin.Accounts{"admin": "secret"}, "https://organikbuyurtma.uz", logger.Discard()).RegisterRoutes(r)
	return r, media
}

func do(r *gin.Engine, method, target string, body io.Reader, contentType string, auth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		req.SetBasicAuth("admin", "secret")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	return do(r, method, target, strings.NewReader(body), "application/json", true)
}

func TestRequiresBasicAuth(t *testing.T) {
	r, _ := newRouter()
	w := do(r, http.MethodPost, "/api/admin/categories/", strings.NewReader(`{"name":"x"}`), "application/json", false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
}

func TestCategoryAndProductLifecycle(t *testing.T) {
	r, media := newRouter()

	w := doJSON(r, http.MethodPost, "/api/admin/categories/", `{"name":"Sabzavotlar","description":"Yangi"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create category status = %d (%s)", w.Code, w.Body.String())
	}
	var category domain.CategoryView
	_ = json.Unmarshal(w.Body.Bytes(), &category)
	categoryID := strconv.FormatInt(category.ID, 10)

	w = doJSON(r, http.MethodPost, "/api/admin/products/",
		`{"name":"Pomidor","category":`+categoryID+`,"price":"15000.5","is_available":false}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create product status = %d (%s)", w.Code, w.Body.String())
	}
	var product domain.ProductView
	_ = json.Unmarshal(w.Body.Bytes(), &product)
	if product.Price != "15000.50" || product.IsAvailable || product.CategoryName != "Sabzavotlar" {
		t.Errorf("unexpected product %+v", product)
	}
	productPath := "/api/admin/products/" + strconv.FormatInt(product.ID, 10)

	w = doJSON(r, http.MethodPatch, productPath+"/", `{"is_available":true,"price":16000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch product status = %d (%s)", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &product)
	if !product.IsAvailable || product.Price != "16000.00" {
		t.Errorf("patch not applied %+v", product)
	}

	// картинка
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="pomidor.png"`)
	header.Set("Content-Type", "image/png")
	part, _ := mw.CreatePart(header)
	_, _ = part.Write([]byte("\x89PNG"))
	_ = mw.Close()

	w = do(r, http.MethodPut, productPath+"/image", &body, mw.FormDataContentType(), true)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d (%s)", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &product)
	if product.Image == nil || !strings.HasPrefix(*product.Image, "https://organikbuyurtma.uz/media/products/") {
		t.Errorf("unexpected image %v", product.Image)
	}
	if len(media) != 1 {
		t.Errorf("expected one stored object, got %d", len(media))
	}

	var listed []domain.ProductView
	w = do(r, http.MethodGet, "/api/admin/products/", nil, "", true)
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil || len(listed) != 1 {
		t.Fatalf("admin list: %v %s", err, w.Body.String())
	}

	if w = do(r, http.MethodDelete, productPath+"/", nil, "", true); w.Code != http.StatusNoContent {
		t.Fatalf("delete product status = %d", w.Code)
	}
	if len(media) != 0 {
		t.Errorf("image must be removed with the product")
	}
	if w = do(r, http.MethodDelete, "/api/admin/categories/"+categoryID+"/", nil, "", true); w.Code != http.StatusNoContent {
		t.Errorf("delete category status = %d", w.Code)
	}
}

func TestCreateProductValidation(t *testing.T) {
	r, _ := newRouter()

	if w := doJSON(r, http.MethodPost, "/api/admin/products/", `{"name":"X"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/admin/products/", `{"name":"X","category":999,"price":"1.00"}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown category status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/admin/categories/", `{"description":"no name"}`); w.Code != http.StatusBadRequest {
		t.Errorf("category without name status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPatch, "/api/admin/categories/999/", `{"name":"Y"}`); w.Code != http.StatusNotFound {
		t.Errorf("patch missing category status = %d", w.Code)
	}
}
