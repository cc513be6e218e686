package usersController

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
	catalogUsecase "github.com/admin/tg-bots/organic-shop/internal/usecases/catalog"
	"github.com/gin-gonic/gin"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := inmemory.NewStore()
	svc := catalogUsecase.New(catalogUsecase.Deps{
		Users:      store.Users(),
		Categories: store.Categories(),
		Products:   store.Products(),
	}, logger.Discard())

	r := gin.New()
	New(svc, logger.Discard()).RegisterRoutes(r)
	return r
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeUser(t *testing.T, w *httptest.ResponseRecorder) domain.User {
	t.Helper()
	var u domain.User
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode user: %v (%s)", err, w.Body.String())
	}
	return u
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/telegram-users/", `{"external_id":42,"handle":"ali","display_name":"Ali Valiyev","locale":"uz"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("first upsert status = %d", w.Code)
	}
	first := decodeUser(t, w)

	w = do(r, http.MethodPost, "/api/telegram-users/", `{"external_id":42,"handle":"ali_new","locale":"ru"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("second upsert status = %d", w.Code)
	}
	second := decodeUser(t, w)

	if first.ID != second.ID {
		t.Errorf("upsert created a second record")
	}
	if !second.RegisteredAt.Equal(first.RegisteredAt) {
		t.Errorf("registered_at changed")
	}
	if second.Handle == nil || *second.Handle != "ali_new" || second.DisplayName != nil {
		t.Errorf("mutable fields not overwritten: %+v", second)
	}

	var users []domain.User
	w = do(r, http.MethodGet, "/api/telegram-users/", "")
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil || len(users) != 1 {
		t.Fatalf("list: %v %s", err, w.Body.String())
	}
}

func TestUpsertAcceptsLegacyBotPayload(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/telegram-users/",
		`{"user_id":7,"username":"vali","first_name":"Vali","last_name":"Karimov","language_code":"uz"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	u := decodeUser(t, w)
	if u.ExternalID != 7 || u.DisplayName == nil || *u.DisplayName != "Vali Karimov" {
		t.Errorf("unexpected user %+v", u)
	}
	if u.Locale == nil || *u.Locale != "uz" || u.Handle == nil || *u.Handle != "vali" {
		t.Errorf("unexpected user %+v", u)
	}
}

func TestUpsertHonoursObservedAt(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/telegram-users/", `{"external_id":7,"handle":"fresh","observed_at":"2025-05-01T10:00:00Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("first upsert status = %d", w.Code)
	}
	created := decodeUser(t, w)
	observed := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	if !created.RegisteredAt.Equal(observed) || !created.LastSeenAt.Equal(observed) {
		t.Errorf("expected timestamps %v, got %+v", observed, created)
	}

	w = do(r, http.MethodPost, "/api/telegram-users/", `{"external_id":7,"handle":"stale","observed_at":"2025-04-30T10:00:00Z"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("stale upsert status = %d", w.Code)
	}
	if got := decodeUser(t, w); got.Handle == nil || *got.Handle != "fresh" {
		t.Errorf("stale upsert overwrote handle: %v", got.Handle)
	}
}

func TestUpsertValidation(t *testing.T) {
	r := newRouter()

	if w := do(r, http.MethodPost, "/api/telegram-users/", `{"handle":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing external_id status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/telegram-users/", `not json`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", w.Code)
	}
}

func TestConcurrentUpsertsKeepOneRecord(t *testing.T) {
	r := newRouter()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := do(r, http.MethodPost, "/api/telegram-users/", `{"external_id":100}`)
			if w.Code != http.StatusCreated && w.Code != http.StatusOK {
				t.Errorf("status = %d", w.Code)
			}
		}()
	}
	wg.Wait()

	var users []domain.User
	w := do(r, http.MethodGet, "/api/telegram-users/", "")
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected exactly one user, got %d", len(users))
	}
}

func TestOperatorCRUD(t *testing.T) {
	r := newRouter()

	created := decodeUser(t, do(r, http.MethodPost, "/api/telegram-users/", `{"external_id":5}`))
	path := "/api/telegram-users/" + created.ID.String() + "/"

	if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w := do(r, http.MethodPatch, path, `{"active":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d", w.Code)
	}
	if decodeUser(t, w).Active {
		t.Errorf("user must be deactivated")
	}

	if w := do(r, http.MethodDelete, path, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/telegram-users/not-a-uuid/", ""); w.Code != http.StatusNotFound {
		t.Errorf("bad id status = %d", w.Code)
	}
}
