package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/handler"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/store"
)

func newMenuRouter(t *testing.T) (http.Handler, *store.Collection[model.MenuItem]) {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemory()
	menu := store.NewCollection[model.MenuItem](mem, store.MenuItems)
	ingredients := store.NewCollection[model.Ingredient](mem, store.Ingredients)

	seed := []model.Ingredient{
		{ID: "i-chicken", Name: "Chicken", Unit: "kg", UnitCost: decimal.NewFromInt(240)},
		{ID: "i-butter", Name: "Butter", Unit: "kg", UnitCost: decimal.NewFromInt(500)},
	}
	if err := ingredients.BulkAdd(ctx, seed); err != nil {
		t.Fatalf("seed ingredients: %v", err)
	}
	if err := menu.Add(ctx, model.MenuItem{
		ID:    "m-1",
		Name:  "Butter Chicken",
		Price: decimal.NewFromInt(320),
		Ingredients: []model.RecipeLine{
			{IngredientID: "i-chicken", Quantity: decimal.RequireFromString("0.25")},
			{IngredientID: "i-butter", Quantity: decimal.RequireFromString("0.05")},
			{IngredientID: "i-gone", Quantity: decimal.NewFromInt(1)},
		},
	}); err != nil {
		t.Fatalf("seed menu: %v", err)
	}

	r := chi.NewRouter()
	r.Route("/menu-items", handler.NewMenuItemHandler(menu, ingredients).RegisterRoutes)
	return r, menu
}

func TestMenuItemRecipeCost(t *testing.T) {
	router, _ := newMenuRouter(t)

	req := httptest.NewRequest("GET", "/menu-items/m-1/cost", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		MenuItemID string          `json:"menuItemId"`
		Cost       decimal.Decimal `json:"cost"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// 0.25*240 + 0.05*500 = 85; the missing ingredient line contributes nothing
	if !resp.Cost.Equal(decimal.NewFromInt(85)) {
		t.Errorf("cost: got %s, want 85", resp.Cost)
	}
}

func TestMenuItemRecipeCost_NotFound(t *testing.T) {
	router, _ := newMenuRouter(t)

	req := httptest.NewRequest("GET", "/menu-items/missing/cost", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMenuItemCreateAndGet(t *testing.T) {
	router, _ := newMenuRouter(t)

	body := `{"name":"Dal Tadka","price":180,"available":true}`
	req := httptest.NewRequest("POST", "/menu-items", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var created model.MenuItem
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}

	req = httptest.NewRequest("GET", "/menu-items/"+created.ID, nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("get status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestMenuItemCreate_MissingName(t *testing.T) {
	router, _ := newMenuRouter(t)

	req := httptest.NewRequest("POST", "/menu-items", bytes.NewBufferString(`{"price":100}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMenuItemDelete(t *testing.T) {
	router, menu := newMenuRouter(t)

	req := httptest.NewRequest("DELETE", "/menu-items/m-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	items, err := menu.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty menu, got %d items", len(items))
	}
}
