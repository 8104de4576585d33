package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/store"
)

// MenuItemHandler handles menu catalog endpoints.
type MenuItemHandler struct {
	menu        *store.Collection[model.MenuItem]
	ingredients *store.Collection[model.Ingredient]
}

// NewMenuItemHandler creates a new MenuItemHandler.
func NewMenuItemHandler(menu *store.Collection[model.MenuItem], ingredients *store.Collection[model.Ingredient]) *MenuItemHandler {
	return &MenuItemHandler{menu: menu, ingredients: ingredients}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/cost", h.RecipeCost)
}

type recipeCostResponse struct {
	MenuItemID string          `json:"menuItemId"`
	Cost       decimal.Decimal `json:"cost"`
}

// List handles GET /menu-items.
func (h *MenuItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list menu items")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /menu-items.
func (h *MenuItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item model.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if item.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	if err := h.menu.Add(r.Context(), item); err != nil {
		log.Error().Err(err).Msg("create menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Get handles GET /menu-items/{id}.
func (h *MenuItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok, err := h.find(r, chi.URLParam(r, "id"))
	if err != nil {
		log.Error().Err(err).Msg("get menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update handles PUT /menu-items/{id}.
func (h *MenuItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var item model.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	item.ID = chi.URLParam(r, "id")

	if err := h.menu.Update(r.Context(), item); err != nil {
		log.Error().Err(err).Msg("update menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /menu-items/{id}.
func (h *MenuItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.menu.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		log.Error().Err(err).Msg("delete menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecipeCost handles GET /menu-items/{id}/cost. The cost of a full
// portion is the sum of each recipe line's quantity times the
// ingredient's unit cost. Recipe lines naming unknown ingredients
// contribute nothing.
func (h *MenuItemHandler) RecipeCost(w http.ResponseWriter, r *http.Request) {
	item, ok, err := h.find(r, chi.URLParam(r, "id"))
	if err != nil {
		log.Error().Err(err).Msg("get menu item for cost")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}

	catalog, err := h.ingredients.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list ingredients for cost")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	costByID := make(map[string]decimal.Decimal, len(catalog))
	for _, ing := range catalog {
		costByID[ing.ID] = ing.UnitCost
	}

	cost := decimal.Zero
	for _, line := range item.Ingredients {
		if unitCost, found := costByID[line.IngredientID]; found {
			cost = cost.Add(line.Quantity.Mul(unitCost))
		}
	}

	writeJSON(w, http.StatusOK, recipeCostResponse{MenuItemID: item.ID, Cost: cost})
}

func (h *MenuItemHandler) find(r *http.Request, id string) (model.MenuItem, bool, error) {
	items, err := h.menu.List(r.Context())
	if err != nil {
		return model.MenuItem{}, false, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return model.MenuItem{}, false, nil
}
