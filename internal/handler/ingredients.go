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

// IngredientHandler handles ingredient catalog endpoints. Stock set via
// PATCH is an absolute correction (a physical recount), not a delta.
type IngredientHandler struct {
	ingredients *store.Collection[model.Ingredient]
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(ingredients *store.Collection[model.Ingredient]) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients}
}

// RegisterRoutes registers ingredient endpoints on the given Chi router.
func (h *IngredientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/stock", h.SetStock)
}

type setStockRequest struct {
	StockQuantity decimal.Decimal `json:"stockQuantity"`
}

// List handles GET /ingredients.
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.ingredients.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list ingredients")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// Create handles POST /ingredients.
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var ing model.Ingredient
	if err := json.NewDecoder(r.Body).Decode(&ing); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if ing.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if ing.ID == "" {
		ing.ID = uuid.New().String()
	}

	if err := h.ingredients.Add(r.Context(), ing); err != nil {
		log.Error().Err(err).Msg("create ingredient")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, ing)
}

// Update handles PUT /ingredients/{id}.
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var ing model.Ingredient
	if err := json.NewDecoder(r.Body).Decode(&ing); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	ing.ID = chi.URLParam(r, "id")

	if err := h.ingredients.Update(r.Context(), ing); err != nil {
		log.Error().Err(err).Msg("update ingredient")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

// Delete handles DELETE /ingredients/{id}.
func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ingredients.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		log.Error().Err(err).Msg("delete ingredient")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStock handles PATCH /ingredients/{id}/stock.
func (h *IngredientHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req setStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.StockQuantity.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stockQuantity must be >= 0"})
		return
	}

	catalog, err := h.ingredients.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list ingredients for stock set")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	id := chi.URLParam(r, "id")
	for _, ing := range catalog {
		if ing.ID != id {
			continue
		}
		ing.StockQuantity = req.StockQuantity
		if err := h.ingredients.Update(r.Context(), ing); err != nil {
			log.Error().Err(err).Msg("set ingredient stock")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, ing)
		return
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
}
