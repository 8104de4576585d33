package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/enum"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/store"
)

// ExpenseHandler handles expense ledger endpoints. Requisition receipts
// also write into this collection via the requisition service.
type ExpenseHandler struct {
	expenses *store.Collection[model.Expense]
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenses *store.Collection[model.Expense]) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// RegisterRoutes registers expense endpoints on the given Chi router.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// List handles GET /expenses, newest first, optionally filtered by category.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenses.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list expenses")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	category := r.URL.Query().Get("category")
	out := make([]model.Expense, 0, len(expenses))
	for _, e := range expenses {
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })

	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var e model.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !e.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be > 0"})
		return
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Category == "" {
		e.Category = enum.ExpenseCategoryOther
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}

	if err := h.expenses.Add(r.Context(), e); err != nil {
		log.Error().Err(err).Msg("create expense")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Delete handles DELETE /expenses/{id}.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.expenses.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		log.Error().Err(err).Msg("delete expense")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
