package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (model.Order, error)
	ReplaceItems(ctx context.Context, orderID string, items []service.LineItemRequest) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) (model.Order, error)
	MarkPaid(ctx context.Context, orderID, method string) (model.Order, error)
	Get(orderID string) (model.Order, error)
	List(status string, limit, offset int) []model.Order
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/items", h.ReplaceItems)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/pay", h.Pay)
}

// --- Request / Response types ---

type createOrderRequest struct {
	TableNumber string            `json:"tableNumber"`
	ServerName  string            `json:"serverName"`
	TaxRate     decimal.Decimal   `json:"taxRate"`
	Discount    decimal.Decimal   `json:"discount"`
	Items       []lineItemRequest `json:"items"`
}

type lineItemRequest struct {
	ID           string          `json:"id"`
	MenuItemID   string          `json:"menuItemId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Portion      string          `json:"portion"`
	PriceAtOrder decimal.Decimal `json:"priceAtOrder"`
	Modifiers    []string        `json:"modifiers"`
}

type replaceItemsRequest struct {
	Items []lineItemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type payRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []model.Order `json:"orders"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		TableNumber: req.TableNumber,
		ServerName:  req.ServerName,
		TaxRate:     req.TaxRate,
		Discount:    req.Discount,
		Items:       toServiceItems(req.Items),
	})
	if err != nil {
		writeOrderError(w, err, "create order")
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	orders := h.svc.List(r.URL.Query().Get("status"), limit, offset)

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: orders,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeOrderError(w, err, "get order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ReplaceItems handles PUT /orders/{id}/items.
func (h *OrderHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	var req replaceItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.ReplaceItems(r.Context(), chi.URLParam(r, "id"), toServiceItems(req.Items))
	if err != nil {
		writeOrderError(w, err, "replace order items")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeOrderError(w, err, "update order status")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Pay handles POST /orders/{id}/pay.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.MarkPaid(r.Context(), chi.URLParam(r, "id"), req.PaymentMethod)
	if err != nil {
		writeOrderError(w, err, "pay order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// --- Helpers ---

func toServiceItems(items []lineItemRequest) []service.LineItemRequest {
	out := make([]service.LineItemRequest, len(items))
	for i, item := range items {
		out[i] = service.LineItemRequest{
			ID:           item.ID,
			MenuItemID:   item.MenuItemID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			Portion:      item.Portion,
			PriceAtOrder: item.PriceAtOrder,
			Modifiers:    item.Modifiers,
		}
	}
	return out
}

// writeOrderError maps known service errors to HTTP status codes.
func writeOrderError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrOrderCancelled):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Error().Err(err).Msg(op)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
