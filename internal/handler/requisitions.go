package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/service"
)

// RequisitionServicer defines the service methods needed by requisition
// handlers. Satisfied by *service.RequisitionService.
type RequisitionServicer interface {
	Create(ctx context.Context, requestedBy, notes string, items []model.RequisitionItem) (model.Requisition, error)
	List(ctx context.Context) ([]model.Requisition, error)
	Get(ctx context.Context, id string) (model.Requisition, error)
	UpdateStatus(ctx context.Context, id, status string) (model.Requisition, error)
}

// RequisitionHandler handles restock request endpoints.
type RequisitionHandler struct {
	svc RequisitionServicer
}

// NewRequisitionHandler creates a new RequisitionHandler.
func NewRequisitionHandler(svc RequisitionServicer) *RequisitionHandler {
	return &RequisitionHandler{svc: svc}
}

// RegisterRoutes registers requisition endpoints on the given Chi router.
func (h *RequisitionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
}

type createRequisitionRequest struct {
	RequestedBy string                  `json:"requestedBy"`
	Notes       string                  `json:"notes"`
	Items       []model.RequisitionItem `json:"items"`
}

type updateRequisitionStatusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /requisitions.
func (h *RequisitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequisitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	requisition, err := h.svc.Create(r.Context(), req.RequestedBy, req.Notes, req.Items)
	if err != nil {
		writeRequisitionError(w, err, "create requisition")
		return
	}
	writeJSON(w, http.StatusCreated, requisition)
}

// List handles GET /requisitions.
func (h *RequisitionHandler) List(w http.ResponseWriter, r *http.Request) {
	requisitions, err := h.svc.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list requisitions")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, requisitions)
}

// Get handles GET /requisitions/{id}.
func (h *RequisitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	requisition, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRequisitionError(w, err, "get requisition")
		return
	}
	writeJSON(w, http.StatusOK, requisition)
}

// UpdateStatus handles PATCH /requisitions/{id}/status.
func (h *RequisitionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateRequisitionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	requisition, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeRequisitionError(w, err, "update requisition status")
		return
	}
	writeJSON(w, http.StatusOK, requisition)
}

// writeRequisitionError maps known service errors to HTTP status codes.
func writeRequisitionError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrRequisitionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrRequisitionResolved),
		errors.Is(err, service.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidReqStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Error().Err(err).Msg(op)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
