package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/enum"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/handler"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/service"
)

type mockRequisitionService struct {
	createFn       func(ctx context.Context, requestedBy, notes string, items []model.RequisitionItem) (model.Requisition, error)
	listFn         func(ctx context.Context) ([]model.Requisition, error)
	getFn          func(ctx context.Context, id string) (model.Requisition, error)
	updateStatusFn func(ctx context.Context, id, status string) (model.Requisition, error)
}

func (m *mockRequisitionService) Create(ctx context.Context, requestedBy, notes string, items []model.RequisitionItem) (model.Requisition, error) {
	return m.createFn(ctx, requestedBy, notes, items)
}

func (m *mockRequisitionService) List(ctx context.Context) ([]model.Requisition, error) {
	return m.listFn(ctx)
}

func (m *mockRequisitionService) Get(ctx context.Context, id string) (model.Requisition, error) {
	return m.getFn(ctx, id)
}

func (m *mockRequisitionService) UpdateStatus(ctx context.Context, id, status string) (model.Requisition, error) {
	return m.updateStatusFn(ctx, id, status)
}

func newRequisitionRouter(svc *mockRequisitionService) http.Handler {
	r := chi.NewRouter()
	r.Route("/requisitions", handler.NewRequisitionHandler(svc).RegisterRoutes)
	return r
}

func sampleRequisition() model.Requisition {
	return model.Requisition{
		ID:          "req-1",
		RequestedBy: "u-7",
		Items: []model.RequisitionItem{
			{IngredientID: "i-butter", Quantity: decimal.NewFromInt(3)},
		},
		Status:    enum.RequisitionStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCreateRequisition(t *testing.T) {
	var gotBy, gotNotes string
	var gotItems []model.RequisitionItem
	svc := &mockRequisitionService{
		createFn: func(ctx context.Context, requestedBy, notes string, items []model.RequisitionItem) (model.Requisition, error) {
			gotBy, gotNotes, gotItems = requestedBy, notes, items
			return sampleRequisition(), nil
		},
	}

	body := `{"requestedBy":"u-7","notes":"running low","items":[{"ingredientId":"i-butter","quantity":"3"}]}`
	req := httptest.NewRequest("POST", "/requisitions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newRequisitionRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusCreated)
	}
	if gotBy != "u-7" || gotNotes != "running low" {
		t.Errorf("forwarded fields: got (%q, %q)", gotBy, gotNotes)
	}
	if len(gotItems) != 1 || gotItems[0].IngredientID != "i-butter" {
		t.Errorf("forwarded items: got %+v", gotItems)
	}

	var resp model.Requisition
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != enum.RequisitionStatusPending {
		t.Errorf("status field: got %q, want %q", resp.Status, enum.RequisitionStatusPending)
	}
}

func TestCreateRequisition_EmptyItems(t *testing.T) {
	svc := &mockRequisitionService{
		createFn: func(ctx context.Context, requestedBy, notes string, items []model.RequisitionItem) (model.Requisition, error) {
			return model.Requisition{}, service.ErrEmptyItems
		},
	}

	req := httptest.NewRequest("POST", "/requisitions", strings.NewReader(`{"requestedBy":"u-7","items":[]}`))
	rr := httptest.NewRecorder()
	newRequisitionRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetRequisition_NotFound(t *testing.T) {
	svc := &mockRequisitionService{
		getFn: func(ctx context.Context, id string) (model.Requisition, error) {
			return model.Requisition{}, service.ErrRequisitionNotFound
		},
	}

	req := httptest.NewRequest("GET", "/requisitions/nope", nil)
	rr := httptest.NewRecorder()
	newRequisitionRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUpdateRequisitionStatus(t *testing.T) {
	svc := &mockRequisitionService{
		updateStatusFn: func(ctx context.Context, id, status string) (model.Requisition, error) {
			if id != "req-1" || status != enum.RequisitionStatusApproved {
				t.Errorf("forwarded: got (%q, %q)", id, status)
			}
			r := sampleRequisition()
			r.Status = status
			return r, nil
		},
	}

	req := httptest.NewRequest("PATCH", "/requisitions/req-1/status", strings.NewReader(`{"status":"APPROVED"}`))
	rr := httptest.NewRecorder()
	newRequisitionRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestUpdateRequisitionStatus_Resolved(t *testing.T) {
	svc := &mockRequisitionService{
		updateStatusFn: func(ctx context.Context, id, status string) (model.Requisition, error) {
			return model.Requisition{}, service.ErrRequisitionResolved
		},
	}

	req := httptest.NewRequest("PATCH", "/requisitions/req-1/status", strings.NewReader(`{"status":"APPROVED"}`))
	rr := httptest.NewRecorder()
	newRequisitionRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestUpdateRequisitionStatus_MissingStatus(t *testing.T) {
	svc := &mockRequisitionService{}

	req := httptest.NewRequest("PATCH", "/requisitions/req-1/status", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	newRequisitionRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
