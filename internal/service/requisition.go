package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/enum"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Errors returned by the requisition service.
var (
	ErrRequisitionNotFound = errors.New("requisition not found")
	ErrRequisitionResolved = errors.New("requisition already resolved")
	ErrInvalidReqStatus    = errors.New("invalid requisition status")
)

// RequisitionService runs the procurement workflow. Receiving a
// requisition adds the requested quantities to ingredient stock and
// records a matching expense. Restock goes through the store directly,
// not through the reconciliation engine: it is a positive catalog
// adjustment, not order consumption.
type RequisitionService struct {
	requisitions *store.Collection[model.Requisition]
	ingredients  *store.Collection[model.Ingredient]
	expenses     *store.Collection[model.Expense]
	log          zerolog.Logger
}

// NewRequisitionService creates a RequisitionService.
func NewRequisitionService(
	requisitions *store.Collection[model.Requisition],
	ingredients *store.Collection[model.Ingredient],
	expenses *store.Collection[model.Expense],
	log zerolog.Logger,
) *RequisitionService {
	return &RequisitionService{
		requisitions: requisitions,
		ingredients:  ingredients,
		expenses:     expenses,
		log:          log,
	}
}

// Create records a PENDING requisition.
func (s *RequisitionService) Create(ctx context.Context, requestedBy, notes string, items []model.RequisitionItem) (model.Requisition, error) {
	if len(items) == 0 {
		return model.Requisition{}, ErrEmptyItems
	}
	for i, item := range items {
		if !item.Quantity.IsPositive() {
			return model.Requisition{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	req := model.Requisition{
		ID:          uuid.New().String(),
		RequestedBy: requestedBy,
		Items:       items,
		Status:      enum.RequisitionStatusPending,
		Notes:       notes,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.requisitions.Add(ctx, req); err != nil {
		return model.Requisition{}, fmt.Errorf("persist requisition: %w", err)
	}
	return req, nil
}

// List returns all requisitions.
func (s *RequisitionService) List(ctx context.Context) ([]model.Requisition, error) {
	return s.requisitions.List(ctx)
}

// Get returns one requisition by id.
func (s *RequisitionService) Get(ctx context.Context, id string) (model.Requisition, error) {
	reqs, err := s.requisitions.List(ctx)
	if err != nil {
		return model.Requisition{}, err
	}
	for _, r := range reqs {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Requisition{}, ErrRequisitionNotFound
}

// reqTransitions mirrors the order state machine style: PENDING can be
// approved or rejected, APPROVED can be received or rejected. RECEIVED
// and REJECTED are terminal.
var reqTransitions = map[string][]string{
	enum.RequisitionStatusPending:  {enum.RequisitionStatusApproved, enum.RequisitionStatusRejected},
	enum.RequisitionStatusApproved: {enum.RequisitionStatusReceived, enum.RequisitionStatusRejected},
}

// UpdateStatus advances the requisition workflow. The RECEIVED
// transition applies the restock and books the expense.
func (s *RequisitionService) UpdateStatus(ctx context.Context, id, status string) (model.Requisition, error) {
	switch status {
	case enum.RequisitionStatusApproved, enum.RequisitionStatusReceived, enum.RequisitionStatusRejected:
	default:
		return model.Requisition{}, ErrInvalidReqStatus
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		return model.Requisition{}, err
	}

	allowed, ok := reqTransitions[req.Status]
	if !ok {
		return model.Requisition{}, ErrRequisitionResolved
	}
	permitted := false
	for _, a := range allowed {
		if a == status {
			permitted = true
		}
	}
	if !permitted {
		return model.Requisition{}, fmt.Errorf("%w: cannot move %s to %s", ErrInvalidTransition, req.Status, status)
	}

	if status == enum.RequisitionStatusReceived {
		if err := s.receive(ctx, req); err != nil {
			return model.Requisition{}, err
		}
	}

	req.Status = status
	if status == enum.RequisitionStatusReceived || status == enum.RequisitionStatusRejected {
		now := time.Now().UTC()
		req.ResolvedAt = &now
	}
	if err := s.requisitions.Update(ctx, req); err != nil {
		return model.Requisition{}, fmt.Errorf("persist requisition: %w", err)
	}
	return req, nil
}

// receive adds the requested quantities to stock and records the cost
// as an INGREDIENTS expense. Lines referencing ingredients no longer in
// the catalog are skipped, matching the engine's silent-skip taxonomy.
func (s *RequisitionService) receive(ctx context.Context, req model.Requisition) error {
	catalog, err := s.ingredients.List(ctx)
	if err != nil {
		return fmt.Errorf("load ingredients: %w", err)
	}
	byID := make(map[string]int, len(catalog))
	for i, ing := range catalog {
		byID[ing.ID] = i
	}

	var changed []model.Ingredient
	total := decimal.Zero
	for _, item := range req.Items {
		i, ok := byID[item.IngredientID]
		if !ok {
			s.log.Warn().Str("ingredient", item.IngredientID).Msg("requisition line skipped, ingredient missing")
			continue
		}
		ing := catalog[i]
		ing.StockQuantity = ing.StockQuantity.Add(item.Quantity)
		catalog[i] = ing
		changed = append(changed, ing)
		total = total.Add(item.Quantity.Mul(ing.UnitCost))
	}

	if len(changed) > 0 {
		if err := s.ingredients.BulkUpdate(ctx, changed); err != nil {
			return fmt.Errorf("persist restock: %w", err)
		}
	}

	expense := model.Expense{
		ID:          uuid.New().String(),
		Description: "Stock received for requisition " + req.ID,
		Category:    enum.ExpenseCategoryIngredients,
		Amount:      total,
		Date:        time.Now().UTC(),
	}
	if err := s.expenses.Add(ctx, expense); err != nil {
		// Stock is already adjusted; the missing expense row is an
		// accounting gap, not a rollback trigger.
		s.log.Error().Err(err).Str("requisition", req.ID).Msg("persist expense")
	}
	return nil
}
