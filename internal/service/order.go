// Package service holds the order lifecycle controller and the
// procurement workflow. The controller is the sole writer of the orders
// collection and, through the reconciliation engine, the sole writer of
// ingredient stock.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/enum"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/inventory"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrOrderCancelled       = errors.New("order is cancelled")
)

// EventSink receives order lifecycle events for the kitchen feed.
// Satisfied by *ws.Hub; nil-safe via noopSink.
type EventSink interface {
	Broadcast(event string, payload any)
}

type noopSink struct{}

func (noopSink) Broadcast(string, any) {}

// PlaceOrderRequest is the validated input for placing an order.
type PlaceOrderRequest struct {
	TableNumber string
	ServerName  string
	TaxRate     decimal.Decimal
	Discount    decimal.Decimal
	Items       []LineItemRequest
}

// LineItemRequest is a single cart line. ID is kept when provided so
// edits can match lines; a missing ID gets a generated one.
type LineItemRequest struct {
	ID           string
	MenuItemID   string
	Name         string
	Quantity     int
	Portion      string
	PriceAtOrder decimal.Decimal
	Modifiers    []string
}

// OrderService owns the authoritative in-memory order list and the
// menu/ingredient snapshots the reconciliation engine computes over.
// Snapshots are refreshed by poller subscriptions; writes go through
// the tracked store so the poller suppresses racing refreshes.
type OrderService struct {
	orders      *store.Collection[model.Order]
	ingredients *store.Collection[model.Ingredient]
	sink        EventSink
	log         zerolog.Logger

	mu        sync.Mutex
	orderList []model.Order
	menuItems []model.MenuItem
	catalog   []model.Ingredient
}

// NewOrderService creates an OrderService over the given collections.
// A nil sink disables broadcasting.
func NewOrderService(orders *store.Collection[model.Order], ingredients *store.Collection[model.Ingredient], sink EventSink, log zerolog.Logger) *OrderService {
	if sink == nil {
		sink = noopSink{}
	}
	return &OrderService{
		orders:      orders,
		ingredients: ingredients,
		sink:        sink,
		log:         log,
	}
}

// Start subscribes the controller to the orders, menuItems and
// ingredients snapshots. The initial snapshots are delivered before
// Start returns.
func (s *OrderService) Start(ctx context.Context, p *store.Poller) error {
	_, err := p.Subscribe(ctx, store.Orders, func(docs [][]byte) {
		recs, err := store.Decode[model.Order](store.Orders, docs)
		if err != nil {
			s.log.Warn().Err(err).Msg("orders snapshot dropped")
			return
		}
		s.mu.Lock()
		s.orderList = recs
		s.mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("subscribe orders: %w", err)
	}

	_, err = p.Subscribe(ctx, store.MenuItems, func(docs [][]byte) {
		recs, err := store.Decode[model.MenuItem](store.MenuItems, docs)
		if err != nil {
			s.log.Warn().Err(err).Msg("menuItems snapshot dropped")
			return
		}
		s.mu.Lock()
		s.menuItems = recs
		s.mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("subscribe menuItems: %w", err)
	}

	_, err = p.Subscribe(ctx, store.Ingredients, func(docs [][]byte) {
		recs, err := store.Decode[model.Ingredient](store.Ingredients, docs)
		if err != nil {
			s.log.Warn().Err(err).Msg("ingredients snapshot dropped")
			return
		}
		s.mu.Lock()
		s.catalog = recs
		s.mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("subscribe ingredients: %w", err)
	}
	return nil
}

// PlaceOrder creates a NEW order and deducts its full consumption.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (model.Order, error) {
	if len(req.Items) == 0 {
		return model.Order{}, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return model.Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order := model.Order{
		ID:            uuid.New().String(),
		TableNumber:   req.TableNumber,
		ServerName:    req.ServerName,
		Items:         s.buildItems(req.Items),
		Status:        enum.OrderStatusNew,
		PaymentStatus: enum.PaymentStatusPending,
		CreatedAt:     time.Now().UTC(),
		TaxRate:       req.TaxRate,
		Discount:      req.Discount,
	}

	s.applyInventory(ctx, consumptionEvents(order.Items), inventory.Deduct)

	s.orderList = append(s.orderList, order)
	s.persistOrder(ctx, order, true)
	s.sink.Broadcast("order.placed", order)
	return order, nil
}

// ReplaceItems swaps an order's item list for a new one and applies the
// per-line stock delta. Lines match by their own id, not by menu item:
// re-adding the same dish under a new line id counts as fresh
// consumption plus a full removal of the old line.
func (s *OrderService) ReplaceItems(ctx context.Context, orderID string, items []LineItemRequest) (model.Order, error) {
	if len(items) == 0 {
		return model.Order{}, ErrEmptyItems
	}
	for i, item := range items {
		if item.Quantity <= 0 {
			return model.Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.find(orderID)
	if err != nil {
		return model.Order{}, err
	}
	order := s.orderList[idx]

	newItems := s.buildItems(items)
	toDeduct, toRestore := itemDeltas(order.Items, newItems)

	// Both batches always run; the engine no-ops on empty input. A
	// cancelled order holds no stock, so its edits adjust nothing.
	if order.Status != enum.OrderStatusCancelled {
		s.applyInventory(ctx, toDeduct, inventory.Deduct)
		s.applyInventory(ctx, toRestore, inventory.Restore)
	}

	order.Items = newItems
	s.orderList[idx] = order
	s.persistOrder(ctx, order, false)
	s.sink.Broadcast("order.updated", order)
	return order, nil
}

// UpdateStatus advances the order state machine. Entering CANCELLED
// restores the order's full current consumption; leaving it deducts the
// same again. The first transition into SERVED or CANCELLED stamps
// completedAt, exactly once.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (model.Order, error) {
	if !isValidOrderStatus(status) {
		return model.Order{}, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.find(orderID)
	if err != nil {
		return model.Order{}, err
	}
	order := s.orderList[idx]

	if err := validateStatusTransition(order.Status, status); err != nil {
		return model.Order{}, err
	}

	events := consumptionEvents(order.Items)
	switch {
	case status == enum.OrderStatusCancelled && order.Status != enum.OrderStatusCancelled:
		s.applyInventory(ctx, events, inventory.Restore)
		if order.PaymentStatus != enum.PaymentStatusPaid {
			order.PaymentStatus = enum.PaymentStatusCancelled
		}
	case order.Status == enum.OrderStatusCancelled && status != enum.OrderStatusCancelled:
		s.applyInventory(ctx, events, inventory.Deduct)
		if order.PaymentStatus == enum.PaymentStatusCancelled {
			order.PaymentStatus = enum.PaymentStatusPending
		}
	}

	order.Status = status
	if (status == enum.OrderStatusServed || status == enum.OrderStatusCancelled) && order.CompletedAt == nil {
		now := time.Now().UTC()
		order.CompletedAt = &now
	}

	s.orderList[idx] = order
	s.persistOrder(ctx, order, false)
	s.sink.Broadcast("order.status", order)
	return order, nil
}

// MarkPaid records a payment. It never touches inventory.
func (s *OrderService) MarkPaid(ctx context.Context, orderID, method string) (model.Order, error) {
	if !isValidPaymentMethod(method) {
		return model.Order{}, ErrInvalidPaymentMethod
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.find(orderID)
	if err != nil {
		return model.Order{}, err
	}
	order := s.orderList[idx]
	if order.Status == enum.OrderStatusCancelled {
		return model.Order{}, ErrOrderCancelled
	}

	order.PaymentStatus = enum.PaymentStatusPaid
	order.PaymentMethod = method
	if order.CompletedAt == nil {
		now := time.Now().UTC()
		order.CompletedAt = &now
	}

	s.orderList[idx] = order
	s.persistOrder(ctx, order, false)
	s.sink.Broadcast("order.updated", order)
	return order, nil
}

// Get returns a single order from the in-memory list.
func (s *OrderService) Get(orderID string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.find(orderID)
	if err != nil {
		return model.Order{}, err
	}
	return s.orderList[idx], nil
}

// List returns orders newest first, optionally filtered by status.
func (s *OrderService) List(status string, limit, offset int) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Order, 0, len(s.orderList))
	for _, o := range s.orderList {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if offset >= len(out) {
		return []model.Order{}
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// --- Internals (callers hold s.mu) ---

func (s *OrderService) find(orderID string) (int, error) {
	for i, o := range s.orderList {
		if o.ID == orderID {
			return i, nil
		}
	}
	return 0, ErrOrderNotFound
}

// buildItems turns request lines into stored line items, snapshotting
// name and price from the menu when the client did not send them.
func (s *OrderService) buildItems(items []LineItemRequest) []model.LineItem {
	menuByID := make(map[string]model.MenuItem, len(s.menuItems))
	for _, m := range s.menuItems {
		menuByID[m.ID] = m
	}

	out := make([]model.LineItem, len(items))
	for i, req := range items {
		line := model.LineItem{
			ID:           req.ID,
			MenuItemID:   req.MenuItemID,
			Name:         req.Name,
			Quantity:     req.Quantity,
			Portion:      req.Portion,
			PriceAtOrder: req.PriceAtOrder,
			Modifiers:    req.Modifiers,
		}
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		if m, ok := menuByID[req.MenuItemID]; ok {
			if line.Name == "" {
				line.Name = m.Name
			}
			if line.PriceAtOrder.IsZero() {
				line.PriceAtOrder = portionPrice(m, req.Portion)
			}
		}
		out[i] = line
	}
	return out
}

// applyInventory runs the engine over the current snapshots and
// persists the touched ingredients. Persistence failures are logged and
// swallowed: the in-memory state is already updated and there is no
// rollback path at this layer.
func (s *OrderService) applyInventory(ctx context.Context, events []inventory.Event, dir inventory.Direction) {
	changed := inventory.Reconcile(events, dir, s.menuItems, s.catalog)
	if len(changed) == 0 {
		return
	}
	byID := make(map[string]model.Ingredient, len(changed))
	for _, ing := range changed {
		byID[ing.ID] = ing
	}
	for i := range s.catalog {
		if ing, ok := byID[s.catalog[i].ID]; ok {
			s.catalog[i] = ing
		}
	}
	if err := s.ingredients.BulkUpdate(ctx, changed); err != nil {
		s.log.Error().Err(err).Int("count", len(changed)).Msg("persist ingredient stock")
	}
}

func (s *OrderService) persistOrder(ctx context.Context, order model.Order, isNew bool) {
	var err error
	if isNew {
		err = s.orders.Add(ctx, order)
	} else {
		err = s.orders.Update(ctx, order)
	}
	if err != nil {
		s.log.Error().Err(err).Str("order", order.ID).Msg("persist order")
	}
}

// consumptionEvents expresses an item list as full-magnitude engine events.
func consumptionEvents(items []model.LineItem) []inventory.Event {
	events := make([]inventory.Event, 0, len(items))
	for _, item := range items {
		events = append(events, inventory.Event{
			MenuItemID: item.MenuItemID,
			Quantity:   decimal.NewFromInt(int64(item.Quantity)),
			Portion:    item.Portion,
		})
	}
	return events
}

// itemDeltas computes the net stock effect of replacing oldItems with
// newItems. Lines are matched by their own id. Because a line's portion
// can change along with its quantity, deltas are computed in
// full-portion-equivalent units, so a 2x Full line edited to 1x Half
// nets out to a 1.5-unit restoration.
func itemDeltas(oldItems, newItems []model.LineItem) (toDeduct, toRestore []inventory.Event) {
	oldByID := make(map[string]model.LineItem, len(oldItems))
	for _, item := range oldItems {
		oldByID[item.ID] = item
	}

	for _, item := range newItems {
		newEff := effectiveQuantity(item)
		old, ok := oldByID[item.ID]
		if !ok {
			// Fresh line: full new consumption.
			toDeduct = append(toDeduct, inventory.Event{MenuItemID: item.MenuItemID, Quantity: newEff})
			continue
		}
		delete(oldByID, item.ID)
		delta := newEff.Sub(effectiveQuantity(old))
		switch {
		case delta.IsPositive():
			toDeduct = append(toDeduct, inventory.Event{MenuItemID: item.MenuItemID, Quantity: delta})
		case delta.IsNegative():
			toRestore = append(toRestore, inventory.Event{MenuItemID: item.MenuItemID, Quantity: delta.Neg()})
		}
	}

	// Removed lines: restore their full old consumption.
	for _, old := range oldByID {
		toRestore = append(toRestore, inventory.Event{
			MenuItemID: old.MenuItemID,
			Quantity:   effectiveQuantity(old),
		})
	}
	return toDeduct, toRestore
}

func effectiveQuantity(item model.LineItem) decimal.Decimal {
	qty := int64(item.Quantity)
	if qty < 0 {
		qty = 0
	}
	return decimal.NewFromInt(qty).Mul(inventory.PortionRatio(item.Portion))
}

// portionPrice resolves the price snapshot for a portion, preferring an
// explicit portion price over the base price.
func portionPrice(m model.MenuItem, portion string) decimal.Decimal {
	if m.PortionPrices != nil {
		switch portion {
		case enum.PortionFull:
			if m.PortionPrices.Full != nil {
				return *m.PortionPrices.Full
			}
		case enum.PortionHalf:
			if m.PortionPrices.Half != nil {
				return *m.PortionPrices.Half
			}
		case enum.PortionQuarter:
			if m.PortionPrices.Quarter != nil {
				return *m.PortionPrices.Quarter
			}
		}
	}
	return m.Price
}

// --- Status machine ---

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusNew, enum.OrderStatusInProgress, enum.OrderStatusReady,
		enum.OrderStatusServed, enum.OrderStatusCancelled:
		return true
	}
	return false
}

func isValidPaymentMethod(s string) bool {
	switch s {
	case enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodUPI:
		return true
	}
	return false
}

// allowedTransitions defines the order status machine: stepwise forward,
// CANCELLED reachable from any non-terminal state, and recoverable back
// out of CANCELLED into any other status.
var allowedTransitions = map[string][]string{
	enum.OrderStatusNew:        {enum.OrderStatusInProgress, enum.OrderStatusCancelled},
	enum.OrderStatusInProgress: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:      {enum.OrderStatusServed, enum.OrderStatusCancelled},
	enum.OrderStatusCancelled: {
		enum.OrderStatusNew, enum.OrderStatusInProgress,
		enum.OrderStatusReady, enum.OrderStatusServed,
	},
}

func validateStatusTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("%w: cannot transition from %s", ErrInvalidTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, current, next)
}
