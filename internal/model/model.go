// Package model holds the persisted record types for the seven named
// collections. Field names follow the wire format produced by the POS
// clients, so records round-trip through the collection store unchanged.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is anything storable in a named collection.
type Record interface {
	RecordID() string
}

// RecipeLine is one ingredient consumed by a single full-portion unit
// of a menu item.
type RecipeLine struct {
	IngredientID string          `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// PortionPrices overrides the base price per portion size. A nil field
// means the portion is not sold.
type PortionPrices struct {
	Full    *decimal.Decimal `json:"full,omitempty"`
	Half    *decimal.Decimal `json:"half,omitempty"`
	Quarter *decimal.Decimal `json:"quarter,omitempty"`
}

// MenuItem is a sellable dish. When Ingredients is non-empty it is the
// authoritative recipe; when empty, consumption is estimated by name
// matching against the ingredient catalog.
type MenuItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	PortionPrices *PortionPrices  `json:"portionPrices,omitempty"`
	Ingredients   []RecipeLine    `json:"ingredients"`
	Category      string          `json:"category,omitempty"`
	Available     bool            `json:"available"`
}

func (m MenuItem) RecordID() string { return m.ID }

// Ingredient is one catalog entry. Stock is mutated only by the
// reconciliation engine and by procurement; name/unit/cost only by
// direct catalog edits.
type Ingredient struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	Unit          string          `json:"unit"`
	UnitCost      decimal.Decimal `json:"unitCost"`
	StockQuantity decimal.Decimal `json:"stockQuantity"`
	Barcode       string          `json:"barcode,omitempty"`
}

func (i Ingredient) RecordID() string { return i.ID }

// LineItem is one line of an order. Name and PriceAtOrder are snapshots
// taken at order time and stay authoritative even if the menu item
// changes later. A line keeps its own ID across edits; delta matching
// during edits keys on it, not on MenuItemID.
type LineItem struct {
	ID           string          `json:"id"`
	MenuItemID   string          `json:"menuItemId"`
	Name         string          `json:"name,omitempty"`
	Quantity     int             `json:"quantity"`
	Portion      string          `json:"portion,omitempty"`
	PriceAtOrder decimal.Decimal `json:"priceAtOrder"`
	Modifiers    []string        `json:"modifiers,omitempty"`
}

// Order is never physically deleted; cancellation is a status.
type Order struct {
	ID            string          `json:"id"`
	TableNumber   string          `json:"tableNumber"`
	ServerName    string          `json:"serverName"`
	Items         []LineItem      `json:"items"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	Discount      decimal.Decimal `json:"discount"`
}

func (o Order) RecordID() string { return o.ID }

// User is a staff account. PasswordHash is bcrypt and never serialized
// into API responses (handlers strip it).
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

func (u User) RecordID() string { return u.ID }

// Expense is a recorded cost, either entered directly or generated when
// a requisition is received.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
}

func (e Expense) RecordID() string { return e.ID }

// RequisitionItem is one requested restock line.
type RequisitionItem struct {
	IngredientID string          `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// Requisition is a staff-originated restock request. Receiving it adds
// the requested quantities to ingredient stock and records an expense.
type Requisition struct {
	ID          string            `json:"id"`
	RequestedBy string            `json:"requestedBy"`
	Items       []RequisitionItem `json:"items"`
	Status      string            `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	ResolvedAt  *time.Time        `json:"resolvedAt,omitempty"`
}

func (r Requisition) RecordID() string { return r.ID }

// Customer is a loyalty record maintained by the POS.
type Customer struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone,omitempty"`
	Email      string          `json:"email,omitempty"`
	Visits     int             `json:"visits"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

func (c Customer) RecordID() string { return c.ID }
