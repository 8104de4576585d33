// Package inventory translates order line-item changes into signed
// ingredient stock adjustments. It is pure computation over in-memory
// snapshots; callers persist the returned records.
package inventory

import (
	"strings"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/enum"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// Direction selects whether accumulated amounts are subtracted from or
// added back to stock.
type Direction string

const (
	Deduct  Direction = "deduct"
	Restore Direction = "restore"
)

// Event is one consumption event: a quantity of a menu item at a given
// portion size. Quantity is decimal because edit deltas are computed in
// full-portion-equivalent units and can be fractional.
type Event struct {
	MenuItemID string
	Quantity   decimal.Decimal
	Portion    string
}

var (
	ratioHalf    = decimal.NewFromFloat(0.5)
	ratioQuarter = decimal.NewFromFloat(0.25)

	// Defaults for the estimate strategy, keyed by unit class.
	defaultQtyBulk  = decimal.NewFromFloat(0.25) // kg, l
	defaultQtySmall = decimal.NewFromInt(250)    // g, ml
	defaultQtyPiece = decimal.NewFromInt(1)
)

// PortionRatio maps a portion label to its recipe scaling factor.
// Only the exact labels match; anything else is a full portion.
func PortionRatio(portion string) decimal.Decimal {
	switch portion {
	case enum.PortionHalf:
		return ratioHalf
	case enum.PortionQuarter:
		return ratioQuarter
	}
	return decimal.NewFromInt(1)
}

// Consumption is one ingredient amount implied by a single full-portion
// unit of a menu item.
type Consumption struct {
	IngredientID string
	Quantity     decimal.Decimal
}

// ConsumptionStrategy derives per-unit ingredient consumption for a
// menu item from an ingredient catalog snapshot.
type ConsumptionStrategy interface {
	Consume(item model.MenuItem, catalog []model.Ingredient) []Consumption
}

// RecipeStrategy reads the explicit recipe. Lines referencing
// ingredients missing from the catalog are dropped by the caller at
// apply time, not here: the recipe is authoritative as written.
type RecipeStrategy struct{}

func (RecipeStrategy) Consume(item model.MenuItem, _ []model.Ingredient) []Consumption {
	out := make([]Consumption, 0, len(item.Ingredients))
	for _, line := range item.Ingredients {
		qty := line.Quantity
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		out = append(out, Consumption{IngredientID: line.IngredientID, Quantity: qty})
	}
	return out
}

// EstimateStrategy guesses consumption for menu items entered without a
// recipe: any catalog ingredient whose name appears inside the item
// name counts, at a default quantity chosen by its unit. This is a
// known-lossy estimate, not a ledger.
type EstimateStrategy struct{}

func (EstimateStrategy) Consume(item model.MenuItem, catalog []model.Ingredient) []Consumption {
	itemName := strings.ToLower(item.Name)
	var out []Consumption
	for _, ing := range catalog {
		name := strings.ToLower(ing.Name)
		// Names of 2 chars or fewer match too many item names.
		if len(name) <= 2 || !strings.Contains(itemName, name) {
			continue
		}
		out = append(out, Consumption{
			IngredientID: ing.ID,
			Quantity:     defaultQuantity(ing.Unit),
		})
	}
	return out
}

func defaultQuantity(unit string) decimal.Decimal {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "kg", "l", "liter", "litre", "kgs":
		return defaultQtyBulk
	case "g", "gm", "ml", "gms":
		return defaultQtySmall
	}
	return defaultQtyPiece
}

// strategyFor selects the exact recipe when one exists, otherwise the
// name-match estimate.
func strategyFor(item model.MenuItem) ConsumptionStrategy {
	if len(item.Ingredients) > 0 {
		return RecipeStrategy{}
	}
	return EstimateStrategy{}
}

// Reconcile accumulates the ingredient amounts implied by events and
// applies them to the ingredient snapshot in the given direction.
// It returns only the touched records, already adjusted; the snapshot
// itself is not mutated. Unknown menu items, unknown ingredients and
// empty input are all silently skipped.
func Reconcile(events []Event, dir Direction, menuItems []model.MenuItem, ingredients []model.Ingredient) []model.Ingredient {
	if len(events) == 0 {
		return nil
	}

	menuByID := make(map[string]model.MenuItem, len(menuItems))
	for _, m := range menuItems {
		menuByID[m.ID] = m
	}

	totals := make(map[string]decimal.Decimal)
	for _, ev := range events {
		item, ok := menuByID[ev.MenuItemID]
		if !ok {
			// Item deleted from the catalog after being ordered:
			// its consumption is simply not tracked.
			continue
		}
		qty := ev.Quantity
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		factor := qty.Mul(PortionRatio(ev.Portion))
		for _, c := range strategyFor(item).Consume(item, ingredients) {
			totals[c.IngredientID] = totals[c.IngredientID].Add(c.Quantity.Mul(factor))
		}
	}

	var changed []model.Ingredient
	for _, ing := range ingredients {
		amount, ok := totals[ing.ID]
		if !ok || amount.IsZero() {
			continue
		}
		switch dir {
		case Restore:
			ing.StockQuantity = ing.StockQuantity.Add(amount)
		default:
			// Deduction clamps at zero; the shortfall is absorbed.
			ing.StockQuantity = ing.StockQuantity.Sub(amount)
			if ing.StockQuantity.IsNegative() {
				ing.StockQuantity = decimal.Zero
			}
		}
		changed = append(changed, ing)
	}
	return changed
}
