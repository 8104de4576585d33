// Package store is the generic persistence layer: seven named
// collections of JSON documents keyed by record id, with a poll-based
// snapshot subscription on top. Writes are last-write-wins; there are
// no diffs, no versions and no cross-collection transactions.
package store

import (
	"context"
	"errors"
)

// Collection names used by the application.
const (
	Orders       = "orders"
	MenuItems    = "menuItems"
	Ingredients  = "ingredients"
	Users        = "users"
	Expenses     = "expenses"
	Requisitions = "requisitions"
	Customers    = "customers"
)

// Names lists every collection, in seed/migration order.
var Names = []string{Orders, MenuItems, Ingredients, Users, Expenses, Requisitions, Customers}

// ErrUnknownCollection is returned for a collection name outside Names.
var ErrUnknownCollection = errors.New("unknown collection")

// Store persists raw JSON documents in named collections.
// Add and Update are both upserts: a later write for the same id
// unconditionally replaces the earlier one.
type Store interface {
	List(ctx context.Context, collection string) ([][]byte, error)
	Add(ctx context.Context, collection, id string, doc []byte) error
	Update(ctx context.Context, collection, id string, doc []byte) error
	Delete(ctx context.Context, collection, id string) error
	BulkAdd(ctx context.Context, collection string, docs map[string][]byte) error
	BulkUpdate(ctx context.Context, collection string, docs map[string][]byte) error
	BulkDelete(ctx context.Context, collection string, ids []string) error
	Ping(ctx context.Context) error
}

func validCollection(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
