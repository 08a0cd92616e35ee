// Package store persists the pending and approved record collections.
//
// The contract is deliberately coarse: Load returns the entire collection as
// a mapping, Save replaces the entire collection. Callers load, compute the
// full resulting mapping, and save. Both backends serialize mutations so two
// concurrent load→mutate→save sections on the same store cannot lose a write.
package store

import (
	"context"

	"github.com/jkaninda/resourcebot/internal/domain"
)

// Store is the durable mapping abstraction over the named collections.
type Store interface {
	// Load returns the full contents of a collection. A collection with no
	// backing data yields an empty map, not an error.
	Load(ctx context.Context, collection string) (map[string]domain.Record, error)

	// Save replaces the full contents of a collection.
	Save(ctx context.Context, collection string, records map[string]domain.Record) error

	// Update runs fn over the current contents of a collection and saves the
	// result, all under the store's mutation lock. fn receives a private copy
	// it may mutate in place; returning false skips the save.
	Update(ctx context.Context, collection string, fn func(map[string]domain.Record) bool) error

	Close() error
}
