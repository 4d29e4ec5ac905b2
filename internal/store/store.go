package store

import (
	"context"
	"errors"
	"time"
)

// Item is a raw stored record: a flat id-keyed attribute map. The "payload"
// attribute of webhook items is opaque to this package and round-trips
// verbatim through JSON.
type Item map[string]any

var (
	// ErrNotFound means the item does not exist. Never returned for
	// connectivity problems.
	ErrNotFound = errors.New("item not found")

	// ErrUnavailable means the backing store could not be reached. Callers
	// must not treat this as a missing item.
	ErrUnavailable = errors.New("store unavailable")
)

// ItemStore is a key-value persistence abstraction over named collections.
// A collection exists lazily from the first time it is addressed; items are
// addressed by their "id" attribute only.
type ItemStore interface {
	// Put inserts or fully overwrites the item by its id.
	Put(ctx context.Context, collection string, item Item) error

	// Get returns the item or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Item, error)

	// Update applies a partial merge: only the named fields change, all
	// other attributes keep their prior values, and updated_at is refreshed
	// as part of the same merge. Returns the merged item, or ErrNotFound if
	// the id is absent.
	Update(ctx context.Context, collection, id string, fields Item) (Item, error)

	// Scan returns up to limit items in store-defined order. Callers must
	// not depend on any particular ordering.
	Scan(ctx context.Context, collection string, limit int) ([]Item, error)

	// Delete removes the item. Deleting an absent id is a no-op.
	Delete(ctx context.Context, collection, id string) error
}

// ID returns the item's primary key, or "" if unset.
func (i Item) ID() string {
	id, _ := i["id"].(string)
	return id
}

// merge applies fields over base and refreshes updated_at. The base map is
// modified in place.
func merge(base, fields Item) Item {
	for k, v := range fields {
		base[k] = v
	}
	base["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	return base
}
