package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"gorm.io/gorm"
)

// PostgresStore keeps one lazily-created table per collection, each holding
// the raw item as a jsonb document keyed by id. No fixed schema beyond the
// primary key, matching the on-demand provisioning contract.
type PostgresStore struct {
	db      *gorm.DB
	ensured sync.Map // collection name -> struct{}
}

var collectionNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ensureCollection creates the collection table on first use.
func (s *PostgresStore) ensureCollection(ctx context.Context, collection string) error {
	if !collectionNameRe.MatchString(collection) {
		return fmt.Errorf("invalid collection name: %q", collection)
	}
	if _, ok := s.ensured.Load(collection); ok {
		return nil
	}

	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id text PRIMARY KEY, item jsonb NOT NULL)",
		collection,
	)
	if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.ensured.Store(collection, struct{}{})
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, collection string, item Item) error {
	id := item.ID()
	if id == "" {
		return fmt.Errorf("item has no id")
	}
	if err := s.ensureCollection(ctx, collection); err != nil {
		return err
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (id, item) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET item = EXCLUDED.item",
		collection,
	)
	if err := s.db.WithContext(ctx).Exec(stmt, id, string(data)).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Item, error) {
	if err := s.ensureCollection(ctx, collection); err != nil {
		return nil, err
	}

	var raw string
	stmt := fmt.Sprintf("SELECT item::text FROM %s WHERE id = ?", collection)
	tx := s.db.WithContext(ctx).Raw(stmt, id).Scan(&raw)
	if tx.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s: %w", id, err)
	}
	return item, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields Item) (Item, error) {
	item, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	merged := merge(item, fields)
	if err := s.Put(ctx, collection, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *PostgresStore) Scan(ctx context.Context, collection string, limit int) ([]Item, error) {
	if err := s.ensureCollection(ctx, collection); err != nil {
		return nil, err
	}

	var rows []string
	stmt := fmt.Sprintf("SELECT item::text FROM %s LIMIT ?", collection)
	if err := s.db.WithContext(ctx).Raw(stmt, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	items := make([]Item, 0, len(rows))
	for _, raw := range rows {
		var item Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scanned item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.ensureCollection(ctx, collection); err != nil {
		return err
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = ?", collection)
	if err := s.db.WithContext(ctx).Exec(stmt, id).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
