package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
)

// Record is implemented by every collection entity.
type Record interface {
	RecordID() string
}

// Table is a typed handle on one collection of the façade.
type Table[T Record] struct {
	facade     *Facade
	collection domain.Collection
	logger     zerolog.Logger
}

func NewTable[T Record](f *Facade, c domain.Collection) *Table[T] {
	return &Table[T]{facade: f, collection: c, logger: f.logger}
}

func (t *Table[T]) Collection() domain.Collection { return t.collection }

// List decodes every record. Records that do not fit the schema are skipped.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	raws, err := t.facade.List(ctx, t.collection)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(raws))
	for _, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			t.logger.Warn().Err(err).Str("collection", t.collection.String()).Msg("store: skipping malformed record")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Find returns the first record with the given id or domain.ErrNotFound.
func (t *Table[T]) Find(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := t.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if item.RecordID() == id {
			return item, nil
		}
	}
	return zero, domain.ErrNotFound
}

func (t *Table[T]) Create(ctx context.Context, item T) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", t.collection, err)
	}
	return t.facade.Create(ctx, t.collection, raw)
}

// Update merges patch, which must encode to a JSON object holding only the
// fields to change.
func (t *Table[T]) Update(ctx context.Context, id string, patch any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode %s patch: %w", t.collection, err)
	}
	return t.facade.Update(ctx, t.collection, id, raw)
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	return t.facade.Delete(ctx, t.collection, id)
}

// Tables bundles the typed handles of every collection.
type Tables struct {
	Donors     *Table[domain.Donor]
	Requests   *Table[domain.BloodRequest]
	Admins     *Table[domain.Admin]
	Activities *Table[domain.Activity]
}

func NewTables(f *Facade) Tables {
	return Tables{
		Donors:     NewTable[domain.Donor](f, domain.CollectionDonors),
		Requests:   NewTable[domain.BloodRequest](f, domain.CollectionRequests),
		Admins:     NewTable[domain.Admin](f, domain.CollectionAdmins),
		Activities: NewTable[domain.Activity](f, domain.CollectionActivities),
	}
}
