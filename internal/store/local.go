package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
	"bloodlink/internal/kv"
)

// Local is the local-storage adapter: each collection is a JSON array stored
// under the collection name in a kv.Store.
type Local struct {
	kv     kv.Store
	logger zerolog.Logger
	admins []domain.Admin

	// mu serializes read-modify-write cycles on whole collections.
	mu sync.Mutex
}

type LocalOption func(*Local)

func WithLocalLogger(logger zerolog.Logger) LocalOption {
	return func(l *Local) { l.logger = logger }
}

// WithSeedAdmins replaces the admins written when the admins key is absent.
func WithSeedAdmins(admins ...domain.Admin) LocalOption {
	return func(l *Local) { l.admins = admins }
}

// DefaultAdmin is seeded into an empty local admins collection.
var DefaultAdmin = domain.Admin{ID: "1", Username: "admin", Password: "123"}

func NewLocal(store kv.Store, opts ...LocalOption) *Local {
	l := &Local{
		kv:     store,
		logger: zerolog.Nop(),
		admins: []domain.Admin{DefaultAdmin},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Seed writes default contents for every collection key that is absent:
// empty lists, and the seed admins for the admins collection.
func (l *Local) Seed(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range domain.Collections {
		_, ok, err := l.kv.Get(ctx, c.String())
		if err != nil {
			return fmt.Errorf("seed %s: %w", c, err)
		}
		if ok {
			continue
		}
		var value any = []json.RawMessage{}
		if c == domain.CollectionAdmins {
			value = l.admins
		}
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("seed %s: %w", c, err)
		}
		if err := l.kv.Set(ctx, c.String(), string(data)); err != nil {
			return fmt.Errorf("seed %s: %w", c, err)
		}
	}
	return nil
}

// List returns the stored collection. Absent, unreadable or corrupt values
// read as an empty collection.
func (l *Local) List(ctx context.Context, c domain.Collection) []json.RawMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load(ctx, c)
	if err != nil {
		l.logger.Warn().Err(err).Str("collection", c.String()).Msg("local: read failed, treating collection as empty")
		return []json.RawMessage{}
	}
	return records
}

// Append adds record to the end of the collection.
func (l *Local) Append(ctx context.Context, c domain.Collection, record json.RawMessage) error {
	if !json.Valid(record) {
		return errors.New("record is not valid JSON")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load(ctx, c)
	if err != nil {
		return err
	}
	records = append(records, record)
	return l.save(ctx, c, records)
}

// Merge shallow-merges patch into the record with the given id. A missing id
// leaves the collection untouched.
func (l *Local) Merge(ctx context.Context, c domain.Collection, id string, patch json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load(ctx, c)
	if err != nil {
		return err
	}
	for i, raw := range records {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if recordID(rec) != id {
			continue
		}
		for k, v := range fields {
			rec[k] = v
		}
		merged, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		records[i] = merged
		return l.save(ctx, c, records)
	}
	return nil
}

// Remove drops every record with the given id.
func (l *Local) Remove(ctx context.Context, c domain.Collection, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load(ctx, c)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, raw := range records {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(raw, &rec); err == nil && recordID(rec) == id {
			continue
		}
		kept = append(kept, raw)
	}
	if len(kept) == len(records) {
		return nil
	}
	return l.save(ctx, c, kept)
}

// LoadValue decodes the JSON value stored under an arbitrary key into dest.
// It reports false when the key is absent.
func (l *Local) LoadValue(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok, err := l.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveValue stores v as JSON under an arbitrary key.
func (l *Local) SaveValue(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return l.kv.Set(ctx, key, string(data))
}

func (l *Local) load(ctx context.Context, c domain.Collection) ([]json.RawMessage, error) {
	raw, ok, err := l.kv.Get(ctx, c.String())
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []json.RawMessage{}, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c, err)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

func (l *Local) save(ctx context.Context, c domain.Collection, records []json.RawMessage) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	return l.kv.Set(ctx, c.String(), string(data))
}

// recordID reads the id field of a decoded record. Numeric ids, as issued by
// some REST backends, compare by their literal text.
func recordID(rec map[string]json.RawMessage) string {
	raw, ok := rec["id"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
