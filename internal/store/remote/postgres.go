package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bloodlink/internal/domain"
	"bloodlink/internal/infra"
	"bloodlink/internal/sqlinline"
)

// Postgres keeps every collection in a single jsonb table.
type Postgres struct {
	db infra.SQLExecutor
}

func NewPostgres(db infra.SQLExecutor) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the records table when it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, sqlinline.QRecordsEnsureSchema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Probe(ctx context.Context) error {
	var one int
	if err := p.db.QueryRow(ctx, sqlinline.QRecordsPing).Scan(&one); err != nil {
		return unavailable("probe", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, c domain.Collection) ([]json.RawMessage, error) {
	rows, err := p.db.Query(ctx, sqlinline.QRecordsList, c.String())
	if err != nil {
		return nil, unavailable("list "+c.String(), err)
	}
	defer rows.Close()

	records := []json.RawMessage{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, unavailable("list "+c.String(), err)
		}
		records = append(records, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list "+c.String(), err)
	}
	return records, nil
}

func (p *Postgres) Create(ctx context.Context, c domain.Collection, record json.RawMessage) error {
	id, err := idOf(record)
	if err != nil {
		return err
	}
	if _, err := p.db.Exec(ctx, sqlinline.QRecordsInsert, c.String(), id, []byte(record)); err != nil {
		return unavailable("create "+c.String(), err)
	}
	return nil
}

// Update merges the top-level keys of patch into the stored body.
func (p *Postgres) Update(ctx context.Context, c domain.Collection, id string, patch json.RawMessage) error {
	if _, err := p.db.Exec(ctx, sqlinline.QRecordsMerge, c.String(), id, []byte(patch)); err != nil {
		return unavailable("update "+c.String(), err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, c domain.Collection, id string) error {
	if _, err := p.db.Exec(ctx, sqlinline.QRecordsDelete, c.String(), id); err != nil {
		return unavailable("delete "+c.String(), err)
	}
	return nil
}

// idOf extracts the id field of an encoded record. Numeric ids are kept in
// their literal form.
func idOf(record json.RawMessage) (string, error) {
	var fields struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(record, &fields); err != nil {
		return "", fmt.Errorf("remote: decode record: %w", err)
	}
	if len(fields.ID) == 0 {
		return "", errors.New("remote: record has no id")
	}
	var s string
	if err := json.Unmarshal(fields.ID, &s); err == nil {
		return s, nil
	}
	return strings.TrimSpace(string(fields.ID)), nil
}
