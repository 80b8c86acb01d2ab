package remote

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/domain"
	"bloodlink/internal/sqlinline"
)

type execCall struct {
	query string
	args  []any
}

type fakeExecutor struct {
	calls   []execCall
	execErr error
}

func (f *fakeExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	return pgconn.NewCommandTag("OK"), f.execErr
}

func (f *fakeExecutor) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{err: errors.New("connection reset")}
}

func (f *fakeExecutor) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("connection reset")
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestPostgresWritesUseRecordQueries(t *testing.T) {
	db := &fakeExecutor{}
	p := NewPostgres(db)
	ctx := context.Background()

	require.NoError(t, p.Create(ctx, domain.CollectionDonors, json.RawMessage(`{"id":"d1","name":"A"}`)))
	require.NoError(t, p.Update(ctx, domain.CollectionDonors, "d1", json.RawMessage(`{"city":"Pune"}`)))
	require.NoError(t, p.Delete(ctx, domain.CollectionDonors, "d1"))

	require.Len(t, db.calls, 3)
	assert.Equal(t, sqlinline.QRecordsInsert, db.calls[0].query)
	assert.Equal(t, []any{"donors", "d1", []byte(`{"id":"d1","name":"A"}`)}, db.calls[0].args)
	assert.Equal(t, sqlinline.QRecordsMerge, db.calls[1].query)
	assert.Equal(t, []any{"donors", "d1", []byte(`{"city":"Pune"}`)}, db.calls[1].args)
	assert.Equal(t, sqlinline.QRecordsDelete, db.calls[2].query)
	assert.Equal(t, []any{"donors", "d1"}, db.calls[2].args)
}

func TestPostgresFailuresAreUnavailable(t *testing.T) {
	db := &fakeExecutor{execErr: errors.New("connection refused")}
	p := NewPostgres(db)
	ctx := context.Background()

	assert.ErrorIs(t, p.Create(ctx, domain.CollectionAdmins, json.RawMessage(`{"id":"1"}`)), domain.ErrBackendUnavailable)
	assert.ErrorIs(t, p.Probe(ctx), domain.ErrBackendUnavailable)
	_, err := p.List(ctx, domain.CollectionAdmins)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}
