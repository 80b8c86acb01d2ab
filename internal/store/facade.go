// Package store mediates every collection read and write between the remote
// collection service and local key-value storage.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
)

const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

// Remote is a network collection service.
type Remote interface {
	// Probe is a lightweight reachability check.
	Probe(ctx context.Context) error
	List(ctx context.Context, c domain.Collection) ([]json.RawMessage, error)
	Create(ctx context.Context, c domain.Collection, record json.RawMessage) error
	Update(ctx context.Context, c domain.Collection, id string, patch json.RawMessage) error
	Delete(ctx context.Context, c domain.Collection, id string) error
}

// Observer receives per-operation outcomes, typically for metrics.
type Observer interface {
	ObserveOperation(collection, op, backend string, err error)
	ObserveFallback(collection, op string)
}

// Facade chooses between the remote and local adapters. Once any remote call
// fails it switches to local storage for the rest of the process lifetime;
// it never probes the remote again and never copies local writes back.
type Facade struct {
	remote   Remote
	local    *Local
	logger   zerolog.Logger
	observer Observer

	useLocal atomic.Bool
}

type Option func(*Facade)

func WithLogger(logger zerolog.Logger) Option {
	return func(f *Facade) { f.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(f *Facade) { f.observer = o }
}

// NewFacade builds the façade. A nil remote means local-only operation.
func NewFacade(remote Remote, local *Local, opts ...Option) *Facade {
	f := &Facade{
		remote: remote,
		local:  local,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Init runs the one-time startup probe. It must complete before the first
// data operation. The only error is a failure to seed local storage after
// switching to it.
func (f *Facade) Init(ctx context.Context) error {
	if f.remote == nil {
		f.useLocal.Store(true)
		f.logger.Info().Msg("store: no remote configured, using local storage")
		return f.seed(ctx)
	}
	if err := f.remote.Probe(ctx); err != nil {
		f.useLocal.Store(true)
		f.logger.Warn().Err(err).Msg("store: remote unreachable, using local storage")
		if f.observer != nil {
			f.observer.ObserveFallback("", "probe")
		}
		return f.seed(ctx)
	}
	f.logger.Info().Msg("store: connected to remote")
	return nil
}

// Mode reports which backend currently serves operations.
func (f *Facade) Mode() string {
	if f.useLocal.Load() {
		return ModeLocal
	}
	return ModeRemote
}

// Local exposes the local adapter for state that never leaves local storage.
func (f *Facade) Local() *Local { return f.local }

// List returns every record of c. Local failures read as an empty
// collection; the only error is the caller's context ending.
func (f *Facade) List(ctx context.Context, c domain.Collection) ([]json.RawMessage, error) {
	if !f.useLocal.Load() {
		records, err := f.remote.List(ctx, c)
		if err == nil {
			f.observe(c, "list", ModeRemote, nil)
			return records, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		f.fallback(ctx, c, "list", err)
	}
	records := f.local.List(ctx, c)
	f.observe(c, "list", ModeLocal, nil)
	return records, nil
}

// Create appends record to c.
func (f *Facade) Create(ctx context.Context, c domain.Collection, record json.RawMessage) error {
	return f.write(ctx, c, "create",
		func(ctx context.Context) error { return f.remote.Create(ctx, c, record) },
		func(ctx context.Context) error { return f.local.Append(ctx, c, record) },
	)
}

// Update shallow-merges patch into the record with the given id. An empty id
// addresses no record and is a no-op.
func (f *Facade) Update(ctx context.Context, c domain.Collection, id string, patch json.RawMessage) error {
	if id == "" {
		return nil
	}
	return f.write(ctx, c, "update",
		func(ctx context.Context) error { return f.remote.Update(ctx, c, id, patch) },
		func(ctx context.Context) error { return f.local.Merge(ctx, c, id, patch) },
	)
}

// Delete removes the record with the given id. An empty id is a no-op.
func (f *Facade) Delete(ctx context.Context, c domain.Collection, id string) error {
	if id == "" {
		return nil
	}
	return f.write(ctx, c, "delete",
		func(ctx context.Context) error { return f.remote.Delete(ctx, c, id) },
		func(ctx context.Context) error { return f.local.Remove(ctx, c, id) },
	)
}

// write tries the remote once; on failure it flips to local and re-issues the
// same operation there. A local failure is returned as ErrStorageFailure.
func (f *Facade) write(ctx context.Context, c domain.Collection, op string, remoteFn, localFn func(context.Context) error) error {
	if !f.useLocal.Load() {
		err := remoteFn(ctx)
		if err == nil {
			f.observe(c, op, ModeRemote, nil)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		f.fallback(ctx, c, op, err)
	}
	if err := localFn(ctx); err != nil {
		f.observe(c, op, ModeLocal, err)
		f.logger.Error().Err(err).Str("collection", c.String()).Str("op", op).Msg("store: local write failed")
		return fmt.Errorf("%w: %s %s: %v", domain.ErrStorageFailure, op, c, err)
	}
	f.observe(c, op, ModeLocal, nil)
	return nil
}

func (f *Facade) fallback(ctx context.Context, c domain.Collection, op string, cause error) {
	f.observe(c, op, ModeRemote, cause)
	if !f.useLocal.CompareAndSwap(false, true) {
		return
	}
	f.logger.Warn().Err(cause).Str("collection", c.String()).Str("op", op).Msg("store: remote failed, switching to local storage")
	if f.observer != nil {
		f.observer.ObserveFallback(c.String(), op)
	}
	if err := f.seed(ctx); err != nil {
		f.logger.Error().Err(err).Msg("store: seeding local storage failed")
	}
}

func (f *Facade) seed(ctx context.Context) error {
	if err := f.local.Seed(ctx); err != nil {
		return fmt.Errorf("seed local storage: %w", err)
	}
	return nil
}

func (f *Facade) observe(c domain.Collection, op, backend string, err error) {
	if f.observer == nil {
		return
	}
	f.observer.ObserveOperation(c.String(), op, backend, err)
}
