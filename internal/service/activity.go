package service

import (
	"context"
	"fmt"
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/store"
)

// DefaultActivityCap is how many activity entries are retained.
const DefaultActivityCap = 100

// ActivityLog is the bounded, newest-first feed of successful actions.
type ActivityLog struct {
	table *store.Table[domain.Activity]
	cap   int
	options
}

func NewActivityLog(table *store.Table[domain.Activity], capacity int, opts ...Option) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCap
	}
	return &ActivityLog{table: table, cap: capacity, options: buildOptions(opts)}
}

// Record appends an entry and then drops the oldest entries beyond the cap.
func (l *ActivityLog) Record(ctx context.Context, action string) error {
	entry := domain.Activity{
		ID:        l.newID(),
		Action:    action,
		Timestamp: l.now().UTC().Format(time.RFC3339),
	}
	if err := l.table.Create(ctx, entry); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return l.trim(ctx)
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (l *ActivityLog) Recent(ctx context.Context, n int) ([]domain.Activity, error) {
	entries, err := l.table.List(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	out := make([]domain.Activity, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// trim drops the oldest entries beyond the cap. Entries without an id cannot
// be addressed by the store; they are left in place and not counted.
func (l *ActivityLog) trim(ctx context.Context) error {
	entries, err := l.table.List(ctx)
	if err != nil {
		return err
	}
	var ids []string
	for _, e := range entries {
		if e.ID != "" {
			ids = append(ids, e.ID)
		}
	}
	if legacy := len(entries) - len(ids); legacy > 0 && len(entries) > l.cap {
		l.logger.Warn().Int("entries", legacy).Msg("activity: entries without id kept past the cap")
	}
	for i := 0; i < len(ids)-l.cap; i++ {
		if err := l.table.Delete(ctx, ids[i]); err != nil {
			return fmt.Errorf("trim activity log: %w", err)
		}
	}
	return nil
}
