package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLogIsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 3; i++ {
		require.NoError(t, env.activity.Record(env.ctx, fmt.Sprintf("event %d", i)))
		env.clock.Advance(time.Second)
	}

	recent, err := env.activity.Recent(env.ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "event 3", recent[0].Action)
	assert.Equal(t, "event 2", recent[1].Action)
	assert.Equal(t, "2024-06-14T09:30:02Z", recent[0].Timestamp)
}

func TestActivityLogNeverExceedsCap(t *testing.T) {
	env := newTestEnv(t, envConfig{activityCap: 5})
	for i := 1; i <= 8; i++ {
		require.NoError(t, env.activity.Record(env.ctx, fmt.Sprintf("event %d", i)))
	}

	all, err := env.tables.Activities.List(env.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, []string{"event 8", "event 7", "event 6", "event 5", "event 4"}, env.actions(t))
}

func TestActivityTrimKeepsEntriesWithoutID(t *testing.T) {
	env := newTestEnv(t, envConfig{activityCap: 3})
	require.NoError(t, env.mem.Set(env.ctx, "activities", `[{"action":"legacy 1","timestamp":"x"},{"action":"legacy 2","timestamp":"x"}]`))

	for i := 1; i <= 5; i++ {
		require.NoError(t, env.activity.Record(env.ctx, fmt.Sprintf("event %d", i)))
	}

	assert.Equal(t, []string{"event 5", "event 4", "event 3", "legacy 2", "legacy 1"}, env.actions(t))
}
