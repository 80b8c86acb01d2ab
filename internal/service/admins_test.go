package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/domain"
)

const testClient = "203.0.113.7"

func TestLoginWithSeedAdmin(t *testing.T) {
	env := newTestEnv(t)

	admin, err := env.admins.Login(env.ctx, testClient, " admin ", "123")
	require.NoError(t, err)
	assert.Equal(t, "1", admin.ID)
	assert.Equal(t, []string{"Admin logged in: admin"}, env.actions(t))
	assert.Equal(t, 1, env.recorder.logins["ok"])
}

func TestLoginFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)

	_, errUser := env.admins.Login(env.ctx, testClient, "nobody", "123")
	_, errPass := env.admins.Login(env.ctx, testClient, "admin", "wrong")
	assert.ErrorIs(t, errUser, domain.ErrInvalidCredentials)
	assert.Equal(t, errUser, errPass)
	assert.Empty(t, env.actions(t))
}

func TestLockoutAfterFiveFailures(t *testing.T) {
	env := newTestEnv(t)

	for i := 1; i <= 4; i++ {
		_, err := env.admins.Login(env.ctx, testClient, "admin", "bad")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials, "attempt %d", i)
	}
	_, err := env.admins.Login(env.ctx, testClient, "admin", "bad")
	var lockErr *domain.LockoutError
	require.ErrorAs(t, err, &lockErr)
	assert.Equal(t, 5*time.Minute, lockErr.RetryAfter())
	assert.Equal(t, 1, env.recorder.lockouts)

	// Correct credentials are refused while locked, and the admins
	// collection is not consulted.
	require.NoError(t, env.mem.Set(env.ctx, "admins", "corrupt"))
	env.clock.Advance(2 * time.Minute)
	_, err = env.admins.Login(env.ctx, testClient, "admin", "123")
	require.ErrorAs(t, err, &lockErr)
	assert.Equal(t, 3*time.Minute, lockErr.RetryAfter())
	assert.Equal(t, 1, env.recorder.logins["locked"])

	// Other clients are unaffected by the lock.
	_, err = env.admins.Login(env.ctx, "198.51.100.1", "admin", "123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "admins collection is unreadable, not locked")
}

func TestLockoutWindowElapses(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		_, _ = env.admins.Login(env.ctx, testClient, "admin", "bad")
	}

	env.clock.Advance(5 * time.Minute)
	_, err := env.admins.Login(env.ctx, testClient, "admin", "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "counting starts over after the window")
	assert.Equal(t, 1, env.lockout.State(env.ctx, testClient).Failed)

	_, err = env.admins.Login(env.ctx, testClient, "admin", "123")
	require.NoError(t, err)
	assert.Equal(t, domain.LockoutState{}, env.lockout.State(env.ctx, testClient))
}

func TestSuccessfulLoginResetsCounter(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 4; i++ {
		_, _ = env.admins.Login(env.ctx, testClient, "admin", "bad")
	}
	_, err := env.admins.Login(env.ctx, testClient, "admin", "123")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err = env.admins.Login(env.ctx, testClient, "admin", "bad")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
}

func TestLockoutStateIsStoredPerClient(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.admins.Login(env.ctx, testClient, "admin", "bad")

	raw, ok, err := env.mem.Get(env.ctx, "adminSecurity:"+testClient)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"failed":1,"lockUntil":0}`, raw)
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	admin, err := env.admins.Signup(env.ctx, "priya", "pw")
	require.NoError(t, err)
	assert.Equal(t, "priya", admin.Username)

	_, err = env.admins.Signup(env.ctx, "priya", "other")
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	_, err = env.admins.Signup(env.ctx, "Priya", "pw")
	assert.NoError(t, err, "usernames compare case-sensitively")

	_, err = env.admins.Signup(env.ctx, "", "pw")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.admins.Login(env.ctx, testClient, "priya", "pw")
	assert.NoError(t, err)
}

func TestDeleteAdmin(t *testing.T) {
	env := newTestEnv(t)
	other, err := env.admins.Signup(env.ctx, "priya", "pw")
	require.NoError(t, err)

	assert.ErrorIs(t, env.admins.Delete(env.ctx, "1", "admin"), domain.ErrSelfDelete)
	assert.ErrorIs(t, env.admins.Delete(env.ctx, "missing", "admin"), domain.ErrNotFound)
	require.NoError(t, env.admins.Delete(env.ctx, other.ID, "admin"))

	admins, err := env.admins.List(env.ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0].Username)
}
