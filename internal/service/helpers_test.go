package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bloodlink/internal/domain"
	"bloodlink/internal/kv"
	"bloodlink/internal/otp"
	"bloodlink/internal/store"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingRecorder struct {
	mu            sync.Mutex
	logins        map[string]int
	lockouts      int
	registrations int
	otpSent       int
	verifications map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{logins: map[string]int{}, verifications: map[string]int{}}
}

func (r *countingRecorder) ObserveLogin(outcome string) {
	r.mu.Lock()
	r.logins[outcome]++
	r.mu.Unlock()
}

func (r *countingRecorder) ObserveLockout() {
	r.mu.Lock()
	r.lockouts++
	r.mu.Unlock()
}

func (r *countingRecorder) ObserveRegistration() {
	r.mu.Lock()
	r.registrations++
	r.mu.Unlock()
}

func (r *countingRecorder) ObserveOTPSent() {
	r.mu.Lock()
	r.otpSent++
	r.mu.Unlock()
}

func (r *countingRecorder) ObserveOTPVerification(outcome string) {
	r.mu.Lock()
	r.verifications[outcome]++
	r.mu.Unlock()
}

type testEnv struct {
	ctx      context.Context
	mem      *kv.Memory
	facade   *store.Facade
	tables   store.Tables
	clock    *testClock
	recorder *countingRecorder
	otp      *otp.Service
	activity *ActivityLog
	donors   *Donors
	requests *Requests
	lockout  *Lockout
	admins   *Admins
	stats    *Stats
	prefs    *Preferences
}

type envConfig struct {
	activityCap         int
	requireVerification bool
}

func newTestEnv(t *testing.T, cfgs ...envConfig) *testEnv {
	t.Helper()
	cfg := envConfig{activityCap: DefaultActivityCap}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}

	ctx := context.Background()
	mem := kv.NewMemory()
	facade := store.NewFacade(nil, store.NewLocal(mem))
	require.NoError(t, facade.Init(ctx))

	clock := &testClock{now: time.Date(2024, 6, 14, 9, 30, 0, 0, time.UTC)}
	var idMu sync.Mutex
	nextID := 0
	newID := func() string {
		idMu.Lock()
		defer idMu.Unlock()
		nextID++
		return fmt.Sprintf("id-%03d", nextID)
	}
	recorder := newCountingRecorder()
	opts := []Option{WithClock(clock.Now), WithIDGenerator(newID), WithRecorder(recorder)}

	codes := otp.NewService(
		otp.WithClock(clock.Now),
		otp.WithGenerator(func() (string, error) { return "424242", nil }),
	)
	tables := store.NewTables(facade)
	activity := NewActivityLog(tables.Activities, cfg.activityCap, opts...)
	donors := NewDonors(DonorsConfig{
		Table:               tables.Donors,
		Activity:            activity,
		OTP:                 codes,
		RequireVerification: cfg.requireVerification,
	}, opts...)
	requests := NewRequests(tables.Requests, activity, opts...)
	lockout := NewLockout(facade.Local(), DefaultLockoutThreshold, DefaultLockoutWindow, opts...)

	return &testEnv{
		ctx:      ctx,
		mem:      mem,
		facade:   facade,
		tables:   tables,
		clock:    clock,
		recorder: recorder,
		otp:      codes,
		activity: activity,
		donors:   donors,
		requests: requests,
		lockout:  lockout,
		admins:   NewAdmins(tables.Admins, lockout, activity, opts...),
		stats:    NewStats(donors, requests, activity, 10),
		prefs:    NewPreferences(facade.Local()),
	}
}

func (e *testEnv) actions(t *testing.T) []string {
	t.Helper()
	entries, err := e.activity.Recent(e.ctx, 0)
	require.NoError(t, err)
	out := make([]string, len(entries))
	for i, a := range entries {
		out[i] = a.Action
	}
	return out
}

func validDonor() domain.Donor {
	return domain.Donor{
		Name:       "Asha Nair",
		Age:        29,
		Gender:     "female",
		BloodGroup: domain.GroupOPos,
		Phone:      "9876543210",
		Email:      "asha@example.com",
		City:       "Kochi",
	}
}

func validRequest() domain.BloodRequest {
	return domain.BloodRequest{
		Name:       "City Hospital",
		BloodGroup: domain.GroupBNeg,
		Units:      2,
		City:       "Pune",
		Phone:      "9123456780",
		Date:       "2024-06-20",
	}
}
