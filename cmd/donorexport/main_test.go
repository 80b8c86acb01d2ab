package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/app"
	"bloodlink/internal/domain"
	"bloodlink/internal/infra"
)

func newStack(t *testing.T) *app.Stack {
	t.Helper()
	ctx := context.Background()
	cfg := &infra.Config{
		AppEnv:            "test",
		RemoteBackend:     infra.RemoteNone,
		LocalBackend:      infra.LocalMemory,
		SessionSecret:     "export-test-secret-export-test-s",
		SeedAdminUsername: "admin",
		SeedAdminPassword: "123",
		OTPTTL:            10 * time.Minute,
		ActivityCap:       100,
		ActivityRecent:    10,
		LockoutThreshold:  5,
		LockoutWindow:     5 * time.Minute,
	}
	stack, err := app.Build(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close(ctx) })

	_, err = stack.Donors.Register(ctx, domain.Donor{
		Name:       "Asha Nair",
		Age:        29,
		Gender:     "female",
		BloodGroup: domain.GroupOPos,
		Phone:      "9876543210",
		Email:      "asha@example.com",
		City:       "Kochi",
	}, "")
	require.NoError(t, err)
	return stack
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExportWritesFile(t *testing.T) {
	stack := newStack(t)
	out := filepath.Join(t.TempDir(), "donors.csv")

	n, err := export(context.Background(), stack, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "Name,Age,Gender,Blood Group,Phone,Email,City,Last Donation\n"))
	assert.Contains(t, string(body), `"Asha Nair",29,female,O+,"9876543210"`)
}

func TestExportReportsOutputFailures(t *testing.T) {
	stack := newStack(t)

	_, err := export(context.Background(), stack, filepath.Join(t.TempDir(), "missing", "donors.csv"))
	assert.ErrorContains(t, err, "create output")

	_, err = writeCSV(context.Background(), stack, failingWriter{})
	assert.ErrorContains(t, err, "disk full")
}
