// Package service implements the BloodLink operations on top of the
// persistence façade: registration, requests, admin access, the activity
// feed, dashboard stats and exports.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder receives business events, typically for metrics.
type Recorder interface {
	ObserveLogin(outcome string)
	ObserveLockout()
	ObserveRegistration()
	ObserveOTPSent()
	ObserveOTPVerification(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLogin(string)           {}
func (nopRecorder) ObserveLockout()               {}
func (nopRecorder) ObserveRegistration()          {}
func (nopRecorder) ObserveOTPSent()               {}
func (nopRecorder) ObserveOTPVerification(string) {}

type options struct {
	now      func() time.Time
	newID    func() string
	logger   zerolog.Logger
	recorder Recorder
}

// Option customizes a service.
type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   zerolog.Nop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// logActivity records action and only logs a failure; the operation that
// produced it has already succeeded.
func logActivity(ctx context.Context, log *ActivityLog, logger zerolog.Logger, action string) {
	if log == nil {
		return
	}
	if err := log.Record(ctx, action); err != nil {
		logger.Warn().Err(err).Str("action", action).Msg("activity: record failed")
	}
}
