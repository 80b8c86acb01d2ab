// Package app wires configuration, storage backends and services into a
// runnable stack shared by the API server and the CLI tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
	"bloodlink/internal/http/handlers"
	"bloodlink/internal/http/httpapi"
	"bloodlink/internal/infra"
	"bloodlink/internal/infra/geoip"
	"bloodlink/internal/middleware"
	"bloodlink/internal/otp"
	"bloodlink/internal/service"
	"bloodlink/internal/store"
	"bloodlink/internal/store/remote"
)

// Stack is a fully initialised application: the façade has run its startup
// probe and local storage is seeded if it is in use.
type Stack struct {
	Config  *infra.Config
	Logger  zerolog.Logger
	Metrics *infra.Metrics
	Facade  *store.Facade
	OTP     *otp.Service
	Geo     *geoip.Resolver

	Activity    *service.ActivityLog
	Donors      *service.Donors
	Requests    *service.Requests
	Admins      *service.Admins
	Stats       *service.Stats
	Preferences *service.Preferences

	closers []func(context.Context) error
}

// Build opens the configured backends and runs the façade startup probe.
// An unreachable remote is not an error; the stack then serves from local storage.
func Build(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Stack, error) {
	s := &Stack{Config: cfg, Logger: logger, Metrics: infra.NewMetrics()}

	kvStore, err := infra.OpenLocalStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	s.onClose(func(context.Context) error { return kvStore.Close() })

	rem, err := s.openRemote(ctx)
	if err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	seed := domain.Admin{ID: store.DefaultAdmin.ID, Username: cfg.SeedAdminUsername, Password: cfg.SeedAdminPassword}
	local := store.NewLocal(kvStore, store.WithLocalLogger(logger), store.WithSeedAdmins(seed))
	s.Facade = store.NewFacade(rem, local, store.WithLogger(logger), store.WithObserver(s.Metrics))
	if err := s.Facade.Init(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, fmt.Errorf("init storage: %w", err)
	}

	s.Geo, err = geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
		s.Geo = nil
	} else if s.Geo != nil {
		geo := s.Geo
		s.onClose(func(context.Context) error { return geo.Close() })
	}

	s.OTP = otp.NewService(otp.WithTTL(cfg.OTPTTL), otp.WithSender(otp.LogSender{Logger: logger}))

	opts := []service.Option{service.WithLogger(logger), service.WithRecorder(s.Metrics)}
	tables := store.NewTables(s.Facade)
	s.Activity = service.NewActivityLog(tables.Activities, cfg.ActivityCap, opts...)
	s.Donors = service.NewDonors(service.DonorsConfig{
		Table:               tables.Donors,
		Activity:            s.Activity,
		OTP:                 s.OTP,
		RequireVerification: cfg.RequireEmailVerification,
	}, opts...)
	s.Requests = service.NewRequests(tables.Requests, s.Activity, opts...)
	lockout := service.NewLockout(s.Facade.Local(), cfg.LockoutThreshold, cfg.LockoutWindow, opts...)
	s.Admins = service.NewAdmins(tables.Admins, lockout, s.Activity, opts...)
	s.Stats = service.NewStats(s.Donors, s.Requests, s.Activity, cfg.ActivityRecent)
	s.Preferences = service.NewPreferences(s.Facade.Local())

	return s, nil
}

func (s *Stack) openRemote(ctx context.Context) (store.Remote, error) {
	cfg := s.Config
	logger := s.Logger.With().Str("remote", cfg.RemoteBackend).Logger()

	switch cfg.RemoteBackend {
	case infra.RemoteNone:
		return nil, nil
	case infra.RemoteHTTP:
		client, err := remote.NewHTTP(remote.HTTPOptions{BaseURL: cfg.RemoteAPIURL, Timeout: cfg.RemoteTimeout, Logger: logger})
		if err != nil {
			return nil, err
		}
		return client, nil
	case infra.RemotePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.onClose(func(context.Context) error { pool.Close(); return nil })
		pg := remote.NewPostgres(infra.NewSQLRunner(pool, logger))
		if err := pg.EnsureSchema(ctx); err != nil {
			// The startup probe reports the same outage and switches to local storage.
			logger.Warn().Err(err).Msg("postgres schema not ensured")
		}
		return pg, nil
	case infra.RemoteMongo:
		db, err := infra.NewMongoDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.onClose(func(ctx context.Context) error { return db.Client().Disconnect(ctx) })
		return remote.NewMongo(db), nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.RemoteBackend)
	}
}

// Handler builds the HTTP API over the stack.
func (s *Stack) Handler() http.Handler {
	cfg := s.Config
	app := &handlers.App{
		Donors:           s.Donors,
		Requests:         s.Requests,
		Admins:           s.Admins,
		Stats:            s.Stats,
		Activity:         s.Activity,
		Preferences:      s.Preferences,
		Sessions:         middleware.NewSessions(cfg.SessionSecret, cfg.SessionSecure),
		Store:            s.Facade,
		EchoOTP:          cfg.OTPEcho,
		RecentActivities: cfg.ActivityRecent,
	}
	var lookup middleware.CityLookup
	if s.Geo != nil {
		lookup = s.Geo.City
	}
	return httpapi.NewRouter(app, httpapi.Options{
		Logger:          s.Logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CityLookup:      lookup,
		Metrics:         s.Metrics.Handler(),
		TrustedProxies:  cfg.TrustedProxies,
	})
}

// SweepCodes drops expired verification codes every interval until ctx ends.
func (s *Stack) SweepCodes(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.OTP.Sweep(); n > 0 {
				s.Logger.Debug().Int("expired", n).Msg("otp: swept expired codes")
			}
		}
	}
}

func (s *Stack) onClose(fn func(context.Context) error) {
	s.closers = append(s.closers, fn)
}

// Close releases backends in reverse order of opening.
func (s *Stack) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
