package service

import (
	"context"
	"errors"
	"strings"

	"bloodlink/internal/domain"
	"bloodlink/internal/store"
)

// Admins authenticates dashboard operators and manages their accounts.
type Admins struct {
	admins   *store.Table[domain.Admin]
	lockout  *Lockout
	activity *ActivityLog
	options
}

func NewAdmins(table *store.Table[domain.Admin], lockout *Lockout, activity *ActivityLog, opts ...Option) *Admins {
	return &Admins{admins: table, lockout: lockout, activity: activity, options: buildOptions(opts)}
}

// Login matches username and password exactly. client identifies the caller
// for lockout accounting. Failures never say which field was wrong.
func (s *Admins) Login(ctx context.Context, client, username, password string) (domain.Admin, error) {
	username = strings.TrimSpace(username)
	if s.lockout != nil {
		if err := s.lockout.Check(ctx, client); err != nil {
			if errors.Is(err, domain.ErrLockedOut) {
				s.recorder.ObserveLogin("locked")
			}
			return domain.Admin{}, err
		}
	}

	admins, err := s.admins.List(ctx)
	if err != nil {
		return domain.Admin{}, err
	}
	for _, a := range admins {
		if a.Username == username && a.Password == password {
			if s.lockout != nil {
				if err := s.lockout.Reset(ctx, client); err != nil {
					s.logger.Warn().Err(err).Msg("admins: reset lockout failed")
				}
			}
			s.recorder.ObserveLogin("ok")
			logActivity(ctx, s.activity, s.logger, "Admin logged in: "+username)
			return a, nil
		}
	}

	s.recorder.ObserveLogin("invalid")
	if s.lockout != nil {
		if err := s.lockout.RecordFailure(ctx, client); err != nil {
			if errors.Is(err, domain.ErrLockedOut) {
				s.recorder.ObserveLockout()
				s.logger.Warn().Str("client", client).Msg("admins: client locked out")
			}
			return domain.Admin{}, err
		}
	}
	return domain.Admin{}, domain.ErrInvalidCredentials
}

// Signup creates an admin unless the username is taken. There is no
// password policy.
func (s *Admins) Signup(ctx context.Context, username, password string) (domain.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Admin{}, domain.Invalid("username", "is required")
	}
	if password == "" {
		return domain.Admin{}, domain.Invalid("password", "is required")
	}
	admins, err := s.admins.List(ctx)
	if err != nil {
		return domain.Admin{}, err
	}
	for _, a := range admins {
		if a.Username == username {
			return domain.Admin{}, domain.ErrDuplicateUsername
		}
	}
	admin := domain.Admin{ID: s.newID(), Username: username, Password: password}
	if err := s.admins.Create(ctx, admin); err != nil {
		return domain.Admin{}, err
	}
	return admin, nil
}

func (s *Admins) List(ctx context.Context) ([]domain.Admin, error) {
	return s.admins.List(ctx)
}

// Delete removes an admin account other than current's own.
func (s *Admins) Delete(ctx context.Context, id, current string) error {
	admin, err := s.admins.Find(ctx, id)
	if err != nil {
		return err
	}
	if admin.Username == current {
		return domain.ErrSelfDelete
	}
	return s.admins.Delete(ctx, id)
}
