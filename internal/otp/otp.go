// Package otp issues and checks one-time email verification codes. Codes live
// in process memory only and are never persisted.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
)

// DefaultTTL is how long a sent code stays valid.
const DefaultTTL = 10 * time.Minute

// Sender delivers a code to an email address.
type Sender interface {
	SendCode(ctx context.Context, email, code string) error
}

// Code is a pending verification code.
type Code struct {
	Value     string
	ExpiresAt time.Time
}

// Service tracks at most one pending code per email.
type Service struct {
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
	sender   Sender

	mu      sync.Mutex
	pending map[string]Code
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithSender(sender Sender) Option {
	return func(s *Service) { s.sender = sender }
}

func WithGenerator(generate func() (string, error)) Option {
	return func(s *Service) { s.generate = generate }
}

func NewService(opts ...Option) *Service {
	s := &Service{
		ttl:      DefaultTTL,
		now:      time.Now,
		generate: GenerateCode,
		pending:  make(map[string]Code),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send issues a fresh code for email, replacing any pending one, and hands it
// to the sender. A failed delivery leaves no pending code behind.
func (s *Service) Send(ctx context.Context, email string) (Code, error) {
	key := normalize(email)
	if key == "" {
		return Code{}, domain.Invalid("email", "is required")
	}
	value, err := s.generate()
	if err != nil {
		return Code{}, fmt.Errorf("otp: generate code: %w", err)
	}
	code := Code{Value: value, ExpiresAt: s.now().Add(s.ttl)}

	s.mu.Lock()
	s.pending[key] = code
	s.mu.Unlock()

	if s.sender != nil {
		if err := s.sender.SendCode(ctx, key, value); err != nil {
			s.mu.Lock()
			if current, ok := s.pending[key]; ok && current == code {
				delete(s.pending, key)
			}
			s.mu.Unlock()
			return Code{}, fmt.Errorf("otp: deliver code: %w", err)
		}
	}
	return code, nil
}

// Verify checks input against the pending code for email by exact string
// comparison. A match consumes the code and an expired code is cleared. A
// mismatch leaves it pending.
func (s *Service) Verify(email, input string) error {
	key := normalize(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.pending[key]
	if !ok {
		return domain.ErrOTPNotFound
	}
	if !s.now().Before(code.ExpiresAt) {
		delete(s.pending, key)
		return domain.ErrOTPExpired
	}
	if input != code.Value {
		return domain.ErrOTPMismatch
	}
	delete(s.pending, key)
	return nil
}

// Pending reports whether email has an unexpired code.
func (s *Service) Pending(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.pending[normalize(email)]
	return ok && s.now().Before(code.ExpiresAt)
}

// Sweep drops expired codes and returns how many were removed.
func (s *Service) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, code := range s.pending {
		if !now.Before(code.ExpiresAt) {
			delete(s.pending, key)
			removed++
		}
	}
	return removed
}

var codeRange = big.NewInt(900000)

// GenerateCode returns a uniformly random six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LogSender stands in for email delivery by logging the code.
type LogSender struct {
	Logger zerolog.Logger
}

func (l LogSender) SendCode(_ context.Context, email, code string) error {
	if email == "" {
		return errors.New("empty recipient")
	}
	l.Logger.Info().Str("email", email).Str("code", code).Msg("otp: verification code issued")
	return nil
}
