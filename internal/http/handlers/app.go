// Package handlers holds the JSON API handlers. Each handler decodes a form,
// calls one service operation and maps domain errors to status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
	"bloodlink/internal/middleware"
	"bloodlink/internal/otp"
	"bloodlink/internal/service"
)

const maxBodyBytes = 1 << 20

// ModeReporter reports which persistence backend is serving.
type ModeReporter interface {
	Mode() string
}

type App struct {
	Donors      *service.Donors
	Requests    *service.Requests
	Admins      *service.Admins
	Stats       *service.Stats
	Activity    *service.ActivityLog
	Preferences *service.Preferences
	Sessions    *middleware.Sessions
	Store       ModeReporter

	// EchoOTP returns sent codes in the response body, for development
	// where no mail is delivered.
	EchoOTP bool
	// RecentActivities is the default page size of the activity feed.
	RecentActivities int
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			a.fail(w, r, err)
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// fail writes the response for a service error.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	var lerr *domain.LockoutError
	switch {
	case errors.As(err, &verr):
		a.json(w, http.StatusBadRequest, map[string]any{
			"error": map[string]string{"code": "validation", "field": verr.Field, "message": verr.Error()},
		})
	case errors.As(err, &lerr):
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(lerr.RetryAfter().Seconds()))))
		a.error(w, http.StatusLocked, "locked_out", "too many failed attempts, try again later")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "record not found")
	case errors.Is(err, domain.ErrOTPNotFound):
		a.error(w, http.StatusBadRequest, "otp_not_found", err.Error())
	case errors.Is(err, domain.ErrOTPMismatch):
		a.error(w, http.StatusBadRequest, "otp_mismatch", err.Error())
	case errors.Is(err, domain.ErrOTPExpired):
		a.error(w, http.StatusGone, "otp_expired", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		a.error(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
	case errors.Is(err, domain.ErrDuplicateUsername):
		a.error(w, http.StatusConflict, "duplicate_username", err.Error())
	case errors.Is(err, domain.ErrSelfDelete):
		a.error(w, http.StatusConflict, "self_delete", err.Error())
	case errors.Is(err, domain.ErrNoDonors):
		a.error(w, http.StatusNotFound, "no_donors", err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

type codeResponse struct {
	Email     string `json:"email"`
	ExpiresAt string `json:"expiresAt"`
	Code      string `json:"code,omitempty"`
}

func (a *App) codeResponse(email string, code otp.Code) codeResponse {
	resp := codeResponse{Email: email, ExpiresAt: code.ExpiresAt.UTC().Format(timeLayout)}
	if a.EchoOTP {
		resp.Code = code.Value
	}
	return resp
}
