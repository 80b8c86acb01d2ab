package handlers

import (
	"net/http"
	"strings"
)

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// SendOTP handles POST /v1/otp/send.
func (a *App) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !a.decode(w, r, &req) {
		return
	}
	code, err := a.Donors.SendVerification(r.Context(), req.Email)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, a.codeResponse(strings.TrimSpace(req.Email), code))
}

// VerifyOTP handles POST /v1/otp/verify. A verified code is consumed.
func (a *App) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Donors.VerifyEmail(req.Email, req.OTP); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"verified": true})
}
