package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/domain"
	"bloodlink/internal/middleware"
)

type registerDonorRequest struct {
	domain.Donor
	OTP string `json:"otp"`
}

// RegisterDonor handles POST /v1/donors.
func (a *App) RegisterDonor(w http.ResponseWriter, r *http.Request) {
	var req registerDonorRequest
	if !a.decode(w, r, &req) {
		return
	}
	donor, err := a.Donors.Register(r.Context(), req.Donor, strings.TrimSpace(req.OTP))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, donor)
}

// SearchDonors handles GET /v1/donors?bloodGroup=&city=&compatible=&near=.
func (a *App) SearchDonors(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := domain.SearchQuery{
		BloodGroup: groupParam(params.Get("bloodGroup")),
		City:       strings.TrimSpace(params.Get("city")),
		Compatible: flagParam(params.Get("compatible")),
	}
	if q.City == "" && flagParam(params.Get("near")) {
		q.City = middleware.CityFromContext(r.Context())
	}
	donors, err := a.Donors.Search(r.Context(), q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": donors, "city": q.City})
}

// StartDonationUpdate handles POST /v1/donors/{id}/donation.
func (a *App) StartDonationUpdate(w http.ResponseWriter, r *http.Request) {
	donor, code, err := a.Donors.StartDonationUpdate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, a.codeResponse(donor.Email, code))
}

type confirmDonationRequest struct {
	OTP          string `json:"otp"`
	LastDonation string `json:"lastDonation"`
}

// ConfirmDonationUpdate handles POST /v1/donors/{id}/donation/confirm.
func (a *App) ConfirmDonationUpdate(w http.ResponseWriter, r *http.Request) {
	var req confirmDonationRequest
	if !a.decode(w, r, &req) {
		return
	}
	donor, err := a.Donors.ConfirmDonationUpdate(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.OTP), strings.TrimSpace(req.LastDonation))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, donor)
}

// EditDonor handles PATCH /v1/admin/donors/{id}.
func (a *App) EditDonor(w http.ResponseWriter, r *http.Request) {
	var patch domain.DonorPatch
	if !a.decode(w, r, &patch) {
		return
	}
	donor, err := a.Donors.Edit(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, donor)
}

// DeleteDonor handles DELETE /v1/admin/donors/{id}.
func (a *App) DeleteDonor(w http.ResponseWriter, r *http.Request) {
	if err := a.Donors.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportDonors handles GET /v1/admin/donors/export.csv.
func (a *App) ExportDonors(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := a.Donors.ExportCSV(r.Context(), &buf); err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="donors.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// groupParam undoes form decoding of "+" into a space ("A+" arrives as "A ").
func groupParam(v string) domain.BloodGroup {
	v = strings.ReplaceAll(strings.TrimLeft(v, " "), " ", "+")
	return domain.BloodGroup(strings.ToUpper(v))
}

func flagParam(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
