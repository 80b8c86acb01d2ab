package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/domain"
)

// PostRequest handles POST /v1/requests.
func (a *App) PostRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.BloodRequest
	if !a.decode(w, r, &req) {
		return
	}
	posted, err := a.Requests.Post(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, posted)
}

// ListRequests handles GET /v1/requests.
func (a *App) ListRequests(w http.ResponseWriter, r *http.Request) {
	items, err := a.Requests.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// EditRequest handles PATCH /v1/admin/requests/{id}.
func (a *App) EditRequest(w http.ResponseWriter, r *http.Request) {
	var patch domain.RequestPatch
	if !a.decode(w, r, &patch) {
		return
	}
	updated, err := a.Requests.Edit(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, updated)
}

// ResolveRequest handles DELETE /v1/admin/requests/{id}.
func (a *App) ResolveRequest(w http.ResponseWriter, r *http.Request) {
	if err := a.Requests.Resolve(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
