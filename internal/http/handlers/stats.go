package handlers

import (
	"net/http"
	"strconv"
)

const maxActivityPage = 100

// DashboardStats handles GET /v1/admin/stats.
func (a *App) DashboardStats(w http.ResponseWriter, r *http.Request) {
	dashboard, err := a.Stats.Dashboard(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, dashboard)
}

// Activities handles GET /v1/admin/activities?limit=n, newest first.
func (a *App) Activities(w http.ResponseWriter, r *http.Request) {
	limit := a.RecentActivities
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit <= 0 || limit > maxActivityPage {
		limit = maxActivityPage
	}
	items, err := a.Activity.Recent(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
