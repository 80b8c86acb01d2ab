package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
	"bloodlink/internal/middleware"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type adminView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func viewAdmin(admin domain.Admin) adminView {
	return adminView{ID: admin.ID, Username: admin.Username}
}

// Login handles POST /v1/admin/login. Failures are counted per client IP.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !a.decode(w, r, &req) {
		return
	}
	admin, err := a.Admins.Login(r.Context(), middleware.ClientIP(r), req.Username, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Sessions.Login(w, r, admin.Username); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, viewAdmin(admin))
}

// Signup handles POST /v1/admin/signup.
func (a *App) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !a.decode(w, r, &req) {
		return
	}
	admin, err := a.Admins.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, viewAdmin(admin))
}

// Logout handles POST /v1/admin/logout.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Logout(w, r); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("logout: expire session")
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/admin/me.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"username": middleware.AdminFromContext(r.Context())})
}

// ListAdmins handles GET /v1/admin/admins. Passwords are never returned.
func (a *App) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := a.Admins.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]adminView, 0, len(admins))
	for _, admin := range admins {
		items = append(items, viewAdmin(admin))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// DeleteAdmin handles DELETE /v1/admin/admins/{id}.
func (a *App) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	current := middleware.AdminFromContext(r.Context())
	if err := a.Admins.Delete(r.Context(), chi.URLParam(r, "id"), current); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
