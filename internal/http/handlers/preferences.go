package handlers

import "net/http"

type themeBody struct {
	Theme string `json:"theme"`
}

// Theme handles GET /v1/preferences/theme.
func (a *App) Theme(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, themeBody{Theme: a.Preferences.Theme(r.Context())})
}

// SetTheme handles PUT /v1/preferences/theme.
func (a *App) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeBody
	if !a.decode(w, r, &req) {
		return
	}
	theme, err := a.Preferences.SetTheme(r.Context(), req.Theme)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, themeBody{Theme: theme})
}
