package handlers

import (
	"net/http"
	"time"
)

const timeLayout = time.RFC3339

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	mode := "unknown"
	if a.Store != nil {
		mode = a.Store.Mode()
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "storage": mode})
}
