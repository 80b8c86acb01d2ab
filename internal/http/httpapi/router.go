// Package httpapi assembles the chi router for the JSON API.
package httpapi

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"bloodlink/internal/http/handlers"
	"bloodlink/internal/middleware"
)

// Options carries the cross-cutting settings of the router.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	CityLookup      middleware.CityLookup
	Metrics         http.Handler
	TrustedProxies  []netip.Prefix
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.TrustedProxies(opts.TrustedProxies),
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	// Login, signup and code delivery share one per-IP budget.
	limited := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)

	r.Get("/healthz", app.Health)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)

		r.Route("/donors", func(r chi.Router) {
			r.With(middleware.Geo(opts.CityLookup)).Get("/", app.SearchDonors)
			r.Post("/", app.RegisterDonor)
			r.With(limited).Post("/{id}/donation", app.StartDonationUpdate)
			r.Post("/{id}/donation/confirm", app.ConfirmDonationUpdate)
		})

		r.Route("/otp", func(r chi.Router) {
			r.With(limited).Post("/send", app.SendOTP)
			r.Post("/verify", app.VerifyOTP)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", app.ListRequests)
			r.Post("/", app.PostRequest)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/theme", app.Theme)
			r.Put("/theme", app.SetTheme)
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(limited).Post("/login", app.Login)
			r.With(limited).Post("/signup", app.Signup)
			r.Post("/logout", app.Logout)

			r.Group(func(r chi.Router) {
				r.Use(app.Sessions.RequireAdmin)
				r.Get("/me", app.Me)
				r.Get("/stats", app.DashboardStats)
				r.Get("/activities", app.Activities)
				r.Get("/admins", app.ListAdmins)
				r.Delete("/admins/{id}", app.DeleteAdmin)
				r.Get("/donors/export.csv", app.ExportDonors)
				r.Patch("/donors/{id}", app.EditDonor)
				r.Delete("/donors/{id}", app.DeleteDonor)
				r.Patch("/requests/{id}", app.EditRequest)
				r.Delete("/requests/{id}", app.ResolveRequest)
			})
		})
	})

	return r
}
