package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	registry *prometheus.Registry

	StoreOperations  *prometheus.CounterVec
	StoreFallbacks   *prometheus.CounterVec
	AdminLogins      *prometheus.CounterVec
	AdminLockouts    prometheus.Counter
	DonorsRegistered prometheus.Counter
	OTPCodesSent     prometheus.Counter
	OTPVerifications *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_store_operations_total",
			Help: "Collection operations by backend and outcome",
		}, []string{"collection", "op", "backend", "outcome"}),
		StoreFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_store_fallbacks_total",
			Help: "Switches from the remote service to local storage",
		}, []string{"collection", "op"}),
		AdminLogins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_admin_logins_total",
			Help: "Admin login attempts by outcome",
		}, []string{"outcome"}),
		AdminLockouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_admin_lockouts_total",
			Help: "Clients locked out after repeated failed logins",
		}),
		DonorsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_donors_registered_total",
			Help: "Donor registrations accepted",
		}),
		OTPCodesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_otp_codes_sent_total",
			Help: "Verification codes issued",
		}),
		OTPVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_otp_verifications_total",
			Help: "Verification attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveOperation(collection, op, backend string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StoreOperations.WithLabelValues(collection, op, backend, outcome).Inc()
}

func (m *Metrics) ObserveFallback(collection, op string) {
	m.StoreFallbacks.WithLabelValues(collection, op).Inc()
}

func (m *Metrics) ObserveLogin(outcome string) {
	m.AdminLogins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLockout() { m.AdminLockouts.Inc() }

func (m *Metrics) ObserveRegistration() { m.DonorsRegistered.Inc() }

func (m *Metrics) ObserveOTPSent() { m.OTPCodesSent.Inc() }

func (m *Metrics) ObserveOTPVerification(outcome string) {
	m.OTPVerifications.WithLabelValues(outcome).Inc()
}
