// Package httpapi assembles the HTTP surface: middleware chain, session
// authentication, and the per-domain handlers.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendancehandler "gatherly/internal/attendance/handler"
	eventhandler "gatherly/internal/event/handler"
	"gatherly/internal/platform/metrics"
	"gatherly/internal/platform/middleware"
	registrationhandler "gatherly/internal/registration/handler"
	"gatherly/pkg/platform/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Events         *eventhandler.Handler
	Registrations  *registrationhandler.Handler
	Attendance     *attendancehandler.Handler
	Sessions       middleware.SessionValidator
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
}

// NewRouter wires the middleware chain and all endpoints. Member routes
// require a valid session; staff routes additionally require the staff role.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Member routes: any authenticated session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Sessions, d.Logger))
		d.Events.Register(r)
		d.Registrations.Register(r)
	})

	// Staff routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Sessions, d.Logger))
		r.Use(middleware.RequireStaff(d.Logger))
		d.Events.RegisterStaff(r)
		d.Registrations.RegisterStaff(r)
		d.Attendance.Register(r)
	})

	return r
}
