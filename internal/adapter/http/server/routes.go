package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Zubra14/verista-tracking/internal/adapter/http/middleware"
	"github.com/Zubra14/verista-tracking/internal/domain/types"

	_ "github.com/Zubra14/verista-tracking/docs"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware, rl *middleware.RateLimiter) {
	// System health
	mux.HandleFunc("/health", routes.health.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/swagger/", httpSwagger.Handler())

	// Trip lifecycle (driver only)
	mux.Handle("GET /drivers/me/trips/current", m.RequireRoles(routes.trip.Current, types.RoleDriver))
	mux.Handle("GET /drivers/me/students", m.RequireRoles(routes.trip.Roster, types.RoleDriver))
	mux.Handle("POST /trips/{trip_id}/start", m.RequireRoles(routes.trip.Start, types.RoleDriver))
	mux.Handle("POST /trips/{trip_id}/end", m.RequireRoles(routes.trip.End, types.RoleDriver))

	// Scheduling operators cancel trips that have not left yet
	mux.Handle("POST /trips/{trip_id}/cancel", m.RequireRoles(routes.trip.Cancel, types.RoleAdmin))

	// Driver write paths share the ingest rate limit; a stuck client
	// retrying REST calls is the same flood as a stuck sensor.
	mux.Handle("PUT /trips/{trip_id}/students/{student_id}/status",
		rl.Handler(m.RequireRoles(routes.trip.UpdateStudentStatus, types.RoleDriver)))

	// Incidents (driver only)
	mux.Handle("POST /trips/{trip_id}/incidents",
		rl.Handler(m.RequireRoles(routes.incident.Report, types.RoleDriver)))
	mux.Handle("GET /trips/{trip_id}/incidents", m.RequireRoles(routes.incident.List, types.RoleDriver))

	// Realtime channel; credential checked at handshake inside the handler
	mux.HandleFunc("GET /ws/track", routes.track.HandleWS)
}
