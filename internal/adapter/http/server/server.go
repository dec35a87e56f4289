package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Zubra14/verista-tracking/config"
	"github.com/Zubra14/verista-tracking/internal/adapter/http/handler"
	"github.com/Zubra14/verista-tracking/internal/adapter/http/middleware"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/wshub"
)

const serverIPAddress = "%s:%s"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware
	rl     *middleware.RateLimiter

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	trip     *handler.Trip
	incident *handler.Incident
	track    *handler.Track
	health   *handler.Health
}

func New(
	cfg config.Config,
	tripService handler.TripService,
	rosterService handler.RosterService,
	incidentService handler.IncidentService,
	trackingService handler.TrackingService,
	tokens middleware.TokenValidator,
	connections *wshub.ConnectionHub,
	log logger.Logger,
) (*API, error) {
	if tokens == nil {
		return nil, errors.New("token validator is required")
	}

	mid := middleware.NewMiddleware(tokens, log)
	limiter := middleware.NewRateLimiter(float64(cfg.Server.IngestRatePerSecond), cfg.Server.IngestBurst)

	routes := &handlers{
		trip:     handler.NewTrip(tripService, rosterService, log),
		incident: handler.NewIncident(incidentService, log),
		track:    handler.NewTrack(trackingService, tokens, connections, limiter, log),
		health:   handler.NewHealth(cfg.ServiceName, log),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      mid,
		rl:     limiter,
		addr:   fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Server.Port),
		cfg:    cfg,
		log:    log,
	}

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	setupRoutes(api.mux, api.routes, api.m, api.rl)

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	metricsWrapped := a.m.Metrics(a.cfg.ServiceName)(a.mux)
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Auth(metricsWrapped))))
}
