package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Zubra14/verista-tracking/config"
	"github.com/Zubra14/verista-tracking/internal/adapter/http/server"
	"github.com/Zubra14/verista-tracking/internal/adapter/locationIQ"
	repo "github.com/Zubra14/verista-tracking/internal/adapter/postgres"
	rabbitadapter "github.com/Zubra14/verista-tracking/internal/adapter/rabbit"
	"github.com/Zubra14/verista-tracking/internal/service/auth"
	"github.com/Zubra14/verista-tracking/internal/service/incident"
	"github.com/Zubra14/verista-tracking/internal/service/roster"
	"github.com/Zubra14/verista-tracking/internal/service/tracking"
	"github.com/Zubra14/verista-tracking/internal/service/trip"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	"github.com/Zubra14/verista-tracking/pkg/postgres"
	"github.com/Zubra14/verista-tracking/pkg/rabbit"
	"github.com/Zubra14/verista-tracking/pkg/trm"
	"github.com/Zubra14/verista-tracking/pkg/wshub"
)

// App wires the tracking service together and owns shutdown order.
type App struct {
	postgresDB  *postgres.PostgreDB
	rabbitMQ    *rabbit.RabbitMQ
	httpServer  *server.API
	connections *wshub.ConnectionHub

	cfg config.Config
	log logger.Logger
}

func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	tripRepo := repo.NewTripRepo(postgresDB.Pool)
	studentRepo := repo.NewStudentRepo(postgresDB.Pool)
	incidentRepo := repo.NewIncidentRepo(postgresDB.Pool)
	vehicleRepo := repo.NewVehicleRepo(postgresDB.Pool)
	txManager := trm.New(postgresDB.Pool)

	// The broker is optional: without it the service still ingests and
	// fans out over websockets, only the external exchange goes dark.
	var (
		rabbitMQ *rabbit.RabbitMQ
		broker   *rabbitadapter.LocationBroker
	)
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err = rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
		if err != nil {
			log.Error(ctx, "Failed to setup rabbitmq", err)
			postgresDB.Pool.Close()
			return nil, err
		}

		broker, err = rabbitadapter.NewLocationBroker(rabbitMQ, log)
		if err != nil {
			log.Error(ctx, "Failed to setup location broker", err)
			postgresDB.Pool.Close()
			return nil, err
		}
	}

	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, log)

	connections := wshub.NewConnHub(log)
	registry := wshub.NewRegistry(log)

	var tripBroker trip.StatusBroker
	var locationPublisher tracking.LocationPublisher
	if broker != nil {
		tripBroker = broker
		locationPublisher = broker
	}

	var geocoder incident.Geocoder
	if cfg.LocationIQ.APIKey != "" {
		geocoder = locationIQ.New(cfg.LocationIQ.APIKey)
	}

	tripService := trip.NewService(tripRepo, studentRepo, txManager, tripBroker, log)
	rosterService := roster.NewService(tripRepo, studentRepo, txManager, log)
	incidentService := incident.NewService(incidentRepo, tripRepo, geocoder, log)
	trackingService := tracking.NewService(tripRepo, studentRepo, vehicleRepo, registry, locationPublisher, log)

	httpServer, err := server.New(
		cfg,
		tripService,
		rosterService,
		incidentService,
		trackingService,
		tokenService,
		connections,
		log,
	)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	return &App{
		postgresDB:  postgresDB,
		rabbitMQ:    rabbitMQ,
		httpServer:  httpServer,
		connections: connections,
		cfg:         cfg,
		log:         log,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.httpServer.Run(ctx, errCh)
	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "tracking service closed")
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "tracking service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.connections != nil {
		a.connections.Close()
	}

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close rabbitmq connection", "error", err.Error())
		}
	}

	if a.postgresDB != nil && a.postgresDB.Pool != nil {
		a.postgresDB.Pool.Close()
	}
}
