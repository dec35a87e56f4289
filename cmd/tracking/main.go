package main

import (
	"context"
	"flag"
	"os"

	"github.com/Zubra14/verista-tracking/config"
	"github.com/Zubra14/verista-tracking/internal/app"
	"github.com/Zubra14/verista-tracking/pkg/logger"
)

// @title           Verista Tracking API
// @version         1.0
// @description     Realtime school-transport vehicle tracking service.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger("", logger.LevelDebug)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		return
	}

	config.PrintConfig(cfg)

	log = logger.InitLogger(cfg.ServiceName, cfg.LogLevel)

	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
