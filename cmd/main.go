package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pumpsim/internal/config"
	"pumpsim/internal/handlers"
	"pumpsim/internal/logger"
	"pumpsim/internal/repository"
	"pumpsim/internal/repository/db"
	"pumpsim/internal/server"
	"pumpsim/internal/service"

	"github.com/spf13/viper"

	_ "pumpsim/docs"
)

// @title           Pump Simulator API
// @version         1.0
// @description     Simulated industrial pump with live state and control methods.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// load config.yml first so the logger level is available
	if err := loadConfigFile(); err != nil {
		// a missing file is fine: env vars and defaults cover everything
		logger.Get(logger.InfoLevel).Infow("no config file found, using env/defaults", "err", err)
	}

	log := logger.Get(viper.GetString("log.level"))

	// simulation parameters: invalid PUMP_* values are the only fatal class
	simCfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid simulation configuration", "err", err)
	}

	// open DB
	sqldb, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqldb.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqldb)
	machine := service.NewPumpMachine(simCfg)
	services := service.NewService(repos, simCfg, machine)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the simulation scheduler
	go services.Simulator.Run(ctx)
	log.Infow("simulation started",
		"interval_s", simCfg.Snapshot().UpdateIntervalSeconds,
		"default_level", simCfg.Snapshot().DefaultOperatingLevel)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfigFile() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "pump.db")
		dbPath = "pump.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the scheduler; cancellation is only observed between ticks
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
