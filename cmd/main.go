package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"controlling_irrigation/internal/app"
	"controlling_irrigation/internal/config"
	"controlling_irrigation/internal/handlers"
	"controlling_irrigation/internal/logger"
	"controlling_irrigation/internal/repository"
	"controlling_irrigation/internal/repository/db"
	"controlling_irrigation/internal/server"
	"controlling_irrigation/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Hour
)

// @title        Irrigation controller API
// @version      1.0
// @description  Eight valve irrigation controller: modes, sequence, pause/resume, schedule and event log.
// @BasePath     /
func main() {
	// load configs/config.yml + IRRIGATION_* env
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalw("invalid schedule.timezone", "err", err, "timezone", cfg.Schedule.Timezone)
	}

	// event log (and sqlite document store)
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, sqlDB)
	if err != nil {
		log.Fatalw("failed to open document store", "err", err, "type", cfg.Store.Type)
	}
	defer func() { _ = store.Close() }()

	board, err := app.OpenDriver(cfg)
	if err != nil {
		log.Fatalw("failed to open relay board", "err", err, "type", cfg.Driver.Type)
	}
	defer func() {
		if serr := board.Shutdown(); serr != nil {
			log.Errorw("relay board shutdown failed", "err", serr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(store, sqlDB)
	services := service.NewService(repos, board, service.Options{Location: loc, Log: log.Named("controller")})
	apiHandler := handlers.NewHandler(services, log.Named("http"))

	log.Infow("starting controller",
		"store", cfg.Store.Type, "driver", cfg.Driver.Type,
		"tick", cfg.Loop.Tick, "timezone", loc.String())

	// poll loop
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		services.Loop.Run(ctx, cfg.Loop.Tick)
	}()

	go pruneEvents(ctx, services, cfg.DB.Retention, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	<-loopDone
}

// pruneEvents trims the event log to retention every pruneInterval.
func pruneEvents(ctx context.Context, services *service.Service, retention time.Duration, log *logger.Logger) {
	if retention <= 0 {
		return
	}
	t := time.NewTicker(pruneInterval)
	defer t.Stop()
	for {
		if n, err := services.EventLog.Prune(ctx, retention); err != nil {
			log.Warnw("event_prune_failed", "err", err)
		} else if n > 0 {
			log.Infow("events_pruned", "count", n, "retention", retention.String())
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
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

	// stop the poll loop; valves keep their state
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
