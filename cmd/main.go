package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"task_api/internal/cache"
	"task_api/internal/config"
	"task_api/internal/handlers"
	"task_api/internal/logger"
	"task_api/internal/repository"
	"task_api/internal/repository/db"
	"task_api/internal/server"
	"task_api/internal/service"
)

// @title                       Task API
// @version                     1.0
// @description                 Task management with token-authenticated owners.
// @BasePath                    /
// @securityDefinitions.apikey  TokenAuth
// @in                          header
// @name                        x-auth-token
func main() {
	cfg, err := config.Load("configs", ".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	ctx := context.Background()

	// open store
	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open store", "driver", cfg.DB.Driver, "err", err)
	}
	defer closeStore()

	checks := map[string]handlers.Checker{"store": repos.Health}

	// optional task list cache
	var taskCache service.TaskCache
	if cfg.Redis.URL != "" {
		c, err := cache.New(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			log.Fatalw("failed to connect redis", "err", err)
		}
		defer func() {
			if cerr := c.Close(); cerr != nil {
				log.Warnw("failed to close redis", "err", cerr)
			}
		}()
		taskCache = c
		checks["cache"] = c
	}

	// wire dependencies
	services := service.NewService(repos, service.Config{
		TokenSecret:      []byte(cfg.Auth.Secret),
		TokenTTL:         cfg.Auth.TokenTTL,
		BcryptCost:       cfg.Auth.BcryptCost,
		EnforceOwnership: cfg.Tasks.EnforceOwnership,
		Logger:           log,
	}, taskCache)
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		TokenHeader: cfg.Auth.Header,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		StaticDir:   cfg.HTTP.StaticDir,
		Checks:      checks,
	})

	// start HTTP server
	srv := server.New(server.Options{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	})
	runHTTPServer(srv, cfg.HTTP.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, cfg, log)
}

// openStore connects the configured backend and returns its repositories
// with a func that releases the connection.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repository.Repository, func(), error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		sqlDB, err := db.InitSQLite(cfg.DB.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Infow("sqlite store ready", "path", cfg.DB.Path)
		return repository.NewSQLiteRepository(sqlDB), func() {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Warnw("failed to close sqlite", "err", cerr)
			}
		}, nil
	default:
		client, database, err := db.ConnectMongo(ctx, cfg.DB.URI, cfg.DB.Name, cfg.DB.ConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		log.Infow("mongo store ready", "database", cfg.DB.Name)
		return repository.NewMongoRepository(database), func() {
			dctx, cancel := context.WithTimeout(context.Background(), cfg.DB.ConnectTimeout)
			defer cancel()
			if cerr := client.Disconnect(dctx); cerr != nil {
				log.Warnw("failed to disconnect mongo", "err", cerr)
			}
		}, nil
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, cfg *config.Config, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
