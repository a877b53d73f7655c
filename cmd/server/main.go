package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/arcinech/companyApp/internal/config"
	"github.com/arcinech/companyApp/internal/db"
	"github.com/arcinech/companyApp/internal/httpapi"
	"github.com/arcinech/companyApp/internal/logger"
	"github.com/arcinech/companyApp/internal/service"
	"github.com/arcinech/companyApp/internal/store/mongostore"
	"github.com/arcinech/companyApp/internal/store/sqlstore"
)

func main() {
	// -- Configs preload --
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// -- Logger --
	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// -- Connect to DB --
	svc, closeStore, err := openService(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("database connection error")
	}
	defer closeStore()

	// -- Router --
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.NewHandler(svc, log), log)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	// -- Startup --
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

// openService wires the configured storage backend into the service. The
// returned func releases the connection.
func openService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*service.Service, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		database, err := db.ConnectPostgres(cfg.Postgres, log, cfg.IsLocal())
		if err != nil {
			return nil, nil, err
		}
		s := sqlstore.New(database, log)
		if err := s.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := database.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return service.New(s.Employees, s.Departments, log), closeFn, nil

	default:
		client, err := db.ConnectMongo(ctx, cfg.Mongo, log, cfg.IsLocal())
		if err != nil {
			return nil, nil, err
		}
		s := mongostore.New(client.Database(cfg.Mongo.Database), log)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("disconnect mongo")
			}
		}
		return service.New(s.Employees, s.Departments, log), closeFn, nil
	}
}
