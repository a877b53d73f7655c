package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arcinech/companyApp/internal/config"
)

const pingTimeout = 10 * time.Second

// ConnectMongo opens a pooled client and pings the primary. With debug set,
// every command is logged.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig, logger zerolog.Logger, debug bool) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if debug {
		opts.SetMonitor(commandMonitor(logger))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info().Str("database", cfg.Database).Msg("connected to the database")
	return client, nil
}

func commandMonitor(logger zerolog.Logger) *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, evt *event.CommandStartedEvent) {
			logger.Debug().
				Str("command", evt.CommandName).
				Str("database", evt.DatabaseName).
				Int64("request_id", evt.RequestID).
				Msg("mongo command started")
		},
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			logger.Debug().
				Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				Dur("duration", evt.Duration).
				Msg("mongo command succeeded")
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			logger.Warn().
				Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				Str("failure", evt.Failure).
				Msg("mongo command failed")
		},
	}
}

// ConnectPostgres opens the relational backend through gorm, logging through zerolog.
func ConnectPostgres(cfg config.PostgresConfig, logger zerolog.Logger, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	gormLogger := gormlogger.New(
		&logger,
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	database, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	logger.Info().Msg("connected to the database")
	return database, nil
}
