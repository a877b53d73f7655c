package testdb

import (
	"context"
	"flag"
	"log"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/arcinech/companyApp/internal/config"
	"github.com/arcinech/companyApp/internal/db"
)

const (
	setupTimeout   = 3 * time.Minute
	cleanupTimeout = time.Minute
)

// MongoHarness holds the package-wide mongo connection. Client is nil when no
// database could be provisioned.
type MongoHarness struct {
	Client     *mongo.Client
	SkipReason string
}

// Database returns the test database or skips t.
func (h *MongoHarness) Database(t testing.TB) *mongo.Database {
	t.Helper()
	if h.Client == nil {
		t.Skip(h.SkipReason)
	}
	return h.Client.Database(MongoDatabase)
}

// RunMongo connects h, runs the package tests and drops the test database.
// It returns the exit code for os.Exit.
func RunMongo(m *testing.M, h *MongoHarness) int {
	flag.Parse()
	if testing.Short() {
		h.SkipReason = "live mongo tests skipped in -short mode"
		return m.Run()
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	instance, err := Mongo(ctx)
	if err != nil {
		cancel()
		log.Printf("mongo unavailable: %v", err)
		h.SkipReason = "mongo unavailable: " + err.Error()
		return m.Run()
	}

	h.Client, err = db.ConnectMongo(ctx, config.MongoConfig{
		URI:      instance.Address,
		Database: MongoDatabase,
	}, zerolog.Nop(), false)
	cancel()
	if err != nil {
		log.Printf("connect mongo: %v", err)
		h.SkipReason = "connect mongo: " + err.Error()
	}

	code := m.Run()

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cleanupCancel()
	if h.Client != nil {
		_ = h.Client.Database(MongoDatabase).Drop(cleanupCtx)
		_ = h.Client.Disconnect(cleanupCtx)
	}
	if err := instance.Teardown(cleanupCtx); err != nil {
		log.Printf("warning: teardown mongo: %v", err)
	}
	return code
}

// PostgresHarness holds the package-wide gorm connection. DB is nil when no
// database could be provisioned.
type PostgresHarness struct {
	DB         *gorm.DB
	SkipReason string
}

func (h *PostgresHarness) Conn(t testing.TB) *gorm.DB {
	t.Helper()
	if h.DB == nil {
		t.Skip(h.SkipReason)
	}
	return h.DB
}

// RunPostgres connects h, calls prepare (typically a migration), runs the
// package tests and then calls teardown on the live connection.
func RunPostgres(m *testing.M, h *PostgresHarness, prepare, teardown func(ctx context.Context, db *gorm.DB) error) int {
	flag.Parse()
	if testing.Short() {
		h.SkipReason = "live postgres tests skipped in -short mode"
		return m.Run()
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	instance, err := Postgres(ctx)
	if err != nil {
		cancel()
		log.Printf("postgres unavailable: %v", err)
		h.SkipReason = "postgres unavailable: " + err.Error()
		return m.Run()
	}

	h.DB, err = db.ConnectPostgres(config.PostgresConfig{DSN: instance.Address}, zerolog.Nop(), false)
	if err == nil && prepare != nil {
		err = prepare(ctx, h.DB)
	}
	cancel()
	if err != nil {
		log.Printf("prepare postgres: %v", err)
		h.SkipReason = "prepare postgres: " + err.Error()
		h.DB = nil
	}

	code := m.Run()

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cleanupCancel()
	if h.DB != nil {
		if teardown != nil {
			if err := teardown(cleanupCtx, h.DB); err != nil {
				log.Printf("warning: teardown tables: %v", err)
			}
		}
		if sqlDB, err := h.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := instance.Teardown(cleanupCtx); err != nil {
		log.Printf("warning: teardown postgres: %v", err)
	}
	return code
}
