// Package testdb provisions live databases for package tests. An existing
// instance is used when COMPANYDB_TEST_MONGO_URI or COMPANYDB_TEST_POSTGRES_DSN
// is set; otherwise a container is started with testcontainers.
package testdb

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MongoURIEnv    = "COMPANYDB_TEST_MONGO_URI"
	PostgresDSNEnv = "COMPANYDB_TEST_POSTGRES_DSN"

	MongoDatabase = "companyDBtest"

	mongoImage    = "mongo:7"
	postgresImage = "postgres:16-alpine"
	postgresDB    = "companydbtest"
	postgresUser  = "postgres"
	postgresPass  = "postgres"
)

// Instance is a reachable database. Teardown releases a started container and
// is a no-op for external instances.
type Instance struct {
	Address  string
	Teardown func(ctx context.Context) error
}

func noop(context.Context) error { return nil }

func Mongo(ctx context.Context) (inst *Instance, err error) {
	if uri := os.Getenv(MongoURIEnv); uri != "" {
		log.Printf("using existing mongo at %s", uri)
		return &Instance{Address: uri, Teardown: noop}, nil
	}

	defer recoverDocker(&err)

	container, err := mongodb.Run(ctx, mongoImage)
	if err != nil {
		return nil, fmt.Errorf("start mongo container: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("mongo connection string: %w", err)
	}

	return &Instance{Address: uri, Teardown: func(ctx context.Context) error { return container.Terminate(ctx) }}, nil
}

func Postgres(ctx context.Context) (inst *Instance, err error) {
	if dsn := os.Getenv(PostgresDSNEnv); dsn != "" {
		log.Printf("using existing postgres")
		return &Instance{Address: dsn, Teardown: noop}, nil
	}

	defer recoverDocker(&err)

	container, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase(postgresDB),
		postgres.WithUsername(postgresUser),
		postgres.WithPassword(postgresPass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}

	return &Instance{Address: dsn, Teardown: func(ctx context.Context) error { return container.Terminate(ctx) }}, nil
}

// recoverDocker turns a panic from a missing docker daemon into an error.
func recoverDocker(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("docker unavailable: %v", r)
	}
}
