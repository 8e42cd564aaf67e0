package common

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB returns a migrated SQLite database stored in a temporary directory.
func TestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(DriverSQLite, filepath.Join(t.TempDir(), "test.db"), 4, 4, time.Minute)
	if err != nil {
		t.Fatalf("could not open database: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("could not run migrations: %v", err)
	}

	t.Cleanup(func() {
		CloseDB(db)
	})

	return db
}

// TestPostgresDB starts a postgres container and returns a migrated connection to it.
func TestPostgresDB(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()

	c, err := postgres.Run(ctx,
		"docker.io/postgres:14.11-bookworm",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(30*time.Second)))
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}

	t.Cleanup(func() {
		c.Terminate(ctx)
	})

	connURL, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	db, err := NewDB(DriverPostgres, connURL, 5, 5, time.Minute)
	if err != nil {
		t.Fatalf("could not open database: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("could not run migrations: %v", err)
	}

	t.Cleanup(func() {
		CloseDB(db)
	})

	return db
}

func TestRabbitMQ(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping rabbitmq container test in short mode")
	}

	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12.11-management-alpine", rabbitmq.WithAdminUsername("guest"), rabbitmq.WithAdminPassword("guest"))
	if err != nil {
		t.Fatalf("could not start rabbitmq container: %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	connURL, err := container.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("could not get rabbitmq connection URL: %v", err)
	}

	return connURL
}
