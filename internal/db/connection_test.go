package db

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dangtran89/finwatch/internal/config"
)

// TestConnectAndMigrate spins up a disposable PostgreSQL container and runs
// the full connect + migrate + health path against it. Requires Docker.
func TestConnectAndMigrate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("finwatch_test"),
		pgcontainer.WithUsername("finwatch_user"),
		pgcontainer.WithPassword("finwatch_password"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("could not start postgres container (is Docker running?): %v", err)
	}
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	database, err := Connect(&config.Database{
		Host:     host,
		Port:     port.Port(),
		User:     "finwatch_user",
		Password: "finwatch_password",
		Name:     "finwatch_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := database.Health(); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	// Migrate is idempotent
	if err := database.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}
