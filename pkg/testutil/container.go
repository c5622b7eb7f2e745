// Package testutil provides testing utilities for the Quadrant backend:
// a testcontainers PostgreSQL harness for integration tests, a sqlmock
// wrapper for repository unit tests, and an event publisher recorder.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance
type PostgresContainer struct {
	*postgres.PostgresContainer
	DSN string
}

// PostgresContainerConfig configures the test PostgreSQL container
type PostgresContainerConfig struct {
	Database string
	Username string
	Password string
	Image    string // defaults to postgres:15-alpine
}

// DefaultPostgresConfig returns sensible defaults for test containers
func DefaultPostgresConfig() PostgresContainerConfig {
	return PostgresContainerConfig{
		Database: "quadrant_test",
		Username: "test",
		Password: "test",
		Image:    "postgres:15-alpine",
	}
}

// NewPostgresContainer creates a new PostgreSQL test container.
//
// Usage:
//
//	func TestMain(m *testing.M) {
//	    ctx := context.Background()
//	    container, err := testutil.NewPostgresContainer(ctx, testutil.DefaultPostgresConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer container.Terminate(ctx)
//
//	    code := m.Run()
//	    os.Exit(code)
//	}
func NewPostgresContainer(ctx context.Context, cfg PostgresContainerConfig) (*PostgresContainer, error) {
	if cfg.Image == "" {
		cfg.Image = "postgres:15-alpine"
	}
	if cfg.Database == "" {
		cfg.Database = "quadrant_test"
	}
	if cfg.Username == "" {
		cfg.Username = "test"
	}
	if cfg.Password == "" {
		cfg.Password = "test"
	}

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage(cfg.Image),
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: container,
		DSN:               dsn,
	}, nil
}

// Connect returns a sqlx.DB connection to the container
func (c *PostgresContainer) Connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", c.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	return db, nil
}

// Terminate stops and removes the container
func (c *PostgresContainer) Terminate(ctx context.Context) error {
	return c.PostgresContainer.Terminate(ctx)
}

// CreateCoreSchema creates the tables the aggregation services read.
// Timestamps are stored as text (ISO-8601), matching the production layout.
func (c *PostgresContainer) CreateCoreSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS employees (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			position VARCHAR(255),
			level VARCHAR(50) NOT NULL DEFAULT 'Junior',
			track_id UUID,
			track_level VARCHAR(50),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS skills (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			skill_type VARCHAR(50) NOT NULL DEFAULT 'hard',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS employee_skills (
			employee_id UUID NOT NULL,
			skill_id UUID NOT NULL,
			workspace_id UUID NOT NULL,
			level INT NOT NULL CHECK (level BETWEEN 1 AND 5),
			PRIMARY KEY (employee_id, skill_id)
		);

		CREATE TABLE IF NOT EXISTS tracks (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			manager_id UUID,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS risk_cases (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			employee_id UUID NOT NULL,
			level VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'open',
			source VARCHAR(100),
			reason TEXT,
			recommendation TEXT,
			owner_id UUID,
			resolved_at TEXT,
			resolution_note TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`

	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create core schema: %w", err)
	}

	return nil
}
