// Package testutil provides database helpers for integration tests.
//
// PostgreSQL tests use TEST_POSTGRES_DSN when it is set and otherwise start a
// disposable postgres container through testcontainers-go. MySQL tests need
// TEST_MYSQL_DSN and are skipped without it.
//
//	db := testutil.SetupPostgresDB(t)
//	defer testutil.TeardownDB(t, db)
//
// Migrations are discovered by walking up from the working directory until a
// "migrations/{postgresql|mysql}" directory is found.
package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresImage = "postgres:17-alpine"

// Tables in delete order (children first).
var tables = []string{"outbox_events", "refresh_tokens", "tasks", "users"}

// SkipIfShort skips tests that need a real database under -short.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
}

// SetupPostgresDB returns a migrated, empty PostgreSQL database.
func SetupPostgresDB(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfShort(t)

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		dsn = startPostgresContainer(t)
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "failed to open postgres")
	require.NoError(t, db.Ping(), "failed to ping postgres database")

	runMigrations(t, db, "postgres")
	CleanupDB(t, db, "postgres")

	return db
}

// SetupMySQLDB returns a migrated, empty MySQL database from TEST_MYSQL_DSN.
func SetupMySQLDB(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfShort(t)

	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN is not set")
	}

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open mysql")
	if err := db.Ping(); err != nil {
		_ = db.Close()
		t.Skipf("MySQL not available: %v", err)
	}

	runMigrations(t, db, "mysql")
	CleanupDB(t, db, "mysql")

	return db
}

// TeardownDB closes the database connection.
func TeardownDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db != nil {
		require.NoError(t, db.Close(), "failed to close database connection")
	}
}

// CleanupDB removes every row written by the service.
func CleanupDB(t *testing.T, db *sql.DB, driver string) {
	t.Helper()

	for _, table := range tables {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err, "failed to clean "+table+" on "+driver)
	}
}

func startPostgresContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("tasks"),
		postgres.WithUsername("tasks"),
		postgres.WithPassword("tasks"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get postgres connection string")
	return dsn
}

// runMigrations applies the migrations for driver on db. The migrate
// instance is not closed because closing it would close db.
func runMigrations(t *testing.T, db *sql.DB, driver string) {
	t.Helper()

	var (
		instance database.Driver
		dir      string
		err      error
	)

	switch driver {
	case "postgres":
		dir = "postgresql"
		instance, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
	case "mysql":
		dir = "mysql"
		instance, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	default:
		t.Fatalf("unsupported driver %q", driver)
	}
	require.NoError(t, err, "failed to create "+driver+" migrate driver")

	migrationsPath, err := getMigrationsPath(dir)
	require.NoError(t, err)

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, driver, instance)
	require.NoError(t, err, "failed to create migrate instance for "+driver)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err, "failed to run "+driver+" migrations")
	}
}

// getMigrationsPath walks up from the working directory until it finds
// migrations/<dbType>.
func getMigrationsPath(dbType string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		migrationsPath := filepath.Join(dir, "migrations", dbType)
		if info, err := os.Stat(migrationsPath); err == nil && info.IsDir() {
			return migrationsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found for %s (started from %s)", dbType, dir)
		}
		dir = parent
	}
}
