package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/snake-game-api/internal/api"
	"github.com/dom/snake-game-api/internal/config"
	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/repository"
	"github.com/dom/snake-game-api/internal/repository/database"
	"github.com/dom/snake-game-api/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// TestDB is a migrated database for a test: a PostgreSQL testcontainer or a
// SQLite file in a temp dir.
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
	Driver    string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated
// connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_snake_game"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		Driver:    config.DriverPostgres,
	}
	t.Cleanup(func() {
		testDB.Cleanup()
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	testDB.DSN = dsn

	testDB.open(t)
	return testDB
}

// NewSQLiteDB returns a migrated SQLite database that lives for the test.
func NewSQLiteDB(t *testing.T) *TestDB {
	t.Helper()

	testDB := &TestDB{
		DSN:    filepath.Join(t.TempDir(), "snake_game.db") + "?_busy_timeout=5000",
		Driver: config.DriverSQLite,
	}
	testDB.open(t)

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

func (tdb *TestDB) open(t *testing.T) {
	t.Helper()

	db, err := database.NewConnection(tdb.Driver, tdb.DSN, logging.Discard().Slog(), false)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	tdb.DB = db

	if _, err := database.Migrate(context.Background(), db, tdb.Driver); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
}

// Cleanup closes the connection and terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.DB != nil {
		if sqlDB, err := tdb.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	var statements []string
	switch tdb.Driver {
	case config.DriverPostgres:
		statements = []string{"TRUNCATE TABLE refresh_tokens, users RESTART IDENTITY CASCADE"}
	default:
		statements = []string{
			"DELETE FROM refresh_tokens",
			"DELETE FROM users",
			"DELETE FROM sqlite_sequence",
		}
	}

	for _, stmt := range statements {
		if err := tdb.DB.Exec(stmt).Error; err != nil {
			t.Logf("warning: %s: %v", stmt, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:                     "0", // Random port
		Environment:              "test",
		DatabaseDriver:           config.DriverSQLite,
		JWTSecret:                "test-jwt-secret-key-for-testing-only",
		JWTAlgorithm:             "HS256",
		AccessTokenExpireMinutes: 15,
		RefreshTokenExpireDays:   7,
		BcryptCost:               4,
		RefreshTokenStore:        config.StoreDatabase,
		AvailabilityRateLimit:    1000,
		AvailabilityRateBurst:    1000,
		CORS: config.CORSConfig{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowCredentials: true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
		},
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
}

// NewTestServer creates a complete test server backed by SQLite
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithConfig(t, TestConfig())
}

// NewTestServerWithConfig is NewTestServer with a caller-supplied config
func NewTestServerWithConfig(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()

	testDB := NewSQLiteDB(t)
	log := logging.Discard()

	repos := database.NewRepositories(testDB.DB)

	services, err := service.NewServices(repos, cfg, log)
	if err != nil {
		t.Fatalf("failed to create services: %v", err)
	}

	router := api.NewRouter(services, cfg, log)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}
