//go:build integration

// Package integration runs the API and its persistence against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/infrastructure/migration"
	"github.com/avocado/teamhub/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB is a migrated database inside a container
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// NewTestDB starts a fresh container and applies every migration
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := runPostgres(ctx, "teamhub_test")
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	migrateUp(t, dsn)
	return connect(t, dsn)
}

// NewSharedTestDB returns a connection to a package-wide container that is
// migrated once. Callers must tolerate rows left by other tests.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer == nil {
		ctx := context.Background()
		container, err := runPostgres(ctx, "teamhub_shared_test")
		require.NoError(t, err, "Failed to start shared PostgreSQL container")
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err, "Failed to get connection string")
		migrateUp(t, dsn)
		sharedContainer = container
		sharedContainerDSN = dsn
	}
	return connect(t, sharedContainerDSN)
}

// CleanupSharedContainer terminates the shared container from TestMain
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}

// TruncateAll empties the application tables, keeping the seeded lookups
func (tdb *TestDB) TruncateAll() {
	tdb.t.Helper()
	err := tdb.DB.Exec(`TRUNCATE TABLE
		outbox_events, messages, channel_members, channels,
		contribution_analyses, peer_reviews, task_assignees, tasks,
		meeting_attendances, meetings, assignments, group_members, "groups", users
		RESTART IDENTITY CASCADE`).Error
	require.NoError(tdb.t, err, "Failed to truncate tables")
}

func runPostgres(ctx context.Context, dbName string) (testcontainers.Container, error) {
	return tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
}

func connect(t *testing.T, dsn string) *TestDB {
	t.Helper()

	gormLogger := logger.Default.LogMode(logger.Silent)
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	database, err := persistence.Open(gormpostgres.Open(dsn), gormLogger)
	require.NoError(t, err, "Failed to connect to database")
	require.NoError(t, database.Ping(context.Background()), "Database not reachable")

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &TestDB{DB: database.DB, SqlDB: sqlDB, DSN: dsn, t: t}
}

// migrateUp uses its own connection; closing the migrator closes it
func migrateUp(t *testing.T, dsn string) {
	t.Helper()
	m := newMigrator(t, dsn)
	defer func() { _ = m.Close() }()
	require.NoError(t, m.Up(), "Failed to run migrations")
}

func newMigrator(t *testing.T, dsn string) *migration.Migrator {
	t.Helper()
	path := findMigrationsPath()
	require.NotEmpty(t, path, "Could not find migrations directory")

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(sqlDB, path, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	return m
}

func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	dir := filepath.Dir(filename)
	for i := 0; i < 4; i++ {
		candidate := filepath.Join(dir, migration.DefaultPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
