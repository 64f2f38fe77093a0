package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// DefaultPath is where the SQL files live relative to the repository root
const DefaultPath = "migrations"

// Migrator applies the SQL files in migrations/ with golang-migrate
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// State describes the schema version of the database
type State struct {
	Version uint
	Dirty   bool
	Empty   bool
}

// New creates a Migrator on an open postgres connection
func New(db *sql.DB, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "schema_migrations"})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL(migrationsPath), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{migrate: m, logger: logger}, nil
}

// NewFromConfig creates a Migrator from the database section of the config
func NewFromConfig(cfg config.DatabaseConfig, logger *zap.Logger) (*Migrator, error) {
	path := cfg.MigrationsPath
	if path == "" {
		path = DefaultPath
	}

	m, err := migrate.New(sourceURL(path), cfg.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{migrate: m, logger: logger}, nil
}

func sourceURL(path string) string {
	return "file://" + filepath.ToSlash(path)
}

// ResolvePath returns the first candidate directory that exists, falling back
// to DefaultPath. Candidates are tried in order.
func ResolvePath(candidates ...string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return DefaultPath
}

// Up applies all pending migrations
func (m *Migrator) Up() error {
	m.logger.Info("Running migrations up")

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("Schema is up to date")
			return nil
		}
		return fmt.Errorf("migration up failed: %w", err)
	}
	return m.logVersion("Migrations applied")
}

// Down rolls back n migrations, or all of them when n <= 0
func (m *Migrator) Down(n int) error {
	var err error
	if n <= 0 {
		m.logger.Warn("Rolling back all migrations")
		err = m.migrate.Down()
	} else {
		m.logger.Info("Rolling back migrations", zap.Int("steps", n))
		err = m.migrate.Steps(-n)
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("No migrations to roll back")
			return nil
		}
		return fmt.Errorf("migration down failed: %w", err)
	}
	return m.logVersion("Rollback completed")
}

// State returns the current schema version
func (m *Migrator) State() (State, error) {
	version, dirty, err := m.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return State{Empty: true}, nil
		}
		return State{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return State{Version: version, Dirty: dirty}, nil
}

// Force sets the recorded version without running any SQL. It clears the
// dirty flag after a failed migration has been repaired by hand.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))

	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}

func (m *Migrator) logVersion(msg string) error {
	state, err := m.State()
	if err != nil {
		return err
	}
	m.logger.Info(msg,
		zap.Uint("version", state.Version),
		zap.Bool("dirty", state.Dirty),
		zap.Bool("empty", state.Empty),
	)
	return nil
}
