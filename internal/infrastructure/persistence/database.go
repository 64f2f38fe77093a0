package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/avocado/teamhub/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database owns the connection pool behind every repository
type Database struct {
	DB *gorm.DB
}

// ConnectOptions tunes Connect's start-up wait
type ConnectOptions struct {
	Logger logger.Interface
	// Attempts is how many pings are tried before giving up; at least one
	Attempts int
	// Wait is the pause between attempts
	Wait time.Duration
	Log  *zap.Logger
}

// Connect opens the postgres pool described by cfg and pings it until the
// server answers. The compose stack starts the API next to a database that
// may still be initialising, so a refused first ping is retried.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, opts ConnectOptions) (*Database, error) {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	db, err := Open(postgres.Open(cfg.DSN()), opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	attempt := 1
	for ; ; attempt++ {
		if err = db.Ping(ctx); err == nil {
			return db, nil
		}
		if attempt >= opts.Attempts {
			break
		}
		opts.Log.Warn("Database not ready",
			zap.String("host", cfg.Host),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if err = sleep(ctx, opts.Wait); err != nil {
			break
		}
	}
	_ = sqlDB.Close()
	return nil, fmt.Errorf("ping database (attempt %d): %w", attempt, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Open wraps any dialector with the settings every TeamHub connection uses.
// Driver errors are translated so a unique violation is gorm.ErrDuplicatedKey
// on postgres and sqlite alike.
func Open(dialector gorm.Dialector, gormLogger logger.Interface) (*Database, error) {
	if gormLogger == nil {
		gormLogger = logger.Discard
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, err
	}
	return &Database{DB: db}, nil
}

// Ping is the readiness probe's database check
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
