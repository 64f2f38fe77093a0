package telemetry

import (
	"errors"
	"time"

	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "teamhub:query_start"

// InstrumentGorm registers the otelgorm plugin plus a callback that tags
// slow statements and records errors on the active span.
func InstrumentGorm(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	threshold := cfg.DBSlowQueryThresh
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}
	// Registered ahead of the plugin so the after callbacks run while the
	// otelgorm span is still open.
	if err := registerSpanCallbacks(db, threshold); err != nil {
		return err
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgres")}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", threshold),
	)
	return nil
}

func registerSpanCallbacks(db *gorm.DB, threshold time.Duration) error {
	before := func(tx *gorm.DB) { tx.InstanceSet(queryStartKey, time.Now()) }
	after := func(tx *gorm.DB) { annotateSpan(tx, threshold) }

	cb := db.Callback()
	errs := []error{
		cb.Create().Before("gorm:create").Register("teamhub:before_create", before),
		cb.Create().After("gorm:create").Register("teamhub:after_create", after),
		cb.Query().Before("gorm:query").Register("teamhub:before_query", before),
		cb.Query().After("gorm:query").Register("teamhub:after_query", after),
		cb.Update().Before("gorm:update").Register("teamhub:before_update", before),
		cb.Update().After("gorm:update").Register("teamhub:after_update", after),
		cb.Delete().Before("gorm:delete").Register("teamhub:before_delete", before),
		cb.Delete().After("gorm:delete").Register("teamhub:after_delete", after),
		cb.Row().Before("gorm:row").Register("teamhub:before_row", before),
		cb.Row().After("gorm:row").Register("teamhub:after_row", after),
		cb.Raw().Before("gorm:raw").Register("teamhub:before_raw", before),
		cb.Raw().After("gorm:raw").Register("teamhub:after_raw", after),
	}
	return errors.Join(errs...)
}

func annotateSpan(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))

	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}

	v, ok := tx.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query")
	}
}
