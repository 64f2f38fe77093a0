package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig controls what the database layer logs
type GormConfig struct {
	// Level is one of silent, error, warn, info or debug
	Level string
	// SlowThreshold marks statements slower than this as warnings; zero disables
	SlowThreshold time.Duration
	// LogSQL adds the rendered statement. It carries bound values such as
	// password hashes, so it stays off outside development.
	LogSQL bool
}

// GormLogger routes gorm's logging through zap under the "gorm" name
type GormLogger struct {
	log    *zap.Logger
	level  gormlogger.LogLevel
	config GormConfig
}

func NewGormLogger(log *zap.Logger, cfg GormConfig) *GormLogger {
	return &GormLogger{
		log:    log.Named("gorm"),
		level:  gormLevel(cfg.Level),
		config: cfg,
	}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.sugar(ctx).Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.sugar(ctx).Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.sugar(ctx).Errorf(msg, data...)
	}
}

func (l *GormLogger) sugar(ctx context.Context) *zap.SugaredLogger {
	if id := GetRequestID(ctx); id != "" {
		return l.log.With(zap.String("request_id", id)).Sugar()
	}
	return l.log.Sugar()
}

// Trace logs one statement. Failed statements log at error except a missing
// row, which every lookup by key produces. Slow ones log at warn and the
// rest at debug when the level is info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.config.SlowThreshold > 0 && elapsed > l.config.SlowThreshold

	var (
		level zapcore.Level
		msg   string
		extra zap.Field
	)
	switch {
	case failed && l.level >= gormlogger.Error:
		level, msg, extra = zapcore.ErrorLevel, "Query failed", zap.Error(err)
	case slow && l.level >= gormlogger.Warn:
		level, msg, extra = zapcore.WarnLevel, "Slow query", zap.Duration("threshold", l.config.SlowThreshold)
	case l.level >= gormlogger.Info:
		level, msg, extra = zapcore.DebugLevel, "Query", zap.Skip()
	default:
		return
	}

	ce := l.log.Check(level, msg)
	if ce == nil {
		return
	}
	stmt, rows := fc()
	fields := []zap.Field{zap.Duration("elapsed", elapsed), extra}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if l.config.LogSQL {
		fields = append(fields, zap.String("sql", stmt))
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	ce.Write(fields...)
}

var _ gormlogger.Interface = (*GormLogger)(nil)
