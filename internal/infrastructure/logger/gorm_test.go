package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	const stmt = "SELECT * FROM meetings WHERE group_id = 3"
	query := func() (string, int64) { return stmt, 2 }
	connReset := errors.New("conn reset")

	tests := []struct {
		name    string
		config  GormConfig
		begin   time.Duration
		err     error
		level   zapcore.Level
		message string
		silent  bool
	}{
		{name: "failure logs at error", config: GormConfig{Level: "error"}, err: connReset, level: zapcore.ErrorLevel, message: "Query failed"},
		{name: "missing row is not a failure", config: GormConfig{Level: "warn"}, err: gormlogger.ErrRecordNotFound, silent: true},
		{name: "slow query logs at warn", config: GormConfig{Level: "warn", SlowThreshold: time.Millisecond}, begin: time.Second, level: zapcore.WarnLevel, message: "Slow query"},
		{name: "zero threshold never warns", config: GormConfig{Level: "warn"}, begin: time.Hour, silent: true},
		{name: "info level logs every query at debug", config: GormConfig{Level: "debug"}, level: zapcore.DebugLevel, message: "Query"},
		{name: "silent logs nothing", config: GormConfig{Level: "silent"}, err: connReset, silent: true},
		{name: "unknown level behaves like warn", config: GormConfig{Level: "verbose"}, silent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.config)

			gl.Trace(context.Background(), time.Now().Add(-tt.begin), query, tt.err)

			if tt.silent {
				assert.Empty(t, recorded.All())
				return
			}
			require.Len(t, recorded.All(), 1)
			entry := recorded.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.message, entry.Message)
			assert.Equal(t, "gorm", entry.LoggerName)
			assert.Equal(t, int64(2), entry.ContextMap()["rows"])
		})
	}
}

func TestGormLogger_SQLText(t *testing.T) {
	query := func() (string, int64) { return "UPDATE users SET password_hash = 'x'", -1 }

	for _, logSQL := range []bool{false, true} {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), GormConfig{Level: "info", LogSQL: logSQL})

		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")
		gl.Trace(ctx, time.Now(), query, nil)

		require.Len(t, recorded.All(), 1)
		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "req-9", fields["request_id"])
		assert.NotContains(t, fields, "rows", "unknown row counts are dropped")
		if logSQL {
			assert.Equal(t, "UPDATE users SET password_hash = 'x'", fields["sql"])
		} else {
			assert.NotContains(t, fields, "sql")
		}
	}
}

func TestGormLogger_LogMode(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	quiet := NewGormLogger(zap.New(core), GormConfig{Level: "error"})
	loud := quiet.LogMode(gormlogger.Info)

	quiet.Info(context.Background(), "migrating %s", "users")
	loud.Info(context.Background(), "migrating %s", "meetings")

	require.Len(t, recorded.All(), 1, "LogMode returns a copy")
	assert.Equal(t, "migrating meetings", recorded.All()[0].Message)
}
