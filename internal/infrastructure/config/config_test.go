package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "teamhub", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "3001", cfg.App.Port)
		assert.Equal(t, "5002", cfg.App.ChatPort)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "teamhub", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "assignments", cfg.Storage.Bucket)
		assert.Equal(t, 10000, cfg.Chat.MaxMessageLength)
		assert.Equal(t, 5, cfg.Chat.AssistantContext)
		assert.Equal(t, time.Minute, cfg.Scheduler.MeetingSweepInterval)
		assert.Equal(t, "gpt-4", cfg.LLM.Model)
		assert.NotEmpty(t, cfg.JWT.Secret)
		assert.True(t, cfg.Event.ProcessorEnabled)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.False(t, cfg.Redis.Enabled)
	})

	t.Run("enabled switches can be turned off", func(t *testing.T) {
		t.Setenv("TEAMHUB_EVENT_PROCESSOR_ENABLED", "false")
		t.Setenv("TEAMHUB_SCHEDULER_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Event.ProcessorEnabled)
		assert.False(t, cfg.Scheduler.Enabled)
	})

	t.Run("loads values from environment variables with TEAMHUB prefix", func(t *testing.T) {
		t.Setenv("TEAMHUB_APP_NAME", "hub-test")
		t.Setenv("TEAMHUB_APP_PORT", "9000")
		t.Setenv("TEAMHUB_APP_CHAT_PORT", "9001")
		t.Setenv("TEAMHUB_DATABASE_HOST", "testdb.local")
		t.Setenv("TEAMHUB_DATABASE_PORT", "5433")
		t.Setenv("TEAMHUB_DATABASE_PASSWORD", "testpass")
		t.Setenv("TEAMHUB_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("TEAMHUB_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("TEAMHUB_CHAT_MAX_MESSAGE_LENGTH", "500")
		t.Setenv("TEAMHUB_SCHEDULER_MEETING_SWEEP_INTERVAL", "30s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "hub-test", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "9001", cfg.App.ChatPort)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 500, cfg.Chat.MaxMessageLength)
		assert.Equal(t, 30*time.Second, cfg.Scheduler.MeetingSweepInterval)
		assert.Equal(t, "hub-test", cfg.Telemetry.ServiceName)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("TEAMHUB_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("TEAMHUB_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects identical api and chat ports", func(t *testing.T) {
		t.Setenv("TEAMHUB_APP_PORT", "7000")
		t.Setenv("TEAMHUB_APP_CHAT_PORT", "7000")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chat_port")
	})

	t.Run("requires api key when llm enabled", func(t *testing.T) {
		t.Setenv("TEAMHUB_LLM_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.api_key")
	})

	t.Run("requires credentials when storage enabled", func(t *testing.T) {
		t.Setenv("TEAMHUB_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.access_key")
	})

	t.Run("production requires strong jwt secret", func(t *testing.T) {
		t.Setenv("TEAMHUB_APP_ENV", "production")
		t.Setenv("TEAMHUB_JWT_SECRET", "short")
		t.Setenv("TEAMHUB_DATABASE_PASSWORD", "pw")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production rejects wildcard cors", func(t *testing.T) {
		t.Setenv("TEAMHUB_APP_ENV", "production")
		t.Setenv("TEAMHUB_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("TEAMHUB_DATABASE_PASSWORD", "pw")
		t.Setenv("TEAMHUB_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("production requires protected swagger", func(t *testing.T) {
		t.Setenv("TEAMHUB_APP_ENV", "production")
		t.Setenv("TEAMHUB_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("TEAMHUB_DATABASE_PASSWORD", "pw")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger")

		t.Setenv("TEAMHUB_SWAGGER_REQUIRE_AUTH", "true")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.Enabled)
		assert.True(t, cfg.Swagger.RequireAuth)
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		t.Setenv("TEAMHUB_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "hub",
		Password: "p@ss word",
		DBName:   "teamhub",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://hub:")
	assert.Contains(t, dsn, "@db:5432/teamhub")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss word")
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}

func TestDatabaseConfig_MigrateURL(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "hub", Password: "pw", DBName: "teamhub", SSLMode: "disable"}

	u := d.MigrateURL()
	assert.Contains(t, u, "postgres://hub:pw@db:5432/teamhub?")
	assert.Contains(t, u, "x-migrations-table=schema_migrations")
}
