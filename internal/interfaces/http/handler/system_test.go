package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemEngine(h *SystemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/system/info", h.Info)
	r.GET("/system/ping", h.Ping)
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		r := systemEngine(NewSystemHandler("teamhub", "1.0.0",
			HealthCheck{Name: "database", Check: ok},
			HealthCheck{Name: "redis", Check: ok},
		))
		rec := get(r, "/health")
		require.Equal(t, http.StatusOK, rec.Code)
		data := dataOf(t, rec).(map[string]any)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, map[string]any{"database": "ok", "redis": "ok"}, data["checks"])
	})

	t.Run("a failing check degrades", func(t *testing.T) {
		r := systemEngine(NewSystemHandler("teamhub", "1.0.0",
			HealthCheck{Name: "database", Check: ok},
			HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
		))
		rec := get(r, "/health")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeObject(t, rec)
		assert.Equal(t, "fail", body["status"])
		assert.Equal(t, "SERVICE_UNAVAILABLE", body["code"])
		data := body["data"].(map[string]any)
		assert.Equal(t, "degraded", data["status"])
		assert.Equal(t, "connection refused", data["checks"].(map[string]any)["redis"])
	})

	t.Run("checks see a deadline", func(t *testing.T) {
		var hasDeadline bool
		r := systemEngine(NewSystemHandler("teamhub", "1.0.0", HealthCheck{
			Name: "database",
			Check: func(ctx context.Context) error {
				_, hasDeadline = ctx.Deadline()
				return nil
			},
		}))
		require.Equal(t, http.StatusOK, get(r, "/health").Code)
		assert.True(t, hasDeadline)
	})

	t.Run("no checks", func(t *testing.T) {
		r := systemEngine(NewSystemHandler("teamhub", "1.0.0"))
		assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	})
}

func TestSystemHandler_InfoAndPing(t *testing.T) {
	r := systemEngine(NewSystemHandler("teamhub", "1.2.3"))

	rec := get(r, "/system/info")
	require.Equal(t, http.StatusOK, rec.Code)
	info := dataOf(t, rec).(map[string]any)
	assert.Equal(t, "teamhub", info["name"])
	assert.Equal(t, "1.2.3", info["version"])
	assert.NotEmpty(t, info["go_version"])

	rec = get(r, "/system/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", dataOf(t, rec).(map[string]any)["message"])
}
